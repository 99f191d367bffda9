package service

import (
	"slices"
	"sync"
	"testing"
)

func TestSeededRandomSource_Deterministic(t *testing.T) {
	a := NewSeededRandomSource(3, 9).Perm(10)
	b := NewSeededRandomSource(3, 9).Perm(10)
	if !slices.Equal(a, b) {
		t.Fatalf("expected same permutation for same seed: %v vs %v", a, b)
	}
}

func TestSeededRandomSource_ConcurrentUse(t *testing.T) {
	src := NewSeededRandomSource(1, 2)
	products := sampleProductsFixture()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := sampleProducts(src, products, 3)
				if len(got) != 3 {
					t.Errorf("expected 3 products, got %d", len(got))
					return
				}
				seen := map[string]bool{}
				for _, p := range got {
					if seen[p.ID] {
						t.Errorf("sample repeated product %s", p.ID)
						return
					}
					seen[p.ID] = true
				}
			}
		}()
	}
	wg.Wait()
}

func TestSampleProducts_Bounds(t *testing.T) {
	src := NewSeededRandomSource(1, 2)
	if got := sampleProducts(src, sampleProductsFixture()[:2], 3); len(got) != 2 {
		t.Fatalf("expected sample capped at catalog size, got %d", len(got))
	}
	if got := sampleProducts(src, nil, 3); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil sample, got %v", got)
	}
}
