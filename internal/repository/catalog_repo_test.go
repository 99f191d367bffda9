package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

const catalogJSON = `[
  {"id":"1","name":"MacBook Pro 14","description":"Apple laptop","category":"laptops","price":1999,"stock":4,"rating":4.8,"features":["M3 Pro"]},
  {"id":"2","name":"Sony WH-1000XM5","description":"Noise cancelling","category":"headphones","price":399.99,"stock":10,"rating":4.7,"features":["ANC"]}
]`

func TestFileCatalogRepository_ListAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	products, err := NewFileCatalogRepository(path).ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != "1" || products[1].Category != "headphones" || products[1].Price != 399.99 {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestFileCatalogRepository_MissingFileIsEmpty(t *testing.T) {
	products, err := NewFileCatalogRepository(filepath.Join(t.TempDir(), "none.json")).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", products)
	}
}

func TestFileCatalogRepository_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := NewFileCatalogRepository(path).ListAll(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCatalogWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	w, err := NewCatalogWatcher(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Reintenta la escritura hasta que el watcher haya registrado el directorio.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("watch returned error: %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte(catalogJSON), 0o644); err != nil {
				t.Fatalf("rewrite catalog: %v", err)
			}
		case <-deadline:
			t.Fatalf("expected change notification")
		}
	}
}

func TestCatalogWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	w, err := NewCatalogWatcher(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	calls := 0
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644)
	}()
	if err := w.Watch(ctx, func() { calls++ }); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notifications, got %d", calls)
	}
}
