package service

import (
	"math/rand/v2"
	"sync"

	"techmart-assistant/internal/domain"
)

// RandomSource permite inyectar la aleatoriedad de las reglas de muestreo.
// El router la comparte entre sesiones que corren en paralelo, asi que debe ser segura
// para uso concurrente. Un *rand.Rand solo no lo es; usar NewSeededRandomSource.
type RandomSource interface {
	Perm(n int) []int
}

// lockedRandom serializa el acceso a un *rand.Rand con semilla.
type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededRandomSource devuelve una fuente determinista (PCG) segura para uso concurrente.
func NewSeededRandomSource(seed1, seed2 uint64) RandomSource {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

func (l *lockedRandom) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Perm(n)
}

type globalRandom struct{}

func (globalRandom) Perm(n int) []int {
	return rand.Perm(n)
}

// NewRandomSource devuelve la fuente global del proceso, segura para uso concurrente.
func NewRandomSource() RandomSource {
	return globalRandom{}
}

// sampleProducts elige hasta n productos uniformemente y sin reemplazo.
func sampleProducts(src RandomSource, products []domain.Product, n int) []domain.Product {
	if n > len(products) {
		n = len(products)
	}
	out := make([]domain.Product, 0, n)
	if n <= 0 {
		return out
	}
	for _, i := range src.Perm(len(products))[:n] {
		out = append(out, products[i])
	}
	return out
}
