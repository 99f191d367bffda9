package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"techmart-assistant/internal/repository"
)

// CatalogSource entrega el snapshot vigente del catalogo.
type CatalogSource interface {
	Current() *CatalogIndex
}

// CatalogProvider mantiene el indice vigente y lo reemplaza completo en cada recarga.
// Los lectores que ya tomaron un snapshot siguen usandolo sin locks.
type CatalogProvider struct {
	repo    repository.CatalogRepository
	logger  *zap.Logger
	current atomic.Pointer[CatalogIndex]
}

func NewCatalogProvider(ctx context.Context, repo repository.CatalogRepository, logger *zap.Logger) (*CatalogProvider, error) {
	p := &CatalogProvider{repo: repo, logger: logger}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// StaticCatalog envuelve un indice fijo (tests, CLI).
func StaticCatalog(idx *CatalogIndex) CatalogSource {
	return staticCatalog{idx: idx}
}

type staticCatalog struct {
	idx *CatalogIndex
}

func (s staticCatalog) Current() *CatalogIndex {
	return s.idx
}

func (p *CatalogProvider) Current() *CatalogIndex {
	return p.current.Load()
}

// Reload lee el catalogo completo. Si falla, el snapshot anterior sigue vigente.
func (p *CatalogProvider) Reload(ctx context.Context) error {
	products, err := p.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	p.current.Store(NewCatalogIndex(products))
	if p.logger != nil {
		p.logger.Info("catalog loaded", zap.Int("products", len(products)))
	}
	return nil
}
