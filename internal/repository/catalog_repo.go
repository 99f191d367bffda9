package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"techmart-assistant/internal/domain"
)

// CatalogRepository expone una lectura completa (snapshot) del catalogo, en orden de insercion.
type CatalogRepository interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// FileCatalogRepository lee el catalogo desde un archivo JSON (arreglo de productos).
type FileCatalogRepository struct {
	path string
}

func NewFileCatalogRepository(path string) *FileCatalogRepository {
	return &FileCatalogRepository{path: path}
}

func (r *FileCatalogRepository) Path() string {
	return r.path
}

func (r *FileCatalogRepository) ListAll(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Product{}, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

type PgCatalogRepository struct {
	pool *pgxpool.Pool
}

func NewPgCatalogRepository(pool *pgxpool.Pool) *PgCatalogRepository {
	return &PgCatalogRepository{pool: pool}
}

func (r *PgCatalogRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	const query = `
		SELECT id, name, description, category, price::float8, image, stock, rating, features
		FROM products
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		err = rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.Price,
			&p.Image,
			&p.Stock,
			&p.Rating,
			&p.Features,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
