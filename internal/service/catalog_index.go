package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"techmart-assistant/internal/domain"
)

const defaultProductLimit = 20

// CatalogIndex es una vista de solo lectura sobre un snapshot del catalogo.
// Todas las consultas devuelven productos en orden de insercion y nunca modifican el snapshot.
type CatalogIndex struct {
	products  []domain.Product
	haystacks []string
	names     []string
	byID      map[string]int
}

// ProductQuery agrupa los filtros del listado de productos. Los campos vacios no filtran.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
}

func NewCatalogIndex(products []domain.Product) *CatalogIndex {
	idx := &CatalogIndex{
		products:  make([]domain.Product, len(products)),
		haystacks: make([]string, len(products)),
		names:     make([]string, len(products)),
		byID:      make(map[string]int, len(products)),
	}
	copy(idx.products, products)
	for i, p := range idx.products {
		idx.names[i] = strings.ToLower(p.Name)
		idx.haystacks[i] = strings.ToLower(p.Name + " " + p.Description + " " + p.Category + " " + strings.Join(p.Features, " "))
		if _, dup := idx.byID[p.ID]; !dup {
			idx.byID[p.ID] = i
		}
	}
	return idx
}

func (c *CatalogIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// All devuelve una copia del catalogo completo.
func (c *CatalogIndex) All() []domain.Product {
	return c.where(func(int) bool { return true })
}

func (c *CatalogIndex) ByID(id string) (domain.Product, bool) {
	if c == nil {
		return domain.Product{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// ByFreeText matchea si algun token es substring del texto combinado
// (nombre, descripcion, categoria y features).
func (c *CatalogIndex) ByFreeText(tokens []string) []domain.Product {
	if len(tokens) == 0 {
		return []domain.Product{}
	}
	return c.where(func(i int) bool {
		for _, t := range tokens {
			if strings.Contains(c.haystacks[i], strings.ToLower(t)) {
				return true
			}
		}
		return false
	})
}

func (c *CatalogIndex) ByCategory(category string) []domain.Product {
	return c.where(func(i int) bool {
		return strings.EqualFold(c.products[i].Category, category)
	})
}

// ByPriceRange filtra con limites inclusivos; nil significa sin limite.
func (c *CatalogIndex) ByPriceRange(min, max *float64) []domain.Product {
	return c.where(func(i int) bool {
		return inPriceRange(c.products[i].Price, min, max)
	})
}

func (c *CatalogIndex) ByNameSubstring(term string) []domain.Product {
	term = strings.ToLower(term)
	return c.where(func(i int) bool {
		return strings.Contains(c.names[i], term)
	})
}

// Categories devuelve las categorias distintas en orden de primera aparicion.
func (c *CatalogIndex) Categories() []string {
	out := []string{}
	if c == nil {
		return out
	}
	seen := make(map[string]struct{})
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Filter aplica los filtros del endpoint de productos: busqueda por substring
// en nombre/descripcion/categoria, categoria exacta, rango de precio y limite.
func (c *CatalogIndex) Filter(q ProductQuery) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	limit := q.Limit
	if limit <= 0 {
		limit = defaultProductLimit
	}
	out := c.where(func(i int) bool {
		p := c.products[i]
		if search != "" &&
			!strings.Contains(c.names[i], search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			return false
		}
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			return false
		}
		return inPriceRange(p.Price, q.MinPrice, q.MaxPrice)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *CatalogIndex) where(keep func(i int) bool) []domain.Product {
	out := []domain.Product{}
	if c == nil {
		return out
	}
	for i := range c.products {
		if keep(i) {
			out = append(out, c.products[i])
		}
	}
	return out
}

func inPriceRange(price float64, min, max *float64) bool {
	if min != nil && price < *min {
		return false
	}
	if max != nil && price > *max {
		return false
	}
	return true
}

// ParsePriceBound interpreta un limite de precio opcional. Un valor vacio es "sin limite";
// un valor mal formado devuelve error y debe tratarse como ausente.
func ParsePriceBound(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price bound %q: %w", raw, err)
	}
	if math.IsNaN(v) {
		return nil, fmt.Errorf("invalid price bound %q", raw)
	}
	return &v, nil
}
