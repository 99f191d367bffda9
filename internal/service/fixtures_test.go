package service

import "techmart-assistant/internal/domain"

func sampleProductsFixture() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "MacBook Pro 16\"", Description: "Powerful laptop for creative professionals", Category: "laptops", Price: 2499, Stock: 5, Rating: 4.8, Features: []string{"M3 Max chip", "Liquid Retina XDR"}},
		{ID: "2", Name: "iPhone 15 Pro", Description: "Titanium design with A17 Pro chip", Category: "smartphones", Price: 999, Stock: 10, Rating: 4.7, Features: []string{"48MP main camera", "USB-C"}},
		{ID: "3", Name: "Samsung Galaxy S24 Ultra", Description: "Flagship phone with pro-grade camera and S Pen", Category: "smartphones", Price: 1199, Stock: 7, Rating: 4.6},
		{ID: "4", Name: "Sony WH-1000XM5", Description: "Industry leading noise cancelling headphones", Category: "headphones", Price: 399, Stock: 12, Rating: 4.6, Features: []string{"30h battery"}},
		{ID: "5", Name: "AirPods Pro", Description: "Wireless earbuds with adaptive audio", Category: "headphones", Price: 249, Stock: 20, Rating: 4.5},
		{ID: "6", Name: "ASUS ROG Strix G16", Description: "Laptop with RTX 4070 graphics", Category: "laptops", Price: 1799, Stock: 3, Rating: 4.5},
		{ID: "7", Name: "Logitech G Pro Mouse", Description: "Wireless gaming mouse", Category: "accessories", Price: 129, Stock: 30, Rating: 4.4},
		{ID: "8", Name: "Google Pixel 8", Description: "Smartphone with AI features", Category: "smartphones", Price: 699, Stock: 9, Rating: 4.4, Features: []string{"Night Sight camera"}},
		{ID: "9", Name: "Dell XPS 13", Description: "Compact ultrabook", Category: "laptops", Price: 1099, Stock: 6, Rating: 4.3},
		{ID: "10", Name: "Anker USB-C Hub", Description: "7-in-1 adapter", Category: "accessories", Price: 49, Stock: 50, Rating: 4.2},
	}
}

func sampleIndex() *CatalogIndex {
	return NewCatalogIndex(sampleProductsFixture())
}

func seededRandom() RandomSource {
	return NewSeededRandomSource(42, 7)
}

func productIDs(products []domain.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(got []domain.Product, want ...string) bool {
	ids := productIDs(got)
	if len(ids) != len(want) {
		return false
	}
	for i := range ids {
		if ids[i] != want[i] {
			return false
		}
	}
	return true
}
