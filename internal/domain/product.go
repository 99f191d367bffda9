package domain

// Product es una entrada del catalogo. El core nunca la modifica.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Image       string   `json:"image,omitempty"`
	Stock       int      `json:"stock"`
	Rating      float64  `json:"rating"`
	Features    []string `json:"features"`
}
