package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message es inmutable una vez agregado a una sesion.
// Products solo aparece en mensajes del asistente que recomiendan algo.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Products  []Product `json:"products,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
