package domain

import "time"

// Session es una conversacion de un unico usuario. Messages es append-only.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionSummary es la vista reducida que devuelve el listado de sesiones.
type SessionSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	LastMessage string    `json:"lastMessage"`
}

// Clone devuelve una copia profunda para que los stores no compartan slices con el caller.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		if m.Products != nil {
			products := make([]Product, len(m.Products))
			for j, p := range m.Products {
				if p.Features != nil {
					p.Features = append([]string(nil), p.Features...)
				}
				products[j] = p
			}
			m.Products = products
		}
		out.Messages[i] = m
	}
	return out
}
