package service

import (
	"time"

	"github.com/google/uuid"

	"techmart-assistant/internal/domain"
)

// ResponseComposer convierte la salida de una estrategia en un mensaje del asistente.
// No reordena ni deduplica: los limites ya los aplico el router.
type ResponseComposer struct {
	now   func() time.Time
	newID func() string
}

func NewResponseComposer() *ResponseComposer {
	return &ResponseComposer{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (c *ResponseComposer) Compose(reply Reply) domain.Message {
	msg := domain.Message{
		ID:        c.newID(),
		Role:      domain.RoleAssistant,
		Content:   reply.Text,
		Timestamp: c.now(),
	}
	if len(reply.Products) > 0 {
		msg.Products = append([]domain.Product(nil), reply.Products...)
	}
	return msg
}
