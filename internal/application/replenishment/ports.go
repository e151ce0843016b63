package replenishment

import (
	"context"
	"time"
)

// Notifier publica un mensaje estructurado en un canal con mejor esfuerzo.
// Publish no bloquea al llamador ni devuelve error: los fallos se registran y se descartan.
type Notifier interface {
	Publish(ctx context.Context, channel, key string, payload any)
}

// IDGenerator genera identificadores legibles con prefijo (ver pkg/idgen).
type IDGenerator interface {
	Generate(prefix string) string
	GenerateUpper(prefix string) string
}

// Clock devuelve la hora actual; inyectable para tests.
type Clock func() time.Time
