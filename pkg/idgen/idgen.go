// Package idgen genera identificadores legibles con prefijo: PREFIX-<unix-millis>-<sufijo>.
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Prefijos de negocio.
const (
	PrefixReplenishment = "REP"
	PrefixTransferOrder = "TO"
	PrefixTracking      = "TRK"
)

const suffixLen = 9

// Clock devuelve la hora actual; inyectable para tests.
type Clock func() time.Time

// Generator produce IDs cuyo componente de tiempo nunca retrocede, aunque el reloj
// del sistema lo haga. Seguro para uso concurrente.
type Generator struct {
	clock  Clock
	random func() string
	last   atomic.Int64
}

// New construye un generador. clock nil = time.Now.
func New(clock Clock) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{clock: clock, random: randomSuffix}
}

// Generate devuelve un ID con el prefijo dado, p. ej. REP-1718000000000-3f9a1c2b7.
func (g *Generator) Generate(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, g.millis(), g.random())
}

// GenerateUpper igual que Generate con el sufijo en mayúsculas (números de guía).
func (g *Generator) GenerateUpper(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, g.millis(), strings.ToUpper(g.random()))
}

func (g *Generator) millis() int64 {
	now := g.clock().UnixMilli()
	for {
		last := g.last.Load()
		if now < last {
			now = last
		}
		if g.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

func randomSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:suffixLen]
}
