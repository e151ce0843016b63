// Package kafka publica los eventos del flujo de reposición en Kafka (segmentio/kafka-go).
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/replenishment-api/internal/application/replenishment"
	"github.com/jhoicas/replenishment-api/pkg/config"
	"github.com/jhoicas/replenishment-api/pkg/logger"
	"github.com/jhoicas/replenishment-api/pkg/metrics"
)

var (
	_ replenishment.Notifier = (*Notifier)(nil)
	_ replenishment.Notifier = (*LogNotifier)(nil)
)

// ErrClosed se registra cuando se publica después de Close.
var ErrClosed = errors.New("notifier cerrado")

// Notifier publica con mejor esfuerzo: cada mensaje sale en su propia goroutine,
// desligado de la cancelación del request y acotado por PublishTimeout.
// Los fallos se registran y se cuentan, nunca llegan al llamador.
type Notifier struct {
	writer  *kafka.Writer
	timeout time.Duration
	metrics *metrics.WorkflowMetrics
	log     *logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewNotifier crea el writer; el topic va en cada mensaje.
func NewNotifier(cfg config.KafkaConfig, m *metrics.WorkflowMetrics, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           timeout,
			AllowAutoTopicCreation: true,
			Transport:              &kafka.Transport{ClientID: cfg.ClientID},
		},
		timeout: timeout,
		metrics: m,
		log:     log.Component("kafka_notifier"),
	}
}

// Publish encola el envío y retorna de inmediato.
func (n *Notifier) Publish(ctx context.Context, channel, key string, payload any) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		n.fail(channel, key, ErrClosed)
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	sendCtx := context.WithoutCancel(ctx)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(sendCtx, n.timeout)
		defer cancel()

		if err := publishJSON(ctx, n.writer, channel, key, payload); err != nil {
			n.fail(channel, key, err)
			return
		}
		n.metrics.IncNotification(channel, nil)
		n.log.Debug().Str("channel", channel).Str("key", key).Msg("evento publicado")
	}()
}

// Close espera los envíos en curso y cierra el writer.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.wg.Wait()
	return n.writer.Close()
}

func (n *Notifier) fail(channel, key string, err error) {
	n.metrics.IncNotification(channel, err)
	n.log.Warn().Err(err).Str("channel", channel).Str("key", key).Msg("no se pudo publicar el evento")
}

func publishJSON(ctx context.Context, w *kafka.Writer, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

// LogNotifier modo simulación: sin brokers configurados solo registra el evento.
type LogNotifier struct {
	metrics *metrics.WorkflowMetrics
	log     *logger.Logger
}

// NewLogNotifier construye el notificador de simulación.
func NewLogNotifier(m *metrics.WorkflowMetrics, log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{metrics: m, log: log.Component("log_notifier")}
}

// Publish registra el evento como JSON.
func (n *LogNotifier) Publish(_ context.Context, channel, key string, payload any) {
	data, err := json.Marshal(payload)
	n.metrics.IncNotification(channel, err)
	if err != nil {
		n.log.Warn().Err(err).Str("channel", channel).Str("key", key).Msg("evento no serializable")
		return
	}
	n.log.Info().
		Str("channel", channel).
		Str("key", key).
		RawJSON("payload", data).
		Msg("evento simulado")
}

// Close no hace nada; existe para intercambiarse con Notifier.
func (n *LogNotifier) Close() error { return nil }
