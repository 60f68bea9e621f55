package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"movie-file-service/config"
)

// ErrDropMessage tells the dispatcher to acknowledge a message without
// processing it. Handlers join it onto errors for payloads that can never
// succeed no matter how often they are redelivered.
var ErrDropMessage = errors.New("drop message")

// HandlerFunc processes one delivery. A nil return acknowledges the
// message; ErrDropMessage acknowledges it as unprocessable; any other error
// negatively acknowledges without requeue.
type HandlerFunc func(ctx context.Context, msg amqp.Delivery) error

// Dispatcher owns the consumer side of the durable queue: it connects,
// consumes sequentially, and on any transport failure tears the connection
// down and reconnects after a backoff. It keeps running across broker
// restarts without operator help.
type Dispatcher struct {
	cfg     *config.RabbitMQ
	handler HandlerFunc

	// newBackOff builds the delay strategy for one reconnect cycle.
	// Injectable so tests do not sleep.
	newBackOff func() backoff.BackOff
}

func NewDispatcher(cfg *config.RabbitMQ, handler HandlerFunc) *Dispatcher {
	delay := cfg.ReconnectDelay
	if delay == 0 {
		delay = 10 * time.Second
	}
	return &Dispatcher{
		cfg:     cfg,
		handler: handler,
		newBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(delay)
		},
	}
}

// Run drives the Disconnected -> Connecting -> Consuming loop until ctx is
// cancelled or the attempt cap is exhausted. Handler failures stay inside
// one message; only transport failures reach this loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	bo := d.newBackOff()
	attempts := 0

	for {
		err := d.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempts++
		zerolog.Ctx(ctx).Error().Err(err).Int("attempt", attempts).Msg("queue connection lost")

		if max := d.cfg.MaxReconnectAttempts; max > 0 && attempts >= max {
			return fmt.Errorf("giving up after %d reconnect attempts: %w", attempts, err)
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			return fmt.Errorf("backoff exhausted after %d attempts: %w", attempts, err)
		}
		zerolog.Ctx(ctx).Info().Dur("delay", delay).Msg("reconnecting to queue")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) consume(ctx context.Context) error {
	addr := fmt.Sprintf("amqp://%s:%s@%s:%d/", d.cfg.User, d.cfg.Pass, d.cfg.Host, d.cfg.Port)
	conn, err := amqp.Dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(d.cfg.Queue, true, false, false, false, nil); err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", d.cfg.Queue).Msg("failed to declare queue")
		return err
	}

	// One unacked message at a time: a transcode occupies the whole worker.
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(d.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", d.cfg.Queue).Msg("failed to consume queue")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("queue", d.cfg.Queue).Msg("consuming queue")

	for {
		select {
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			d.dispatch(ctx, msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg amqp.Delivery) {
	err := d.handler(ctx, msg)
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			zerolog.Ctx(ctx).Error().Err(ackErr).Msg("failed to acknowledge message")
		}
	case errors.Is(err, ErrDropMessage):
		zerolog.Ctx(ctx).Error().Err(err).Str("payload", string(msg.Body)).Msg("dropping unprocessable message")
		if ackErr := msg.Ack(false); ackErr != nil {
			zerolog.Ctx(ctx).Error().Err(ackErr).Msg("failed to acknowledge dropped message")
		}
	default:
		zerolog.Ctx(ctx).Error().Err(err).Str("payload", string(msg.Body)).Msg("message failed, not requeueing")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			zerolog.Ctx(ctx).Error().Err(nackErr).Msg("failed to nack message")
		}
	}
}
