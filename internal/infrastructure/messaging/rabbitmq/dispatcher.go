package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
)

const (
	DefaultExchange = "account.events"

	// Minimum window to wait for Return / Confirm.
	publishWait = 2 * time.Second
)

// Dispatcher publishes token-delivery events to a topic exchange; a separate
// email worker consumes them. Mandatory routing plus publisher confirms, so
// an unroutable or nacked event surfaces as a dispatch failure instead of
// vanishing.
type Dispatcher struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewDispatcher(url string) (*Dispatcher, error) {
	d := &Dispatcher{
		url:      url,
		exchange: DefaultExchange,
	}
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) SetExchange(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name != "" {
		d.exchange = name
	}
}

func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ch != nil {
		_ = d.ch.Close()
		d.ch = nil
	}
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
	return nil
}

// ---- account.Notifier ----

type tokenEvent struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (d *Dispatcher) Notify(ctx context.Context, purpose account.TokenPurpose, email, token string) error {
	routingKey := "account.email." + string(purpose) + ".requested"
	if err := d.publishJSON(ctx, routingKey, tokenEvent{Email: email, Token: token}); err != nil {
		return domain.ErrDispatchFailed(http.StatusBadGateway, err.Error())
	}
	return nil
}

// ---- internal ----

func (d *Dispatcher) connect() error {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Declare topic exchange (idempotent).
	if err := ch.ExchangeDeclare(
		d.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	// Enable confirm mode.
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	d.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	d.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	d.conn = conn
	d.ch = ch
	return nil
}

func (d *Dispatcher) ensureConnected() error {
	if d.conn != nil && !d.conn.IsClosed() && d.ch != nil {
		return nil
	}
	return d.connect()
}

func (d *Dispatcher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Ensure there is a deadline to avoid blocking forever.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishWait)
		defer cancel()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureConnected(); err != nil {
		return err
	}

	// Drain any stale confirm / return messages to avoid mixing results.
drain:
	for {
		select {
		case <-d.confirmCh:
		case <-d.returnCh:
		default:
			break drain
		}
	}

	// mandatory = true
	if err := d.ch.PublishWithContext(
		ctx,
		d.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		// Publish call itself failed (channel/connection level error).
		d.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	// Wait for Return / Confirm / Timeout.
	select {
	case ret := <-d.returnCh:
		// No queue is bound for this routing key.
		return fmt.Errorf(
			"rabbitmq unroutable: key=%s code=%d text=%s",
			routingKey, ret.ReplyCode, ret.ReplyText,
		)

	case conf := <-d.confirmCh:
		// Mandatory delivery: a Return for the same publish usually arrives
		// before the Ack; check non-blockingly in case both are ready.
		select {
		case ret := <-d.returnCh:
			return fmt.Errorf(
				"rabbitmq unroutable: key=%s code=%d text=%s",
				routingKey, ret.ReplyCode, ret.ReplyText,
			)
		default:
		}

		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-time.After(publishWait):
		return fmt.Errorf("rabbitmq publish timeout: key=%s", routingKey)

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) resetConn() {
	if d.ch != nil {
		_ = d.ch.Close()
		d.ch = nil
	}
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
}
