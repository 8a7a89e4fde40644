// rpc реализует синхронный запрос/ответ поверх очередей сообщений.
//
// Протокол вызова:
//  1. вызывающий генерирует correlation id и объявляет временную эксклюзивную
//     очередь ответов;
//  2. публикует запрос в долговечную очередь сервиса с correlationId и replyTo;
//  3. ждёт первое сообщение с совпадающим correlationId; остальные сообщения
//     (опоздавшие ответы) подтверждаются и отбрасываются без requeue;
//  4. по дедлайну вызов завершается ErrTimeout; очередь ответов и канал
//     освобождаются на любом пути выхода.
//
// Серверная сторона (Server) подтверждает сообщение только после обработки,
// поэтому доставка запросов - at-least-once.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/pkg/queue"
)

// DefaultTimeout применяется, если ни вызов, ни клиент не задали таймаут.
const DefaultTimeout = 9 * time.Second

// Client - вызывающая сторона RPC. Безопасен для конкурентного использования.
type Client struct {
	broker  queue.Broker
	reg     *Registry
	log     *slog.Logger
	timeout time.Duration
	calls   *prometheus.CounterVec
}

// ClientOption настраивает Client.
type ClientOption func(*Client)

// WithClientLogger задаёт базовый логгер (если в ctx вызова логгера нет).
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDefaultTimeout задаёт таймаут для вызовов без собственного.
func WithDefaultTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClientMetrics регистрирует счётчик rpc_client_calls_total{queue,result}.
func WithClientMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) {
		if reg == nil {
			return
		}

		calls := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpc_client_calls_total",
			Help: "RPC calls issued over the message queue, by result.",
		}, []string{"queue", "result"})

		if err := reg.Register(calls); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				calls = are.ExistingCollector.(*prometheus.CounterVec)
			} else {
				return
			}
		}

		c.calls = calls
	}
}

// NewClient создаёт клиента поверх брокера.
func NewClient(b queue.Broker, opts ...ClientOption) *Client {
	c := &Client{
		broker:  b,
		reg:     NewRegistry(),
		log:     slog.Default(),
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Call публикует req в очередь name и ждёт ответ в resp (может быть nil).
// timeout <= 0 - используется таймаут клиента.
//
// Ошибки:
//   - ErrTimeout - дедлайн истёк (в т.ч. дедлайн ctx);
//   - ErrTransport - брокер недоступен, канал закрыт;
//   - *RemoteError - сервис ответил конвертом ошибки;
//   - ctx.Err() - вызов отменён вызывающим.
func (c *Client) Call(ctx context.Context, name string, req, resp any, timeout time.Duration) (err error) {
	const op = "rpc/Client.Call"

	if timeout <= 0 {
		timeout = c.timeout
	}

	id := NewID()
	l := c.logger(ctx).With(slog.String("op", op), slog.String("queue", name), slog.String("correlation_id", id))

	defer func() { c.observe(name, err) }()

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch, err := c.broker.Channel(ctx)
	if err != nil {
		return c.transportErr(ctx, op, "open channel", err)
	}
	defer ch.Close()

	if err := ch.DeclareQueue(ctx, name); err != nil {
		return c.transportErr(ctx, op, "declare request queue", err)
	}

	replyTo, err := ch.DeclareReplyQueue(ctx)
	if err != nil {
		return c.transportErr(ctx, op, "declare reply queue", err)
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer dcancel()

		if derr := ch.DeleteQueue(dctx, replyTo); derr != nil {
			l.Debug("rpc_reply_queue_delete_failed", slog.String("error", derr.Error()))
		}
	}()

	wait, unregister := c.reg.Register(id)
	defer unregister()

	consumeCtx, stopConsume := context.WithCancel(ctx)
	defer stopConsume()

	in, err := ch.Consume(consumeCtx, replyTo, 0)
	if err != nil {
		return c.transportErr(ctx, op, "consume reply queue", err)
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)

		for d := range in {
			if c.reg.Resolve(d) {
				continue
			}

			_ = d.Ack()
			l.Warn("rpc_stale_reply_discarded", slog.String("reply_correlation_id", d.CorrelationID))
		}
	}()

	err = ch.Publish(ctx, name, queue.Message{
		Body:          body,
		ContentType:   queue.ContentTypeJSON,
		CorrelationID: id,
		ReplyTo:       replyTo,
	})
	if err != nil {
		return c.transportErr(ctx, op, "publish request", err)
	}

	select {
	case d := <-wait:
		_ = d.Ack()

		if err := decodeReply(d.Body, resp); err != nil {
			var remote *RemoteError
			if errors.As(err, &remote) {
				return remote
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		return nil

	case <-closed:
		// Подписка закрывается и при отмене ctx - тогда это таймаут, а не транспорт.
		if ctx.Err() != nil {
			return doneErr(ctx, l, op, timeout)
		}

		l.Warn("rpc_reply_subscription_closed")
		return fmt.Errorf("%s: reply subscription closed: %w", op, ErrTransport)

	case <-ctx.Done():
		return doneErr(ctx, l, op, timeout)
	}
}

func doneErr(ctx context.Context, l *slog.Logger, op string, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		l.Warn("rpc_call_timeout", slog.Duration("timeout", timeout))
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}

	return fmt.Errorf("%s: %w", op, ctx.Err())
}

// Notify публикует payload в очередь name без ожидания ответа.
// Ошибка означает только сбой публикации.
func (c *Client) Notify(ctx context.Context, name string, payload any) (err error) {
	const op = "rpc/Client.Notify"

	defer func() { c.observe(name, err) }()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", op, err)
	}

	err = queue.Publish(ctx, c.broker, name, queue.Message{Body: body, ContentType: queue.ContentTypeJSON})
	if err != nil {
		return c.transportErr(ctx, op, "publish", err)
	}

	return nil
}

// Pending - число вызовов, ожидающих ответа.
func (c *Client) Pending() int {
	return c.reg.Pending()
}

func (c *Client) transportErr(ctx context.Context, op, step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %s: %w", op, step, ErrTimeout)
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %s: %w", op, step, err)
	}

	return fmt.Errorf("%s: %s: %w: %w", op, step, ErrTransport, err)
}

func (c *Client) logger(ctx context.Context) *slog.Logger {
	if l := log.From(ctx); l != slog.Default() {
		return l
	}

	return c.log
}

func (c *Client) observe(name string, err error) {
	if c.calls == nil {
		return
	}

	c.calls.WithLabelValues(name, Result(err)).Inc()
}

// Result классифицирует итог вызова для метрик и логов.
func Result(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.As(err, &remote):
		return "remote_" + remote.Code.String()
	default:
		return "error"
	}
}
