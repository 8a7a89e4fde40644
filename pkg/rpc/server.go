package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc/codes"

	"github.com/pribylovaa/go-food-delivery/pkg/queue"
)

// Request - входящее сообщение, переданное обработчику.
type Request struct {
	Queue         string
	CorrelationID string
	ReplyTo       string
	Body          []byte
	Redelivered   bool
}

// Decode разбирает тело запроса в v. Ошибка разбора классифицируется как ErrMalformed.
func (r *Request) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return Malformed(err)
	}

	return nil
}

// HandlerFunc обрабатывает запрос. Результат (если есть replyTo) кодируется в JSON
// и отправляется вызывающему.
//
// Классы ошибок определяют судьбу сообщения:
//   - *RemoteError - ответ-конверт, сообщение подтверждается;
//   - ErrMalformed - ответ InvalidArgument, Nack без requeue;
//   - прочие - временный сбой: Nack с requeue при первой доставке,
//     ответ Internal и Nack без requeue при повторной.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

// Interceptor оборачивает HandlerFunc.
type Interceptor func(next HandlerFunc) HandlerFunc

// Chain применяет интерсепторы так, что первый в списке - внешний.
func Chain(h HandlerFunc, ics ...Interceptor) HandlerFunc {
	for i := len(ics) - 1; i >= 0; i-- {
		h = ics[i](h)
	}

	return h
}

// ReplyCache хранит закодированные успешные ответы по correlation id, чтобы
// повторная доставка уже обработанного запроса не выполняла обработчик снова.
type ReplyCache interface {
	Get(ctx context.Context, correlationID string) ([]byte, bool, error)
	Set(ctx context.Context, correlationID string, reply []byte) error
}

// DefaultRetryDelay - пауза перед повторной подпиской после обрыва.
const DefaultRetryDelay = time.Second

type route struct {
	queue   string
	handler HandlerFunc
}

// Server - серверная сторона RPC: по одному подписчику на очередь.
type Server struct {
	broker   queue.Broker
	log      *slog.Logger
	prefetch int
	retry    time.Duration
	cache    ReplyCache
	ics      []Interceptor

	mu      sync.Mutex
	routes  []route
	started bool
	wg      sync.WaitGroup
}

// ServerOption настраивает Server.
type ServerOption func(*Server)

// WithServerLogger задаёт логгер сервера.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPrefetch задаёт лимит неподтверждённых доставок на очередь.
func WithPrefetch(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.prefetch = n
		}
	}
}

// WithRetryDelay задаёт паузу перед повторной подпиской.
func WithRetryDelay(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.retry = d
		}
	}
}

// WithReplyCache включает кэш ответов для повторных доставок.
func WithReplyCache(c ReplyCache) ServerOption {
	return func(s *Server) { s.cache = c }
}

// WithInterceptors задаёт интерсепторы для всех очередей (внешние относительно Handle).
func WithInterceptors(ics ...Interceptor) ServerOption {
	return func(s *Server) { s.ics = append(s.ics, ics...) }
}

// NewServer создаёт сервер поверх брокера.
func NewServer(b queue.Broker, opts ...ServerOption) *Server {
	s := &Server{
		broker:   b,
		log:      slog.Default(),
		prefetch: 1,
		retry:    DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handle регистрирует обработчик очереди. Вызывается до Start.
func (s *Server) Handle(name string, h HandlerFunc, ics ...Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		panic("rpc: Handle after Start")
	}

	all := append(append([]Interceptor(nil), s.ics...), ics...)
	s.routes = append(s.routes, route{queue: name, handler: Chain(h, all...)})
}

// Queues возвращает имена зарегистрированных очередей.
func (s *Server) Queues() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, r.queue)
	}

	return out
}

// Start подписывается на все очереди. Ошибка первичной подписки возвращается сразу;
// дальнейшие обрывы обрабатываются повторной подпиской до отмены ctx.
// Обработка уже полученного сообщения не прерывается отменой ctx.
func (s *Server) Start(ctx context.Context) error {
	const op = "rpc/Server.Start"

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("%s: already started", op)
	}
	s.started = true
	routes := append([]route(nil), s.routes...)
	s.mu.Unlock()

	type sub struct {
		r  route
		ch queue.Channel
		in <-chan queue.Delivery
	}

	subs := make([]sub, 0, len(routes))
	for _, r := range routes {
		ch, in, err := s.subscribe(ctx, r.queue)
		if err != nil {
			for _, opened := range subs {
				_ = opened.ch.Close()
			}

			return fmt.Errorf("%s: %s: %w", op, r.queue, err)
		}

		subs = append(subs, sub{r: r, ch: ch, in: in})
	}

	for _, sb := range subs {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(ctx, sb.r, sb.ch, sb.in)
		}()
	}

	return nil
}

// Wait блокируется, пока все подписчики не остановятся.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) subscribe(ctx context.Context, name string) (queue.Channel, <-chan queue.Delivery, error) {
	ch, err := s.broker.Channel(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := ch.DeclareQueue(ctx, name); err != nil {
		_ = ch.Close()
		return nil, nil, err
	}

	in, err := ch.Consume(ctx, name, s.prefetch)
	if err != nil {
		_ = ch.Close()
		return nil, nil, err
	}

	return ch, in, nil
}

func (s *Server) serve(ctx context.Context, r route, ch queue.Channel, in <-chan queue.Delivery) {
	l := s.log.With(slog.String("queue", r.queue))
	l.Info("rpc_consumer_started", slog.Int("prefetch", s.prefetch))

	for {
		for d := range in {
			s.process(ctx, ch, r, d)
		}
		_ = ch.Close()

		if ctx.Err() != nil {
			l.Info("rpc_consumer_stopped")
			return
		}

		l.Warn("rpc_consumer_interrupted")

		for {
			select {
			case <-ctx.Done():
				l.Info("rpc_consumer_stopped")
				return
			case <-time.After(s.retry):
			}

			var err error
			ch, in, err = s.subscribe(ctx, r.queue)
			if err == nil {
				l.Info("rpc_consumer_resubscribed")
				break
			}

			l.Warn("rpc_consumer_resubscribe_failed", slog.String("error", err.Error()))
		}
	}
}

// process доводит сообщение до Ack или Nack.
func (s *Server) process(ctx context.Context, ch queue.Channel, r route, d queue.Delivery) {
	// Взятое в обработку сообщение не отменяется остановкой сервера.
	hctx := context.WithoutCancel(ctx)
	l := s.log.With(slog.String("queue", r.queue), slog.String("correlation_id", d.CorrelationID))

	if s.cache != nil && d.Redelivered && d.ReplyTo != "" && d.CorrelationID != "" {
		cached, ok, err := s.cache.Get(hctx, d.CorrelationID)
		if err != nil {
			l.Warn("rpc_reply_cache_get_failed", slog.String("error", err.Error()))
		}

		if ok {
			l.Info("rpc_reply_from_cache")
			s.replyAndSettle(hctx, l, ch, d, cached, true)
			return
		}
	}

	req := &Request{
		Queue:         r.queue,
		CorrelationID: d.CorrelationID,
		ReplyTo:       d.ReplyTo,
		Body:          d.Body,
		Redelivered:   d.Redelivered,
	}

	res, err := r.handler(hctx, req)

	var remote *RemoteError
	switch {
	case err == nil:
		if d.ReplyTo == "" {
			s.ack(l, d)
			return
		}

		body, mErr := encodeResult(res)
		if mErr != nil {
			l.Error("rpc_reply_encode_failed", slog.String("error", mErr.Error()))
			s.replyAndSettle(hctx, l, ch, d, encodeError(&RemoteError{Code: codes.Internal, Message: "internal error"}), true)
			return
		}

		if s.cache != nil && d.CorrelationID != "" {
			if cErr := s.cache.Set(hctx, d.CorrelationID, body); cErr != nil {
				l.Warn("rpc_reply_cache_set_failed", slog.String("error", cErr.Error()))
			}
		}

		s.replyAndSettle(hctx, l, ch, d, body, true)

	case errors.As(err, &remote):
		s.replyAndSettle(hctx, l, ch, d, encodeError(remote), true)

	case errors.Is(err, ErrMalformed):
		l.Warn("rpc_malformed_message", slog.String("error", err.Error()))
		s.replyAndSettle(hctx, l, ch, d, encodeError(&RemoteError{Code: codes.InvalidArgument, Message: "malformed request"}), false)

	case !d.Redelivered:
		l.Warn("rpc_handler_failed_requeue", slog.String("error", err.Error()))
		s.nack(l, d, true)

	default:
		l.Error("rpc_handler_failed_drop", slog.String("error", err.Error()))
		s.replyAndSettle(hctx, l, ch, d, encodeError(&RemoteError{Code: codes.Internal, Message: "internal error"}), false)
	}
}

// replyAndSettle отправляет ответ (если есть replyTo) и подтверждает сообщение:
// ack=true - Ack, иначе Nack без requeue. Сбой публикации ответа - Nack с requeue.
func (s *Server) replyAndSettle(ctx context.Context, l *slog.Logger, ch queue.Channel, d queue.Delivery, body []byte, ack bool) {
	if d.ReplyTo != "" {
		err := ch.Publish(ctx, d.ReplyTo, queue.Message{
			Body:          body,
			ContentType:   queue.ContentTypeJSON,
			CorrelationID: d.CorrelationID,
		})
		if err != nil {
			l.Warn("rpc_reply_publish_failed", slog.String("error", err.Error()))
			s.nack(l, d, true)
			return
		}
	}

	if ack {
		s.ack(l, d)
		return
	}

	s.nack(l, d, false)
}

func (s *Server) ack(l *slog.Logger, d queue.Delivery) {
	if err := d.Ack(); err != nil {
		l.Warn("rpc_ack_failed", slog.String("error", err.Error()))
	}
}

func (s *Server) nack(l *slog.Logger, d queue.Delivery, requeue bool) {
	if err := d.Nack(requeue); err != nil {
		l.Warn("rpc_nack_failed", slog.String("error", err.Error()), slog.Bool("requeue", requeue))
	}
}

func encodeResult(res any) ([]byte, error) {
	if res == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(res)
}
