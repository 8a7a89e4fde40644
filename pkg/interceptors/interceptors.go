// interceptors предоставляет набор интерсепторов для обработчиков очередей (rpc.HandlerFunc).
package interceptors

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/codes"

	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// Logging кладёт в контекст логгер с queue/correlation_id и после обработки
// пишет одну строку уровня Info: msg="rpc", outcome=<итог>, dur=<время>.
// Тело сообщения не логируется.
func Logging(base *slog.Logger) rpc.Interceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(next rpc.HandlerFunc) rpc.HandlerFunc {
		return func(ctx context.Context, req *rpc.Request) (any, error) {
			start := time.Now()

			l := base.With(
				slog.String("queue", req.Queue),
				slog.String("correlation_id", req.CorrelationID),
				slog.Bool("redelivered", req.Redelivered),
			)
			ctx = log.Into(ctx, l)

			resp, err := next(ctx, req)

			attrs := []any{
				slog.String("outcome", Outcome(err)),
				slog.Duration("dur", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			l.Info("rpc", attrs...)

			return resp, err
		}
	}
}

// Recover перехватывает панику обработчика, логирует её со стеком и отвечает
// нейтральной ошибкой Internal. Сообщение при этом подтверждается, а не
// переотправляется бесконечно.
func Recover(base *slog.Logger) rpc.Interceptor {
	return func(next rpc.HandlerFunc) rpc.HandlerFunc {
		return func(ctx context.Context, req *rpc.Request) (resp any, err error) {
			l := log.From(ctx)
			if l == slog.Default() && base != nil {
				l = base
			}

			defer func() {
				if r := recover(); r != nil {
					l.Error("panic_recovered",
						slog.String("queue", req.Queue),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)

					resp = nil
					err = rpc.Errorf(codes.Internal, "internal error")
				}
			}()

			return next(ctx, req)
		}
	}
}

// WithTimeout навешивает таймаут d на контекст обработчика при его отсутствии.
// d <= 0 или уже заданный дедлайн - контекст не меняется.
func WithTimeout(d time.Duration) rpc.Interceptor {
	return func(next rpc.HandlerFunc) rpc.HandlerFunc {
		return func(ctx context.Context, req *rpc.Request) (any, error) {
			if d <= 0 {
				return next(ctx, req)
			}

			if _, ok := ctx.Deadline(); ok {
				return next(ctx, req)
			}

			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next(ctx, req)
		}
	}
}

// Metrics считает обработанные сообщения и время обработки по очередям:
// rpc_server_handled_total{queue,outcome} и rpc_server_handling_seconds{queue}.
// reg == nil - интерсептор прозрачен.
func Metrics(reg prometheus.Registerer) rpc.Interceptor {
	if reg == nil {
		return func(next rpc.HandlerFunc) rpc.HandlerFunc { return next }
	}

	handled := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_server_handled_total",
		Help: "Queue messages handled, by queue and outcome.",
	}, []string{"queue", "outcome"}))

	seconds := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpc_server_handling_seconds",
		Help:    "Queue message handling latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"queue"}))

	return func(next rpc.HandlerFunc) rpc.HandlerFunc {
		return func(ctx context.Context, req *rpc.Request) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			handled.WithLabelValues(req.Queue, Outcome(err)).Inc()
			seconds.WithLabelValues(req.Queue).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}

	return c
}

// Outcome классифицирует результат обработчика: ok, malformed, remote_<Code>, error.
func Outcome(err error) string {
	var remote *rpc.RemoteError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, rpc.ErrMalformed):
		return "malformed"
	case errors.As(err, &remote):
		return "remote_" + remote.Code.String()
	default:
		return "error"
	}
}
