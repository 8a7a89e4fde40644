// clients - вызовы внутренних сервисов через очереди.
//
// Все клиенты делят один rpc.Client (и одно AMQP-соединение процесса);
// каждый вызов открывает свой канал и временную очередь ответа.
// Дедлайн вызова - минимум из дедлайна ctx и таймаута клиента.
package clients

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/config"
	"github.com/pribylovaa/go-food-delivery/pkg/queue"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// Clients агрегирует клиенты внутренних сервисов.
type Clients struct {
	Tokens    *Tokens
	Messaging *Messaging
	Ratings   *Ratings

	rpc *rpc.Client
}

// New собирает клиенты поверх брокера. reg == nil отключает метрики вызовов.
func New(b queue.Broker, timeouts config.TimeoutConfig, log *slog.Logger, reg prometheus.Registerer) *Clients {
	opts := []rpc.ClientOption{
		rpc.WithClientLogger(log),
		rpc.WithDefaultTimeout(timeouts.Tokens),
	}
	if reg != nil {
		opts = append(opts, rpc.WithClientMetrics(reg))
	}

	c := rpc.NewClient(b, opts...)

	return &Clients{
		Tokens:    &Tokens{rpc: c, timeout: timeouts.Tokens},
		Messaging: &Messaging{rpc: c, timeout: timeouts.OTP},
		Ratings:   &Ratings{rpc: c},
		rpc:       c,
	}
}

// Pending - число вызовов, ожидающих ответа.
func (c *Clients) Pending() int {
	return c.rpc.Pending()
}
