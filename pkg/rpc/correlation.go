package rpc

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-food-delivery/pkg/queue"
)

// NewID возвращает correlation id вида "<unix-nanos>-<uuid>".
// Уникальность нужна только в пределах процесса: ответы читаются
// из собственной очереди ответов вызывающего.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString())
}

// Registry сопоставляет входящие ответы ожидающим вызовам по correlation id.
type Registry struct {
	mu      sync.Mutex
	pending map[string]chan queue.Delivery
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]chan queue.Delivery)}
}

// Register регистрирует ожидание ответа с данным id.
// cancel снимает регистрацию; его нужно вызвать на любом пути выхода.
func (r *Registry) Register(id string) (<-chan queue.Delivery, func()) {
	ch := make(chan queue.Delivery, 1)

	r.mu.Lock()
	r.pending[id] = ch
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}
}

// Resolve передаёт доставку ожидающему вызову.
// Возвращает false, если id неизвестен (опоздавший или чужой ответ);
// такую доставку вызывающий должен подтвердить и отбросить.
// Ожидание разрешается не более одного раза.
func (r *Registry) Resolve(d queue.Delivery) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.pending[d.CorrelationID]
	if !ok || d.CorrelationID == "" {
		return false
	}
	delete(r.pending, d.CorrelationID)

	ch <- d
	return true
}

// Pending - число вызовов, ожидающих ответа.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pending)
}
