// memory - реализация queue.Broker внутри процесса.
//
// Повторяет наблюдаемую семантику RabbitMQ, на которую опираются сервисы:
//   - FIFO внутри очереди, round-robin между подписчиками;
//   - prefetch ограничивает число неподтверждённых доставок на подписчика;
//   - Nack(requeue=true) возвращает сообщение в голову очереди с флагом Redelivered;
//   - отмена подписки прекращает раздачу, но выданные и неподтверждённые доставки
//     остаются за каналом до Ack/Nack или закрытия канала (как basic.cancel);
//     невыданное из буфера подписчика возвращается в очередь;
//   - публикация в несуществующую очередь молча отбрасывается (как default exchange);
//   - эксклюзивные очереди ответов удаляются вместе с каналом-владельцем.
//
// Используется в тестах и при локальном запуске без брокера.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pribylovaa/go-food-delivery/pkg/queue"
)

// defaultPrefetch - лимит неподтверждённых доставок, если prefetch не задан.
const defaultPrefetch = 256

// ErrAlreadyAcknowledged - повторный Ack/Nack одной доставки.
var ErrAlreadyAcknowledged = errors.New("memory: delivery already acknowledged")

type entry struct {
	msg         queue.Message
	redelivered bool
}

type memQueue struct {
	name      string
	owner     *channel
	ready     []entry
	consumers []*consumer
	next      int
}

type consumer struct {
	q        *memQueue
	ch       *channel
	prefetch int
	inflight map[*acker]struct{}
	// sent - неподтверждённые доставки в порядке отправки в out.
	sent     []*acker
	out      chan queue.Delivery
	stop     chan struct{}
	closed   bool
}

type acker struct {
	b    *Broker
	c    *consumer
	e    entry
	tag  uint64
	done bool
}

// Broker - брокер в памяти. Нулевое значение не готово к работе, используйте New.
type Broker struct {
	mu       sync.Mutex
	queues   map[string]*memQueue
	channels map[*channel]struct{}
	seq      int
	tags     uint64
	closed   bool
}

// New создаёт пустой брокер.
func New() *Broker {
	return &Broker{
		queues:   make(map[string]*memQueue),
		channels: make(map[*channel]struct{}),
	}
}

// Проверка выполнения контракта.
var _ queue.Broker = (*Broker)(nil)

// Channel открывает канал.
func (b *Broker) Channel(ctx context.Context) (queue.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, queue.ErrClosed
	}

	ch := &channel{b: b}
	b.channels[ch] = struct{}{}

	return ch, nil
}

// Close закрывает все каналы и подписки.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	for ch := range b.channels {
		b.closeChannelLocked(ch)
	}
	b.closed = true

	return nil
}

// Depth возвращает число готовых к доставке (не выданных) сообщений в очереди.
func (b *Broker) Depth(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if q, ok := b.queues[name]; ok {
		return len(q.ready)
	}

	return 0
}

// Exists сообщает, объявлена ли очередь.
func (b *Broker) Exists(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.queues[name]
	return ok
}

// dispatchLocked раздаёт готовые сообщения подписчикам со свободным окном prefetch.
func (b *Broker) dispatchLocked(q *memQueue) {
	for len(q.ready) > 0 && len(q.consumers) > 0 {
		var target *consumer
		for i := 0; i < len(q.consumers); i++ {
			c := q.consumers[(q.next+i)%len(q.consumers)]
			if len(c.inflight) < c.prefetch {
				target = c
				q.next = (q.next + i + 1) % len(q.consumers)
				break
			}
		}

		if target == nil {
			return
		}

		e := q.ready[0]
		q.ready = q.ready[1:]

		b.tags++
		a := &acker{b: b, c: target, e: e, tag: b.tags}
		target.inflight[a] = struct{}{}
		target.sent = append(target.sent, a)

		d := queue.NewDelivery(q.name, e.msg, e.redelivered, a)
		d.Tag = a.tag
		// Буфер out равен prefetch, а inflight < prefetch - отправка не блокирует.
		target.out <- d
	}
}

// cancelConsumerLocked снимает подписку. Доставки, которые ещё лежат в буфере out,
// возвращаются в очередь; выданные читателю остаются неподтверждёнными.
func (b *Broker) cancelConsumerLocked(c *consumer) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.stop)

	q := c.q
	for i, other := range q.consumers {
		if other == c {
			q.consumers = append(q.consumers[:i], q.consumers[i+1:]...)
			break
		}
	}
	if q.next >= len(q.consumers) {
		q.next = 0
	}

	// Читатель может забирать из буфера параллельно, поэтому невыданные
	// определяются по тегам вычитанных доставок.
	buffered := make(map[uint64]struct{})
drain:
	for {
		select {
		case d := <-c.out:
			buffered[d.Tag] = struct{}{}
		default:
			break drain
		}
	}
	close(c.out)

	var back []*acker
	for _, a := range c.sent {
		if _, ok := buffered[a.tag]; ok {
			back = append(back, a)
		}
	}

	b.requeueLocked(c, back)
}

// releaseLocked возвращает в очередь всё неподтверждённое подписчиком.
func (b *Broker) releaseLocked(c *consumer) {
	b.requeueLocked(c, c.sent)
}

func (b *Broker) requeueLocked(c *consumer, ackers []*acker) {
	if len(ackers) == 0 {
		return
	}

	back := make([]entry, 0, len(ackers))
	for _, a := range append([]*acker(nil), ackers...) {
		c.forget(a)
		back = append(back, entry{msg: a.e.msg, redelivered: true})
	}

	q := c.q
	if b.queues[q.name] == q {
		q.ready = append(back, q.ready...)
		b.dispatchLocked(q)
	}
}

// forget помечает доставку завершённой и убирает её из учёта подписчика.
func (c *consumer) forget(a *acker) {
	a.done = true
	delete(c.inflight, a)

	for i, other := range c.sent {
		if other == a {
			c.sent = append(c.sent[:i], c.sent[i+1:]...)
			break
		}
	}
}

func (b *Broker) deleteQueueLocked(name string) {
	q, ok := b.queues[name]
	if !ok {
		return
	}
	delete(b.queues, name)

	for _, c := range append([]*consumer(nil), q.consumers...) {
		b.cancelConsumerLocked(c)
	}
	q.ready = nil
}

func (b *Broker) closeChannelLocked(ch *channel) {
	if ch.closed {
		return
	}
	ch.closed = true
	delete(b.channels, ch)

	// Закрытие канала возвращает в очередь и выданное, но не подтверждённое.
	for _, c := range ch.consumers {
		b.cancelConsumerLocked(c)
		b.releaseLocked(c)
	}
	ch.consumers = nil

	for name, q := range b.queues {
		if q.owner == ch {
			b.deleteQueueLocked(name)
		}
	}
}

func (a *acker) Ack() error {
	a.b.mu.Lock()
	defer a.b.mu.Unlock()

	if a.done {
		return ErrAlreadyAcknowledged
	}
	a.c.forget(a)

	a.b.dispatchLocked(a.c.q)
	return nil
}

func (a *acker) Nack(requeue bool) error {
	a.b.mu.Lock()
	defer a.b.mu.Unlock()

	if a.done {
		return ErrAlreadyAcknowledged
	}
	a.c.forget(a)

	q := a.c.q
	if requeue && a.b.queues[q.name] == q {
		q.ready = append([]entry{{msg: a.e.msg, redelivered: true}}, q.ready...)
	}

	a.b.dispatchLocked(q)
	return nil
}

type channel struct {
	b         *Broker
	consumers []*consumer
	closed    bool
}

func (ch *channel) lockOpen() error {
	ch.b.mu.Lock()
	if ch.closed || ch.b.closed {
		ch.b.mu.Unlock()
		return queue.ErrClosed
	}

	return nil
}

func (ch *channel) DeclareQueue(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if name == "" {
		return fmt.Errorf("memory: empty queue name")
	}

	if err := ch.lockOpen(); err != nil {
		return err
	}
	defer ch.b.mu.Unlock()

	if _, ok := ch.b.queues[name]; !ok {
		ch.b.queues[name] = &memQueue{name: name}
	}

	return nil
}

func (ch *channel) DeclareReplyQueue(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := ch.lockOpen(); err != nil {
		return "", err
	}
	defer ch.b.mu.Unlock()

	ch.b.seq++
	name := fmt.Sprintf("amq.gen-%d", ch.b.seq)
	ch.b.queues[name] = &memQueue{name: name, owner: ch}

	return name, nil
}

func (ch *channel) DeleteQueue(ctx context.Context, name string) error {
	if err := ch.lockOpen(); err != nil {
		return err
	}
	defer ch.b.mu.Unlock()

	ch.b.deleteQueueLocked(name)
	return nil
}

func (ch *channel) Publish(ctx context.Context, name string, msg queue.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := ch.lockOpen(); err != nil {
		return err
	}
	defer ch.b.mu.Unlock()

	q, ok := ch.b.queues[name]
	if !ok {
		return nil
	}

	msg.Body = append([]byte(nil), msg.Body...)
	q.ready = append(q.ready, entry{msg: msg})
	ch.b.dispatchLocked(q)

	return nil
}

func (ch *channel) Consume(ctx context.Context, name string, prefetch int) (<-chan queue.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := ch.lockOpen(); err != nil {
		return nil, err
	}
	defer ch.b.mu.Unlock()

	q, ok := ch.b.queues[name]
	if !ok {
		return nil, fmt.Errorf("memory: consume %q: %w", name, queue.ErrNoQueue)
	}

	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	c := &consumer{
		q:        q,
		ch:       ch,
		prefetch: prefetch,
		inflight: make(map[*acker]struct{}),
		out:      make(chan queue.Delivery, prefetch),
		stop:     make(chan struct{}),
	}
	q.consumers = append(q.consumers, c)
	ch.consumers = append(ch.consumers, c)
	ch.b.dispatchLocked(q)

	go func() {
		select {
		case <-ctx.Done():
			ch.b.mu.Lock()
			ch.b.cancelConsumerLocked(c)
			ch.b.mu.Unlock()
		case <-c.stop:
		}
	}()

	return c.out, nil
}

func (ch *channel) Close() error {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()

	ch.b.closeChannelLocked(ch)
	return nil
}
