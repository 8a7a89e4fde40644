// queue задаёт контракт транспорта сообщений поверх брокера:
// долговечные именованные очереди, доставка at-least-once и ручное подтверждение.
//
// Основные аспекты:
//   - Broker - процессный ресурс с явным жизненным циклом (создаётся в main,
//     закрывается при остановке). Каналы дешёвые и открываются на операцию.
//   - Каждое полученное сообщение обработчик обязан либо Ack, либо Nack.
//     Неподтверждённые сообщения брокер доставит повторно (например, после падения
//     процесса), поэтому обработчики должны переживать повторное выполнение.
//   - Переподключение к брокеру не скрыто внутри вызовов: реализация может
//     переоткрыть соединение при следующем Channel, но ошибки текущей операции
//     возвращаются вызывающему как есть.
package queue

import (
	"context"
	"errors"
)

// ContentTypeJSON - тип содержимого всех сообщений сервисов.
const ContentTypeJSON = "application/json"

var (
	// ErrClosed - брокер или канал уже закрыт.
	ErrClosed = errors.New("queue: closed")
	// ErrNoQueue - публикация/подписка на необъявленную очередь.
	ErrNoQueue = errors.New("queue: queue not declared")
)

// Message - исходящее сообщение и метаданные, которые брокер переносит как есть.
type Message struct {
	Body          []byte
	ContentType   string
	CorrelationID string
	ReplyTo       string
}

// Acknowledger подтверждает или отклоняет конкретную доставку.
type Acknowledger interface {
	Ack() error
	Nack(requeue bool) error
}

// Delivery - входящее сообщение, требующее явного Ack/Nack.
type Delivery struct {
	Message
	Queue       string
	Redelivered bool
	// Tag - номер доставки, уникальный в пределах канала.
	Tag uint64

	ack Acknowledger
}

// NewDelivery собирает доставку для реализаций брокера.
func NewDelivery(queue string, msg Message, redelivered bool, ack Acknowledger) Delivery {
	return Delivery{Message: msg, Queue: queue, Redelivered: redelivered, ack: ack}
}

// Ack удаляет сообщение из очереди.
func (d Delivery) Ack() error {
	if d.ack == nil {
		return nil
	}

	return d.ack.Ack()
}

// Nack отклоняет сообщение; при requeue=true брокер доставит его повторно.
func (d Delivery) Nack(requeue bool) error {
	if d.ack == nil {
		return nil
	}

	return d.ack.Nack(requeue)
}

// Channel - логический канал поверх общего соединения с брокером.
// Канал не предназначен для конкурентного использования из разных горутин,
// за исключением чтения из канала доставок, возвращённого Consume.
type Channel interface {
	// DeclareQueue идемпотентно объявляет долговечную очередь.
	DeclareQueue(ctx context.Context, name string) error
	// DeclareReplyQueue объявляет эксклюзивную auto-delete очередь с именем,
	// выданным брокером. Очередь живёт не дольше канала.
	DeclareReplyQueue(ctx context.Context) (string, error)
	// DeleteQueue удаляет очередь (используется для временных очередей ответов).
	DeleteQueue(ctx context.Context, name string) error
	// Publish кладёт сообщение в очередь (persistent).
	Publish(ctx context.Context, queue string, msg Message) error
	// Consume подписывается на очередь с ручным подтверждением.
	// prefetch ограничивает число неподтверждённых доставок (<=0 - без лимита).
	// Канал доставок закрывается при отмене ctx или закрытии канала.
	Consume(ctx context.Context, queue string, prefetch int) (<-chan Delivery, error)
	// Close освобождает канал. Повторный вызов безопасен.
	Close() error
}

// Broker - долгоживущее соединение процесса с брокером.
type Broker interface {
	// Channel открывает новый канал на общем соединении.
	Channel(ctx context.Context) (Channel, error)
	// Close закрывает соединение. После Close любые вызовы возвращают ErrClosed.
	Close() error
}

// Publish - сокращение для разовой публикации: канал, объявление очереди, публикация.
func Publish(ctx context.Context, b Broker, queue string, msg Message) error {
	ch, err := b.Channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.DeclareQueue(ctx, queue); err != nil {
		return err
	}

	return ch.Publish(ctx, queue, msg)
}
