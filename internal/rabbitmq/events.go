package rabbitmq

import "github.com/streadway/amqp"

// EventPublisher публикует события заявок в exchange docvault.requests.
type EventPublisher struct {
	ch *amqp.Channel
}

// NewEventPublisher создает новый EventPublisher.
func NewEventPublisher(ch *amqp.Channel) *EventPublisher {
	return &EventPublisher{ch: ch}
}

// Publish отправляет событие с ключом маршрутизации очереди уведомлений.
func (p *EventPublisher) Publish(event any) error {
	return PublishMessage(p.ch, RequestsExchange, "request", event)
}
