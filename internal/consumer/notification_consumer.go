package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nthoangDev/event-management/internal/models"
	"github.com/nthoangDev/event-management/internal/repository"
	"github.com/nthoangDev/event-management/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationConsumer turns ticket.booked events into Notification rows.
// It is the decoupled observer of the booking transition: confirmation
// delivery never runs inline with the payment transaction.
type NotificationConsumer struct {
	repo repository.NotificationRepository
}

func NewNotificationConsumer(repo repository.NotificationRepository) *NotificationConsumer {
	return &NotificationConsumer{repo: repo}
}

func (nc *NotificationConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			nc.handleMessage(msg)
		}
		log.Println("[NotificationConsumer] channel closed, stopping consumer")
	}()
}

func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	if msg.RoutingKey != "ticket.booked" {
		msg.Ack(false)
		return
	}

	var evt service.TicketBooked
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		log.Printf("[NotificationConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	n := &models.Notification{
		UserID:  evt.UserID,
		Message: fmt.Sprintf("Your booking for event %d is confirmed. Redemption code: %s", evt.EventID, evt.RedemptionCode),
	}
	if err := nc.repo.Create(context.Background(), n); err != nil {
		log.Printf("[NotificationConsumer] failed to store notification for ticket %s: %v", evt.TicketID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[NotificationConsumer] booking confirmed for ticket %s, user %s", evt.TicketID, evt.UserID)
	msg.Ack(false)
}
