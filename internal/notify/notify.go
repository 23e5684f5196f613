// Package notify publishes budget alerts to a message broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Level grades how close a budget is to its limit
type Level string

const (
	LevelNearing  Level = "nearing"
	LevelExceeded Level = "exceeded"
)

// NearingRatio is the share of the limit at which a budget starts alerting
const NearingRatio = 0.8

// BudgetAlert is the message published when an expense pushes a budget
// towards or past its limit
type BudgetAlert struct {
	UserID    uuid.UUID `json:"userId"`
	BudgetID  uuid.UUID `json:"budgetId"`
	Category  string    `json:"category"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Spent     float64   `json:"spent"`
	Limit     float64   `json:"limit"`
	Timestamp time.Time `json:"timestamp"`
}

// Evaluate returns the alert for budget, or nil when spending is below the nearing threshold
func Evaluate(budget *models.Budget, now time.Time) *BudgetAlert {
	if budget == nil || budget.Limit <= 0 {
		return nil
	}

	var (
		level   Level
		message string
	)
	switch {
	case budget.Spent >= budget.Limit:
		level = LevelExceeded
		message = fmt.Sprintf("You have exceeded your %s budget!", budget.Category)
	case budget.Spent >= NearingRatio*budget.Limit:
		level = LevelNearing
		message = fmt.Sprintf("You are nearing your %s budget!", budget.Category)
	default:
		return nil
	}

	return &BudgetAlert{
		UserID:    budget.UserID,
		BudgetID:  budget.ID,
		Category:  budget.Category,
		Level:     level,
		Message:   message,
		Spent:     budget.Spent,
		Limit:     budget.Limit,
		Timestamp: now,
	}
}

// Publisher delivers budget alerts
type Publisher interface {
	Publish(ctx context.Context, alert BudgetAlert) error
	Close() error
}

// RabbitMQPublisher publishes alerts as persistent JSON messages on a direct exchange
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	log      *logrus.Logger
}

// NewRabbitMQPublisher dials the broker and declares the exchange, queue and binding
func NewRabbitMQPublisher(url, exchange, queue string, log *logrus.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p := &RabbitMQPublisher{conn: conn, channel: channel, exchange: exchange, queue: queue, log: log}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *RabbitMQPublisher) setup() error {
	if err := p.channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := p.channel.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Publish sends one alert to the queue
func (p *RabbitMQPublisher) Publish(ctx context.Context, alert BudgetAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    alert.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"user_id":  alert.UserID,
		"category": alert.Category,
		"level":    alert.Level,
	}).Info("Budget alert published")
	return nil
}

// Close releases the channel and connection
func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Nop drops alerts; used when AMQP_URL is not configured
type Nop struct{}

func (Nop) Publish(context.Context, BudgetAlert) error { return nil }
func (Nop) Close() error                               { return nil }
