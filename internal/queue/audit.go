package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditMessage is the broker payload recorded for every successful
// notification fetch.
type AuditMessage struct {
	UserID            string `json:"userId"`
	UserRole          string `json:"userRole"`
	API               string `json:"api"`
	Method            string `json:"httpMethod"`
	ResourceServerURL string `json:"resourceServerUrl"`
	ResponseSize      int    `json:"responseSize"`
	EpochTime         int64  `json:"epochTime"`
}

func (m AuditMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("userId is required")
	}
	if strings.TrimSpace(m.API) == "" {
		return fmt.Errorf("api is required")
	}
	if strings.TrimSpace(m.Method) == "" {
		return fmt.Errorf("httpMethod is required")
	}
	return nil
}

// RabbitMQAuditPublisher publishes audit messages to the auditing
// exchange.
type RabbitMQAuditPublisher struct {
	client *RabbitMQ
}

func NewRabbitMQAuditPublisher(client *RabbitMQ) *RabbitMQAuditPublisher {
	return &RabbitMQAuditPublisher{client: client}
}

func (p *RabbitMQAuditPublisher) Publish(ctx context.Context, msg AuditMessage) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("audit publisher is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid audit message: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal audit message: %w", err)
	}

	ch, err := p.client.channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}

	if err := ch.PublishWithContext(ctx, auditExchangeName, auditRoutingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish audit message: %w", err)
	}

	return nil
}

func (p *RabbitMQAuditPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
