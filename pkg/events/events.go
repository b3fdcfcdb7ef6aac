// Package events publishes schedule lifecycle events to RabbitMQ
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// TypeScheduleGenerated is published after a result document is saved
const TypeScheduleGenerated = "schedule.generated"

// DefaultQueue is the durable queue events are published to
const DefaultQueue = "schedule_events"

// ScheduleGenerated is the body of a TypeScheduleGenerated event
type ScheduleGenerated struct {
	Type        string       `json:"type"`
	ResultID    string       `json:"resultId"`
	Hotel       string       `json:"hotel"`
	WeekStart   string       `json:"weekStart"`
	Status      model.Status `json:"status"`
	Unfilled    int          `json:"unfilled"`
	Notes       []model.Note `json:"notes"`
	ManagerID   int64        `json:"managerId"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// NewScheduleGenerated builds the event of a saved document
func NewScheduleGenerated(manager *model.Manager, doc *model.ResultDocument) ScheduleGenerated {
	ev := ScheduleGenerated{
		Type:        TypeScheduleGenerated,
		ResultID:    doc.ID,
		Hotel:       doc.HotelName,
		WeekStart:   doc.RelevantWeekStartDate,
		Status:      doc.Status,
		Unfilled:    len(doc.Notes),
		Notes:       doc.Notes,
		GeneratedAt: doc.GeneratedAt,
	}
	if manager != nil {
		ev.ManagerID = int64(manager.ID)
	}
	return ev
}

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends events to a queue on the default exchange
type Publisher struct {
	conn    *amqp.Connection
	ch      channel
	queue   string
	timeout time.Duration
	logger  *zap.Logger
}

// Dial connects to RabbitMQ and declares the durable queue
func Dial(url, queue string, timeout time.Duration, logger *zap.Logger) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	p := newPublisher(ch, queue, timeout, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue string, timeout time.Duration, logger *zap.Logger) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{ch: ch, queue: queue, timeout: timeout, logger: logger}
}

// Name identifies the publisher as a result hook
func (p *Publisher) Name() string { return "events" }

// HandleResult publishes a TypeScheduleGenerated event for a saved document
func (p *Publisher) HandleResult(ctx context.Context, manager *model.Manager, doc *model.ResultDocument) error {
	return p.Publish(ctx, NewScheduleGenerated(manager, doc))
}

// Publish sends one event as a persistent JSON message
func (p *Publisher) Publish(ctx context.Context, ev ScheduleGenerated) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		true,    // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         ev.Type,
			MessageId:    ev.ResultID,
			Timestamp:    ev.GeneratedAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}

	p.logger.Debug("Published event", zap.String("type", ev.Type), zap.String("hotel", ev.Hotel), zap.String("queue", p.queue))
	return nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}
