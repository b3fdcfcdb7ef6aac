package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	calls  []publishCall
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, publishCall{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func partialDoc() *model.ResultDocument {
	return &model.ResultDocument{
		ID:                    "6f1c2b1e-0000-4000-8000-000000000001",
		HotelName:             "Grand",
		GeneratedAt:           time.Date(2025, 5, 28, 9, 30, 0, 0, time.UTC),
		Status:                model.StatusPartial,
		Notes:                 []model.Note{{Shift: "Friday Evening", Position: model.SupervisorPosition, Weapon: true}},
		RelevantWeekStartDate: "2025-06-01",
	}
}

func TestHandleResult_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, DefaultQueue, time.Second, zap.NewNop())

	err := p.HandleResult(context.Background(), &model.Manager{ID: 4, Workplace: "Grand"}, partialDoc())
	require.NoError(t, err)
	require.Len(t, ch.calls, 1)

	call := ch.calls[0]
	assert.Equal(t, "", call.exchange)
	assert.Equal(t, "schedule_events", call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, TypeScheduleGenerated, call.msg.Type)

	var ev ScheduleGenerated
	require.NoError(t, json.Unmarshal(call.msg.Body, &ev))
	assert.Equal(t, "Grand", ev.Hotel)
	assert.Equal(t, "2025-06-01", ev.WeekStart)
	assert.Equal(t, model.StatusPartial, ev.Status)
	assert.Equal(t, 1, ev.Unfilled)
	assert.Equal(t, int64(4), ev.ManagerID)
}

func TestHandleResult_PublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := newPublisher(ch, DefaultQueue, time.Second, zap.NewNop())

	err := p.HandleResult(context.Background(), nil, partialDoc())
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, DefaultQueue, 0, zap.NewNop())
	assert.Equal(t, 10*time.Second, p.timeout)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
