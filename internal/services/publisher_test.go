package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysphere/internal/amqp"
	"mysphere/internal/core"
	"mysphere/internal/period"
)

// gatedPublisher holds every publish until release is closed.
type gatedPublisher struct {
	recordingPublisher
	release chan struct{}
}

func (p *gatedPublisher) PublishRecordEvent(ctx context.Context, e *amqp.RecordEvent) error {
	<-p.release
	return p.recordingPublisher.PublishRecordEvent(ctx, e)
}

func TestAsyncPublisher_WritesDoNotWaitForBroker(t *testing.T) {
	ctx := context.Background()
	broker := &gatedPublisher{release: make(chan struct{})}
	pub := NewAsyncPublisher(broker, 8, time.Second)
	svc := NewExpenseService(newRepo(t).Expenses, Deps{Clock: period.FixedClock(testNow), Publisher: pub})

	created, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, core.ExpenseInput{Amount: ptr(10.0)})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, broker.ops(), "nothing reaches the broker while it is stalled")

	close(broker.release)
	require.NoError(t, pub.Close(ctx))
	assert.Equal(t, []amqp.Operation{amqp.OpCreated, amqp.OpUpdated, amqp.OpDeleted}, broker.ops())

	err = pub.PublishRecordEvent(ctx, amqp.NewRecordEvent(core.KindExpense, created.ID, amqp.OpCreated))
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestAsyncPublisher_QueueFull(t *testing.T) {
	ctx := context.Background()
	broker := &gatedPublisher{release: make(chan struct{})}
	pub := NewAsyncPublisher(broker, 1, time.Second)

	event := amqp.NewRecordEvent(core.KindWholesale, core.NewID(), amqp.OpCreated)
	require.NoError(t, pub.PublishRecordEvent(ctx, event))
	// One event may be held by the stalled broker and one sits in the buffer.
	_ = pub.PublishRecordEvent(ctx, event)
	assert.ErrorIs(t, pub.PublishRecordEvent(ctx, event), ErrPublishQueueFull)

	close(broker.release)
	require.NoError(t, pub.Close(ctx))
}

func TestAsyncPublisher_FailuresStayOffTheWritePath(t *testing.T) {
	ctx := context.Background()
	broker := &recordingPublisher{err: errors.New("broker down")}
	pub := NewAsyncPublisher(broker, 4, time.Second)

	require.NoError(t, pub.PublishRecordEvent(ctx, amqp.NewRecordEvent(core.KindBodyWeight, core.NewID(), amqp.OpDeleted)))
	require.NoError(t, pub.Close(ctx))
	assert.Len(t, broker.ops(), 1)
}

func TestAsyncPublisher_CloseHonoursContext(t *testing.T) {
	broker := &gatedPublisher{release: make(chan struct{})}
	pub := NewAsyncPublisher(broker, 4, time.Second)
	require.NoError(t, pub.PublishRecordEvent(context.Background(), amqp.NewRecordEvent(core.KindExpense, core.NewID(), amqp.OpCreated)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Close(ctx), context.Canceled)

	close(broker.release)
	require.NoError(t, pub.Close(context.Background()))
}
