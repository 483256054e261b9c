package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/id"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type recordingChannel struct {
	sent   []published
	err    error
	closed bool
}

func (r *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (r *recordingChannel) IsClosed() bool {
	return r.closed
}

func (r *recordingChannel) Close() error {
	r.closed = true
	return nil
}

type fakeConn struct{ closed bool }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "staybook.events"}

	evt := New(PlaceCreated, id.ID("usr-1"), id.ID("plc-1"), map[string]any{"title": "Cabin"})
	require.NoError(t, p.Publish(context.Background(), evt))

	require.Len(t, ch.sent, 1)
	sent := ch.sent[0]
	assert.Equal(t, "staybook.events", sent.exchange)
	assert.Equal(t, PlaceCreated, sent.key)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.NotEmpty(t, sent.msg.MessageId)

	var body Event
	require.NoError(t, json.Unmarshal(sent.msg.Body, &body))
	assert.Equal(t, sent.msg.MessageId, body.ID)
	assert.Equal(t, id.ID("plc-1"), body.Subject)
	assert.Equal(t, id.ID("usr-1"), body.Actor)
	assert.WithinDuration(t, time.Now(), body.OccurredAt, time.Minute)
}

func TestAMQPPublisher_KeepsExplicitID(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "x"}

	evt := New(BookingCreated, id.ID("usr-1"), id.ID("bkg-1"), nil)
	evt.ID = "fixed"
	require.NoError(t, p.Publish(context.Background(), evt))
	assert.Equal(t, "fixed", ch.sent[0].msg.MessageId)
}

func TestAMQPPublisher_Errors(t *testing.T) {
	ch := &recordingChannel{err: amqp.ErrClosed}
	p := &AMQPPublisher{ch: ch, exchange: "x"}

	err := p.Publish(context.Background(), New(PlaceUpdated, "", "plc-1", nil))
	assert.ErrorIs(t, err, amqp.ErrClosed)

	ch.err = nil
	require.NoError(t, p.Shutdown())
	assert.True(t, ch.closed)

	err = p.Publish(context.Background(), New(PlaceUpdated, "", "plc-1", nil))
	assert.ErrorIs(t, err, amqp.ErrClosed)

	// Second shutdown is a no-op.
	assert.NoError(t, p.Shutdown())
}

func TestAMQPPublisher_RedialsClosedChannel(t *testing.T) {
	dead := &recordingChannel{closed: true}
	oldConn := &fakeConn{}
	fresh := &recordingChannel{}
	dials := 0
	p := &AMQPPublisher{conn: oldConn, ch: dead, exchange: "x", dial: func() (io.Closer, channel, error) {
		dials++
		return &fakeConn{}, fresh, nil
	}}

	require.NoError(t, p.Publish(context.Background(), New(PlaceCreated, "", "plc-1", nil)))
	assert.Equal(t, 1, dials)
	assert.True(t, oldConn.closed)
	assert.Empty(t, dead.sent)
	assert.Len(t, fresh.sent, 1)

	require.NoError(t, p.Publish(context.Background(), New(PlaceUpdated, "", "plc-1", nil)))
	assert.Equal(t, 1, dials, "a live channel is reused")
	assert.Len(t, fresh.sent, 2)
}

func TestAMQPPublisher_RedialBackoff(t *testing.T) {
	fresh := &recordingChannel{}
	dialErr := errors.New("connection refused")
	dials := 0
	p := &AMQPPublisher{exchange: "x", dial: func() (io.Closer, channel, error) {
		dials++
		if dialErr != nil {
			return nil, nil, dialErr
		}
		return &fakeConn{}, fresh, nil
	}}

	err := p.Publish(context.Background(), New(PlaceCreated, "", "plc-1", nil))
	assert.ErrorIs(t, err, dialErr)

	err = p.Publish(context.Background(), New(PlaceCreated, "", "plc-1", nil))
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.Equal(t, 1, dials, "no redial inside the backoff window")

	// Broker back and the window over.
	dialErr = nil
	p.mu.Lock()
	p.nextDial = time.Time{}
	p.mu.Unlock()

	require.NoError(t, p.Publish(context.Background(), New(PlaceCreated, "", "plc-1", nil)))
	assert.Equal(t, 2, dials)
	assert.Len(t, fresh.sent, 1)
}

func TestAMQPPublisher_ClosedChannelWithoutDialer(t *testing.T) {
	p := &AMQPPublisher{ch: &recordingChannel{closed: true}, exchange: "x"}

	err := p.Publish(context.Background(), New(PlaceCreated, "", "plc-1", nil))
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.Nil(t, p.ch)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), New(PlaceCreated, "", "plc-1", nil)))
}
