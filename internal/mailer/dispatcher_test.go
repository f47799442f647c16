// AngelaMos | 2026
// dispatcher_test.go

package mailer

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu       sync.Mutex
	sent     []Message
	err      error
	unblock  chan struct{}
	blocking bool
}

func (s *recordingSender) Send(msg Message) error {
	if s.blocking {
		<-s.unblock
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func TestDispatcherDelivers(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 8, slog.Default())

	ok := d.Enqueue(Message{To: "jo@example.com", Subject: "hello"})
	assert.True(t, ok)

	d.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "jo@example.com", msgs[0].To)
	assert.Equal(t, "hello", msgs[0].Subject)
}

func TestDispatcherSendFailureDoesNotStopWorker(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 8, slog.Default())

	assert.True(t, d.Enqueue(Message{To: "a@example.com"}))
	assert.True(t, d.Enqueue(Message{To: "b@example.com"}))

	d.Close()

	assert.Len(t, sender.messages(), 2)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sender := &recordingSender{
		blocking: true,
		unblock:  make(chan struct{}),
	}
	d := NewDispatcher(sender, 1, slog.Default())

	// First message occupies the worker, second fills the queue.
	require.True(t, d.Enqueue(Message{To: "first@example.com"}))

	full := false
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !d.Enqueue(Message{To: "filler@example.com"}) {
			full = true
			break
		}
	}
	require.True(t, full)

	close(sender.unblock)
	d.Close()
}

func TestDispatcherCloseDrains(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 16, slog.Default())

	for range 10 {
		require.True(t, d.Enqueue(Message{To: "jo@example.com"}))
	}

	d.Close()
	assert.Len(t, sender.messages(), 10)
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 4, slog.Default())

	d.Close()
	assert.NotPanics(t, d.Close)
}
