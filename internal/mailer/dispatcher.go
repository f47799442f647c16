// AngelaMos | 2026
// dispatcher.go

package mailer

import (
	"log/slog"
	"sync"
)

// Dispatcher decouples request handling from SMTP latency. Enqueue never
// blocks: when the queue is full the message is dropped and logged, which is
// acceptable because every email here is advisory.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	logger *slog.Logger
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func NewDispatcher(sender Sender, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize < 1 {
		queueSize = 64
	}

	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Message, queueSize),
		logger: logger,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for msg := range d.queue {
		if err := d.sender.Send(msg); err != nil {
			d.logger.Warn("email delivery failed",
				slog.String("to", msg.To),
				slog.String("subject", msg.Subject),
				slog.Any("error", err),
			)
		}
	}
}

// Enqueue hands a message to the background worker. Returns false when the
// queue is full and the message was dropped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("email queue full, message dropped",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
		)
		return false
	}
}

// Close drains whatever is already queued, then stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
