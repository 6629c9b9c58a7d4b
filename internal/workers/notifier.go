package workers

import (
	"sync"

	"meca_backend/internal/email"
	"meca_backend/internal/logger"
)

// Notifier is the outbound notification queue. Domain services enqueue;
// delivery happens off the request thread and is strictly best-effort: a
// slow or failing mail provider never adds latency to a state-changing call
// and never rolls one back.
type Notifier interface {
	Enqueue(msg *email.Message)
	Close()
}

type dispatcher struct {
	provider email.Provider
	queue    chan *email.Message
	wg       sync.WaitGroup
	once     sync.Once

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts the single delivery goroutine.
func NewDispatcher(provider email.Provider, queueSize int) Notifier {
	if queueSize <= 0 {
		queueSize = 256
	}

	d := &dispatcher{
		provider: provider,
		queue:    make(chan *email.Message, queueSize),
	}

	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue never blocks. A full queue and a stopped dispatcher both
// drop-and-log, which is the contract for best-effort notifications. The
// closed check holds the mutex across the send so Close cannot close the
// channel between the check and the send.
func (d *dispatcher) Enqueue(msg *email.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		logger.Warn("notification dispatcher stopped, dropping message",
			"to", msg.To, "subject", msg.Subject)
		return
	}
	select {
	case d.queue <- msg:
	default:
		logger.Warn("notification queue full, dropping message",
			"to", msg.To, "subject", msg.Subject)
	}
}

// Close stops accepting messages and drains the queue.
func (d *dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		if err := d.provider.Send(msg); err != nil {
			logger.Error("notification delivery failed",
				"to", msg.To, "subject", msg.Subject, "error", err.Error())
		}
	}
}

// NopNotifier discards everything; used when e-mail is not configured.
type NopNotifier struct{}

func (NopNotifier) Enqueue(msg *email.Message) {
	logger.Debug("notification discarded (no provider configured)",
		"to", msg.To, "subject", msg.Subject)
}

func (NopNotifier) Close() {}
