package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	queueSize   = 64
	sendTimeout = 20 * time.Second
)

// Dispatcher delivers email off the request path. Enqueue never blocks and
// never returns an error: a saturated queue drops the message with a
// warning, and send failures are logged by the worker. The primary state
// transition that triggered the send has already committed by the time the
// worker runs.
type Dispatcher struct {
	mailer Mailer
	queue  chan Email
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts the delivery worker. A nil mailer yields a
// dispatcher that drops everything silently.
func NewDispatcher(mailer Mailer) *Dispatcher {
	d := &Dispatcher{
		mailer: mailer,
		queue:  make(chan Email, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for e := range d.queue {
		if d.mailer == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.mailer.Send(ctx, e); err != nil {
			log.Error().Err(err).Str("to", e.To).Str("subject", e.Subject).Msg("email send failed")
		}
		cancel()
	}
}

// Enqueue hands an email to the worker. Best-effort only.
func (d *Dispatcher) Enqueue(e Email) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- e:
	default:
		log.Warn().Str("to", e.To).Str("subject", e.Subject).Msg("notification queue full, dropping email")
	}
}

// Close drains the queue and stops the worker. Used on shutdown and by
// tests that need deterministic delivery.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}
