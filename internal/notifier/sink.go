package notifier

import (
	"context"
	"log"
	"sync"

	"SignalSentinel/internal/model"
)

// DefaultSinkQueue is the default number of pending alerts an AlertSink buffers.
const DefaultSinkQueue = 16

// Sender delivers a formatted message.
type Sender interface {
	Send(text string) error
}

// AlertSink forwards qualifying search results to a Sender from its own
// goroutine. Consume never blocks; results arriving while the queue is full
// are dropped and counted.
type AlertSink struct {
	sender Sender
	symbol string
	queue  chan model.Result

	mu      sync.Mutex
	closed  bool
	dropped int
	sent    int

	done chan struct{}
}

// NewAlertSink starts the delivery goroutine. Call Close to flush it.
func NewAlertSink(sender Sender, symbol string, size int) *AlertSink {
	if size <= 0 {
		size = DefaultSinkQueue
	}
	s := &AlertSink{
		sender: sender,
		symbol: symbol,
		queue:  make(chan model.Result, size),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *AlertSink) loop() {
	defer close(s.done)
	for res := range s.queue {
		if err := s.sender.Send(FormatSignalAlert(s.symbol, res)); err != nil {
			log.Printf("[ERROR] send search alert: %v", err)
			continue
		}
		s.mu.Lock()
		s.sent++
		s.mu.Unlock()
	}
}

// Consume enqueues res for delivery.
func (s *AlertSink) Consume(ctx context.Context, res model.Result) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- res:
	default:
		s.dropped++
	}
}

// Close stops accepting results and waits for queued alerts to be delivered.
func (s *AlertSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
	if d := s.Dropped(); d > 0 {
		log.Printf("[WARN] alert sink dropped %d results", d)
	}
}

// Dropped returns how many results were discarded because the queue was full.
func (s *AlertSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Sent returns how many alerts were delivered.
func (s *AlertSink) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}
