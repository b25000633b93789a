package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Dispatcher decouples the request path from the audit sink: Emit hands the
// record to a buffered channel and a single worker goroutine drains it into
// the sink. When the buffer is full the record is dropped and counted
// rather than blocking the request.
type Dispatcher struct {
	sink      Sink
	logger    *slog.Logger
	ch        chan Record
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher draining into sink.
func NewDispatcher(sink Sink, bufferSize int, logger *slog.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		ch:     make(chan Record, bufferSize),
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case record := <-d.ch:
			d.write(record)
		case <-d.done:
			// Drain whatever was buffered before shutdown.
			for {
				select {
				case record := <-d.ch:
					d.write(record)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) write(record Record) {
	if err := d.sink.Write(context.Background(), record); err != nil && d.logger != nil {
		d.logger.Error("audit sink write",
			slog.String("operation", record.OperationID),
			slog.Any("error", err))
	}
}

// Emit queues a record. Safe for concurrent use; never blocks the caller.
func (d *Dispatcher) Emit(ctx context.Context, record Record) {
	if d == nil || d.closed.Load() {
		return
	}
	select {
	case d.ch <- record:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
}

// Close stops the worker after draining buffered records.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many records were discarded due to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
