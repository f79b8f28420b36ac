// Package dispatcher implements §4.1: the inbound handler registered
// with Transport, the O(1) already-committed check, and the bounded
// worker pool that owns every PROPOSE block for the duration of its
// processing.
//
// Modeled abstractly per §9's redesign note on the original's
// std::bind/thread-pool mechanics: "submit an owned task to a bounded
// worker pool with rejection-on-full semantics," without preserving any
// callback-chain plumbing.
package dispatcher

import (
	"runtime"
	"sync"

	"github.com/tendermint/tendermint/libs/log"
	gometrics "github.com/rcrowley/go-metrics"

	"github.com/mrsmuneton/iroha/ledger"
	"github.com/mrsmuneton/iroha/types"
)

// DefaultQueueSize is the bounded task queue capacity (§6,
// queue_size default 1024).
const DefaultQueueSize = 1024

// Processor runs the BlockProcessor state machine to completion for one
// block. It is invoked on a pool worker, never on the transport
// callback goroutine (§5).
type Processor interface {
	Process(block *types.Block)
}

// Dispatcher receives inbound PROPOSE blocks from Transport and submits
// them to a bounded worker pool; it receives inbound COMMIT blocks and
// commits them to the Ledger directly, with no worker pool involved —
// committing is not a consensus decision, just bookkeeping (§4.7, §6).
type Dispatcher struct {
	queueSize int
	workers   int

	processor Processor
	ledger    ledger.Ledger
	logger    log.Logger

	tasks chan *types.Block
	wg    sync.WaitGroup
	quit  chan struct{}

	queued    gometrics.Counter
	rejected  gometrics.Counter
	dropped   gometrics.Counter
	committed gometrics.Counter
}

// Option configures optional Dispatcher behavior.
type Option func(*Dispatcher)

// WithMetricsRegistry registers the dispatcher's counters under r
// instead of the default go-metrics registry.
func WithMetricsRegistry(r gometrics.Registry) Option {
	return func(d *Dispatcher) {
		d.queued = gometrics.GetOrRegisterCounter("sumeragi.dispatcher.queued", r)
		d.rejected = gometrics.GetOrRegisterCounter("sumeragi.dispatcher.rejected", r)
		d.dropped = gometrics.GetOrRegisterCounter("sumeragi.dispatcher.dropped_committed", r)
		d.committed = gometrics.GetOrRegisterCounter("sumeragi.dispatcher.committed", r)
	}
}

// New builds a Dispatcher. workers=0 means one worker per hardware
// thread (§6); queueSize<=0 falls back to DefaultQueueSize.
func New(processor Processor, l ledger.Ledger, logger log.Logger, workers, queueSize int, opts ...Option) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	d := &Dispatcher{
		queueSize: queueSize,
		workers:   workers,
		processor: processor,
		ledger:    l,
		logger:    logger,
		tasks:     make(chan *types.Block, queueSize),
		quit:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}
	if d.queued == nil {
		WithMetricsRegistry(gometrics.DefaultRegistry)(d)
	}

	return d
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop signals the workers to exit and waits for them. A task already
// running is allowed to run to completion (§5: "no per-task
// cancellation beyond timer teardown"); blocks still waiting in the
// queue are not processed.
func (d *Dispatcher) Stop() {
	close(d.quit)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		case block := <-d.tasks:
			d.processor.Process(block)
		}
	}
}

// OnPropose implements transport.Receiver. It runs on the transport's
// own goroutine and must return quickly: only the committed-check and a
// non-blocking enqueue happen here (§4.1, §5).
func (d *Dispatcher) OnPropose(block *types.Block) {
	if d.ledger.IsCommitted(block.ID()) {
		d.logger.Debug("dispatcher: dropping already-committed block", "block", block.ID())
		return
	}

	select {
	case d.tasks <- block:
		d.queued.Inc(1)
	default:
		d.rejected.Inc(1)
		d.logger.Error("dispatcher: task queue full, rejecting block", "block", block.ID())
	}
}

// OnCommit implements transport.Receiver. Receiving COMMIT never enters
// the worker pool — it is a direct instruction to finalize the block
// locally (§4.7, §6).
func (d *Dispatcher) OnCommit(block *types.Block) {
	if d.ledger.IsCommitted(block.ID()) {
		d.dropped.Inc(1)
		return
	}
	if err := d.ledger.Commit(block); err != nil {
		d.logger.Error("dispatcher: commit failed", "err", err, "block", block.ID())
		return
	}
	d.committed.Inc(1)
}
