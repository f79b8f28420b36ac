package dispatcher

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/go-kit/kit/log/term"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/types"
)

// dispatcherLogger colors each line by the first byte of its "block" key,
// the way mempool/reactor_test.go colors by "validator".
func dispatcherLogger() log.Logger {
	return log.TestingLoggerWithColorFn(func(keyvals ...interface{}) term.FgBgColor {
		for i := 0; i < len(keyvals)-1; i += 2 {
			if keyvals[i] == "block" {
				if s, ok := keyvals[i+1].(string); ok && len(s) > 0 {
					return term.FgBgColor{Fg: term.Color(s[0]%16 + 1)}
				}
			}
		}
		return term.FgBgColor{}
	})
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []*types.Block
	done      chan struct{}
}

func newFakeProcessor(expect int) *fakeProcessor {
	return &fakeProcessor{done: make(chan struct{}, expect)}
}

func (f *fakeProcessor) Process(block *types.Block) {
	f.mu.Lock()
	f.processed = append(f.processed, block)
	f.mu.Unlock()
	f.done <- struct{}{}
}

type fakeLedger struct {
	mu        sync.Mutex
	committed map[string]bool
	commitErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{committed: map[string]bool{}}
}

func (f *fakeLedger) AppendTentative(block *types.Block) ([]byte, error) { return nil, nil }

func (f *fakeLedger) IsCommitted(blockID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.committed[blockID]
}

func (f *fakeLedger) Commit(block *types.Block) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.mu.Lock()
	f.committed[block.ID()] = true
	f.mu.Unlock()
	return nil
}

func TestOnPropose_EnqueuesAndProcesses(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()

	l := newFakeLedger()
	p := newFakeProcessor(1)
	d := New(p, l, dispatcherLogger(), 1, 4, WithMetricsRegistry(gometrics.NewRegistry()))
	d.Start()
	defer d.Stop()

	block := types.NewBlock([]byte("tx"))
	d.OnPropose(block)

	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatal("block was never processed")
	}

	require.Len(t, p.processed, 1)
	assert.Equal(t, block.ID(), p.processed[0].ID())
}

func TestOnPropose_DropsAlreadyCommittedBlock(t *testing.T) {
	l := newFakeLedger()
	p := newFakeProcessor(0)
	d := New(p, l, dispatcherLogger(), 1, 4, WithMetricsRegistry(gometrics.NewRegistry()))
	d.Start()
	defer d.Stop()

	block := types.NewBlock([]byte("tx"))
	l.committed[block.ID()] = true
	d.OnPropose(block)

	select {
	case <-p.done:
		t.Fatal("already-committed block must never reach the processor")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOnPropose_RejectsWhenQueueFull(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()

	l := newFakeLedger()
	// blockingProcessor stalls the single worker on the first task, so
	// the queue (capacity 1) fills behind it.
	bp := &blockingProcessor{started: make(chan struct{})}
	d := New(bp, l, dispatcherLogger(), 1, 1, WithMetricsRegistry(gometrics.NewRegistry()))
	d.Start()
	defer d.Stop()

	d.OnPropose(types.NewBlock([]byte("a")))
	select {
	case <-bp.started:
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the first block")
	}
	d.OnPropose(types.NewBlock([]byte("b")))
	d.OnPropose(types.NewBlock([]byte("c")))

	assert.Equal(t, int64(1), d.rejected.Count())
}

type blockingProcessor struct {
	once    sync.Once
	started chan struct{}
}

func (b *blockingProcessor) Process(block *types.Block) {
	b.once.Do(func() {
		close(b.started)
		time.Sleep(200 * time.Millisecond)
	})
}

func TestOnCommit_CommitsUncommittedBlock(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()

	l := newFakeLedger()
	d := New(newFakeProcessor(0), l, dispatcherLogger(), 1, 4, WithMetricsRegistry(gometrics.NewRegistry()))

	block := types.NewBlock([]byte("tx"))
	d.OnCommit(block)

	assert.True(t, l.IsCommitted(block.ID()))
	assert.Equal(t, int64(1), d.committed.Count())
}

func TestOnCommit_DropsAlreadyCommittedBlock(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()

	l := newFakeLedger()
	d := New(newFakeProcessor(0), l, dispatcherLogger(), 1, 4, WithMetricsRegistry(gometrics.NewRegistry()))

	block := types.NewBlock([]byte("tx"))
	l.committed[block.ID()] = true
	d.OnCommit(block)

	assert.Equal(t, int64(1), d.dropped.Count())
}

func TestOnCommit_LogsAndSkipsOnCommitFailure(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()

	l := newFakeLedger()
	l.commitErr = errors.New("disk full")
	d := New(newFakeProcessor(0), l, dispatcherLogger(), 1, 4, WithMetricsRegistry(gometrics.NewRegistry()))

	block := types.NewBlock([]byte("tx"))
	d.OnCommit(block)

	assert.Equal(t, int64(0), d.committed.Count())
	assert.False(t, l.IsCommitted(block.ID()))
}
