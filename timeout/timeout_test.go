package timeout

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/chainposition"
	"github.com/mrsmuneton/iroha/types"
)

type fakeRelayer struct {
	mu        sync.Mutex
	unicasts  []int
	unicastCh chan int
}

func newFakeRelayer() *fakeRelayer {
	return &fakeRelayer{unicastCh: make(chan int, 8)}
}

func (f *fakeRelayer) Unicast(block *types.Block, position int) error {
	f.mu.Lock()
	f.unicasts = append(f.unicasts, position)
	f.mu.Unlock()
	f.unicastCh <- position
	return nil
}

func TestArm_FiresPanicAfterDuration(t *testing.T) {
	relayer := newFakeRelayer()
	m := NewManager(relayer, 10*time.Millisecond, log.NewNopLogger())

	block := types.NewBlock([]byte("tx"))
	picker := chainposition.New(4, 2)
	m.Arm(block, picker)

	select {
	case pos := <-relayer.unicastCh:
		assert.Equal(t, 2, pos)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for panic relay")
	}
}

func TestCancel_PreventsFire(t *testing.T) {
	relayer := newFakeRelayer()
	m := NewManager(relayer, 20*time.Millisecond, log.NewNopLogger())

	block := types.NewBlock([]byte("tx"))
	m.Arm(block, chainposition.New(4, 2))
	m.Cancel(block.ID())

	select {
	case pos := <-relayer.unicastCh:
		t.Fatalf("unexpected fire at position %d after cancel", pos)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestCancel_NoOpWhenNoHandle(t *testing.T) {
	relayer := newFakeRelayer()
	m := NewManager(relayer, time.Second, log.NewNopLogger())
	require.NotPanics(t, func() { m.Cancel("does-not-exist") })
}

func TestArm_RearmReplacesPreviousTimer(t *testing.T) {
	relayer := newFakeRelayer()
	m := NewManager(relayer, 200*time.Millisecond, log.NewNopLogger())

	block := types.NewBlock([]byte("tx"))
	m.Arm(block, chainposition.New(4, 2))
	m.Arm(block, chainposition.New(4, 2))

	select {
	case <-relayer.unicastCh:
		t.Fatal("first arm's timer must have been cancelled by the second Arm")
	case <-time.After(60 * time.Millisecond):
	}

	select {
	case pos := <-relayer.unicastCh:
		assert.Equal(t, 2, pos)
	case <-time.After(time.Second):
		t.Fatal("second arm's timer never fired")
	}
}

func TestPanic_ChainExhaustedDropsHandleWithoutRelay(t *testing.T) {
	relayer := newFakeRelayer()
	m := NewManager(relayer, 10*time.Millisecond, log.NewNopLogger())

	block := types.NewBlock([]byte("tx"))
	// proxyTailStart = n means the very first Next() exhausts the chain.
	m.Arm(block, chainposition.New(4, 4))

	select {
	case pos := <-relayer.unicastCh:
		t.Fatalf("unexpected relay to position %d on an exhausted chain", pos)
	case <-time.After(80 * time.Millisecond):
	}
}
