// Package timeout implements the TimeoutManager (§4.5): per-block
// commit timers that drive the panic/fallback liveness mechanism.
//
// §9's redesign note models the original's timer-callback-captures-block
// pattern as "a registry {block_id → cancelable_handle}"; Manager below
// is exactly that registry, backed by tendermint/libs/cmap the way the
// teacher's reactor.go keeps its peer and forward maps.
package timeout

import (
	"sync"
	"time"

	"github.com/tendermint/tendermint/libs/cmap"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/chainposition"
	"github.com/mrsmuneton/iroha/types"
)

// DefaultDuration is the commit timeout default (§6 Configuration,
// commit_timeout_ms: 3000).
const DefaultDuration = 3000 * time.Millisecond

// Relayer is the subset of ClientAdapter the manager needs to re-issue
// a block on panic.
type Relayer interface {
	Unicast(block *types.Block, position int) error
}

type handle struct {
	mtx       sync.Mutex
	timer     *time.Timer
	cancelled bool
	block     *types.Block
	picker    *chainposition.Picker
}

// Manager arms, cancels, and fires commit timers. One Manager serves the
// whole node; handles are keyed by block ID so concurrent blocks never
// interfere (§5: "concurrent arm/cancel must be atomic per block-id").
type Manager struct {
	relayer  Relayer
	duration time.Duration
	logger   log.Logger

	handles *cmap.CMap // block ID -> *handle
}

// NewManager constructs a Manager that relays through relayer and uses
// duration as the default commit timeout.
func NewManager(relayer Relayer, duration time.Duration, logger log.Logger) *Manager {
	return &Manager{
		relayer:  relayer,
		duration: duration,
		logger:   logger,
		handles:  cmap.NewCMap(),
	}
}

// Arm schedules panic(block) to fire after the manager's default
// duration unless cancelled, consulting picker for the next relay
// target on every fallback hop (§4.5). Any previous handle for the same
// block ID is cancelled first, so a block never has two live timers.
func (m *Manager) Arm(block *types.Block, picker *chainposition.Picker) {
	id := block.ID()
	m.Cancel(id)

	h := &handle{block: block, picker: picker}
	h.timer = time.AfterFunc(m.duration, func() { m.fire(id, h) })
	m.handles.Set(id, h)
}

// Cancel cancels the outstanding handle for blockID, if any (§4.5: "on
// commit observation or block supersession, cancel the outstanding
// handle"). Safe to call when no handle exists.
func (m *Manager) Cancel(blockID string) {
	v := m.handles.Get(blockID)
	if v == nil {
		return
	}
	h := v.(*handle)

	h.mtx.Lock()
	h.cancelled = true
	h.timer.Stop()
	h.mtx.Unlock()

	m.handles.Delete(blockID)
}

func (m *Manager) fire(id string, h *handle) {
	h.mtx.Lock()
	if h.cancelled {
		h.mtx.Unlock()
		return
	}
	h.mtx.Unlock()

	m.panic(h)
}

// panic implements §4.5's fallback step: extend set A by one hop and
// re-issue the unchanged block, or give up locally if the chain is
// exhausted.
func (m *Manager) panic(h *handle) {
	next := h.picker.Next()
	if next == chainposition.NoTail {
		m.logger.Info("panic: chain exhausted, deferring to upstream peers", "block", h.block.ID())
		m.handles.Delete(h.block.ID())
		return
	}

	if err := m.relayer.Unicast(h.block, next); err != nil {
		m.logger.Error("panic: unicast to fallback tail failed", "err", err, "block", h.block.ID(), "tail", next)
	} else {
		m.logger.Info("panic: fallback relay", "block", h.block.ID(), "tail", next)
	}

	h.mtx.Lock()
	h.timer = time.AfterFunc(m.duration, func() { m.fire(h.block.ID(), h) })
	h.mtx.Unlock()
	m.handles.Set(h.block.ID(), h)
}
