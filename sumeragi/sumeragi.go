// Package sumeragi composes the collaborators specified in spec.md §6
// (PeerService, Crypto, Ledger, Transport, Validator) and
// the internal pipeline of §4 (Dispatcher, BlockProcessor, TimeoutManager,
// Quorum, ClientAdapter) into the single service a node starts and stops.
//
// Grounded on the teacher's consensus/reactor.go + node/node.go split:
// Sumeragi plays the role testReactor/node.Node play there, wrapping
// everything behind tendermint/libs/service.BaseService so Start/Stop
// compose the same way every other long-running component in this
// module does.
package sumeragi

import (
	"time"

	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"

	"github.com/mrsmuneton/iroha/blockprocessor"
	"github.com/mrsmuneton/iroha/clientadapter"
	"github.com/mrsmuneton/iroha/cryptoimpl"
	"github.com/mrsmuneton/iroha/dispatcher"
	"github.com/mrsmuneton/iroha/ledger"
	"github.com/mrsmuneton/iroha/peer"
	"github.com/mrsmuneton/iroha/timeout"
	"github.com/mrsmuneton/iroha/transport"
	"github.com/mrsmuneton/iroha/types"
	"github.com/mrsmuneton/iroha/validation"
)

// Config holds the tunables spec.md §6 names explicitly
// (workers, queue_size, commit_timeout_ms) plus the opt-in hardening
// from §9's open questions.
type Config struct {
	Workers           int
	QueueSize         int
	CommitTimeout     time.Duration
	StrictLeaderCheck bool
}

// DefaultConfig returns spec.md §6's stated defaults: one worker per
// hardware thread, a 1024-entry queue, a 3000ms commit timeout.
func DefaultConfig() Config {
	return Config{
		Workers:       0,
		QueueSize:     dispatcher.DefaultQueueSize,
		CommitTimeout: timeout.DefaultDuration,
	}
}

// Sumeragi is the top-level consensus-core service: it owns the
// dispatcher's worker pool and the timeout manager's timers, and is the
// Transport.Receiver a node registers with its p2p layer.
type Sumeragi struct {
	service.BaseService

	dispatcher  *dispatcher.Dispatcher
	processor   *blockprocessor.BlockProcessor
	timeouts    *timeout.Manager
	client      *clientadapter.ClientAdapter
	eventSwitch events.EventSwitch
}

var _ transport.Receiver = (*Sumeragi)(nil)

// New wires every collaborator spec.md §6 names into a running
// BlockProcessor/Dispatcher/TimeoutManager triple. t must not yet have
// a receiver registered; New registers itself as t's sole Receiver.
func New(
	cfg Config,
	validator validation.Validator,
	l ledger.Ledger,
	crypto cryptoimpl.Crypto,
	peers peer.Service,
	t transport.Transport,
	logger log.Logger,
	opts ...blockprocessor.Option,
) *Sumeragi {
	client := clientadapter.New(t, logger.With("module", "clientadapter"))
	timeouts := timeout.NewManager(client, cfg.CommitTimeout, logger.With("module", "timeout"))

	if cfg.StrictLeaderCheck {
		opts = append(opts, blockprocessor.WithStrictLeaderCheck())
	}

	eventSwitch := events.NewEventSwitch()
	processor := blockprocessor.New(validator, l, crypto, peers, client, timeouts, eventSwitch, logger.With("module", "blockprocessor"), opts...)

	d := dispatcher.New(processor, l, logger.With("module", "dispatcher"), cfg.Workers, cfg.QueueSize)

	s := &Sumeragi{
		dispatcher:  d,
		processor:   processor,
		timeouts:    timeouts,
		client:      client,
		eventSwitch: eventSwitch,
	}
	s.BaseService = *service.NewBaseService(logger, "Sumeragi", s)

	t.RegisterReceiver(s)
	return s
}

// OnPropose implements transport.Receiver by handing the block to the
// dispatcher's worker pool (§4.1).
func (s *Sumeragi) OnPropose(block *types.Block) {
	s.dispatcher.OnPropose(block)
}

// OnCommit implements transport.Receiver. It both finalizes the block
// locally and cancels any outstanding timer for it — a peer that learns
// of a commit from the network has no further use for its own fallback
// timer (§4.5: "cancel on commit observation").
func (s *Sumeragi) OnCommit(block *types.Block) {
	s.dispatcher.OnCommit(block)
	s.timeouts.Cancel(block.ID())
}

// OnStart starts the dispatcher's worker pool and the event switch
// observers (rpc, metrics) subscribe to.
func (s *Sumeragi) OnStart() error {
	if err := s.eventSwitch.Start(); err != nil {
		return err
	}
	s.dispatcher.Start()
	return nil
}

// OnStop stops the dispatcher. In-flight blocks finish and blocks still
// queued are not processed; timers
// are left running, since a timer firing after shutdown simply fails
// its Unicast and logs — harmless once the process is exiting.
func (s *Sumeragi) OnStop() {
	s.dispatcher.Stop()
	if err := s.eventSwitch.Stop(); err != nil {
		s.Logger.Error("failed trying to stop eventSwitch", "error", err)
	}
}

// EventSwitch exposes the underlying switch so external observers (rpc
// status stream, metrics) can AddListenerForEvent on
// blockprocessor.EventBroadcast/EventRelayed/EventCommitted without
// Sumeragi mediating every subscription itself.
func (s *Sumeragi) EventSwitch() events.EventSwitch {
	return s.eventSwitch
}
