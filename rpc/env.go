package rpc

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/mrsmuneton/iroha/ledger"
	"github.com/mrsmuneton/iroha/metrics"
	"github.com/mrsmuneton/iroha/peer"
	"github.com/mrsmuneton/iroha/sumeragi"
)

var (
	env  *Environment
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Environment is the set of collaborators the rpc handlers read from.
// Grounded on the teacher's rpc/env.go (package-level env set once at
// startup via SetEnvironment), with Mempool/Consensus/Store swapped for
// this module's own Ledger/PeerService/Sumeragi.
type Environment struct {
	Ledger   ledger.Ledger
	Peers    peer.Service
	Sumeragi *sumeragi.Sumeragi

	MetricSet *metrics.Set
}

// SetEnvironment installs e as the environment every rpc handler reads
// from. Must be called once, before the jsonrpc server starts routing
// requests to Routes.
func SetEnvironment(e *Environment) {
	env = e
}
