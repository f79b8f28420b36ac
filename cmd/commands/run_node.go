package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	gometrics "github.com/rcrowley/go-metrics"
	tmos "github.com/tendermint/tendermint/libs/os"
	rpcserver "github.com/tendermint/tendermint/rpc/jsonrpc/server"

	"github.com/mrsmuneton/iroha/config"
	"github.com/mrsmuneton/iroha/metrics"
	"github.com/mrsmuneton/iroha/node"
	"github.com/mrsmuneton/iroha/rpc"
)

// NewRunNodeCmd builds the run-node command for the given node
// provider, mirroring the teacher's main.go allowing callers to swap
// in a different Provider (custom Ledger, custom Transport) without
// touching this file — the same seam tendermint's own NewRunNodeCmd
// leaves open for ABCI app authors.
func NewRunNodeCmd(nodeProvider node.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-node",
		Short: "Run the sumeragi consensus node",
		RunE: func(c *cobra.Command, args []string) error {
			return runNode(nodeProvider)
		},
	}
	return cmd
}

func runNode(nodeProvider node.Provider) error {
	n, err := nodeProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}

	if err := n.Start(); err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}
	logger.Info("started node", "nodeInfo", n.NodeInfo())

	if cfg.RPC.ListenAddress != "" {
		if err := startRPC(cfg, n); err != nil {
			return fmt.Errorf("failed to start rpc: %w", err)
		}
	}

	tmos.TrapSignal(logger, func() {
		if err := n.Stop(); err != nil {
			logger.Error("unable to stop node", "err", err)
		}
	})

	select {}
}

func startRPC(cfg *config.Config, n *node.Node) error {
	set, err := metrics.NewSet(gometrics.DefaultRegistry)
	if err != nil {
		return err
	}
	if err := set.SetMetrics("latency", n.Latency()); err != nil {
		return err
	}

	rpc.SetEnvironment(&rpc.Environment{
		Ledger:    n.Ledger(),
		Peers:     n.Peers(),
		Sumeragi:  n.Sumeragi(),
		MetricSet: set,
	})

	mux := http.NewServeMux()
	rpcLogger := logger.With("module", "rpc")
	rpcserver.RegisterRPCFuncs(mux, rpc.Routes, rpcLogger)
	mux.HandleFunc("/ws/commits", rpc.CommitStreamHandler(rpcLogger))

	rpcConfig := rpcserver.DefaultConfig()
	rpcConfig.MaxOpenConnections = cfg.RPC.MaxOpenConnections

	listener, err := rpcserver.Listen(cfg.RPC.ListenAddress, rpcConfig)
	if err != nil {
		return err
	}

	go func() {
		if err := rpcserver.Serve(listener, mux, rpcLogger, rpcConfig); err != nil {
			rpcLogger.Error("rpc server stopped", "err", err)
		}
	}()

	return nil
}
