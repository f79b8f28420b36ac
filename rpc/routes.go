package rpc

import rpc "github.com/tendermint/tendermint/rpc/jsonrpc/server"

// Routes is the jsonrpc server's method table, the same
// name->*rpc.RPCFunc map shape the teacher's rpc/routes.go registers
// with tendermint/rpc/jsonrpc/server.
var Routes = map[string]*rpc.RPCFunc{
	"status":       rpc.NewRPCFunc(Status, ""),
	"is_committed": rpc.NewRPCFunc(IsCommitted, "block_id"),
	"metrics":      rpc.NewRPCFunc(JSONMetrics, "label"),
}
