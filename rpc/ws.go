// ws.go streams committed-block notifications to subscribers over a
// plain gorilla/websocket connection — a lighter-weight sibling to the
// jsonrpc server's own subscribe mechanism, grounded on the pack's
// other repos' use of gorilla/websocket for push-style event feeds.
package rpc

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/blockprocessor"
	"github.com/mrsmuneton/iroha/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CommitStreamHandler upgrades an HTTP connection to a websocket and
// pushes one JSON line per committed block for as long as the
// connection stays open.
func CommitStreamHandler(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws: upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		ch := make(chan *types.Block, 64)
		listenerID := r.RemoteAddr

		env.Sumeragi.EventSwitch().AddListenerForEvent(listenerID, blockprocessor.EventCommitted, func(data events.EventData) {
			block, ok := data.(*types.Block)
			if !ok {
				return
			}
			select {
			case ch <- block:
			default:
				logger.Error("ws: subscriber too slow, dropping commit notification", "listener", listenerID)
			}
		})
		defer env.Sumeragi.EventSwitch().RemoveListener(listenerID)

		for block := range ch {
			bz, err := json.Marshal(block)
			if err != nil {
				logger.Error("ws: marshal block failed", "err", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, bz); err != nil {
				logger.Debug("ws: write failed, closing", "err", err)
				return
			}
		}
	}
}
