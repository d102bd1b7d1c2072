package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsIdlePingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *server) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws-upgrade-failed")
		return
	}
	cl := &client{send: make(chan []byte, 16)}
	s.hub.register(cl)
	cl.sendRaw(stateMessage(s.game.State()))

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, cl.send); err != nil {
			log.Debug().Err(err).Msg("ws-write-ended")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.unregister(cl)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "request_state" {
			cl.sendRaw(stateMessage(s.game.State()))
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
