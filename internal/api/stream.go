package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/observability"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
	streamMaxMessage = 64 << 10
)

// streamReply is one message sent on the simulation stream.
type streamReply struct {
	Result *domain.SimulationResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// handleStream upgrades to a websocket and answers each run request message
// with one reply, in order.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		s.logger.Printf("stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	observability.StreamOpened()
	defer observability.StreamClosed()

	conn.SetReadLimit(streamMaxMessage)
	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	ctx := r.Context()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("stream read: %v", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply streamReply
		p, err := decodeRunRequest(bytes.NewReader(data))
		if err == nil {
			reply.Result, err = s.sim.RunSimulation(ctx, p)
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			reply.Error = err.Error()
		}

		if err := s.writeStream(conn, reply); err != nil {
			s.logger.Printf("stream write: %v", err)
			return
		}
	}
}

func (s *Server) writeStream(conn *websocket.Conn, reply streamReply) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(reply)
}

func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// WriteControl is safe alongside writeStream
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
