package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub is the main Hub loop. All client-set mutation happens here, so the
// map needs no lock.
func (s *DeviceServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send initial marker on connect; the client follows up with
			// REST snapshot reads.
			client.send <- &models.MStateUpdate{
				Type:      models.UpdateInitial,
				Timestamp: time.Now().UnixMilli(),
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case update, ok := <-s.broadcast:
			if !ok {
				// Server stopping; drop every client.
				for client := range s.clients {
					delete(s.clients, client)
					close(client.send)
				}
				return
			}

			for client := range s.clients {
				select {
				case client.send <- update:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Push entry points
// -----------------------------------------------------------------------------

// PushUpdate is registered as a store listener: every store write fans out to
// connected UIs as a refetch hint.
func (s *DeviceServer) PushUpdate(r models.Resource) {
	update := &models.MStateUpdate{
		Type:      models.UpdateResource,
		Resource:  r,
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case s.broadcast <- update:
	default:
		s.Logger.Debug("Broadcast queue full, dropping update for %s", r)
	}
}

// PushNotice is registered as a notifier sink.
func (s *DeviceServer) PushNotice(level, message string) {
	update := &models.MStateUpdate{
		Type:      models.UpdateNotice,
		Notice:    &models.MNotice{Level: level, Message: message},
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case s.broadcast <- update:
	default:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MStateUpdate, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}
