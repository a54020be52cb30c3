package backend

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	dialTimeout    = 10 * time.Second
)

// -----------------------------------------------------------------------------
// wsSubscription is the dialing side of the change feed: one websocket
// carrying events for every watched topic.
// -----------------------------------------------------------------------------

type wsSubscription struct {
	conn      *websocket.Conn
	events    chan models.MChangeEvent
	logger    *logger.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// -----------------------------------------------------------------------------

func dialSubscription(ctx context.Context, cfg *models.MConfig, channel string, topics []models.Resource, log *logger.Logger) (*wsSubscription, error) {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}

	u, err := url.Parse(cfg.Backend.WSURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("channel", channel)
	q.Set("topics", strings.Join(names, ","))
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	s := &wsSubscription{
		conn:   conn,
		events: make(chan models.MChangeEvent, cfg.Sync.EventBufferLen),
		logger: log,
		done:   make(chan struct{}),
	}

	go s.readPump()
	go s.pingLoop()

	log.Info("Subscribed to channel %q (%d topics)", channel, len(topics))
	return s, nil
}

// -----------------------------------------------------------------------------
// readPump - receives change events until the connection dies.
// Closing the events channel is the end-of-stream signal for the router.
// -----------------------------------------------------------------------------

func (s *wsSubscription) readPump() {
	defer func() {
		close(s.events)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var ev models.MChangeEvent
		if err := s.conn.ReadJSON(&ev); err != nil {
			select {
			case <-s.done:
				// Deliberate Close; not worth logging.
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Warning("Change feed read error: %v", err)
				}
			}
			return
		}

		if models.TopicIndex(ev.Topic) < 0 {
			s.logger.Debug("Ignoring event for unknown topic %q", ev.Topic)
			continue
		}

		select {
		case s.events <- ev:
		default:
			// Event buffer full. Dropping is safe: the debounce scheduler
			// only needs at least one event per burst to trigger a refetch.
			s.logger.Debug("Event buffer full, dropping %s/%s", ev.Topic, ev.Operation)
		}
	}
}

// -----------------------------------------------------------------------------

func (s *wsSubscription) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *wsSubscription) Events() <-chan models.MChangeEvent {
	return s.events
}

// -----------------------------------------------------------------------------

// Close terminates the subscription. Safe to call more than once.
func (s *wsSubscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	})
	return nil
}
