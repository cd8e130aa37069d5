package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
)

type subscription struct {
	conn    *websocket.Conn
	channel string
}

// Hub fans published game events out to dashboard connections, one
// subscription per channel. Clients subscribe by sending
// {"channel": "...", "event": "subscribe"} frames.
type Hub struct {
	channels    map[string]map[*websocket.Conn]bool
	broadcast   chan event.Message
	subscribe   chan subscription
	unsubscribe chan *websocket.Conn
	mu          sync.RWMutex
	log         *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		channels:    make(map[string]map[*websocket.Conn]bool),
		broadcast:   make(chan event.Message, 64),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan *websocket.Conn),
		log:         log,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Publish implements event.Publisher. Never blocks the game loops: when the
// hub is saturated the message is dropped and the next poll catches up.
func (hub *Hub) Publish(msg event.Message) error {
	select {
	case hub.broadcast <- msg:
	default:
		hub.log.Warn("ws broadcast queue full, dropping event",
			sl.String("channel", msg.Channel), sl.String("event", msg.Event))
	}

	return nil
}

func (hub *Hub) run() {
	for {
		select {
		case sub := <-hub.subscribe:
			if hub.channels[sub.channel] == nil {
				hub.channels[sub.channel] = make(map[*websocket.Conn]bool)
			}
			hub.channels[sub.channel][sub.conn] = true
		case conn := <-hub.unsubscribe:
			for _, receivers := range hub.channels {
				delete(receivers, conn)
			}
		case msg := <-hub.broadcast:
			receivers, ok := hub.channels[msg.Channel]
			if !ok {
				continue
			}

			data, err := json.Marshal(msg)
			if err != nil {
				hub.log.Error("failed to marshal message", sl.Err(err))

				continue
			}

			for conn := range receivers {
				if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
					hub.log.Error("failed to write message", sl.Err(err))
				}
			}
		}
	}
}

func (hub *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error("failed to upgrade connection", sl.Err(err))

		return
	}

	defer func() {
		hub.unsubscribe <- conn

		if err = conn.Close(); err != nil {
			hub.log.Error("failed to close connection", sl.Err(err))
		}
	}()

	for {
		var msg event.Message

		_, p, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if err = json.Unmarshal(p, &msg); err != nil {
			hub.log.Error("failed to unmarshal message", sl.Err(err))

			continue
		}

		if msg.Event == "subscribe" && msg.Channel != "" {
			hub.subscribe <- subscription{conn: conn, channel: msg.Channel}
		}
	}
}

func (hub *Hub) RunServer() {
	go hub.run()
}
