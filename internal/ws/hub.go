// Package ws fans simulator events out to streaming subscribers. The
// transport (WebSocket, SSE) lives in the dashboard layer; the hub only
// manages subscriptions and delivery.
package ws

// StreamActivity carries activity-log entries as they are appended.
const StreamActivity = "activity"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions by stream name.
type Hub struct {
	streams   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

// message couples a payload with its stream name.
type message struct {
	stream  string
	payload []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	stream string
	client Subscriber
}

// NewHub creates an initialized Hub and starts its delivery loop.
func NewHub() *Hub {
	h := &Hub{
		streams:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.streams[sub.stream]; !ok {
				h.streams[sub.stream] = make(map[Subscriber]struct{})
			}
			h.streams[sub.stream][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.streams[sub.stream]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.streams, sub.stream)
				}
			}
		case msg := <-h.broadcast:
			clients, ok := h.streams[msg.stream]
			if !ok {
				continue
			}
			for c := range clients {
				if err := c.Send(msg.payload); err != nil {
					c.Close()
					delete(clients, c)
				}
			}
			if len(clients) == 0 {
				delete(h.streams, msg.stream)
			}
		}
	}
}

// Register adds a client to a stream.
func (h *Hub) Register(stream string, client Subscriber) {
	h.register <- subscription{stream: stream, client: client}
}

// Unregister removes a client from a stream.
func (h *Hub) Unregister(stream string, client Subscriber) {
	h.unreg <- subscription{stream: stream, client: client}
}

// Broadcast sends a payload to all subscribers of a stream.
func (h *Hub) Broadcast(stream string, payload []byte) {
	h.broadcast <- message{stream: stream, payload: payload}
}
