package chatroom

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ramtinhossinbiki-afk/payam-resan2/messages"
	"github.com/ramtinhossinbiki-afk/payam-resan2/users"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func decodeData[T any](raw interface{}) (T, error) {
	var data T
	bytes, err := json.Marshal(raw)
	if err != nil {
		return data, err
	}
	err = json.Unmarshal(bytes, &data)
	return data, err
}

// Relay owns the realtime delivery core: it binds sockets to rooms, fans
// messages out and forwards typing signals.
type Relay struct {
	registry *Registry
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

func (r *Relay) HandleSocket(c *gin.Context) {
	userCode, username, _ := users.SessionFromRequest(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	conn.SetReadLimit(64 * 1024)
	defer conn.Close()

	client := &Client{
		Conn:        conn,
		TransportID: uuid.NewString(),
		UserCode:    userCode,
		Username:    username,
		SendQueue:   make(chan Event, 64),
		Done:        make(chan struct{}),
	}
	go client.WritePump()

	r.onConnect(client)

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var evt Event
		if err := json.Unmarshal(msgBytes, &evt); err != nil {
			log.Println("Invalid message format:", err)
			continue
		}

		r.dispatchEvent(client, evt)
	}

	r.onDisconnect(client)
	close(client.SendQueue)
	close(client.Done)
}

// onConnect joins an authenticated client to its own room and announces the
// transition to that room, so the user's other devices see it come online.
// Unauthenticated connections stay unbound.
func (r *Relay) onConnect(client *Client) {
	if client.UserCode == "" {
		return
	}
	r.registry.Join(client.UserCode, client)
	r.registry.Broadcast(client.UserCode, Event{
		Type: "user_status",
		Data: UserStatus{User: client.UserCode, Status: "online"},
	})
}

func (r *Relay) onDisconnect(client *Client) {
	if client.UserCode == "" {
		return
	}
	r.registry.Leave(client.UserCode, client)
	r.registry.Broadcast(client.UserCode, Event{
		Type: "user_status",
		Data: UserStatus{User: client.UserCode, Status: "offline"},
	})
}

func (r *Relay) dispatchEvent(client *Client, evt Event) {
	switch evt.Type {
	case "send_message":
		r.handleSendMessage(client, evt)
	case "typing":
		r.handleTyping(client, evt)
	default:
		log.Println("Unknown message type:", evt.Type)
	}
}

// handleSendMessage persists the message, then fans the delivery payload out
// to the receiver's room and the sender's own room. Events from unbound
// connections are dropped without error.
func (r *Relay) handleSendMessage(client *Client, evt Event) {
	if client.UserCode == "" {
		return
	}

	data, err := decodeData[SendMessageData](evt.Data)
	if err != nil {
		log.Println("Invalid send_message data:", err)
		return
	}
	if data.Receiver == "" {
		return
	}

	now := time.Now().UTC()
	id, err := messages.InsertMessage(client.UserCode, data.Receiver, data.Content, now)
	if err != nil {
		log.Println("Error inserting message:", err)
		return
	}

	delivery := Event{
		Type: "receive_message",
		Data: ReceiveMessage{
			Sender:    client.UserCode,
			Content:   data.Content,
			Timestamp: now.Format("15:04"),
			ID:        id,
		},
	}

	r.registry.Broadcast(data.Receiver, delivery)
	r.registry.Broadcast(client.UserCode, delivery)
}

// handleTyping forwards the ephemeral typing state to the receiver's room
// only. Nothing is persisted. The same authentication guard as message send
// applies.
func (r *Relay) handleTyping(client *Client, evt Event) {
	if client.UserCode == "" {
		return
	}

	data, err := decodeData[TypingData](evt.Data)
	if err != nil {
		log.Println("Invalid typing data:", err)
		return
	}
	if data.Receiver == "" {
		return
	}

	r.registry.Broadcast(data.Receiver, Event{
		Type: "user_typing",
		Data: UserTyping{User: client.UserCode, IsTyping: data.IsTyping},
	})
}
