package chatroom

import (
	"log"

	"github.com/gorilla/websocket"
)

// Event is the JSON frame exchanged over the websocket in both directions.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one live websocket connection. UserCode is empty until the
// connection is bound to an authenticated session.
type Client struct {
	Conn        *websocket.Conn
	TransportID string
	UserCode    string
	Username    string
	SendQueue   chan Event
	Done        chan struct{}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		select {
		case evt, ok := <-c.SendQueue:
			if !ok {
				return
			}
			if err := c.Conn.WriteJSON(evt); err != nil {
				log.Println("WritePump error:", err)
				return
			}
		case <-c.Done:
			return
		}
	}
}

// Server to client payloads

type UserStatus struct {
	User   string `json:"user"`
	Status string `json:"status"` // "online" or "offline"
}

type ReceiveMessage struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // HH:MM
	ID        int64  `json:"id"`
}

type UserTyping struct {
	User     string `json:"user"`
	IsTyping bool   `json:"is_typing"`
}

// Client to server payloads

type SendMessageData struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

type TypingData struct {
	Receiver string `json:"receiver"`
	IsTyping bool   `json:"is_typing"`
}
