package messages

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramtinhossinbiki-afk/payam-resan2/db"
)

type Message struct {
	ID           int
	SenderCode   string
	ReceiverCode string
	Content      string
	Timestamp    string
	IsRead       bool
}

// InsertMessage persists one message and returns its assigned id. The
// timestamp is stored as UTC RFC3339 so lexicographic order matches time
// order.
func InsertMessage(senderCode string, receiverCode string, content string, timestamp time.Time) (int64, error) {
	query := `INSERT INTO messages (sender_code, receiver_code, content, timestamp) VALUES (?, ?, ?, ?)`
	result, err := db.DB.Exec(query, senderCode, receiverCode, content, timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// History returns the conversation between two codes, oldest first. Ties on
// timestamp keep insertion order via the id column.
func History(userCode string, contactCode string) ([]Message, error) {
	query := `SELECT id, sender_code, receiver_code, content, timestamp, is_read FROM messages
		WHERE (sender_code = ? AND receiver_code = ?) OR (sender_code = ? AND receiver_code = ?)
		ORDER BY timestamp ASC, id ASC`
	rows, err := db.DB.Query(query, userCode, contactCode, contactCode, userCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Message
	for rows.Next() {
		var message Message
		if err := rows.Scan(&message.ID, &message.SenderCode, &message.ReceiverCode,
			&message.Content, &message.Timestamp, &message.IsRead); err != nil {
			log.Println("Error scanning message:", err)
			continue
		}
		history = append(history, message)
	}
	return history, rows.Err()
}

// FormatClock renders a stored RFC3339 timestamp as the HH:MM wall clock the
// clients display.
func FormatClock(stored string) string {
	ts, err := time.Parse(time.RFC3339, stored)
	if err != nil {
		return stored
	}
	return ts.UTC().Format("15:04")
}

func HandleGetMessages(c *gin.Context) {
	userCode := c.GetString("userCode")
	contactCode := c.Param("contact_code")

	history, err := History(userCode, contactCode)
	if err != nil {
		c.JSON(500, gin.H{"error": "Database error extracting messages"})
		return
	}

	messagesData := make([]gin.H, 0, len(history))
	for _, message := range history {
		messagesData = append(messagesData, gin.H{
			"id":        message.ID,
			"sender":    message.SenderCode,
			"content":   message.Content,
			"timestamp": FormatClock(message.Timestamp),
			"is_read":   message.IsRead,
		})
	}

	c.JSON(200, messagesData)
}
