package contacts

import (
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ramtinhossinbiki-afk/payam-resan2/db"
	"github.com/ramtinhossinbiki-afk/payam-resan2/users"
)

type Contact struct {
	ID          int
	UserCode    string
	ContactCode string
	ContactName string
}

// InsertContact records a directed contact edge. Inserting an edge that
// already exists is a no-op.
func InsertContact(userCode string, contactCode string, contactName string) error {
	query := `INSERT INTO contacts (user_code, contact_code, contact_name) VALUES (?, ?, ?)
		ON CONFLICT(user_code, contact_code) DO NOTHING`
	_, err := db.DB.Exec(query, userCode, contactCode, contactName)
	return err
}

func ListContacts(userCode string) ([]Contact, error) {
	rows, err := db.DB.Query(`SELECT id, user_code, contact_code, contact_name FROM contacts WHERE user_code = ?`, userCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contactList []Contact
	for rows.Next() {
		var contact Contact
		if err := rows.Scan(&contact.ID, &contact.UserCode, &contact.ContactCode, &contact.ContactName); err != nil {
			log.Println("Error scanning contact:", err)
			continue
		}
		contactList = append(contactList, contact)
	}
	return contactList, rows.Err()
}

func HandleGetContacts(c *gin.Context) {
	userCode := c.GetString("userCode")

	contactList, err := ListContacts(userCode)
	if err != nil {
		c.JSON(500, gin.H{"error": "Database error extracting contacts"})
		return
	}

	contactsData := make([]gin.H, 0, len(contactList))
	for _, contact := range contactList {
		contactsData = append(contactsData, gin.H{
			"contact_code": contact.ContactCode,
			"contact_name": contact.ContactName,
		})
	}

	c.JSON(200, contactsData)
}

func HandleAddContact(c *gin.Context) {
	userCode := c.GetString("userCode")

	var json struct {
		ContactCode string `json:"contact_code"`
	}
	if err := c.BindJSON(&json); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request data"})
		return
	}

	contact, err := users.LookupByCode(json.ContactCode)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(404, gin.H{"error": "User not found"})
		} else {
			c.JSON(500, gin.H{"error": "Database error extracting user"})
		}
		return
	}

	if json.ContactCode == userCode {
		c.JSON(400, gin.H{"error": "Cannot add yourself"})
		return
	}

	if err := InsertContact(userCode, json.ContactCode, contact.Username); err != nil {
		c.JSON(500, gin.H{"error": "Database error inserting contact"})
		return
	}

	c.JSON(200, gin.H{"success": true, "contact_name": contact.Username})
}
