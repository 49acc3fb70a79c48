package users

import (
	"crypto/rand"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramtinhossinbiki-afk/payam-resan2/db"
)

type UserData struct {
	ID             int
	Username       string
	Email          string
	Phone          string
	ConnectionCode string
	CreatedAt      string
}

const connectionCodeLength = 10
const maxCodeAttempts = 5

// GenerateConnectionCode returns a random 10-digit numeric code. Uniqueness
// is enforced by the users.connection_code UNIQUE constraint, not here.
func GenerateConnectionCode() string {
	b := make([]byte, connectionCodeLength)
	rand.Read(b)
	for i := range b {
		b[i] = '0' + b[i]%10
	}
	return string(b)
}

// LookupByCode fetches a user by connection code. Returns sql.ErrNoRows when
// no user holds the code.
func LookupByCode(connectionCode string) (UserData, error) {
	var user UserData
	query := `SELECT id, username, email, phone, connection_code, created_at FROM users WHERE connection_code = ?`
	err := db.DB.QueryRow(query, connectionCode).Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.ConnectionCode, &user.CreatedAt)
	return user, err
}

func lookupByIdentifier(identifier string) (UserData, error) {
	var user UserData
	query := `SELECT id, username, email, phone, connection_code, created_at FROM users
		WHERE email = ? OR phone = ? OR connection_code = ?`
	err := db.DB.QueryRow(query, identifier, identifier, identifier).Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.ConnectionCode, &user.CreatedAt)
	return user, err
}

func insertUser(username string, email string, phone string) (string, error) {
	createdAt := time.Now().UTC().Format(time.RFC3339)

	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		connectionCode := GenerateConnectionCode()

		query := `INSERT INTO users (username, email, phone, connection_code, created_at) VALUES (?, ?, ?, ?, ?)`
		_, err := db.DB.Exec(query, username, email, phone, connectionCode, createdAt)
		if err == nil {
			return connectionCode, nil
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.connection_code") {
			// Collision on a 10-digit code, roll again
			lastErr = err
			continue
		}
		return "", err
	}
	return "", lastErr
}

func HandleRegister(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	phone := c.PostForm("phone")

	if username == "" {
		c.JSON(400, gin.H{"error": "Username is required"})
		return
	}

	connectionCode, err := insertUser(username, email, phone)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			c.JSON(400, gin.H{"error": "Username already exists"})
			return
		}
		log.Println("Error inserting user:", err)
		c.JSON(500, gin.H{"error": "Database error inserting data"})
		return
	}

	if err := setSessionCookie(c, connectionCode, username); err != nil {
		c.JSON(500, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(200, gin.H{
		"username":        username,
		"connection_code": connectionCode,
	})
}

func HandleLogin(c *gin.Context) {
	identifier := c.PostForm("identifier")
	if identifier == "" {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	}

	user, err := lookupByIdentifier(identifier)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(404, gin.H{"error": "User not found"})
		} else {
			log.Println("Error querying user:", err)
			c.JSON(500, gin.H{"error": "Error extracting data"})
		}
		return
	}

	if err := setSessionCookie(c, user.ConnectionCode, user.Username); err != nil {
		c.JSON(500, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(200, gin.H{
		"username":        user.Username,
		"connection_code": user.ConnectionCode,
	})
}

func HandleLogout(c *gin.Context) {
	clearSessionCookie(c)
	c.JSON(200, gin.H{"message": "Logged out"})
}
