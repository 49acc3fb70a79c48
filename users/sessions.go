package users

import (
	"fmt"
	"os"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_token"
const sessionLifetime = time.Hour * 672 // 28 days

func jwtSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-in-production"
	}
	return secret
}

func generateSessionToken(userCode string, username string) (string, error) {
	claims := jwt.MapClaims{
		"user_code": userCode,
		"username":  username,
		"exp":       time.Now().Add(sessionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(jwtSecret()))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// SessionFromRequest resolves the caller's session cookie to the bound
// connection code and username. ok is false for missing, expired or
// tampered tokens.
func SessionFromRequest(c *gin.Context) (userCode string, username string, ok bool) {
	tokenString, err := c.Cookie(sessionCookieName)
	if err != nil || tokenString == "" {
		return "", "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret()), nil
	})
	if err != nil || !token.Valid {
		return "", "", false
	}

	claims, valid := token.Claims.(jwt.MapClaims)
	if !valid {
		return "", "", false
	}

	userCode, _ = claims["user_code"].(string)
	username, _ = claims["username"].(string)
	if userCode == "" {
		return "", "", false
	}
	return userCode, username, true
}

func setSessionCookie(c *gin.Context, userCode string, username string) error {
	token, err := generateSessionToken(userCode, username)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookieName, token, int(sessionLifetime.Seconds()), "/", "", false, true)
	return nil
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}

// AuthMiddleware rejects requests without a valid session and exposes the
// bound user code and username on the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userCode, username, ok := SessionFromRequest(c)
		if !ok {
			c.JSON(401, gin.H{"error": "Not logged in"})
			c.Abort()
			return
		}

		c.Set("userCode", userCode)
		c.Set("userUsername", username)
		c.Next()
	}
}
