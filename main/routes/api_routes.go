package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ramtinhossinbiki-afk/payam-resan2/contacts"
	"github.com/ramtinhossinbiki-afk/payam-resan2/messages"
	"github.com/ramtinhossinbiki-afk/payam-resan2/users"
)

func SetupAPIRoutes(r *gin.Engine) {
	r.POST("/register", users.HandleRegister)
	r.POST("/login", users.HandleLogin)
	r.POST("/logout", users.HandleLogout)

	r.GET("/contacts", users.AuthMiddleware(), contacts.HandleGetContacts)
	r.POST("/add_contact", users.AuthMiddleware(), contacts.HandleAddContact)
	r.GET("/get_messages/:contact_code", users.AuthMiddleware(), messages.HandleGetMessages)
}
