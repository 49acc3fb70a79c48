package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ramtinhossinbiki-afk/payam-resan2/chatroom"
)

func SetupWebSocketRoutes(r *gin.Engine, relay *chatroom.Relay) {
	// Session binding happens inside the socket handler so unauthenticated
	// connections can still upgrade; they just stay unbound.
	r.GET("/ws", relay.HandleSocket)
}
