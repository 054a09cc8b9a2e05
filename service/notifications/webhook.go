package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reavers-game/go-reavers/service/persist"
)

// WebhookHandler accepts a notification batch pushed over HTTP and feeds it
// into the dispatcher. Used when the stream is delivered by callback rather
// than over a socket.
func WebhookHandler(d *Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var events []persist.JobEvent
		if err := c.ShouldBindJSON(&events); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		d.Dispatch(c.Request.Context(), events...)
		c.JSON(http.StatusOK, gin.H{"received": len(events)})
	}
}

// HandlersInit registers the notification routes on the router
func HandlersInit(router *gin.Engine, d *Dispatcher) *gin.Engine {
	router.POST("/notifications", WebhookHandler(d))
	return router
}
