package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoointerview/internal/api/handlers"
	"github.com/yoockh/yoointerview/internal/api/middleware"
)

type Deps struct {
	JWT       middleware.JWTConfig
	Auth      *handlers.AuthHandler
	Interview *handlers.InterviewHandler
	History   *handlers.HistoryHandler
	Webhook   *handlers.WebhookHandler
	WS        *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/auth/signup", d.Auth.SignUp)
	r.POST("/auth/login", d.Auth.Login)

	// authenticated by shared secret, not JWT
	r.POST("/webhooks/vapi", d.Webhook.Vapi)

	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWT))

	auth.POST("/auth/logout", d.Auth.Logout)
	auth.GET("/auth/me", d.Auth.Me)

	auth.POST("/interview/start", d.Interview.Start)
	auth.POST("/interview/stop", d.Interview.Stop)
	auth.POST("/interview/clear", d.Interview.Clear)
	auth.GET("/interview/state", d.Interview.State)

	auth.GET("/interviews", d.History.List)
	auth.GET("/interviews/last-summary", d.History.LastSummary)
	auth.GET("/interviews/:id", d.History.Get)

	auth.GET("/ws/interview", d.WS.InterviewWS)
}
