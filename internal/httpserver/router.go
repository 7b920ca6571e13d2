package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mailbridge/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	oauthHandler *handler.OAuthHandler,
	mailboxHandler *handler.MailboxHandler,
	jwtSecret string,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public: Google redirects the browser here, no session is attached.
	// Identity travels in the state parameter.
	r.GET("/oauth/gmail/callback", oauthHandler.GmailCallback)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/oauth/gmail/connect", oauthHandler.GmailConnect)
		auth.GET("/mailboxes", mailboxHandler.ListMailboxes)
		auth.GET("/mailboxes/:email", mailboxHandler.GetMailbox)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
