// Package router mounts the HTTP surface on a gin engine: public auth
// endpoints, the protected data endpoint behind the auth gate, and the
// sensor proxy endpoints.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uvbuddy/uvbuddy-api/internal/middleware"
	"github.com/uvbuddy/uvbuddy-api/internal/sensor"
	"github.com/uvbuddy/uvbuddy-api/internal/user"
)

// New assembles the gin engine. All dependencies are constructed by the
// caller and injected here; the router owns only wiring.
func New(logger *zap.SugaredLogger, tokens middleware.SessionVerifier, users *user.Handler, sensors *sensor.Handler, dev bool) *gin.Engine {
	if !dev {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.POST("/register", users.Register)
	r.POST("/login", users.Login)
	r.POST("/forgot-password", users.ForgotPassword)
	r.POST("/reset-password", users.ResetPassword)

	r.GET("/dados", middleware.RequireAuth(tokens), users.Profile)

	r.GET("/sensor-data", sensors.Summary)
	r.GET("/sensor-data/hourly", sensors.Raw)

	return r
}
