// Package api serves the live game over HTTP.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/game"
)

// NewRouter builds the HTTP router for the live game. hub may be nil, in
// which case /ws is not served.
func NewRouter(cfg *config.Config, g *game.Game, hub *Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.GetStringSlice(config.ConfigCORSOrigins),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	s := &server{
		game:              g,
		hub:               hub,
		defaultDifficulty: cfg.GetString(config.ConfigDefaultDifficulty),
	}

	router.GET("/health", s.health)
	router.GET("/state", s.state)
	router.GET("/difficulties", s.difficulties)
	router.POST("/reset", s.reset)
	router.POST("/make_move", s.makeMove)
	router.POST("/ai_move", s.aiMove)
	router.POST("/takeback", s.takeback)
	router.POST("/position", s.setPosition)
	if hub != nil {
		router.GET("/ws", s.serveWS)
	}
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().Str("method", c.Request.Method).Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).Dur("took", time.Since(start)).
			Msg("http-request")
	}
}
