// Package server exposes the assistant over HTTP for external front ends:
// a streaming chat endpoint plus the structured extraction endpoints the web
// UI depends on. The server is stateless; callers own their history.
package server

import (
	"github.com/gin-gonic/gin"

	"tkta/config"
	"tkta/model"
	"tkta/tools"
)

// Server routes HTTP requests to one provider and the tool executor.
type Server struct {
	provider model.Provider
	executor *tools.Executor
	engine   *gin.Engine
}

// New builds a server around the given provider.
func New(provider model.Provider) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		provider: provider,
		executor: tools.NewExecutor(provider),
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())

	api := s.engine.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/timatic-lookup", s.handleTimaticLookup)
	api.POST("/parse-pnr-to-quote", s.handleParsePNRToQuote)
	api.POST("/parse-booking-to-messages", s.handleParseBookingToMessages)
	api.POST("/parse-group-fare", s.handleParseGroupFare)
	api.POST("/find-nearest-airports", s.handleFindNearestAirports)
	api.POST("/gds-encoder", s.handleGDSEncoder)

	return s
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the underlying http.Handler for tests.
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func logServerError(endpoint string, err error) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Server] %s failed: %v", endpoint, err)
	}
}
