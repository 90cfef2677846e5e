package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/dayforge/dayforge/internal/database"
)

// Server is the HTTP/WebSocket front door for the sync fabric (§4.8). User
// authentication and general REST handlers are out of scope (§1); the one
// route this serves beyond health is the sync endpoint itself.
type Server struct {
	echo          *echo.Echo
	httpServer    *http.Server
	dbClient      *database.Client
	syncManager   *SyncManager
	allowedOrigins []string
}

// NewServer wires the sync endpoint onto a fresh Echo instance.
func NewServer(dbClient *database.Client, syncManager *SyncManager, allowedOrigins []string) *Server {
	e := echo.New()

	s := &Server{
		echo:           e,
		dbClient:       dbClient,
		syncManager:    syncManager,
		allowedOrigins: allowedOrigins,
	}

	e.Use(middleware.BodyLimit(2 * 1024 * 1024))
	e.GET("/health", s.healthHandler)
	e.GET("/days/today/context", s.syncHandler)

	return s
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := database.Health(reqCtx, s.dbClient.DB()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"message": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// syncHandler upgrades to WebSocket and delegates to the SyncManager
// (§4.8). user_id and target_date identify the caller and the day being
// viewed; authentication itself is an out-of-scope collaborator (§1), so
// this reads them as already-validated query parameters — the seam an
// auth middleware would populate in front of this handler.
func (s *Server) syncHandler(c *echo.Context) error {
	userID := c.QueryParam("user_id")
	targetDate := c.QueryParam("target_date")
	if userID == "" || targetDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and target_date are required")
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	s.syncManager.HandleConnection(c.Request().Context(), conn, userID, targetDate)
	return nil
}

// Start serves on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener serves on a pre-created listener, used by tests that
// need an OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
