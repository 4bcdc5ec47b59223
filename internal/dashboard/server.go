package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"optionflow/internal/collector"
	"optionflow/internal/flow"
	"optionflow/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Source is the read accessor the dashboard renders from.
type Source interface {
	DefaultQuery() collector.Query
	View(q collector.Query) flow.View
	Latest() (flow.Batch, bool)
	Status() collector.Status
	SetLive(live bool)
	Subscribe() (<-chan struct{}, func())
}

// tradeZone is the zone trade times are rendered in.
const tradeZone = "America/New_York"

const writeWait = 5 * time.Second

// Server hosts the JSON and websocket API over a Source.
type Server struct {
	address    string
	source     Source
	logger     *zap.Logger
	loc        *time.Location
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

func NewServer(address string, source Source, logger *zap.Logger) *Server {
	loc, err := time.LoadLocation(tradeZone)
	if err != nil {
		loc = time.UTC
	}
	return &Server{
		address: normalizeAddress(address),
		source:  source,
		logger:  logger.With(zap.String("component", "dashboard")),
		loc:     loc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Address reports the network address the server listens on.
func (s *Server) Address() string {
	return s.address
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("address", s.address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return fmt.Errorf("dashboard server: %w", err)
	}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/api/view", s.handleView)
	router.GET("/api/trades", s.handleTrades)
	router.GET("/api/status", s.handleStatus)
	router.POST("/api/live", s.handleLive)
	router.GET("/ws", s.handleStream)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

func (s *Server) handleView(c *gin.Context) {
	q, err := parseQuery(c, s.source.DefaultQuery())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newViewPayload(s.source.View(q), q.Window, q.Range, q.Options))
}

func (s *Server) handleTrades(c *gin.Context) {
	latest, ok := s.source.Latest()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"captured_at": nil, "trades": []tradePayload{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch_id":    latest.ID,
		"captured_at": latest.Timestamp.Format(time.RFC3339Nano),
		"trades":      newTradePayloads(latest, s.loc),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Status())
}

func (s *Server) handleLive(c *gin.Context) {
	var req struct {
		Live *bool `json:"live"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Live == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"live\": bool}"})
		return
	}
	s.source.SetLive(*req.Live)
	c.JSON(http.StatusOK, gin.H{"live": *req.Live})
}

// handleStream pushes the default view on connect and after every commit.
func (s *Server) handleStream(c *gin.Context) {
	q, err := parseQuery(c, s.source.DefaultQuery())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.source.Subscribe()
	defer unsubscribe()

	// reader detects client close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() error {
		payload := newViewPayload(s.source.View(q), q.Window, q.Range, q.Options)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(payload)
	}

	if err := push(); err != nil {
		return
	}
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-closed:
			return
		case <-updates:
			if err := push(); err != nil {
				s.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

// parseQuery overlays request parameters onto the defaults.
func parseQuery(c *gin.Context, q collector.Query) (collector.Query, error) {
	if w := c.Query("window"); w != "" {
		if w == "latest" || w == "0" {
			q.Window = 0
		} else {
			d, err := time.ParseDuration(w)
			if err != nil || d < 0 {
				return q, fmt.Errorf("invalid window %q", w)
			}
			q.Window = d
		}
	}
	if r := c.Query("range"); r != "" {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil || v < 0 {
			return q, fmt.Errorf("invalid range %q", r)
		}
		q.Range = v
	}
	if f := c.Query("formula"); f != "" {
		formula, err := flow.ParseFormula(f)
		if err != nil {
			return q, err
		}
		q.Options.Formula = formula
	}
	if sg := c.Query("sign"); sg != "" {
		v, err := strconv.Atoi(sg)
		if err != nil || (v != 1 && v != -1) {
			return q, fmt.Errorf("invalid sign %q", sg)
		}
		q.Options.Sign = v
	}
	return q, nil
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "0.0.0.0:8080"
	}
	if strings.HasPrefix(addr, ":") {
		return "0.0.0.0" + addr
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(strings.Trim(addr, "[]"), "8080")
	}
	return addr
}
