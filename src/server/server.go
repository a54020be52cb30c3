package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pos-sync/src/coordinator"
	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/metrics"
	"pos-sync/src/models"
	"pos-sync/src/store"
	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------
// DeviceServer
// -----------------------------------------------------------------------------

// DeviceServer is the local HTTP/WebSocket surface for the UI running on this
// device: snapshot reads over REST, live pushes over /ws, order submission
// behind the rate limiter, and a manual sync retry endpoint.
type DeviceServer struct {
	Config      *models.MConfig
	Logger      *logger.Logger
	Store       *store.Store
	Backend     interfaces.IBackend
	Coordinator *coordinator.Coordinator
	Notifier    *utils.Notifier

	WaitTime *metrics.WaitTimeEstimator
	RushHour *metrics.RushHourClassifier
	Limiter  *metrics.RateLimiter

	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MStateUpdate // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client

	stopOnce sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDeviceServer(cfg *models.MConfig, log *logger.Logger, st *store.Store,
	backend interfaces.IBackend, coord *coordinator.Coordinator,
	notifier *utils.Notifier, waitTime *metrics.WaitTimeEstimator,
	rushHour *metrics.RushHourClassifier, limiter *metrics.RateLimiter) *DeviceServer {

	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DeviceServer{
		Config:      cfg,
		Logger:      log,
		Store:       st,
		Backend:     backend,
		Coordinator: coord,
		Notifier:    notifier,
		WaitTime:    waitTime,
		RushHour:    rushHour,
		Limiter:     limiter,
		engine:      gin.Default(),
		clients:     make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking on update bursts
		broadcast:  make(chan *models.MStateUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DeviceServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/status", s.getStatus)
	s.engine.GET("/api/menu", s.getMenu)
	s.engine.GET("/api/orders", s.getOrders)
	s.engine.GET("/api/inventory/low-stock", s.getLowStock)
	s.engine.GET("/api/wait-time", s.getWaitTime)
	s.engine.GET("/api/rush-hour", s.getRushHour)
	s.engine.POST("/api/orders", s.postOrder)
	s.engine.POST("/api/sync/retry", s.postRetry)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DeviceServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) Stop() error {
	s.stopOnce.Do(func() {
		close(s.broadcast)
	})
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DeviceServer) getHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": len(s.clients),
		"loaded":      s.Store.Loaded(),
	})
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) getStatus(c *gin.Context) {
	c.JSON(200, gin.H{
		"name":       s.Config.Name,
		"backend":    s.Config.Backend.Kind,
		"loaded":     s.Store.Loaded(),
		"load_error": s.Store.LoadError(),
	})
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) getMenu(c *gin.Context) {
	c.JSON(200, gin.H{
		"menu_items":      s.Store.MenuItems(),
		"categories":      s.Store.Categories(),
		"portion_options": s.Store.PortionOptions(),
		"portion_prices":  s.Store.ItemPortionPrices(),
	})
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) getOrders(c *gin.Context) {
	c.JSON(200, gin.H{"orders": s.Store.Orders()})
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) getLowStock(c *gin.Context) {
	c.JSON(200, gin.H{"low_stock_items": s.Store.LowStockItems()})
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) getWaitTime(c *gin.Context) {
	minutes := s.WaitTime.EstimateMinutes()
	c.JSON(200, gin.H{
		"queue_minutes":    s.WaitTime.QueueMinutes(),
		"estimate_minutes": minutes,
		"display":          metrics.FormatWait(minutes),
	})
}

// -----------------------------------------------------------------------------

func (s *DeviceServer) getRushHour(c *gin.Context) {
	c.JSON(200, s.RushHour.Classify(time.Now()))
}

// -----------------------------------------------------------------------------

// postOrder submits an order through the backend. The rate limiter guards
// against a stuck UI hammering the kitchen queue.
func (s *DeviceServer) postOrder(c *gin.Context) {
	allowed, retryAfter := s.Limiter.Check()
	if !allowed {
		s.Notifier.Notify("warning", "Order rate limit reached, slow down")
		c.JSON(429, gin.H{
			"error":          "too many orders",
			"retry_after_ms": retryAfter.Milliseconds(),
		})
		return
	}

	var order models.MOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt

	if err := s.Backend.SubmitOrder(c.Request.Context(), order); err != nil {
		s.Logger.Error("Order submission failed: %v", err)
		c.JSON(502, gin.H{"error": "backend rejected order"})
		return
	}

	c.JSON(201, gin.H{
		"id":                 order.ID,
		"estimated_wait_min": s.WaitTime.EstimateForNewOrder(order.Items),
	})
}

// -----------------------------------------------------------------------------

// postRetry re-runs the bulk load after a failed startup.
func (s *DeviceServer) postRetry(c *gin.Context) {
	if err := s.Coordinator.Retry(c.Request.Context()); err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"loaded": s.Store.Loaded()})
}
