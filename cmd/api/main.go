package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"canteen/internal/config"
	"canteen/internal/device"
	"canteen/internal/directory"
	"canteen/internal/handler"
	"canteen/internal/httpmiddleware"
	"canteen/internal/queue"
	"canteen/internal/scan"
	"canteen/internal/session"
	"canteen/internal/settings"
	"canteen/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		if db == nil {
			return err
		}
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	if db != nil && db.Client != nil {
		if err := store.CreateSchema(context.Background(), db.Client); err != nil {
			log.Printf("warning: schema bootstrap failed: %v", err)
		}
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "canteen:device-seen")
	}

	deviceRepo := device.NewRepository(db.Client)
	subjectRepo := directory.NewRepository(db.Client)
	settingsStore := settings.NewStore(db.Client)
	scanRepo := scan.NewRepository(db.Client)
	scans := scan.NewService(scanRepo, subjectRepo, settingsStore)

	h := handler.New(cfg, scans, deviceRepo, subjectRepo, settingsStore)

	// lastSeen stamping is best-effort: the publish runs detached with its own
	// short deadline and any failure is logged and dropped.
	seen := func(deviceID string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := q.Publish(ctx, queue.Message{Type: queue.TypeDeviceSeen, Body: []byte(deviceID)}); err != nil {
				log.Printf("device-seen publish failed: %v", err)
			}
		}()
	}

	// The in-memory queue is process-local, so consume it here instead of in
	// the worker binary.
	if cfg.QueueBackend == "memory" {
		go consumeSeen(context.Background(), q, deviceRepo)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil && db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/login", h.Login)
	r.POST("/scan", device.Auth(deviceRepo, seen), h.PostScan)

	admin := r.Group("/", session.Middleware(cfg.SessionSecret, cfg.SessionIssuer))
	admin.POST("/logout", h.Logout)
	admin.GET("/scan", h.GetScan)
	admin.GET("/devices", h.GetDevices)
	admin.POST("/devices", h.PostDevices)
	admin.DELETE("/devices/:id", h.DeleteDevice)
	admin.GET("/subjects", h.GetSubjects)
	admin.POST("/subjects", h.PostSubjects)
	admin.GET("/subjects/:id", h.GetSubject)
	admin.PUT("/subjects/:id", h.PutSubject)
	admin.DELETE("/subjects/:id", h.DeleteSubject)
	admin.GET("/settings", h.GetSettings)
	admin.POST("/settings", h.PostSettings)
	admin.GET("/report/monthly", h.ReportMonthly)
	admin.GET("/stats/today", h.StatsToday)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting %s-mode server on :%s", cfg.Mode, cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// consumeSeen drains device-seen messages and stamps last_seen, swallowing
// failures.
func consumeSeen(ctx context.Context, q queue.Queue, devices *device.Repository) {
	msgs, err := q.Consume(ctx)
	if err != nil {
		log.Printf("device-seen consume init failed: %v", err)
		return
	}
	for msg := range msgs {
		if msg.Type != queue.TypeDeviceSeen {
			continue
		}
		if err := devices.TouchLastSeen(ctx, string(msg.Body)); err != nil {
			log.Printf("lastSeen stamp failed for %s: %v", msg.Body, err)
		}
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
