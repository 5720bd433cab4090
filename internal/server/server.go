package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/alberthlima/saas-legal/internal/auth"
	"github.com/alberthlima/saas-legal/internal/bot"
	"github.com/alberthlima/saas-legal/internal/category"
	"github.com/alberthlima/saas-legal/internal/client"
	"github.com/alberthlima/saas-legal/internal/config"
	"github.com/alberthlima/saas-legal/internal/doctype"
	"github.com/alberthlima/saas-legal/internal/document"
	"github.com/alberthlima/saas-legal/internal/membership"
	"github.com/alberthlima/saas-legal/internal/notify"
	"github.com/alberthlima/saas-legal/internal/rag"
	"github.com/alberthlima/saas-legal/internal/setting"
	"github.com/alberthlima/saas-legal/internal/storage"
	"github.com/alberthlima/saas-legal/internal/subscription"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, rdb redis.Cmdable, cfg *config.Config, store *storage.Store, notifier notify.Notifier, ragClient *rag.Client) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	clientRepo := client.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	categoryRepo := category.NewRepository(db)
	settingRepo := setting.NewCachedRepository(setting.NewRepository(db), rdb)

	subService := subscription.NewService(
		subscription.NewRepository(db),
		clientRepo,
		membershipRepo,
		store,
		notifier,
	)

	clientHandler := client.NewHandler(db)
	membershipHandler := membership.NewHandler(db)
	categoryHandler := category.NewHandler(db)
	doctypeHandler := doctype.NewHandler(db)
	subscriptionHandler := subscription.NewHandler(subService)
	settingHandler := setting.NewHandler(settingRepo, store)
	documentHandler := document.NewHandler(document.NewRepository(db), store, ragClient)
	botHandler := bot.NewHandler(clientRepo, membershipRepo, categoryRepo, subService, settingRepo, store, notifier)

	// The bot group is unauthenticated but rate limited per IP; the bot
	// backend is the only expected caller.
	botGroup := router.Group("/bot")
	botGroup.Use(RateLimitMiddleware(cfg.BotRateLimit, cfg.BotRateBurst))
	{
		botGroup.GET("/check-client/:telegram_id", botHandler.CheckClient)
		botGroup.POST("/register-client", botHandler.RegisterClient)
		botGroup.GET("/memberships", botHandler.Memberships)
		botGroup.POST("/subscribe", botHandler.Subscribe)
		botGroup.POST("/cancel-subscription", botHandler.CancelSubscription)
		botGroup.GET("/categories", botHandler.Categories)
		botGroup.POST("/set-categories", botHandler.SetCategories)
		botGroup.POST("/upload-voucher", botHandler.UploadVoucher)
		botGroup.POST("/notify-payment", botHandler.NotifyPayment)
		botGroup.GET("/settings", botHandler.Settings)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	adminMiddleware := auth.RequireRole("admin")
	api := router.Group("/api")
	api.Use(authMiddleware, adminMiddleware)
	{
		api.GET("/client", clientHandler.List)
		api.GET("/client/:id", clientHandler.Show)
		api.PUT("/client/:id", clientHandler.Update)
		api.DELETE("/client/:id", clientHandler.Destroy)

		api.GET("/membership", membershipHandler.List)
		api.POST("/membership", membershipHandler.Create)
		api.PUT("/membership/:id", membershipHandler.Update)
		api.DELETE("/membership/:id", membershipHandler.Destroy)

		api.GET("/category", categoryHandler.List)
		api.POST("/category", categoryHandler.Create)
		api.PUT("/category/:id", categoryHandler.Update)
		api.DELETE("/category/:id", categoryHandler.Destroy)

		api.GET("/type-document", doctypeHandler.List)
		api.POST("/type-document", doctypeHandler.Create)
		api.PUT("/type-document/:id", doctypeHandler.Update)
		api.DELETE("/type-document/:id", doctypeHandler.Destroy)

		api.GET("/subscription", subscriptionHandler.List)
		api.GET("/subscription/:id", subscriptionHandler.Show)
		api.POST("/subscription/:id/approve", subscriptionHandler.Approve)
		api.POST("/subscription/:id/cancel", subscriptionHandler.Cancel)
		api.DELETE("/subscription/:id", subscriptionHandler.Destroy)

		api.GET("/document", documentHandler.List)
		api.GET("/document/:id", documentHandler.Show)
		api.POST("/document", documentHandler.Create)
		api.PUT("/document/:id", documentHandler.Update)
		api.DELETE("/document/:id", documentHandler.Destroy)

		api.GET("/settings", settingHandler.Show)
		api.POST("/settings", settingHandler.Update)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-notify", TestNotify(notifier))

	// Stored files (vouchers, QR codes, documents) are served from the
	// local public disk.
	router.Static("/storage", cfg.StorageDir)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
