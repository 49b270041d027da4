package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/controllers"
	"github.com/picstash/picstash/middleware"
	"github.com/picstash/picstash/storage"
	"github.com/picstash/picstash/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, sessions *utils.SessionStore, store storage.Storage) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.RequestLogger(utils.Logger))
	r.Use(utils.RecoveryWithZap(utils.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Uploaded files are served the way the legacy app did, under /static.
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	authController := controllers.NewAuthController(db, sessions, cfg.SessionSecret, ttl)
	imageController := controllers.NewImageController(db, store, cfg.UploadDir(), cfg.MaxUploadMB)

	r.GET("/", authController.Index)

	r.GET("/register", authController.RegisterPage)
	r.GET("/login", authController.LoginPage)

	credentials := r.Group("")
	credentials.Use(middleware.RateLimitMiddleware())
	credentials.POST("/register", authController.Register)
	credentials.POST("/login", authController.Login)

	protected := r.Group("")
	protected.Use(middleware.SessionRequired(sessions, cfg.SessionSecret))
	protected.GET("/home", imageController.Home)
	protected.GET("/upload", imageController.UploadPage)
	protected.POST("/upload", imageController.Upload)
	protected.GET("/delete/:id", imageController.Delete)
	protected.GET("/logout", authController.Logout)

	return r
}
