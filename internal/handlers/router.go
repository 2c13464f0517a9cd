package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/lipi-scribe-api/internal/middleware"
	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

type RouterConfig struct {
	CORSOrigins    []string
	// TrustedProxies may set X-Forwarded-For. Nil trusts no proxy.
	TrustedProxies []string
	// AuthLimiter throttles login and signup per client IP. Nil disables it.
	AuthLimiter    *middleware.RateLimiter
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	// Client IPs key the rate limiter; a forged X-Forwarded-For must not
	// change them.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error().Err(err).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.BodyLimit(middleware.DefaultMaxBodySize),
	)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
			ExposeHeaders:    []string{middleware.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	if cfg.AuthLimiter != nil {
		authRoutes.Use(cfg.AuthLimiter.Middleware())
	}
	authRoutes.POST("/login", h.Login)
	authRoutes.POST("/signup", h.Signup)

	doctorOnly := middleware.RequireUserType(models.UserTypeDoctor)

	protected := api.Group("", middleware.AuthMiddleware(h.Tokens))
	{
		protected.GET("/auth/me", h.GetCurrentUser)
		protected.GET("/users", doctorOnly, h.ListUsers)

		opd := protected.Group("/opd")
		opd.POST("/save", doctorOnly, h.SaveOPDRecord)
		opd.GET("/records/:doctorId", doctorOnly, h.GetDoctorRecords)
		opd.GET("/record/:recordId", h.GetOPDRecord)
		opd.PUT("/record/:recordId", doctorOnly, h.UpdateOPDRecord)
		opd.DELETE("/record/:recordId", doctorOnly, h.DeleteOPDRecord)
		opd.GET("/patient/:mrn/records", h.GetPatientRecords)

		scribe := protected.Group("/scribe/sessions", doctorOnly)
		scribe.POST("", h.CreateScribeSession)
		scribe.GET("/:id", h.GetScribeSession)
		scribe.DELETE("/:id", h.DeleteScribeSession)
		scribe.POST("/:id/transcript", h.AppendTranscript)
		scribe.PUT("/:id/patient", h.UpdateScribePatient)
		scribe.POST("/:id/save", h.SaveScribeSession)
		scribe.GET("/:id/history", h.ScribeHistory)
		scribe.GET("/:id/patients", h.ScribePatients)
	}

	return r
}
