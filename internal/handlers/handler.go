package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/lipi-scribe-api/internal/database"
	"github.com/harentsoaR/lipi-scribe-api/internal/middleware"
	"github.com/harentsoaR/lipi-scribe-api/internal/services"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
)

const dbTimeout = 10 * time.Second

// Handler carries the dependencies every route needs. Handlers are its
// methods, one file per resource.
type Handler struct {
	DB         *mongo.Database
	Tokens     *utils.TokenIssuer
	BcryptCost int
	Records    services.RecordInserter
	Scribe     *services.ScribeService
	Notifier   services.FollowUpNotifier
}

func NewHandler(db *mongo.Database, tokens *utils.TokenIssuer, bcryptCost int, scribe *services.ScribeService, notifier services.FollowUpNotifier) *Handler {
	registerValidators()
	return &Handler{
		DB:         db,
		Tokens:     tokens,
		BcryptCost: bcryptCost,
		Records:    database.NewRecordStore(db),
		Scribe:     scribe,
		Notifier:   notifier,
	}
}

func dbContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), dbTimeout)
}

// internalError logs err and answers with a generic 500.
func internalError(c *gin.Context, msg string, err error) {
	log.Error().Err(err).
		Str("request_id", c.GetString(middleware.ContextRequestID)).
		Str("path", c.FullPath()).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func callerID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

func callerType(c *gin.Context) string {
	return c.GetString(middleware.ContextUserType)
}
