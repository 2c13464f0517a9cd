package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/lipi-scribe-api/internal/services"
)

type TranscriptRequest struct {
	Final   string `json:"final"`
	Interim string `json:"interim"`
}

// scribeError maps service errors onto responses.
func scribeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Scribe session not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
	case errors.Is(err, services.ErrIncompleteRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgRecordRequired})
	default:
		internalError(c, "scribe session operation failed", err)
	}
}

func (h *Handler) CreateScribeSession(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	sess, err := h.Scribe.Create(ctx, callerID(c))
	if err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "session": sess})
}

func (h *Handler) GetScribeSession(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	sess, err := h.Scribe.Get(ctx, c.Param("id"), callerID(c))
	if err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

// AppendTranscript takes the recognizer's output since the last call:
// finalized text plus the current interim hypothesis.
func (h *Handler) AppendTranscript(c *gin.Context) {
	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	res, err := h.Scribe.AppendTranscript(ctx, c.Param("id"), callerID(c), req.Final, req.Interim)
	if err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"session":        res.Session,
		"updates":        res.Updates,
		"autoSaved":      res.AutoSaved,
		"createdPatient": res.CreatedPatient,
	})
}

func (h *Handler) UpdateScribePatient(c *gin.Context) {
	var req services.PatientUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	sess, err := h.Scribe.UpdatePatient(ctx, c.Param("id"), callerID(c), req)
	if err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

func (h *Handler) SaveScribeSession(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	res, err := h.Scribe.Save(ctx, c.Param("id"), callerID(c))
	if err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"record":  res.Record,
		"session": res.Session,
		"updates": res.Updates,
		"message": "OPD record saved successfully",
	})
}

func (h *Handler) ScribeHistory(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	entries, err := h.Scribe.History(ctx, c.Param("id"), callerID(c), c.Query("patient"))
	if err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

func (h *Handler) ScribePatients(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	patients, err := h.Scribe.Patients(ctx, c.Param("id"), callerID(c))
	if err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "patients": patients})
}

func (h *Handler) DeleteScribeSession(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Scribe.Delete(ctx, c.Param("id"), callerID(c)); err != nil {
		scribeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Scribe session discarded"})
}
