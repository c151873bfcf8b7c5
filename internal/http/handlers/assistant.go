package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldops/backend/internal/http/middleware"
	"github.com/fieldops/backend/internal/nlq"
)

const emptyQuestionAnswer = "Please ask a question!"

type AssistantRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id" validate:"omitempty,max=128,printascii"`
}

type AssistantResponse struct {
	Answer    string     `json:"answer"`
	SessionID string     `json:"session_id,omitempty"`
	Intent    nlq.Intent `json:"intent,omitempty"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=128,printascii"`
}

// Assistant answers one question within the caller's conversation.
// @Summary Ask the assistant
// @Description Answers a natural-language question about salesmen and repair devices
// @Tags assistant
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "conversation id"
// @Param request body AssistantRequest true "question"
// @Success 200 {object} AssistantResponse
// @Failure 400 {object} AssistantResponse
// @Failure 500 {object} AssistantResponse
// @Router /api/assistant [post]
func (h *Handler) Assistant(c *gin.Context) {
	var req AssistantRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AssistantResponse{Answer: emptyQuestionAnswer})
			return
		}
	}
	if err := h.validate(req); err != nil {
		c.JSON(http.StatusBadRequest, AssistantResponse{Answer: "Invalid session id."})
		return
	}

	sessionID := h.sessionID(c, req.SessionID)
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, AssistantResponse{Answer: emptyQuestionAnswer, SessionID: sessionID})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	reply, err := h.Engine.Answer(ctx, sessionID, req.Question)
	switch {
	case errors.Is(err, nlq.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, AssistantResponse{Answer: emptyQuestionAnswer, SessionID: sessionID})
		return
	case err != nil:
		h.Logger.Error().Err(err).Str("session_id", sessionID).Msg("assistant failed")
		c.JSON(http.StatusInternalServerError, AssistantResponse{Answer: "Server issue: " + err.Error(), SessionID: sessionID})
		return
	}
	c.JSON(http.StatusOK, AssistantResponse{Answer: reply.Answer, SessionID: sessionID, Intent: reply.Intent})
}

// AssistantReset forgets the caller's conversation.
// @Summary Reset conversation
// @Tags assistant
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "conversation id"
// @Param request body ResetRequest false "session"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]any
// @Router /api/assistant/reset [post]
func (h *Handler) AssistantReset(c *gin.Context) {
	var req ResetRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
			return
		}
	}
	if err := h.validate(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid session id", err.Error())
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader(middleware.SessionIDHeader)
	}
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "session_id is required", nil)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	if err := h.Engine.Reset(ctx, sessionID); err != nil {
		writeError(c, http.StatusInternalServerError, "RESET_FAILED", "Could not reset conversation", err.Error())
		return
	}
	c.Header(middleware.SessionIDHeader, sessionID)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session_id": sessionID})
}

// DebugClassify shows how a question is tokenized and classified.
// @Summary Explain classification
// @Tags debug
// @Produce json
// @Param question query string true "question"
// @Success 200 {object} nlq.Explanation
// @Failure 400 {object} map[string]any
// @Router /api/debug/classify [get]
func (h *Handler) DebugClassify(c *gin.Context) {
	question := strings.TrimSpace(c.Query("question"))
	if question == "" {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "question is required", nil)
		return
	}
	c.JSON(http.StatusOK, h.Engine.Explain(question))
}

// sessionID prefers the body, then the header, and mints one otherwise.
func (h *Handler) sessionID(c *gin.Context, fromBody string) string {
	id := strings.TrimSpace(fromBody)
	if id == "" {
		id = strings.TrimSpace(c.GetHeader(middleware.SessionIDHeader))
	}
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(middleware.SessionIDHeader, id)
	return id
}
