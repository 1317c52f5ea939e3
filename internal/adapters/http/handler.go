// Package httpadapter is the thin presentation boundary: it exposes the
// workspace state and the user intents over HTTP and renders nothing
// itself.
package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nexuspro/nexus/internal/app/conversation"
	"github.com/nexuspro/nexus/internal/domain"
)

type Server struct {
	svc *conversation.Service
}

// NewServer builds the echo application around the conversation service.
func NewServer(svc *conversation.Service) *echo.Echo {
	s := &Server{svc: svc}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(withRequestID())
	e.Use(withLogging())

	e.GET("/healthz", s.handleHealthz)

	v1 := e.Group("/v1")
	v1.GET("/workspace", s.handleGetWorkspace)
	v1.POST("/sessions", s.handleNewSession)
	v1.PUT("/sessions/:id/select", s.handleSelectSession)
	v1.DELETE("/sessions/:id", s.handleDeleteSession)
	v1.POST("/sessions/:id/messages", s.handleSendMessage)
	v1.GET("/sessions/:id/messages/stream", s.handleSendMessageStream)
	v1.PATCH("/config", s.handleUpdateConfig)
	v1.PUT("/model", s.handleSelectModel)
	v1.PUT("/credentials/:provider", s.handleUpdateCredential)

	return e
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ModelID   string            `json:"model_id"`
	Busy      bool              `json:"busy"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []messageResponse `json:"messages"`
}

type configResponse struct {
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	MaxOutputTokens   *int    `json:"max_output_tokens,omitempty"`
	SystemInstruction string  `json:"system_instruction,omitempty"`
}

type workspaceResponse struct {
	Sessions        []sessionResponse `json:"sessions"`
	ActiveSessionID string            `json:"active_session_id"`
	Config          configResponse    `json:"config"`
	SelectedModel   string            `json:"selected_model"`
	Models          []domain.AIModel  `json:"models"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type updateConfigRequest struct {
	Temperature       *float64 `json:"temperature"`
	TopP              *float64 `json:"top_p"`
	TopK              *int     `json:"top_k"`
	MaxOutputTokens   *int     `json:"max_output_tokens"`
	SystemInstruction *string  `json:"system_instruction"`
}

type selectModelRequest struct {
	ModelID string `json:"model_id"`
}

type updateCredentialRequest struct {
	Value string `json:"value"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetWorkspace(c echo.Context) error {
	store := s.svc.Workspace()

	sessions := store.Sessions()
	resp := workspaceResponse{
		Sessions:        make([]sessionResponse, 0, len(sessions)),
		ActiveSessionID: string(store.ActiveSessionID()),
		Config:          toConfigResponse(s.svc.Config()),
		SelectedModel:   s.svc.SelectedModel(),
		Models:          domain.AvailableModels,
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess, store.IsBusy(sess.ID)))
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleNewSession(c echo.Context) error {
	session := s.svc.NewSession()
	return c.JSON(http.StatusCreated, toSessionResponse(session, false))
}

func (s *Server) handleSelectSession(c echo.Context) error {
	s.svc.SelectSession(domain.SessionID(c.Param("id")))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	s.svc.DeleteSession(domain.SessionID(c.Param("id")))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "text is required")
	}

	msg, err := s.svc.SendTo(c.Request().Context(), domain.SessionID(c.Param("id")), req.Text, nil)
	if err != nil {
		return sendError(c, err)
	}
	if msg == nil {
		// Session was deleted while the stream ran.
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, toMessageResponse(msg))
}

// handleSendMessageStream runs a send and relays fragments as SSE events.
// Each event carries the delta; a final "done" event carries the settled
// message.
func (s *Server) handleSendMessageStream(c echo.Context) error {
	text := c.QueryParam("text")
	if strings.TrimSpace(text) == "" {
		return badRequest(c, "text query parameter is required")
	}

	h := c.Response().Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	flusher, _ := c.Response().Writer.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	flush()

	msg, err := s.svc.SendTo(
		c.Request().Context(),
		domain.SessionID(c.Param("id")),
		text,
		func(delta string) {
			writeSSE(c, "fragment", map[string]string{"text": delta})
			flush()
		},
	)
	if err != nil {
		writeSSE(c, "error", map[string]string{"error": err.Error()})
		flush()
		return nil
	}

	if msg != nil {
		writeSSE(c, "done", toMessageResponse(msg))
	} else {
		writeSSE(c, "done", map[string]string{})
	}
	flush()
	return nil
}

func (s *Server) handleUpdateConfig(c echo.Context) error {
	var req updateConfigRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	cfg := s.svc.UpdateConfig(domain.ConfigPatch{
		Temperature:       req.Temperature,
		TopP:              req.TopP,
		TopK:              req.TopK,
		MaxOutputTokens:   req.MaxOutputTokens,
		SystemInstruction: req.SystemInstruction,
	})

	return c.JSON(http.StatusOK, toConfigResponse(cfg))
}

func (s *Server) handleSelectModel(c echo.Context) error {
	var req selectModelRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	if err := s.svc.SelectModel(req.ModelID); err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUpdateCredential(c echo.Context) error {
	var req updateCredentialRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	if err := s.svc.UpdateCredential(c.Param("provider"), req.Value); err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			return badRequest(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toSessionResponse(sess *domain.Session, busy bool) sessionResponse {
	resp := sessionResponse{
		ID:        string(sess.ID),
		Title:     sess.Title,
		ModelID:   sess.ModelID,
		Busy:      busy,
		CreatedAt: sess.CreatedAt,
		Messages:  make([]messageResponse, 0, len(sess.Messages)),
	}
	for _, m := range sess.Messages {
		resp.Messages = append(resp.Messages, toMessageResponse(m))
	}
	return resp
}

func toConfigResponse(cfg domain.ModelConfig) configResponse {
	return configResponse{
		Temperature:       cfg.Temperature,
		TopP:              cfg.TopP,
		TopK:              cfg.TopK,
		MaxOutputTokens:   cfg.MaxOutputTokens,
		SystemInstruction: cfg.SystemInstruction,
	}
}

func sendError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNoActiveSession):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionBusy):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return internalError(c, err)
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

func internalError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeSSE(c echo.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data)
}
