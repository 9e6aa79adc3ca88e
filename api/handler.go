package api

import (
	"errors"
	"net/http"

	"github.com/elnormous/contenttype"
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/sessionstream/errors"
	"github.com/kbukum/sessionstream/logger"
	"github.com/kbukum/sessionstream/server"
	"github.com/kbukum/sessionstream/session"
	"github.com/kbukum/sessionstream/sse"
	"github.com/kbukum/sessionstream/validation"
)

// MaxUsernameLength bounds the submitted username, counted in characters.
const MaxUsernameLength = 256

var (
	eventStreamMediaType  = contenttype.NewMediaType("text/event-stream")
	eventStreamMediaTypes = []contenttype.MediaType{eventStreamMediaType}

	errStreamingUnsupported = errors.New("streaming not supported")
)

// SessionCreator creates sessions.
type SessionCreator interface {
	Create(payload string) (*session.Session, error)
}

// Scheduler starts the producer for a new session.
type Scheduler interface {
	Schedule(s *session.Session)
}

// Streamer serves one session as an event stream.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, id string) sse.Result
}

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	Username string `json:"username" validate:"required,notblank,max=256,printable"`
}

// SubmitResponse is returned by POST /submit.
type SubmitResponse struct {
	SessionID string `json:"session_id"`
}

// Handler serves the session endpoints.
type Handler struct {
	sessions  SessionCreator
	scheduler Scheduler
	streamer  Streamer
	log       *logger.Logger
}

// NewHandler wires the handler to the registry, producer and dispatcher.
func NewHandler(sessions SessionCreator, scheduler Scheduler, streamer Streamer) *Handler {
	return &Handler{
		sessions:  sessions,
		scheduler: scheduler,
		streamer:  streamer,
		log:       logger.Get("api"),
	}
}

// Register mounts the routes. submitMiddleware runs before Submit only,
// e.g. a rate limit.
func (h *Handler) Register(r gin.IRouter, submitMiddleware ...gin.HandlerFunc) {
	r.GET("/", h.Index)
	r.POST("/submit", append(submitMiddleware, h.Submit)...)
	r.GET("/stream/:session_id", h.Stream)
}

// Submit creates a session for the username and schedules its producer.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.RespondWithError(c, apperrors.PayloadTooLarge(tooLarge.Limit))
			return
		}
		server.RespondWithError(c, apperrors.InvalidInput("body", "expected a JSON object with a username"))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	s, err := h.sessions.Create(req.Username)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("Session creation failed", logger.ErrorFields("submit", err))
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	h.scheduler.Schedule(s)

	h.log.WithContext(c.Request.Context()).Info("Session submitted", logger.SessionFields(s.ID()))
	server.RespondOK(c, SubmitResponse{SessionID: s.ID()})
}

// Stream serves the session as text/event-stream. Unknown ids still get a
// 200 stream carrying a single error frame.
func (h *Handler) Stream(c *gin.Context) {
	if _, _, err := contenttype.GetAcceptableMediaType(c.Request, eventStreamMediaTypes); err != nil {
		server.RespondWithError(c, apperrors.NotAcceptable(eventStreamMediaType.String()))
		return
	}

	switch h.streamer.Serve(c.Writer, c.Request, c.Param("session_id")) {
	case sse.ResultBusy:
		server.RespondWithError(c, apperrors.Conflict("session is already being streamed"))
	case sse.ResultOverloaded:
		server.RespondWithError(c, apperrors.ServiceUnavailable("stream capacity"))
	case sse.ResultUnsupported:
		server.RespondWithError(c, apperrors.Internal(errStreamingUnsupported))
	}
}

// Index serves the demo page.
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
