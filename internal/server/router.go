package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-journal/backend/internal/content"
	"github.com/folio-journal/backend/internal/editor"
	"github.com/folio-journal/backend/internal/entries"
)

const sessionIDContextKey = "folio_session_id"

const entryNotFoundMessage = "Entry not found"

var (
	errMissingEntriesService = errors.New("entries service dependency required")
	errMissingSessions       = errors.New("session registry dependency required")
	errMissingTokenManager   = errors.New("token manager dependency required")
	errInvalidAuthorization  = errors.New("authorization header missing or invalid")
)

// SessionTokenManager signs and validates editor session tokens.
type SessionTokenManager interface {
	IssueSessionToken(sessionID string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP surface to the services behind it.
type Dependencies struct {
	EntriesService *entries.Service
	Sessions       *editor.Registry
	TokenManager   SessionTokenManager
	Logger         *zap.Logger
}

// NewHTTPHandler assembles the gin router for the entry CRUD API and the
// editor session API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.EntriesService == nil {
		return nil, errMissingEntriesService
	}
	if deps.Sessions == nil {
		return nil, errMissingSessions
	}
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		entriesService: deps.EntriesService,
		sessions:       deps.Sessions,
		tokens:         deps.TokenManager,
		logger:         logger,
	}

	api := router.Group("/api")
	api.GET("/entries", handler.handleListEntries)
	api.POST("/entries", handler.handleCreateEntry)
	api.GET("/entries/:id", handler.handleGetEntry)
	api.PUT("/entries/:id", handler.handleUpdateEntry)
	api.DELETE("/entries/:id", handler.handleDeleteEntry)

	api.POST("/editor/sessions", handler.handleOpenSession)
	session := api.Group("/editor/session")
	session.Use(handler.authorizeSession)
	session.GET("", handler.handleGetSession)
	session.DELETE("", handler.handleCloseSession)
	session.POST("/selection", handler.handleSaveSelection)
	session.POST("/format", handler.handleToggleFormat)
	session.POST("/style", handler.handleApplyStyle)
	session.POST("/link", handler.handleInsertLink)
	session.POST("/images", handler.handleInsertImage)
	session.POST("/images/resize", handler.handleResizeImage)
	session.POST("/tab", handler.handleSwitchTab)
	session.POST("/save", handler.handleSaveSession)

	return router, nil
}

type httpHandler struct {
	entriesService *entries.Service
	sessions       *editor.Registry
	tokens         SessionTokenManager
	logger         *zap.Logger
}

type entryPayload struct {
	ID         int64   `json:"id"`
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Caption    *string `json:"caption"`
	Image      *string `json:"image"`
	Text       *string `json:"text"`
	TextFormat string  `json:"text_format,omitempty"`
	Date       string  `json:"date"`
}

func toEntryPayload(entry entries.Entry) entryPayload {
	return entryPayload{
		ID:         entry.ID,
		Title:      entry.Title,
		Author:     entry.Author,
		Caption:    entry.Caption,
		Image:      entry.Image,
		Text:       entry.Text,
		TextFormat: entry.TextFormat,
		Date:       entry.Date.UTC().Format(time.RFC3339),
	}
}

type entryRequestPayload struct {
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Caption    *string `json:"caption"`
	Image      *string `json:"image"`
	Text       *string `json:"text"`
	TextFormat *string `json:"text_format"`
}

func (h *httpHandler) handleListEntries(c *gin.Context) {
	list, err := h.entriesService.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	payload := make([]entryPayload, 0, len(list))
	for _, entry := range list {
		payload = append(payload, toEntryPayload(entry))
	}
	c.JSON(http.StatusOK, payload)
}

func (h *httpHandler) handleCreateEntry(c *gin.Context) {
	var request entryRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	format := content.FormatUnknown
	if request.TextFormat != nil {
		parsed, err := content.ParseFormat(*request.TextFormat)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_text_format"})
			return
		}
		format = parsed
	}
	entry, err := h.entriesService.Create(c.Request.Context(), entries.Draft{
		Title:      request.Title,
		Author:     request.Author,
		Caption:    request.Caption,
		Image:      request.Image,
		Text:       request.Text,
		TextFormat: format,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEntryPayload(entry))
}

func (h *httpHandler) handleGetEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}
	entry, err := h.entriesService.Get(c.Request.Context(), id)
	if errors.Is(err, entries.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": entryNotFoundMessage})
		return
	}
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryPayload(entry))
}

func (h *httpHandler) handleUpdateEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}
	var request entryRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	patch := entries.Patch{
		Title:   request.Title,
		Author:  request.Author,
		Caption: request.Caption,
		Image:   request.Image,
		Text:    request.Text,
	}
	if request.TextFormat != nil {
		parsed, err := content.ParseFormat(*request.TextFormat)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_text_format"})
			return
		}
		patch.TextFormat = &parsed
	}
	entry, err := h.entriesService.Update(c.Request.Context(), id, patch)
	if errors.Is(err, entries.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": entryNotFoundMessage})
		return
	}
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryPayload(entry))
}

func (h *httpHandler) handleDeleteEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}
	err := h.entriesService.Delete(c.Request.Context(), id)
	if errors.Is(err, entries.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": entryNotFoundMessage})
		return
	}
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
}

func parseEntryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": entryNotFoundMessage})
		return 0, false
	}
	return id, true
}

func (h *httpHandler) respondServiceError(c *gin.Context, err error) {
	h.logger.Error("entries service call failed", zap.Error(err))
	var serviceErr *entries.ServiceError
	if errors.As(err, &serviceErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_failure", "code": serviceErr.Code()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "store_failure"})
}
