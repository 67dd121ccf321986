package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-journal/backend/internal/content"
	"github.com/folio-journal/backend/internal/editor"
	"github.com/folio-journal/backend/internal/entries"
	"github.com/folio-journal/backend/internal/markup"
)

type openSessionRequest struct {
	EntryID *int64  `json:"entry_id"`
	Text    *string `json:"text"`
	Format  string  `json:"format"`
}

type openSessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Text      string `json:"text"`
	Format    string `json:"format"`
	Tab       string `json:"tab"`
}

// handleOpenSession opens an editor session, either on an existing entry's
// stored text or on caller-supplied draft text.
func (h *httpHandler) handleOpenSession(c *gin.Context) {
	var request openSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	format := content.FormatUnknown
	if request.Format != "" {
		parsed, err := content.ParseFormat(request.Format)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_format"})
			return
		}
		format = parsed
	}

	text := ""
	if request.Text != nil {
		text = *request.Text
	}
	if request.EntryID != nil {
		entry, err := h.entriesService.Get(c.Request.Context(), *request.EntryID)
		if errors.Is(err, entries.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": entryNotFoundMessage})
			return
		}
		if err != nil {
			h.respondServiceError(c, err)
			return
		}
		if entry.Text != nil {
			text = *entry.Text
		}
		if format == content.FormatUnknown {
			format = entry.Format()
		}
	}

	session, err := h.sessions.Open(request.EntryID, text, format)
	if err != nil {
		h.logger.Error("failed to open editor session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_open_failed"})
		return
	}
	token, expiresIn, err := h.tokens.IssueSessionToken(session.ID())
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusCreated, openSessionResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		Text:      session.Text(),
		Format:    string(session.Format()),
		Tab:       string(session.ActiveTab()),
	})
}

// authorizeSession validates the bearer session token and resolves the
// session it addresses.
func (h *httpHandler) authorizeSession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	sessionID, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("session token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(sessionIDContextKey, sessionID)
	c.Next()
}

// sessionFromContext loads the session addressed by the validated token.
func (h *httpHandler) sessionFromContext(c *gin.Context) (*editor.Session, bool) {
	session, err := h.sessions.Get(c.GetString(sessionIDContextKey))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return nil, false
	}
	return session, true
}

type sessionStateResponse struct {
	Text       string          `json:"text"`
	Format     string          `json:"format"`
	Tab        string          `json:"tab"`
	FieldFlags map[string]bool `json:"field_flags,omitempty"`
}

func (h *httpHandler) respondSessionState(c *gin.Context, session *editor.Session) {
	flags := map[string]bool{}
	for kind := range session.FieldFlags() {
		flags[string(kind)] = true
	}
	c.JSON(http.StatusOK, sessionStateResponse{
		Text:       session.Text(),
		Format:     string(session.Format()),
		Tab:        string(session.ActiveTab()),
		FieldFlags: flags,
	})
}

func (h *httpHandler) handleGetSession(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	h.respondSessionState(c, session)
}

func (h *httpHandler) handleCloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.GetString(sessionIDContextKey)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}

type saveSelectionRequest struct {
	Selection *markup.Selection `json:"selection"`
	StartRune *int              `json:"start_rune"`
	EndRune   *int              `json:"end_rune"`
}

// handleSaveSelection captures the saved selection, either as an explicit
// path descriptor or as a global rune interval over the plain text.
func (h *httpHandler) handleSaveSelection(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	var request saveSelectionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	switch {
	case request.Selection != nil:
		session.SaveSelection(*request.Selection)
	case request.StartRune != nil && request.EndRune != nil:
		if _, err := session.SelectTextRange(*request.StartRune, *request.EndRune); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "selection_unresolvable"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	h.respondSessionState(c, session)
}

type toggleFormatRequest struct {
	Kind string `json:"kind"`
}

var booleanStyleKinds = map[string]markup.StyleKind{
	"bold":          markup.StyleBold,
	"italic":        markup.StyleItalic,
	"underline":     markup.StyleUnderline,
	"strikethrough": markup.StyleStrike,
	"strike":        markup.StyleStrike,
}

func (h *httpHandler) handleToggleFormat(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	var request toggleFormatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	kind, ok := booleanStyleKinds[strings.ToLower(strings.TrimSpace(request.Kind))]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_style_kind"})
		return
	}
	if err := session.ToggleStyle(kind); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_style_kind"})
		return
	}
	h.respondSessionState(c, session)
}

type applyStyleRequest struct {
	Color      *string `json:"color"`
	FontFamily *string `json:"font_family"`
	FontSizePx *int    `json:"font_size_px"`
}

func (h *httpHandler) handleApplyStyle(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	var request applyStyleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	switch {
	case request.Color != nil:
		_ = session.ApplyColor(*request.Color)
	case request.FontFamily != nil:
		_ = session.ApplyFontFamily(*request.FontFamily)
	case request.FontSizePx != nil:
		_ = session.ApplyFontSize(*request.FontSizePx)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	h.respondSessionState(c, session)
}

type insertLinkRequest struct {
	URL string `json:"url"`
}

func (h *httpHandler) handleInsertLink(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	var request insertLinkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := session.InsertLink(request.URL); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please select some text first"})
		return
	}
	h.respondSessionState(c, session)
}

type insertImagePayloadRequest struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

// handleInsertImage accepts either a multipart image file or a JSON drop
// payload. Unsupported payloads are silently ignored, mirroring the drop
// handling of the editable surface.
func (h *httpHandler) handleInsertImage(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		defer file.Close()
		if readErr := <-session.InsertImageFile(fileHeader.Header.Get("Content-Type"), file); readErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image_read_failed"})
			return
		}
		h.respondSessionState(c, session)
		return
	}

	var request insertImagePayloadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	session.InsertImageFromDrop(request.HTML, request.Text)
	h.respondSessionState(c, session)
}

type resizeImageRequest struct {
	Action         string `json:"action"`
	ImageIndex     int    `json:"image_index"`
	ClientX        int    `json:"client_x"`
	StartWidth     int    `json:"start_width"`
	ContainerWidth int    `json:"container_width"`
}

func (h *httpHandler) handleResizeImage(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	var request resizeImageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	switch strings.ToLower(strings.TrimSpace(request.Action)) {
	case "begin":
		if err := session.BeginImageResize(request.ImageIndex, request.ClientX, request.StartWidth, request.ContainerWidth); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no_such_image"})
			return
		}
	case "move":
		session.MoveImageResize(request.ClientX)
	case "end":
		session.EndImageResize()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_action"})
		return
	}
	h.respondSessionState(c, session)
}

type switchTabRequest struct {
	Tab string `json:"tab"`
}

func (h *httpHandler) handleSwitchTab(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	var request switchTabRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	tab, err := editor.ParseTab(request.Tab)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_tab"})
		return
	}
	session.SwitchTab(tab)
	h.respondSessionState(c, session)
}

// handleSaveSession writes the session's current text back to its bound
// entry.
func (h *httpHandler) handleSaveSession(c *gin.Context) {
	session, ok := h.sessionFromContext(c)
	if !ok {
		return
	}
	entryID := session.EntryID()
	if entryID == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session_not_bound"})
		return
	}
	text := session.Text()
	format := session.Format()
	entry, err := h.entriesService.Update(c.Request.Context(), *entryID, entries.Patch{
		Text:       &text,
		TextFormat: &format,
	})
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
