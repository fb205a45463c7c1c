package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gospel-app/backend/internal/gospel"
	"github.com/gospel-app/backend/internal/trust"
	"go.uber.org/zap"
)

const (
	requestIDContextKey = "gospel_request_id"
	requestIDHeader     = "X-Request-Id"

	// Shown to readers for dates with no published entry; a miss is a
	// successful empty result, not an error.
	noContentPlaceholder = "No gospel for this day."

	maxImageBytes = 10 << 20
)

var (
	errMissingContentService = errors.New("content service dependency required")
	errMissingTrustChecker   = errors.New("trust checker dependency required")
	errMissingSessionManager = errors.New("session manager dependency required")
	errMissingAdminSecret    = errors.New("admin secret required")
	errImageTooLarge         = errors.New("image exceeds size limit")
)

// SessionManager issues signed session tokens once the publisher gate is passed.
type SessionManager interface {
	IssueAdminSession(subject string) (string, int64, error)
	ValidateSession(token string) (string, error)
}

// Dependencies wires the HTTP layer to its collaborators.
type Dependencies struct {
	ContentService *gospel.Service
	TrustChecker   trust.DeviceTrustChecker
	SessionManager SessionManager
	AdminSecret    string
	Logger         *zap.Logger
}

// NewHTTPHandler builds the gin router serving the content, trust, and login
// endpoints.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.ContentService == nil {
		return nil, errMissingContentService
	}
	if deps.TrustChecker == nil {
		return nil, errMissingTrustChecker
	}
	if deps.SessionManager == nil {
		return nil, errMissingSessionManager
	}
	if strings.TrimSpace(deps.AdminSecret) == "" {
		return nil, errMissingAdminSecret
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIdentifier())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		content:     deps.ContentService,
		trust:       deps.TrustChecker,
		sessions:    deps.SessionManager,
		adminSecret: deps.AdminSecret,
		logger:      logger,
	}

	router.GET("/content", handler.handleGetContent)
	router.POST("/content", handler.handlePostContent)
	router.GET("/trust", handler.handleTrustCheck)
	router.POST("/auth/login", handler.handleLogin)
	router.GET("/auth/session", handler.handleSessionCheck)

	return router, nil
}

type httpHandler struct {
	content     *gospel.Service
	trust       trust.DeviceTrustChecker
	sessions    SessionManager
	adminSecret string
	logger      *zap.Logger
}

// requestIdentifier tags every request with a UUIDv7 identifier, echoed back
// in the response headers and attached to error logs.
func requestIdentifier() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			if value, err := uuid.NewV7(); err == nil {
				requestID = value.String()
			}
		}
		c.Set(requestIDContextKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

type contentResponsePayload struct {
	Date        string  `json:"date"`
	Text        *string `json:"text"`
	ImageData   *string `json:"imageData"`
	ContentType *string `json:"contentType"`
}

func (h *httpHandler) handleGetContent(c *gin.Context) {
	rawDate := c.Query("date")
	dateKey, err := gospel.NewDateKey(rawDate)
	if err != nil {
		if strings.TrimSpace(rawDate) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_date"})
			return
		}
		// A key too long for storage cannot match any stored entry; like any
		// other malformed date, it reads as a miss.
		placeholder := noContentPlaceholder
		c.JSON(http.StatusOK, contentResponsePayload{
			Date: strings.TrimSpace(rawDate),
			Text: &placeholder,
		})
		return
	}

	entry, err := h.content.GetEntry(c.Request.Context(), dateKey)
	if errors.Is(err, gospel.ErrEntryNotFound) {
		placeholder := noContentPlaceholder
		c.JSON(http.StatusOK, contentResponsePayload{
			Date: dateKey.String(),
			Text: &placeholder,
		})
		return
	}
	if err != nil {
		h.logRequestError(c, "content read failed", err)
		c.JSON(http.StatusInternalServerError, storeErrorPayload(err))
		return
	}

	c.JSON(http.StatusOK, contentResponsePayload{
		Date:        entry.Date,
		Text:        entry.Text,
		ImageData:   entry.ImageData,
		ContentType: entry.ContentType,
	})
}

func (h *httpHandler) handlePostContent(c *gin.Context) {
	rawDate := c.PostForm("date")
	dateKey, err := gospel.NewDateKey(rawDate)
	if err != nil {
		if strings.TrimSpace(rawDate) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_date"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}

	text := c.PostForm("text")
	request := gospel.UpsertRequest{
		Date: dateKey,
		Text: &text,
	}

	fileHeader, err := c.FormFile("image")
	switch {
	case err == nil:
		image, readErr := readImageUpload(fileHeader)
		if errors.Is(readErr, errImageTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image_too_large"})
			return
		}
		if readErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_image"})
			return
		}
		request.Image = image
	case errors.Is(err, http.ErrMissingFile):
		// text-only submission
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_image"})
		return
	}

	if _, err := h.content.UpsertEntry(c.Request.Context(), request); err != nil {
		switch {
		case errors.Is(err, gospel.ErrMissingDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_date"})
		case errors.Is(err, gospel.ErrMissingContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_content"})
		default:
			h.logRequestError(c, "content upsert failed", err)
			c.JSON(http.StatusInternalServerError, storeErrorPayload(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *httpHandler) handleTrustCheck(c *gin.Context) {
	fingerprint := strings.TrimSpace(c.Query("fp"))
	if fingerprint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_fingerprint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trusted": h.trust.IsTrusted(fingerprint)})
}

type loginRequestPayload struct {
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint"`
}

type loginResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// handleLogin passes the publisher gate server-side: an exact password match
// or a trusted device fingerprint yields a signed session token. Wrong
// credentials simply return 401; there is no lockout or throttling.
func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	subject := ""
	switch {
	case request.Password != "":
		if request.Password != h.adminSecret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		subject = "admin"
	case strings.TrimSpace(request.Fingerprint) != "":
		fingerprint := strings.TrimSpace(request.Fingerprint)
		if !h.trust.IsTrusted(fingerprint) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		subject = "device:" + fingerprint
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	token, expiresIn, err := h.sessions.IssueAdminSession(subject)
	if err != nil {
		h.logRequestError(c, "session issue failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

// handleSessionCheck validates a previously issued session token so the
// admin page can restore its authenticated state on load instead of
// re-prompting for the password.
func (h *httpHandler) handleSessionCheck(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	subject, err := h.sessions.ValidateSession(token)
	if err != nil {
		h.logger.Warn("session validation failed",
			zap.String("request_id", c.GetString(requestIDContextKey)),
			zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subject})
}

// readImageUpload drains the multipart image part. The MIME type comes from
// the part header when present and is sniffed from the bytes otherwise. A
// part larger than maxImageBytes is rejected outright rather than truncated.
func readImageUpload(fileHeader *multipart.FileHeader) (*gospel.ImageUpload, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(imageBytes) > maxImageBytes {
		return nil, errImageTooLarge
	}

	contentType := strings.TrimSpace(fileHeader.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(imageBytes).String()
	}

	return &gospel.ImageUpload{
		Bytes:       imageBytes,
		ContentType: contentType,
	}, nil
}

func storeErrorPayload(err error) gin.H {
	payload := gin.H{"error": "store_error"}
	var serviceErr *gospel.ServiceError
	if errors.As(err, &serviceErr) {
		payload["code"] = serviceErr.Code()
	}
	return payload
}

func (h *httpHandler) logRequestError(c *gin.Context, message string, err error) {
	h.logger.Error(message,
		zap.String("request_id", c.GetString(requestIDContextKey)),
		zap.Error(err))
}
