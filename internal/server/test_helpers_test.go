package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gospel-app/backend/internal/auth"
	"github.com/gospel-app/backend/internal/gospel"
	"github.com/gospel-app/backend/internal/trust"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testAdminSecret        = "test-admin-secret"
	testTrustedFingerprint = "fp-trusted-device"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "gospel.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&gospel.Entry{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	contentService, err := gospel.NewService(gospel.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct content service: %v", err)
	}

	sessionIssuer := auth.NewSessionIssuer(auth.SessionIssuerConfig{
		SigningSecret: []byte("test-session-signing-secret"),
		SessionTTL:    time.Hour,
	})

	handler, err := NewHTTPHandler(Dependencies{
		ContentService: contentService,
		TrustChecker:   trust.NewRegistry(testTrustedFingerprint),
		SessionManager: sessionIssuer,
		AdminSecret:    testAdminSecret,
		Logger:         zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct handler: %v", err)
	}
	return handler
}

type multipartBody struct {
	buffer      bytes.Buffer
	contentType string
}

func buildMultipartBody(t *testing.T, fields map[string]string, imageName, imageContentType string, imageBytes []byte) *multipartBody {
	t.Helper()

	body := &multipartBody{}
	writer := multipart.NewWriter(&body.buffer)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field %s: %v", name, err)
		}
	}
	if imageBytes != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+imageName+`"`)
		if imageContentType != "" {
			header.Set("Content-Type", imageContentType)
		}
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create image part: %v", err)
		}
		if _, err := part.Write(imageBytes); err != nil {
			t.Fatalf("failed to write image bytes: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	body.contentType = writer.FormDataContentType()
	return body
}
