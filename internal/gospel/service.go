package gospel

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()

	// ErrEntryNotFound signals a date with no published entry. It is a valid
	// empty read result, not a failure.
	ErrEntryNotFound = errors.New("gospel: entry not found")
	// ErrMissingDate rejects a write without a date key.
	ErrMissingDate = errors.New("missing date")
	// ErrMissingContent rejects a write carrying neither text nor image.
	ErrMissingContent = errors.New("missing content")
)

// ServiceError carries a dotted operation.reason code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew  = "gospel.service.new"
	opGetEntry    = "gospel.get_entry"
	opUpsertEntry = "gospel.upsert_entry"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies of the content service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service mediates reads and writes of daily entries against the content
// store. It holds no state between requests.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the content service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// GetEntry returns the entry published for the given date. A date never
// written yields ErrEntryNotFound; store failures surface as ServiceError.
func (s *Service) GetEntry(ctx context.Context, date DateKey) (Entry, error) {
	if s.db == nil {
		s.logError(opGetEntry, "missing_database", errMissingDatabase)
		return Entry{}, newServiceError(opGetEntry, "missing_database", errMissingDatabase)
	}
	if date.String() == "" {
		return Entry{}, ErrMissingDate
	}

	var entry Entry
	err := s.db.WithContext(ctx).
		Where("date = ?", date.String()).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		s.logError(opGetEntry, "query_failed", err, zap.String("date", date.String()))
		return Entry{}, newServiceError(opGetEntry, "query_failed", err)
	}

	return entry, nil
}

// UpsertEntry inserts or fully replaces the entry for the request's date in a
// single atomic store write. An absent image clears any previously stored
// image; blank text counts as absent. Resubmitting identical arguments leaves
// the stored content unchanged.
func (s *Service) UpsertEntry(ctx context.Context, request UpsertRequest) (Entry, error) {
	if s.db == nil {
		s.logError(opUpsertEntry, "missing_database", errMissingDatabase)
		return Entry{}, newServiceError(opUpsertEntry, "missing_database", errMissingDatabase)
	}
	if request.Date.String() == "" {
		return Entry{}, ErrMissingDate
	}

	text := request.Text
	if text != nil && strings.TrimSpace(*text) == "" {
		text = nil
	}
	image := request.Image
	if image != nil && len(image.Bytes) == 0 {
		image = nil
	}
	if text == nil && image == nil {
		return Entry{}, ErrMissingContent
	}

	var imageData, contentType *string
	if image != nil {
		encoded := base64.StdEncoding.EncodeToString(image.Bytes)
		mime := strings.TrimSpace(image.ContentType)
		imageData = &encoded
		contentType = &mime
	}

	nowSeconds := s.clock().UTC().Unix()
	entry := Entry{
		Date:             request.Date.String(),
		Text:             text,
		ImageData:        imageData,
		ContentType:      contentType,
		CreatedAtSeconds: nowSeconds,
		UpdatedAtSeconds: nowSeconds,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"text":         text,
				"image_data":   imageData,
				"content_type": contentType,
				"updated_at_s": nowSeconds,
			}),
		}).
		Create(&entry).Error
	if err != nil {
		s.logError(opUpsertEntry, "upsert_failed", err, zap.String("date", request.Date.String()))
		return Entry{}, newServiceError(opUpsertEntry, "upsert_failed", err)
	}

	return entry, nil
}

// IsValidationError reports whether the error is a rejected user input rather
// than a store failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingDate) ||
		errors.Is(err, ErrMissingContent) ||
		errors.Is(err, ErrInvalidDateKey)
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("gospel service error", attrs...)
}
