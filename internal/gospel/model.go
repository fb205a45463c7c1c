package gospel

import (
	"errors"
	"fmt"
	"strings"
)

const maxDateKeyLength = 190

// ErrInvalidDateKey indicates that a calendar-date key is empty or exceeds storage bounds.
var ErrInvalidDateKey = errors.New("gospel: invalid date key")

// DateKey represents a validated calendar-date key in YYYY-MM-DD form. The
// calendar format itself is not checked beyond trimming and a length bound: a
// malformed date simply matches no stored entry.
type DateKey string

// NewDateKey validates raw input and returns a DateKey.
func NewDateKey(rawInput string) (DateKey, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDateKey)
	}
	if len(trimmed) > maxDateKeyLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidDateKey, maxDateKeyLength)
	}
	return DateKey(trimmed), nil
}

// String returns the underlying date string.
func (k DateKey) String() string {
	return string(k)
}

// Entry models the published content for one calendar date. Text and image are
// each optional, but a stored entry always carries at least one of the two;
// ContentType is present exactly when ImageData is.
type Entry struct {
	Date             string  `gorm:"column:date;primaryKey;size:190;not null"`
	Text             *string `gorm:"column:text;type:text"`
	ImageData        *string `gorm:"column:image_data;type:text"`
	ContentType      *string `gorm:"column:content_type;size:255"`
	CreatedAtSeconds int64   `gorm:"column:created_at_s;not null"`
	UpdatedAtSeconds int64   `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Entry) TableName() string {
	return "gospel_entries"
}

// HasContent reports whether the entry carries text, an image, or both.
func (e Entry) HasContent() bool {
	return e.Text != nil || e.ImageData != nil
}

// ImageUpload carries raw image bytes and their MIME type as received from the
// publisher form.
type ImageUpload struct {
	Bytes       []byte
	ContentType string
}

// UpsertRequest describes one publish request for a calendar date. Absent
// fields are cleared on the stored entry, not left stale.
type UpsertRequest struct {
	Date  DateKey
	Text  *string
	Image *ImageUpload
}
