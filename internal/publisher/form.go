package publisher

import "strings"

const (
	uploadSucceededMessage = "Gospel uploaded successfully!"
	uploadFailedMessage    = "Failed to upload. Please try again."
)

// ImageSelection describes the image attached to the form, whether picked
// from a file dialog, captured by camera, or pasted from the clipboard.
type ImageSelection struct {
	Name        string
	ContentType string
}

// Form tracks the upload form's fields and its submission flag. Only one
// upsert is in flight at a time: the flag disables the submit control until
// the outcome arrives.
type Form struct {
	date       string
	text       string
	image      *ImageSelection
	submitting bool
	status     string
}

// NewForm returns a form preset to the given date (the publisher defaults it
// to today).
func NewForm(date string) *Form {
	return &Form{date: date}
}

// Date returns the target calendar date.
func (f *Form) Date() string {
	return f.date
}

// SetDate retargets the form to another date.
func (f *Form) SetDate(date string) {
	f.date = date
}

// Text returns the entered text.
func (f *Form) Text() string {
	return f.text
}

// SetText replaces the entered text.
func (f *Form) SetText(text string) {
	f.text = text
}

// Image returns the attached image, if any.
func (f *Form) Image() *ImageSelection {
	return f.image
}

// AttachImage replaces the attached image.
func (f *Form) AttachImage(selection ImageSelection) {
	f.image = &selection
}

// ClearImage detaches the image.
func (f *Form) ClearImage() {
	f.image = nil
}

// Submitting reports whether an upsert is in flight.
func (f *Form) Submitting() bool {
	return f.submitting
}

// Status returns the inline message shown under the submit control.
func (f *Form) Status() string {
	return f.status
}

// CanSubmit reports whether the submit control is enabled: no submission in
// flight and at least one of text or image present.
func (f *Form) CanSubmit() bool {
	if f.submitting {
		return false
	}
	return strings.TrimSpace(f.text) != "" || f.image != nil
}

// BeginSubmit raises the in-flight flag and reports whether a submission may
// start.
func (f *Form) BeginSubmit() bool {
	if !f.CanSubmit() {
		return false
	}
	f.submitting = true
	f.status = ""
	return true
}

// FinishSubmit records the outcome. Success clears the content fields for the
// next entry; the date stays so a correction can be resubmitted. A failure
// keeps the fields and surfaces a message inline; the user retries manually.
func (f *Form) FinishSubmit(succeeded bool, message string) {
	f.submitting = false
	if !succeeded {
		if message == "" {
			message = uploadFailedMessage
		}
		f.status = message
		return
	}
	f.text = ""
	f.image = nil
	if message == "" {
		message = uploadSucceededMessage
	}
	f.status = message
}
