package publisher

import "testing"

func TestFormCannotSubmitWithoutContent(t *testing.T) {
	form := NewForm("2025-03-15")
	if form.CanSubmit() {
		t.Fatalf("empty form must not be submittable")
	}
	form.SetText("   ")
	if form.CanSubmit() {
		t.Fatalf("blank text must not enable submission")
	}
}

func TestFormSubmitsWithTextOrImage(t *testing.T) {
	withText := NewForm("2025-03-15")
	withText.SetText("a reading")
	if !withText.CanSubmit() {
		t.Fatalf("text should enable submission")
	}

	withImage := NewForm("2025-03-15")
	withImage.AttachImage(ImageSelection{Name: "pasted-image.png", ContentType: "image/png"})
	if !withImage.CanSubmit() {
		t.Fatalf("image should enable submission")
	}
}

func TestOnlyOneSubmissionInFlight(t *testing.T) {
	form := NewForm("2025-03-15")
	form.SetText("a reading")

	if !form.BeginSubmit() {
		t.Fatalf("first submission should start")
	}
	if !form.Submitting() {
		t.Fatalf("submitting flag should be raised")
	}
	if form.BeginSubmit() {
		t.Fatalf("second submission must be blocked while one is in flight")
	}
}

func TestSuccessfulSubmitClearsContentFields(t *testing.T) {
	form := NewForm("2025-03-15")
	form.SetText("a reading")
	form.AttachImage(ImageSelection{Name: "photo.jpg", ContentType: "image/jpeg"})

	if !form.BeginSubmit() {
		t.Fatalf("submission should start")
	}
	form.FinishSubmit(true, "")

	if form.Submitting() {
		t.Fatalf("submitting flag should clear")
	}
	if form.Text() != "" || form.Image() != nil {
		t.Fatalf("content fields should be cleared after success")
	}
	if form.Date() != "2025-03-15" {
		t.Fatalf("date should survive a successful submit")
	}
	if form.Status() != uploadSucceededMessage {
		t.Fatalf("unexpected status: %q", form.Status())
	}
}

func TestFailedSubmitKeepsFieldsForManualRetry(t *testing.T) {
	form := NewForm("2025-03-15")
	form.SetText("a reading")

	if !form.BeginSubmit() {
		t.Fatalf("submission should start")
	}
	form.FinishSubmit(false, "")

	if form.Text() != "a reading" {
		t.Fatalf("failed submit must keep the entered text")
	}
	if form.Status() != uploadFailedMessage {
		t.Fatalf("unexpected status: %q", form.Status())
	}
	if !form.CanSubmit() {
		t.Fatalf("the user resubmits manually after a failure")
	}
}

func TestFailedSubmitSurfacesServerMessage(t *testing.T) {
	form := NewForm("2025-03-15")
	form.SetText("a reading")
	form.BeginSubmit()
	form.FinishSubmit(false, "missing_content")
	if form.Status() != "missing_content" {
		t.Fatalf("server validation message should surface verbatim, got %q", form.Status())
	}
}
