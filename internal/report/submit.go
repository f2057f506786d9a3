// Package report implements the citizen's "report new road damage" form:
// location capture, photo preparation and submission.
package report

import (
	"context"
	stderrors "errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"roadfix/internal/api"
	"roadfix/internal/complaint"
	apperrors "roadfix/internal/errors"
	"roadfix/internal/notify"
)

var validate = validator.New()

// Form is the report screen state. The zero value is not ready for use;
// start from NewForm.
type Form struct {
	Location    string             `validate:"required"`
	Latitude    float64            `validate:"gte=-90,lte=90"`
	Longitude   float64            `validate:"gte=-180,lte=180"`
	Description string             `validate:"required"`
	Priority    complaint.Priority `validate:"required,oneof=Low Medium High"`
	Photo       *Photo             `validate:"-"`
}

// NewForm returns an empty form with Medium priority.
func NewForm() Form {
	return Form{Priority: complaint.PriorityMedium}
}

// ApplyLocation copies a resolved location into the form.
func (f *Form) ApplyLocation(loc Location) {
	f.Location = loc.Name
	f.Latitude = loc.Latitude
	f.Longitude = loc.Longitude
}

// Creator is the part of the API client used for submission.
type Creator interface {
	CreateComplaint(ctx context.Context, nc api.NewComplaint) error
}

// Notifier surfaces outcomes to the user.
type Notifier interface {
	Success(message string) notify.ID
	Error(message string) notify.ID
}

// Submitter sends reports.
type Submitter struct {
	client Creator
	notes  Notifier
	photo  PhotoOptions
	now    func() time.Time
}

// NewSubmitter creates a submitter.
func NewSubmitter(client Creator, notes Notifier, photo PhotoOptions) *Submitter {
	return &Submitter{client: client, notes: notes, photo: photo, now: time.Now}
}

// Submit validates and uploads the report.
//
// Flow:
//  1. No photo: error notification, API not called
//  2. Field validation, then photo preparation
//  3. POST /api/complaints
//  4. Success notification; the caller switches to the complaints view
//
// On any failure the form is left untouched so the user can retry.
//
// Returns:
//   - *errors.ValidationError when a local precondition fails
//   - *errors.MutationError when the server rejects or cannot be reached
func (s *Submitter) Submit(ctx context.Context, form Form) error {
	if form.Photo == nil || len(form.Photo.Data) == 0 {
		err := apperrors.NewValidationError("photo", "Please upload a photo of the damage")
		s.notes.Error(err.Message)
		return err
	}

	form.Location = strings.TrimSpace(form.Location)
	form.Description = strings.TrimSpace(form.Description)
	if err := validateForm(form); err != nil {
		s.notes.Error(err.Message)
		return err
	}

	photo, err := Prepare(form.Photo, s.photo, s.now())
	if err != nil {
		var ve *apperrors.ValidationError
		if stderrors.As(err, &ve) {
			s.notes.Error(ve.Message)
		} else {
			s.notes.Error("Failed to process photo")
		}
		return err
	}

	log.Printf("  → Submitting report at %q (%s, %d bytes)\n", form.Location, form.Priority, len(photo.Data))
	err = s.client.CreateComplaint(ctx, api.NewComplaint{
		Location:    form.Location,
		Latitude:    form.Latitude,
		Longitude:   form.Longitude,
		Description: form.Description,
		Priority:    form.Priority,
		PhotoName:   photo.Name,
		Photo:       photo.Data,
	})
	if err != nil {
		mErr := apperrors.NewMutationError("submit report", err)
		log.Printf("  ✗ %v\n", mErr)
		s.notes.Error("Failed to submit complaint. Please try again.")
		return mErr
	}

	log.Println("  ✓ Report submitted")
	s.notes.Success("✅ Complaint submitted successfully!")
	return nil
}

func validateForm(f Form) *apperrors.ValidationError {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Field() {
	case "Location":
		return apperrors.NewValidationError(field, "Location is required. Use Get Location or type it in.")
	case "Description":
		return apperrors.NewValidationError(field, "Please describe the damage")
	case "Priority":
		return apperrors.NewValidationError(field, "Priority must be Low, Medium or High")
	}
	return apperrors.NewValidationError(field, fe.Field()+" is out of range")
}
