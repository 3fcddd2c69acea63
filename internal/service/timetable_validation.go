package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kotkala/EduConnectSystem-sub009/pkg/database"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

var clockPattern = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2})$`)

// NewValidator returns a validator with the timetable tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterTimetableValidations(v)
	return v
}

// RegisterTimetableValidations adds the "hhmm" tag for 24-hour clock strings.
func RegisterTimetableValidations(v *validator.Validate) {
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := NormalizeClock(fl.Field().String())
		return err == nil
	})
}

// NormalizeClock parses H:MM or HH:MM and returns the zero-padded HH:MM form.
func NormalizeClock(value string) (string, error) {
	match := clockPattern.FindStringSubmatch(value)
	if match == nil {
		return "", fmt.Errorf("time %q must use HH:MM", value)
	}
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("time %q is out of range", value)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// requireID rejects path ids that cannot name a stored row. Every id column is a UUID,
// so a malformed id is reported the same way as a missing record.
func requireID(id, notFound string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return nil
}

// storeError keeps typed errors raised by repositories, reports malformed literals
// rejected by Postgres as validation errors and wraps everything else as internal.
func storeError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if database.IsInvalidTextRepresentation(err) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed identifier")
	}
	return appErrors.Internal(err, message)
}
