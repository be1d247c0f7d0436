package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"libroom/internal/scheduling"
	"libroom/pkg/logger"
	"libroom/pkg/model"
	"libroom/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

var documentIDRegex = regexp.MustCompile(`^[VEP][0-9]{7,8}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type RequestValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRequestValidator(log *logger.Logger) *RequestValidator {
	v := validator.New()

	if err := v.RegisterValidation("trimmed_min", validateTrimmedMin); err != nil {
		log.Fatal("Failed to register 'trimmed_min' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("document_id", validateDocumentID); err != nil {
		log.Fatal("Failed to register 'document_id' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("phone_digits", validatePhoneDigits); err != nil {
		log.Fatal("Failed to register 'phone_digits' validator",
			"error", err,
		)
	}

	log.Info("Reservation request validator initialized successfully")

	return &RequestValidator{
		validate: v,
		logger:   log,
	}
}

// trimmed_min counts non-whitespace characters, so a value padded with
// spaces cannot sneak past a length floor.
func validateTrimmedMin(fl validator.FieldLevel) bool {
	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return sanitizer.CountNonWhitespace(fl.Field().String()) >= min
}

func validateDocumentID(fl validator.FieldLevel) bool {
	return documentIDRegex.MatchString(fl.Field().String())
}

func validatePhoneDigits(fl validator.FieldLevel) bool {
	digits := sanitizer.DigitsOnly(fl.Field().String())
	return len(digits) >= 10 && len(digits) <= 11
}

func (v *RequestValidator) Validate(request *model.ReservationRequest) error {
	if err := v.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// The datetime tag accepts unpadded hours, so "9:00" and "10:00" would
	// compare the wrong way around as raw strings.
	start, startErr := scheduling.ParseTimeOfDay(request.StartTime)
	end, endErr := scheduling.ParseTimeOfDay(request.EndTime)
	if startErr == nil && endErr == nil && end <= start {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	return nil
}

func (v *RequestValidator) ValidateDecision(decision *model.Decision) error {
	if err := v.validate.Struct(decision); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RequestValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must match the format %s", err.Field(), err.Param())
		case "trimmed_min":
			message = fmt.Sprintf("%s must have at least %s characters after trimming", err.Field(), err.Param())
		case "document_id":
			message = fmt.Sprintf("%s must be a letter V, E or P followed by 7 or 8 digits", err.Field())
		case "phone_digits":
			message = fmt.Sprintf("%s must contain 10 or 11 digits", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
