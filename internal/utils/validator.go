package utils

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/proctoring-service/internal/errors"
	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator with the proctoring enum validators
// registered.
type Validator struct {
	structValidator *validator.Validate
}

// NewValidator creates the shared validator instance
func NewValidator() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// Validate validates struct tags and converts failures to the shared
// validation error type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// ===== CUSTOM VALIDATION FUNCTIONS =====

func ValidateSessionType(fl validator.FieldLevel) bool {
	validTypes := []models.SessionType{
		models.SessionInterview,
		models.SessionAptitude,
		models.SessionGroupDiscussion,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateViolationSeverity(fl validator.FieldLevel) bool {
	validSeverities := []models.ViolationSeverity{
		models.SeverityLow,
		models.SeverityMedium,
		models.SeverityHigh,
	}

	value := fl.Field().String()
	for _, validSeverity := range validSeverities {
		if string(validSeverity) == value {
			return true
		}
	}
	return false
}

func ValidateReviewDecision(fl validator.FieldLevel) bool {
	validDecisions := []models.ReviewDecision{
		models.ReviewApproved,
		models.ReviewFlagged,
		models.ReviewInvalidated,
	}

	value := fl.Field().String()
	for _, validDecision := range validDecisions {
		if string(validDecision) == value {
			return true
		}
	}
	return false
}

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleCandidate,
		models.RoleReviewer,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

// registerCustomValidators registers all custom validators. The violation type
// validator is deliberately absent: type classification is the violation
// classifier's job and must fail there, not in request binding.
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("session_type", ValidateSessionType)
	validate.RegisterValidation("violation_severity", ValidateViolationSeverity)
	validate.RegisterValidation("review_decision", ValidateReviewDecision)
	validate.RegisterValidation("user_role", ValidateUserRole)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
