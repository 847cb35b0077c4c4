package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/SAP-F-2025/proficiency-service/internal/errors"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

type ValidationErrors = apperrors.ValidationErrors

// Validator checks request structs against their validate tags, including
// the catalog tags (complexity, assessment_mode, proctoring_event, invite_status).
type Validator struct {
	engine *validator.Validate
}

func New() *Validator {
	engine := validator.New(validator.WithRequiredStructEnabled())
	registerCustomValidators(engine)
	return &Validator{engine: engine}
}

// ValidateStruct returns the raw go-playground error.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.engine.Struct(s)
}

// Validate validates struct tags and translates failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("complexity", validateComplexity)
	validate.RegisterValidation("assessment_mode", validateAssessmentMode)
	validate.RegisterValidation("proctoring_event", validateProctoringEvent)
	validate.RegisterValidation("invite_status", validateInviteStatus)

	// Report fields by their wire names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateComplexity(fl validator.FieldLevel) bool {
	return models.Complexity(fl.Field().String()).IsValid()
}

func validateAssessmentMode(fl validator.FieldLevel) bool {
	return models.AssessmentMode(fl.Field().String()).IsValid()
}

func validateProctoringEvent(fl validator.FieldLevel) bool {
	return models.ProctoringEventType(fl.Field().String()).IsValid()
}

func validateInviteStatus(fl validator.FieldLevel) bool {
	return models.InviteStatus(fl.Field().String()).IsValid()
}
