package validation

import (
	"fmt"
	"regexp"
	"strings"

	errors "github.com/frahmantamala/org-directory/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if v == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case int64:
			if v == 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || *v == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) PositiveID() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok {
			if v <= 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be a positive id", fv.FieldName), errors.ErrCodeInvalidID)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				if details, ok := err.Details.(errors.ValidationErrors); ok {
					validationErrors = append(validationErrors, details.Errors...)
				} else {
					validationErrors = append(validationErrors, errors.ValidationError{
						Field:   field.FieldName,
						Message: err.Message,
						Code:    string(err.Code),
					})
				}
			}
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const passwordSymbols = "@$.!-+"

// IsValidEmail applies the same basic address shape check the activation
// emails rely on.
func IsValidEmail(email string) *errors.AppError {
	if email == "" || !emailPattern.MatchString(email) {
		return errors.NewValidationError("Invalid email format", errors.ErrCodeInvalidEmail)
	}
	return nil
}

// IsValidPassword enforces the password policy: 8-32 characters with at
// least one upper, one lower, one digit and one symbol from @$.!-+.
func IsValidPassword(password string) *errors.AppError {
	if len(password) < 8 || len(password) > 32 {
		return errors.NewValidationError("Illegal password format", errors.ErrCodeInvalidPassword)
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return errors.NewValidationError("Illegal password format", errors.ErrCodeInvalidPassword)
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errors.NewValidationError("Illegal password format", errors.ErrCodeInvalidPassword)
	}
	return nil
}

func IsValidName(name string) *errors.AppError {
	if name == "" {
		return errors.NewValidationError("Invalid name format", errors.ErrCodeInvalidName)
	}
	return nil
}

func IsValidDepartmentID(id int64) *errors.AppError {
	if id <= 0 {
		return errors.NewValidationError("Invalid department ID", errors.ErrCodeInvalidID)
	}
	return nil
}

func IsValidRoleName(name string) *errors.AppError {
	if name == "" {
		return errors.NewValidationError("Invalid role name format", errors.ErrCodeInvalidRole)
	}
	return nil
}
