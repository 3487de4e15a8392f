package validation

import (
	"fmt"
	"net/mail"

	errors "github.com/rahmatagung/user-management/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	builder    *ValidationBuilder
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		builder:    v,
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

// Field starts validation of the next field, allowing one fluent chain for
// the whole DTO.
func (fv *FieldValidator) Field(name string, value interface{}) *FieldValidator {
	return fv.builder.Field(name, value)
}

// Validate finishes the chain started on the builder.
func (fv *FieldValidator) Validate() *errors.AppError {
	return fv.builder.Validate()
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
		case []int64:
			if len(v) == 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must not be empty", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *int64:
			if v == nil || *v == 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" && len(v) < min {
			return errors.NewValidationFieldError(fv.FieldName,
				fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min),
				errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			return errors.NewValidationFieldError(fv.FieldName,
				fmt.Sprintf("%s must be at most %d characters", fv.FieldName, max),
				errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			if _, err := mail.ParseAddress(v); err != nil {
				return errors.NewValidationFieldError(fv.FieldName,
					fmt.Sprintf("%s is not a valid email address", fv.FieldName),
					errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// NoDuplicates rejects []int64 values containing the same ID more than once.
func (fv *FieldValidator) NoDuplicates() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if ids, ok := value.([]int64); ok {
			seen := make(map[int64]struct{}, len(ids))
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					return errors.NewValidationFieldError(fv.FieldName,
						fmt.Sprintf("%s contains duplicate IDs", fv.FieldName),
						errors.ErrCodeValidationFailed)
				}
				seen[id] = struct{}{}
			}
		}
		return nil
	})
	return fv
}

// Validate runs all field validators and aggregates violations into a single
// AppError with one entry per failed rule.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var violations []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				if ve, ok := err.Details.(errors.ValidationErrors); ok {
					violations = append(violations, ve.Errors...)
				} else {
					violations = append(violations, errors.ValidationError{
						Field:   field.FieldName,
						Message: err.Message,
						Code:    string(err.Code),
					})
				}
			}
		}
	}

	if len(violations) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: violations})
	}
	return nil
}
