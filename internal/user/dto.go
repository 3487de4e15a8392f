package user

import (
	internalErrors "github.com/rahmatagung/user-management/internal"
	"github.com/rahmatagung/user-management/internal/core/common/validation"
	"github.com/rahmatagung/user-management/internal/password"
)

type SignupDTO struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// Validate aggregates field violations and password policy violations into
// one error so the client sees every problem at once.
func (d SignupDTO) Validate() error {
	builder := validation.NewValidator().
		Field("username", d.Username).Required().MinLength(3).MaxLength(50).
		Field("email", d.Email).Required().Email().MaxLength(255).
		Field("full_name", d.FullName).Required().MaxLength(100).
		Field("phone_number", d.PhoneNumber).MaxLength(20)

	err := builder.Validate()

	policyViolations := password.ValidateStrength(d.Password)
	if len(policyViolations) == 0 {
		if err != nil {
			return err
		}
		return nil
	}

	var violations []internalErrors.ValidationError
	if err != nil {
		if ve, ok := err.Details.(internalErrors.ValidationErrors); ok {
			violations = ve.Errors
		}
	}
	for _, msg := range policyViolations {
		violations = append(violations, internalErrors.ValidationError{
			Field:   "password",
			Message: msg,
			Code:    string(internalErrors.ErrCodeWeakPassword),
		})
	}

	return internalErrors.
		NewValidationError("Validation failed", internalErrors.ErrCodeValidationFailed).
		WithDetails(internalErrors.ValidationErrors{Errors: violations})
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (d ChangePasswordDTO) Validate() error {
	if err := validation.NewValidator().
		Field("current_password", d.CurrentPassword).Required().
		Field("new_password", d.NewPassword).Required().
		Validate(); err != nil {
		return err
	}

	if violations := password.ValidateStrength(d.NewPassword); len(violations) > 0 {
		return internalErrors.
			NewValidationError("New password does not meet the policy", internalErrors.ErrCodeWeakPassword).
			WithDetails(violations)
	}
	return nil
}

// ChangeRoleDTO carries an optional user_id for the body-addressed
// change-role endpoint; the path-addressed variant overrides it.
type ChangeRoleDTO struct {
	UserID    int64  `json:"user_id,omitempty"`
	NewRoleID int64  `json:"new_role_id"`
	Reason    string `json:"reason"`
}

func (d ChangeRoleDTO) Validate() error {
	if err := validation.NewValidator().
		Field("new_role_id", d.NewRoleID).Required().
		Field("reason", d.Reason).MaxLength(500).
		Validate(); err != nil {
		return err
	}
	return nil
}
