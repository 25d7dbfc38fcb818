package auth

import (
	errors "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/core/validation"
)

// RegisterDTO is the self-service registration payload. Role is optional
// and defaults to Employee; the password is chosen later, on confirmation.
type RegisterDTO struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DepartmentID int64  `json:"department_id"`
	RoleName     string `json:"role_name,omitempty"`
}

func (d RegisterDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Custom(func(interface{}) *errors.AppError {
		return validation.IsValidEmail(d.Email)
	})
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	v.Field("department_id", d.DepartmentID).Required().PositiveID()
	return v.Validate()
}

// RegisterByManagerDTO is the privileged registration path; department may
// be omitted and then defaults to the caller's own.
type RegisterByManagerDTO struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DepartmentID int64  `json:"department_id,omitempty"`
	RoleName     string `json:"role_name,omitempty"`
}

func (d RegisterByManagerDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Custom(func(interface{}) *errors.AppError {
		return validation.IsValidEmail(d.Email)
	})
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	return v.Validate()
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("refresh_token", d.RefreshToken).Required()
	return v.Validate()
}

// ConfirmDTO finishes activation: the mailed token plus the account's
// email and the password the user picked.
type ConfirmDTO struct {
	Token           string `json:"token"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (d ConfirmDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Password != d.ConfirmPassword {
		return errors.NewValidationError("passwords do not match", errors.ErrCodeInvalidPassword)
	}
	return validation.IsValidPassword(d.Password)
}

type EmailDTO struct {
	Email string `json:"email"`
}

func (d EmailDTO) Validate() *errors.AppError {
	return validation.IsValidEmail(d.Email)
}

type ResetPasswordDTO struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (d ResetPasswordDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Password != d.ConfirmPassword {
		return errors.NewValidationError("passwords do not match", errors.ErrCodeInvalidPassword)
	}
	return validation.IsValidPassword(d.Password)
}

// RegisteredResponse deliberately omits the confirmation token; it only
// ever travels by email.
type RegisteredResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Message   string `json:"message"`
}
