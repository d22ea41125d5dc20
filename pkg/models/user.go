package models

// User is an account profile.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	IsStaff  bool   `json:"is_staff,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UserUpdate is a partial profile update. Admin updates also set ID.
type UserUpdate struct {
	ID       int64  `json:"-"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	IsStaff  *bool  `json:"is_staff,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// Address is a saved delivery address.
type Address struct {
	ID          int64  `json:"id,omitempty"`
	AddressType string `json:"address_type,omitempty"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	IsDefault   bool   `json:"is_default"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest registers a new account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is issued on login. Access authorizes requests; Refresh
// renews Access and is revoked on logout.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RefreshRequest renews an access token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// LogoutRequest revokes a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// VerifyEmailRequest confirms an email with the code that was mailed.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailRequest carries only an email address.
type EmailRequest struct {
	Email string `json:"email"`
}

// ChangePasswordRequest changes the password of the signed-in user.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordConfirmRequest completes a password reset.
type ResetPasswordConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// EmailCheck is the answer to CheckEmail.
type EmailCheck struct {
	Exists bool `json:"exists"`
}
