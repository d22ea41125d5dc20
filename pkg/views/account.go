package views

import (
	"context"
	"net/mail"
	"strings"

	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// MinPasswordLength is the shortest password accepted on signup and
// password change.
const MinPasswordLength = 8

// Account renders the profile.
type Account struct {
	Page
	Name    string
	Email   string
	Phone   string
	Avatar  string
	IsStaff bool
}

func NewAccount(state cache.State[models.User]) Account {
	view := Account{
		Page: resolve(state, nil, messages{
			loading: "Loading...",
			failed:  "Failed to load account.",
		}),
	}
	if state.HasData {
		u := state.Data
		view.Name, view.Email, view.Phone, view.Avatar, view.IsStaff = u.Name, u.Email, u.Phone, u.Avatar, u.IsStaff
	}
	return view
}

// AddressRow is one saved address.
type AddressRow struct {
	ID      int64
	Label   string
	Line    string
	Default bool
}

func addressRows(list []models.Address) []AddressRow {
	rows := make([]AddressRow, 0, len(list))
	for _, a := range list {
		label := a.Name
		if a.AddressType != "" {
			label += " (" + a.AddressType + ")"
		}
		parts := []string{a.Address, a.City, strings.TrimSpace(a.State + " " + a.PostalCode)}
		line := make([]string, 0, len(parts))
		for _, p := range parts {
			if p != "" {
				line = append(line, p)
			}
		}
		rows = append(rows, AddressRow{ID: a.ID, Label: label, Line: strings.Join(line, ", "), Default: a.IsDefault})
	}
	return rows
}

// Addresses renders the saved delivery addresses.
type Addresses struct {
	Page
	Addresses []AddressRow
}

func NewAddresses(state cache.State[[]models.Address]) Addresses {
	view := Addresses{
		Page: resolve(state, emptySlice[models.Address], messages{
			loading: "Loading addresses...",
			failed:  "Failed to load addresses.",
			empty:   "No saved addresses.",
		}),
	}
	if state.HasData {
		view.Addresses = addressRows(state.Data)
	}
	return view
}

// UserRow is one user in the admin panel.
type UserRow struct {
	ID     int64
	Name   string
	Email  string
	Role   string
	Active bool
}

// AdminUsers renders the admin user list.
type AdminUsers struct {
	Page
	Users []UserRow
}

func NewAdminUsers(state cache.State[[]models.User]) AdminUsers {
	view := AdminUsers{
		Page: resolve(state, emptySlice[models.User], messages{
			loading: "Loading users...",
			failed:  "Failed to load users.",
			empty:   "No users found.",
		}),
	}
	for _, u := range state.Data {
		row := UserRow{ID: u.ID, Name: u.Name, Email: u.Email, Role: "Customer", Active: u.IsActive == nil || *u.IsActive}
		if u.IsStaff {
			row.Role = "Admin"
		}
		view.Users = append(view.Users, row)
	}
	return view
}

// PasswordForm changes the signed-in user's password.
type PasswordForm struct {
	Current string
	New     string
	Confirm string
}

// AccountController handles profile and address edits.
type AccountController struct {
	controller
}

func NewAccountController(sf *api.Storefront) *AccountController {
	return &AccountController{controller: newController(sf, "account-controller")}
}

func (c *AccountController) UpdateProfile(ctx context.Context, update models.UserUpdate) Result {
	if update.Email != "" {
		if _, err := mail.ParseAddress(update.Email); err != nil {
			return c.reject("update_profile", invalid("email", "Please enter a valid email address."))
		}
	}
	_, err := c.sf.UpdateAccount(ctx, update)
	return c.outcome("update_profile", err, "Profile updated successfully", "Failed to update profile. Please try again.")
}

// ChangePassword checks the confirmation before any request is made.
func (c *AccountController) ChangePassword(ctx context.Context, form PasswordForm) Result {
	if form.Current == "" {
		return c.reject("change_password", invalid("current_password", "Please enter your current password."))
	}
	if r, ok := checkNewPassword(form.New, form.Confirm); !ok {
		return c.reject("change_password", r)
	}
	_, err := c.sf.ChangePassword(ctx, models.ChangePasswordRequest{OldPassword: form.Current, NewPassword: form.New})
	return c.outcome("change_password", err, "Password changed successfully", "Failed to change password. Please try again.")
}

// SaveAddress creates the address when it has no ID and updates it
// otherwise.
func (c *AccountController) SaveAddress(ctx context.Context, addr models.Address) Result {
	if strings.TrimSpace(addr.Name) == "" {
		return c.reject("save_address", invalid("name", "Please enter a name for the address."))
	}
	if strings.TrimSpace(addr.Address) == "" {
		return c.reject("save_address", invalid("address", "Please enter a street address."))
	}
	var err error
	if addr.ID == 0 {
		_, err = c.sf.CreateAddress(ctx, addr)
	} else {
		_, err = c.sf.UpdateAddress(ctx, addr)
	}
	return c.outcome("save_address", err, "Address saved", "Failed to save address.")
}

func (c *AccountController) DeleteAddress(ctx context.Context, id int64) Result {
	err := c.sf.DeleteAddress(ctx, id)
	return c.outcome("delete_address", err, "Address deleted", "Failed to delete address.")
}

func checkNewPassword(password, confirm string) (Result, bool) {
	if len(password) < MinPasswordLength {
		return invalid("password", "Password must be at least 8 characters."), false
	}
	if password != confirm {
		return invalid("confirm_password", "Passwords do not match."), false
	}
	return Result{}, true
}

// SignupForm registers an account.
type SignupForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// ResetForm completes a password reset.
type ResetForm struct {
	Token    string
	Password string
	Confirm  string
}

// AuthController handles sign in, sign up and sign out.
type AuthController struct {
	controller
}

func NewAuthController(sf *api.Storefront) *AuthController {
	return &AuthController{controller: newController(sf, "auth-controller")}
}

func (c *AuthController) Login(ctx context.Context, email, password string) Result {
	if strings.TrimSpace(email) == "" || password == "" {
		return c.reject("login", invalid("email", "Email and password are required."))
	}
	_, err := c.sf.Login(ctx, models.Credentials{Email: strings.TrimSpace(email), Password: password})
	return c.outcome("login", err, "Logged in successfully", "Invalid email or password.")
}

func (c *AuthController) Signup(ctx context.Context, form SignupForm) Result {
	if strings.TrimSpace(form.Name) == "" {
		return c.reject("signup", invalid("name", "Please enter your name."))
	}
	if _, err := mail.ParseAddress(form.Email); err != nil {
		return c.reject("signup", invalid("email", "Please enter a valid email address."))
	}
	if r, ok := checkNewPassword(form.Password, form.Confirm); !ok {
		return c.reject("signup", r)
	}
	_, err := c.sf.Signup(ctx, models.SignupRequest{Name: strings.TrimSpace(form.Name), Email: form.Email, Password: form.Password})
	return c.outcome("signup", err, "Account created. Check your email for a verification code.", "Failed to create account.")
}

// Logout signs out. The local session is cleared even when the server
// rejects the request; the result still reports the failure.
func (c *AuthController) Logout(ctx context.Context) Result {
	_, err := c.sf.Logout(ctx)
	return c.outcome("logout", err, "Logged out", "Logged out locally; the server did not confirm.")
}

func (c *AuthController) ResetPassword(ctx context.Context, form ResetForm) Result {
	if form.Token == "" {
		return c.reject("reset_password", invalid("token", "The reset link is invalid."))
	}
	if r, ok := checkNewPassword(form.Password, form.Confirm); !ok {
		return c.reject("reset_password", r)
	}
	_, err := c.sf.ResetPasswordConfirm(ctx, models.ResetPasswordConfirmRequest{Token: form.Token, NewPassword: form.Password})
	return c.outcome("reset_password", err, "Password has been reset.", "Something went wrong. Please try again.")
}

// AdminController handles the admin panel actions.
type AdminController struct {
	controller
}

func NewAdminController(sf *api.Storefront) *AdminController {
	return &AdminController{controller: newController(sf, "admin-controller")}
}

func (c *AdminController) UpdateUser(ctx context.Context, update models.UserUpdate) Result {
	if update.ID <= 0 {
		return c.reject("update_user", invalid("user", "Please select a user."))
	}
	_, err := c.sf.UpdateUser(ctx, update)
	return c.outcome("update_user", err, "User updated", "Failed to update user.")
}

func (c *AdminController) DeleteUser(ctx context.Context, id int64) Result {
	if id <= 0 {
		return c.reject("delete_user", invalid("user", "Please select a user."))
	}
	err := c.sf.DeleteUser(ctx, id)
	return c.outcome("delete_user", err, "User deleted", "Failed to delete user.")
}

func (c *AdminController) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) Result {
	if orderID == "" {
		return c.reject("update_order_status", invalid("order", "Please select an order."))
	}
	if status == "" {
		return c.reject("update_order_status", invalid("status", "Please select a status."))
	}
	_, err := c.sf.UpdateOrderStatus(ctx, orderID, status)
	return c.outcome("update_order_status", err, "Order status updated", "Failed to update order status.")
}
