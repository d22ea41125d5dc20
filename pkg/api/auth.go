package api

import (
	"context"
	"net/http"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
	"github.com/Sternrassler/storefront-client/pkg/session"
)

// Auth is the authentication and account group.
var Auth = struct {
	Signup                  MutationDef[models.SignupRequest, models.Message]
	VerifyEmail             MutationDef[models.VerifyEmailRequest, models.Message]
	ResendVerificationEmail MutationDef[models.EmailRequest, models.Message]
	Login                   MutationDef[models.Credentials, models.TokenPair]
	RefreshToken            MutationDef[models.RefreshRequest, models.TokenPair]
	Logout                  MutationDef[models.LogoutRequest, models.Message]
	GetAccount              QueryDef[None, models.User]
	UpdateAccount           MutationDef[models.UserUpdate, models.User]
	DeleteAccount           MutationDef[None, models.Message]
	ChangePassword          MutationDef[models.ChangePasswordRequest, models.Message]
	ResetPasswordRequest    MutationDef[models.EmailRequest, models.Message]
	ResetPasswordConfirm    MutationDef[models.ResetPasswordConfirmRequest, models.Message]
	CheckEmail              MutationDef[models.EmailRequest, models.EmailCheck]
}{
	Signup: MutationDef[models.SignupRequest, models.Message]{
		Name:   "signup",
		Method: http.MethodPost,
		Path:   "/signup/",
		Bind:   withBody[models.SignupRequest],
	},
	VerifyEmail: MutationDef[models.VerifyEmailRequest, models.Message]{
		Name:   "verifyEmail",
		Method: http.MethodPost,
		Path:   "/verify-email/",
		Bind:   withBody[models.VerifyEmailRequest],
	},
	ResendVerificationEmail: MutationDef[models.EmailRequest, models.Message]{
		Name:   "resendVerificationEmail",
		Method: http.MethodPost,
		Path:   "/resend-verification-email/",
		Bind:   withBody[models.EmailRequest],
	},
	Login: MutationDef[models.Credentials, models.TokenPair]{
		Name:        "login",
		Method:      http.MethodPost,
		Path:        "/login/",
		Bind:        withBody[models.Credentials],
		Invalidates: tags[models.Credentials](cache.TypeTag(TagUser)),
		Settle: func(ctx context.Context, sess *session.Session, _ models.Credentials, out models.TokenPair, err error) error {
			if err != nil {
				return nil
			}
			return sess.Login(ctx, out)
		},
	},
	RefreshToken: MutationDef[models.RefreshRequest, models.TokenPair]{
		Name:   "refreshToken",
		Method: http.MethodPost,
		Path:   "/token/refresh/",
		Bind:   withBody[models.RefreshRequest],
		Settle: func(ctx context.Context, sess *session.Session, _ models.RefreshRequest, out models.TokenPair, err error) error {
			if err != nil {
				return nil
			}
			return sess.Refresh(ctx, out)
		},
	},
	Logout: MutationDef[models.LogoutRequest, models.Message]{
		Name:              "logout",
		Method:            http.MethodPost,
		Path:              "/logout/",
		Bind:              withBody[models.LogoutRequest],
		Invalidates:       tags[models.LogoutRequest](cache.TypeTag(TagUser)),
		InvalidateOnError: true,
		// Tokens are dropped whether or not the server accepted the logout.
		Settle: func(ctx context.Context, sess *session.Session, _ models.LogoutRequest, _ models.Message, _ error) error {
			return sess.Logout(ctx)
		},
	},
	GetAccount: QueryDef[None, models.User]{
		Name:     "getAccount",
		Path:     "/account/",
		Provides: tags[None](cache.TypeTag(TagUser)),
	},
	UpdateAccount: MutationDef[models.UserUpdate, models.User]{
		Name:        "updateAccount",
		Method:      http.MethodPatch,
		Path:        "/account/",
		Bind:        withBody[models.UserUpdate],
		Invalidates: tags[models.UserUpdate](cache.TypeTag(TagUser)),
	},
	DeleteAccount: MutationDef[None, models.Message]{
		Name:        "deleteAccount",
		Method:      http.MethodDelete,
		Path:        "/account/delete/",
		Invalidates: tags[None](cache.TypeTag(TagUser)),
		Settle: func(ctx context.Context, sess *session.Session, _ None, _ models.Message, err error) error {
			if err != nil {
				return nil
			}
			return sess.Logout(ctx)
		},
	},
	ChangePassword: MutationDef[models.ChangePasswordRequest, models.Message]{
		Name:   "changePassword",
		Method: http.MethodPost,
		Path:   "/account/change-password/",
		Bind:   withBody[models.ChangePasswordRequest],
	},
	ResetPasswordRequest: MutationDef[models.EmailRequest, models.Message]{
		Name:   "resetPasswordRequest",
		Method: http.MethodPost,
		Path:   "/reset-password-request/",
		Bind:   withBody[models.EmailRequest],
	},
	ResetPasswordConfirm: MutationDef[models.ResetPasswordConfirmRequest, models.Message]{
		Name:   "resetPasswordConfirm",
		Method: http.MethodPost,
		Path:   "/reset-password-confirm/",
		Bind:   withBody[models.ResetPasswordConfirmRequest],
	},
	CheckEmail: MutationDef[models.EmailRequest, models.EmailCheck]{
		Name:   "checkEmail",
		Method: http.MethodPost,
		Path:   "/check-email/",
		Bind:   withBody[models.EmailRequest],
	},
}
