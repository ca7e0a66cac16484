package auth

import "github.com/google/uuid"

// SignUpRequest registers a provider account. AnonymousUserID, when set,
// triggers migration of the anonymous cart/lists/recipes to the new account.
type SignUpRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	AnonymousUserID *string `json:"anonymous_user_id,omitempty"`
}

// SignInRequest carries password-grant credentials.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest asks for a reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password after the reset-link sign-in.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// SessionResponse is returned by signup and signin. Tokens are empty when
// the provider still requires email confirmation.
type SessionResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Message      string    `json:"message,omitempty"`
}

// MeResponse describes the resolved account behind the request identity.
type MeResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       *string   `json:"email,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	StoreNumber int       `json:"store_number"`
}

// PublicConfig is the provider configuration safe to hand to the frontend.
type PublicConfig struct {
	ProviderURL string `json:"supabase_url"`
	AnonKey     string `json:"supabase_anon_key"`
}
