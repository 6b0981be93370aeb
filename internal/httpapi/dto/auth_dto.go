package dto

// Data Transfer Objects for the passwordless auth flow

// SignupRequest: payload for POST /v1/auth/signup
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the identity; the confirmation code itself only
// travels by email
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for POST /v1/auth/token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse carries the signed bearer token
type TokenResponse struct {
	Token string `json:"token"`
}
