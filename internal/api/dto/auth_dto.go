package dto

// Data Transfer Objects for the signup and token-exchange flow

// SignupRequest: payload for POST /auth/signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Username string `json:"username" binding:"required"`
}

// SignupResponse echoes the registered identity; the confirmation code
// itself only travels by email.
type SignupResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TokenRequest: payload for POST /auth/token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse carries the signed bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}
