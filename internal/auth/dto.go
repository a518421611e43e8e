// AngelaMos | 2026
// dto.go

package auth

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=1,max=255"`
	Email    string `json:"email"    validate:"required,email,max=254"`
}

type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenRequest struct {
	Username         string `json:"username"          validate:"required,max=256"`
	ConfirmationCode string `json:"confirmation_code" validate:"required,max=512"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
