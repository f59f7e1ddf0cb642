package models

// RegisterRequest is the payload for creating an officer account.
type RegisterRequest struct {
	BadgeNumber string `json:"badgeNumber" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
	Station     string `json:"station"`
	Role        string `json:"role" validate:"omitempty,oneof=officer admin"`
}

// LoginRequest is the payload for authenticating an officer.
type LoginRequest struct {
	BadgeNumber string `json:"badgeNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// OfficerResponse describes an officer account. The password hash never
// leaves the auth package.
type OfficerResponse struct {
	ID          string    `json:"id"`
	BadgeNumber string    `json:"badgeNumber"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Station     string    `json:"station,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// SessionResponse is returned after a successful registration or login.
type SessionResponse struct {
	Officer     OfficerResponse `json:"officer"`
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	ExpiresAt   Timestamp       `json:"expiresAt"`
}
