package model

// GuestStatusResponse represents response for GET /guest/status
type GuestStatusResponse struct {
	State     string `json:"state"`
	Authority string `json:"authority"`
	AccountID string `json:"accountId,omitempty"`
	PublicKey string `json:"publicKey,omitempty"`
	QR        string `json:"QR,omitempty"` // base64 PNG of the implicit account id
}

// GuestAccessResponse represents response for POST /guest/access, /guest/signin, /guest/signout, /guest/revoke
type GuestAccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	State   string `json:"state"`
}

// WalletSignInRequest represents request for POST /wallet/signin
type WalletSignInRequest struct {
	CredentialsPath string `json:"credentialsPath" validate:"required"`
}

// WalletSignInResponse represents response for POST /wallet/signin
type WalletSignInResponse struct {
	Success   bool   `json:"success"`
	AccountID string `json:"accountId"`
}
