package dto

// SaveCredentialsRequest stores the officer's login on the device.
type SaveCredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// OfflineLoginRequest verifies a login against the cached credentials
// without touching the network.
type OfflineLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthStatusResponse reports the session state to the UI.
type AuthStatusResponse struct {
	HasCredentials bool   `json:"has_credentials"`
	Username       string `json:"username,omitempty"`
	SessionActive  bool   `json:"session_active"`
}
