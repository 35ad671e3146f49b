package response

import "circulation-engine/internal/usecase"

type LoginResponse struct {
	AccessToken string                 `json:"access_token"`
	Patron      *usecase.PatronProfile `json:"patron"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
