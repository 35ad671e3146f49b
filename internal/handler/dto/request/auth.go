package request

import (
	"strings"

	"circulation-engine/internal/usecase"
)

type LoginRequest struct {
	Barcode string `json:"barcode" binding:"required"`
	PIN     string `json:"pin" binding:"required,min=4"`
}

func (r *LoginRequest) ToCredentials() usecase.Credentials {
	return usecase.Credentials{
		AuthorizationIdentifier: strings.TrimSpace(r.Barcode),
		PIN:                     r.PIN,
	}
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
