//go:build unit || e2e

package builder

import (
	reqdto "circulation-engine/internal/handler/dto/request"
)

type AuthBuilder struct {
	Barcode string
	PIN     string
}

func NewAuthBuilder() *AuthBuilder {
	return &AuthBuilder{
		Barcode: "23333000000042",
		PIN:     "1234",
	}
}

func (a *AuthBuilder) WithBarcode(barcode string) *AuthBuilder {
	a.Barcode = barcode
	return a
}

func (a *AuthBuilder) WithPIN(pin string) *AuthBuilder {
	a.PIN = pin
	return a
}

func (a *AuthBuilder) BuildDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{
		Barcode: a.Barcode,
		PIN:     a.PIN,
	}
}
