package usecase

import (
	"context"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/pkg/jwt"
	"circulation-engine/internal/pkg/pin"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPatronNotFound       = errs.New("patron not found")
	ErrInvalidCredentials   = errs.New("invalid barcode or pin")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type Credentials struct {
	AuthorizationIdentifier string
	PIN                     string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PatronProfile is what a signed-in patron may see about their own account.
type PatronProfile struct {
	ID                      uuid.UUID  `json:"id"`
	LibraryID               uuid.UUID  `json:"library_id"`
	LibraryName             string     `json:"library_name"`
	AuthorizationIdentifier string     `json:"authorization_identifier"`
	FinesCents              int64      `json:"fines_cents"`
	Blocked                 bool       `json:"blocked"`
	AuthorizationExpires    *time.Time `json:"authorization_expires,omitempty"`
	LastLoanActivitySync    *time.Time `json:"last_loan_activity_sync,omitempty"`
	LoanLimit               *int       `json:"loan_limit,omitempty"`
	HoldLimit               *int       `json:"hold_limit,omitempty"`
}

type AuthUseCase interface {
	Login(ctx context.Context, credentials Credentials) (*TokenPair, *PatronProfile, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetCurrentPatron(ctx context.Context, patronID uuid.UUID) (*PatronProfile, error)
}

type authUseCaseImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
}

func NewAuthUseCase(uow shared.UnitOfWork, jwtService *jwt.Service) AuthUseCase {
	return &authUseCaseImpl{
		uow:        uow,
		jwtService: jwtService,
	}
}

func (a *authUseCaseImpl) Login(ctx context.Context, credentials Credentials) (*TokenPair, *PatronProfile, error) {
	patron, err := a.validatePatron(ctx, credentials)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := a.issue(patron)
	if err != nil {
		return nil, nil, err
	}

	profile, err := a.profile(ctx, patron)
	if err != nil {
		return nil, nil, err
	}
	return tokens, profile, nil
}

func (a *authUseCaseImpl) validatePatron(ctx context.Context, credentials Credentials) (*domcirc.Patron, error) {
	patron, err := a.uow.CommandReads().PatronByAuthorizationIdentifier(ctx, credentials.AuthorizationIdentifier)
	if err != nil {
		// Same answer as a wrong PIN so barcodes cannot be enumerated.
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	if err := pin.Verify(patron.PinHash(), credentials.PIN); err != nil {
		return nil, ErrInvalidCredentials
	}
	return patron, nil
}

func (a *authUseCaseImpl) issue(patron *domcirc.Patron) (*TokenPair, error) {
	access, err := a.jwtService.GenerateAccessToken(patron.ID(), patron.LibraryID())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	refresh, err := a.jwtService.GenerateRefreshToken(patron.ID(), patron.LibraryID())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (a *authUseCaseImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	patron, err := a.uow.CommandReads().PatronByID(ctx, claims.PatronID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPatronNotFound
		}
		return nil, err
	}
	return a.issue(patron)
}

func (a *authUseCaseImpl) GetCurrentPatron(ctx context.Context, patronID uuid.UUID) (*PatronProfile, error) {
	patron, err := a.uow.CommandReads().PatronByID(ctx, patronID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPatronNotFound
		}
		return nil, err
	}
	return a.profile(ctx, patron)
}

func (a *authUseCaseImpl) profile(ctx context.Context, patron *domcirc.Patron) (*PatronProfile, error) {
	lib, err := a.uow.CommandReads().LibraryByID(ctx, patron.LibraryID())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrLibraryNotFound)
	}

	return &PatronProfile{
		ID:                      patron.ID(),
		LibraryID:               lib.ID(),
		LibraryName:             lib.Name(),
		AuthorizationIdentifier: patron.AuthorizationIdentifier(),
		FinesCents:              patron.FinesCents(),
		Blocked:                 patron.BlockReason() != "",
		AuthorizationExpires:    patron.AuthorizationExpires(),
		LastLoanActivitySync:    patron.LastLoanActivitySync(),
		LoanLimit:               lib.LoanLimit(),
		HoldLimit:               lib.HoldLimit(),
	}, nil
}
