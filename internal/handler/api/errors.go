package api

import (
	"context"
	"net/http"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/handler/httperr"
	"circulation-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type ErrorDetail struct {
	Code string `json:"code"`
}

var kindStatus = map[domcirc.ErrorKind]int{
	domcirc.KindNoLicenses:                 http.StatusForbidden,
	domcirc.KindNoAvailableCopies:          http.StatusConflict,
	domcirc.KindAlreadyCheckedOut:          http.StatusConflict,
	domcirc.KindAlreadyOnHold:              http.StatusConflict,
	domcirc.KindNotCheckedOut:              http.StatusNotFound,
	domcirc.KindNotOnHold:                  http.StatusNotFound,
	domcirc.KindCannotRenew:                http.StatusBadRequest,
	domcirc.KindPatronLoanLimitReached:     http.StatusForbidden,
	domcirc.KindPatronHoldLimitReached:     http.StatusForbidden,
	domcirc.KindDeliveryMechanismMissing:   http.StatusBadRequest,
	domcirc.KindDeliveryMechanismError:     http.StatusBadRequest,
	domcirc.KindDeliveryMechanismConflict:  http.StatusConflict,
	domcirc.KindFormatNotAvailable:         http.StatusBadRequest,
	domcirc.KindNoAcceptableFormat:         http.StatusBadRequest,
	domcirc.KindNoActiveLoan:               http.StatusBadRequest,
	domcirc.KindOutstandingFines:           http.StatusForbidden,
	domcirc.KindAuthorizationBlocked:       http.StatusForbidden,
	domcirc.KindAuthorizationExpired:       http.StatusForbidden,
	domcirc.KindCurrentlyAvailable:         http.StatusConflict,
	domcirc.KindCannotReturn:               http.StatusBadRequest,
	domcirc.KindCannotReleaseHold:          http.StatusBadRequest,
	domcirc.KindCannotFulfill:              http.StatusBadRequest,
	domcirc.KindRemoteInitiatedServerError: http.StatusBadGateway,
}

// abortWithCirculationError turns an engine error into a JSON error body.
// Circulation kinds are reported in detail.code so clients can branch on
// them without parsing messages.
func abortWithCirculationError(c *gin.Context, err error, msg string) {
	if kind := domcirc.KindOf(err); kind != "" {
		status, ok := kindStatus[kind]
		if !ok {
			status = http.StatusBadRequest
		}
		httperr.AbortWithError(c, status, err, msg, ErrorDetail{Code: string(kind)})
		return
	}

	switch {
	case errs.Is(err, errs.ErrPatronNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Patron not found", nil)
	case errs.Is(err, errs.ErrPoolNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "License pool not found", nil)
	case errs.Is(err, errs.ErrLibraryNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Library not found", nil)
	case errs.Is(err, errs.ErrCollectionNotConfigured):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Collection is not configured for lending", nil)
	case errs.Is(err, context.DeadlineExceeded):
		httperr.AbortWithError(c, http.StatusGatewayTimeout, err, "Remote service timed out", nil)
	default:
		httperr.Internal(c, err)
	}
}
