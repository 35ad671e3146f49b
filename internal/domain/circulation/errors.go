package circulation

import (
	"errors"
)

// ErrorKind is the closed set of circulation failure conditions.
// Provider implementations translate their wire-level errors into one of
// these kinds at their own boundary; the engine never inspects vendor text.
type ErrorKind string

const (
	KindNoLicenses                ErrorKind = "NO_LICENSES"
	KindNoAvailableCopies         ErrorKind = "NO_AVAILABLE_COPIES"
	KindAlreadyCheckedOut         ErrorKind = "ALREADY_CHECKED_OUT"
	KindAlreadyOnHold             ErrorKind = "ALREADY_ON_HOLD"
	KindNotCheckedOut             ErrorKind = "NOT_CHECKED_OUT"
	KindNotOnHold                 ErrorKind = "NOT_ON_HOLD"
	KindCannotRenew               ErrorKind = "CANNOT_RENEW"
	KindPatronLoanLimitReached    ErrorKind = "PATRON_LOAN_LIMIT_REACHED"
	KindPatronHoldLimitReached    ErrorKind = "PATRON_HOLD_LIMIT_REACHED"
	KindDeliveryMechanismMissing  ErrorKind = "DELIVERY_MECHANISM_MISSING"
	KindDeliveryMechanismError    ErrorKind = "DELIVERY_MECHANISM_ERROR"
	KindDeliveryMechanismConflict ErrorKind = "DELIVERY_MECHANISM_CONFLICT"
	KindFormatNotAvailable        ErrorKind = "FORMAT_NOT_AVAILABLE"
	KindNoAcceptableFormat        ErrorKind = "NO_ACCEPTABLE_FORMAT"
	KindNoActiveLoan              ErrorKind = "NO_ACTIVE_LOAN"

	KindOutstandingFines           ErrorKind = "OUTSTANDING_FINES"
	KindAuthorizationBlocked       ErrorKind = "AUTHORIZATION_BLOCKED"
	KindAuthorizationExpired       ErrorKind = "AUTHORIZATION_EXPIRED"
	KindCurrentlyAvailable         ErrorKind = "CURRENTLY_AVAILABLE"
	KindCannotReturn               ErrorKind = "CANNOT_RETURN"
	KindCannotReleaseHold          ErrorKind = "CANNOT_RELEASE_HOLD"
	KindCannotFulfill              ErrorKind = "CANNOT_FULFILL"
	KindRemoteInitiatedServerError ErrorKind = "REMOTE_INITIATED_SERVER_ERROR"
)

type Error struct {
	Kind ErrorKind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches on kind so that errors.Is(err, ErrNoLicenses) holds for any
// NO_LICENSES error regardless of its message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewError(kind ErrorKind, msg string, cause error) error {
	return &Error{Kind: kind, msg: msg, err: cause}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the circulation kind carried by err, or "" when err is not
// part of the taxonomy.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

var (
	ErrNoLicenses                = &Error{Kind: KindNoLicenses, msg: "no licenses for this title"}
	ErrNoAvailableCopies         = &Error{Kind: KindNoAvailableCopies, msg: "no copies available"}
	ErrAlreadyCheckedOut         = &Error{Kind: KindAlreadyCheckedOut, msg: "already checked out"}
	ErrAlreadyOnHold             = &Error{Kind: KindAlreadyOnHold, msg: "already on hold"}
	ErrNotCheckedOut             = &Error{Kind: KindNotCheckedOut, msg: "not checked out"}
	ErrNotOnHold                 = &Error{Kind: KindNotOnHold, msg: "not on hold"}
	ErrCannotRenew               = &Error{Kind: KindCannotRenew, msg: "loan cannot be renewed"}
	ErrPatronLoanLimitReached    = &Error{Kind: KindPatronLoanLimitReached, msg: "patron loan limit reached"}
	ErrPatronHoldLimitReached    = &Error{Kind: KindPatronHoldLimitReached, msg: "patron hold limit reached"}
	ErrDeliveryMechanismMissing  = &Error{Kind: KindDeliveryMechanismMissing, msg: "delivery mechanism must be specified"}
	ErrDeliveryMechanismError    = &Error{Kind: KindDeliveryMechanismError, msg: "delivery mechanism rejected"}
	ErrDeliveryMechanismConflict = &Error{Kind: KindDeliveryMechanismConflict, msg: "loan is locked to another delivery mechanism"}
	ErrFormatNotAvailable        = &Error{Kind: KindFormatNotAvailable, msg: "format not available"}
	ErrNoAcceptableFormat        = &Error{Kind: KindNoAcceptableFormat, msg: "no acceptable format"}
	ErrNoActiveLoan              = &Error{Kind: KindNoActiveLoan, msg: "no active loan"}

	ErrOutstandingFines           = &Error{Kind: KindOutstandingFines, msg: "patron has outstanding fines"}
	ErrAuthorizationBlocked       = &Error{Kind: KindAuthorizationBlocked, msg: "patron borrowing privileges are blocked"}
	ErrAuthorizationExpired       = &Error{Kind: KindAuthorizationExpired, msg: "patron card has expired"}
	ErrCurrentlyAvailable         = &Error{Kind: KindCurrentlyAvailable, msg: "title is currently available"}
	ErrCannotReturn               = &Error{Kind: KindCannotReturn, msg: "loan cannot be returned"}
	ErrCannotReleaseHold          = &Error{Kind: KindCannotReleaseHold, msg: "hold cannot be released"}
	ErrCannotFulfill              = &Error{Kind: KindCannotFulfill, msg: "loan cannot be fulfilled"}
	ErrRemoteInitiatedServerError = &Error{Kind: KindRemoteInitiatedServerError, msg: "remote service failed"}
)
