package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	domcirc "circulation-engine/internal/domain/circulation"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxErrorBody = 64 << 10

// codeKinds maps the vendor's error codes onto the circulation taxonomy.
var codeKinds = map[string]domcirc.ErrorKind{
	"no_licenses":              domcirc.KindNoLicenses,
	"no_copies_available":      domcirc.KindNoAvailableCopies,
	"already_checked_out":      domcirc.KindAlreadyCheckedOut,
	"already_on_hold":          domcirc.KindAlreadyOnHold,
	"not_checked_out":          domcirc.KindNotCheckedOut,
	"not_on_hold":              domcirc.KindNotOnHold,
	"cannot_renew":             domcirc.KindCannotRenew,
	"loan_limit_reached":       domcirc.KindPatronLoanLimitReached,
	"hold_limit_reached":       domcirc.KindPatronHoldLimitReached,
	"currently_available":      domcirc.KindCurrentlyAvailable,
	"format_not_available":     domcirc.KindFormatNotAvailable,
	"delivery_mechanism_error": domcirc.KindDeliveryMechanismError,
	"no_acceptable_format":     domcirc.KindNoAcceptableFormat,
	"cannot_fulfill":           domcirc.KindCannotFulfill,
	"cannot_return":            domcirc.KindCannotReturn,
	"cannot_release_hold":      domcirc.KindCannotReleaseHold,
	"outstanding_fines":        domcirc.KindOutstandingFines,
	"card_blocked":             domcirc.KindAuthorizationBlocked,
	"card_expired":             domcirc.KindAuthorizationExpired,
}

type call struct {
	method string
	path   string
	patron *domcirc.Patron
	pin    string
	body   any
}

// do sends c and decodes a successful response into out. Every failure is
// returned as a circulation error.
func (p *Provider) do(ctx context.Context, c call, out any) error {
	target, err := p.base.Parse(c.path)
	if err != nil {
		return domcirc.NewError(domcirc.KindRemoteInitiatedServerError, "bad request path "+c.path, err)
	}
	return p.send(ctx, c.method, target, c.patron, c.pin, c.body, out)
}

func (p *Provider) send(ctx context.Context, method string, target *url.URL, patron *domcirc.Patron, pin string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domcirc.NewError(domcirc.KindRemoteInitiatedServerError, "encode request", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return domcirc.NewError(domcirc.KindRemoteInitiatedServerError, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
	if patron != nil {
		req.Header.Set("X-Patron-Id", patron.AuthorizationIdentifier())
		if pin != "" {
			req.Header.Set("X-Patron-Pin", pin)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domcirc.NewError(domcirc.KindRemoteInitiatedServerError, p.cfg.Name+" is unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return p.errorFrom(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domcirc.NewError(domcirc.KindRemoteInitiatedServerError, p.cfg.Name+" sent a malformed response", err)
	}
	return nil
}

func (p *Provider) errorFrom(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var e errorResponse
	_ = json.Unmarshal(raw, &e)
	if kind, ok := codeKinds[e.Code]; ok {
		msg := e.Message
		if msg == "" {
			msg = e.Code
		}
		return domcirc.NewError(kind, msg, nil)
	}
	return domcirc.NewError(domcirc.KindRemoteInitiatedServerError,
		fmt.Sprintf("%s answered %d %s", p.cfg.Name, resp.StatusCode, e.Code), nil)
}

func titlePath(pool *domcirc.LicensePool, suffix string) string {
	id := pool.Identifier()
	return "titles/" + url.PathEscape(id.Type) + "/" + url.PathEscape(id.Value) + "/" + suffix
}
