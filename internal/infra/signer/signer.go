package signer

import (
	"net/url"
	"time"

	"circulation-engine/internal/pkg/clock"
	"circulation-engine/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
)

const tokenParam = "token"

var (
	ErrMissingSecret = errs.New("url signing secret is not configured")
	ErrInvalidURL    = errs.New("invalid signed url")
)

type claims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// URLSigner appends an HS256 token bound to the URL path. Storage proxies
// verify it with Verify before serving the file.
type URLSigner struct {
	secret []byte
	clock  clock.Clock
}

func NewURLSigner(secret string, clk clock.Clock) (*URLSigner, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &URLSigner{secret: []byte(secret), clock: clk}, nil
}

func (s *URLSigner) Sign(rawURL string, ttl time.Duration) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errs.Wrap(err, "parse url")
	}

	now := s.clock.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Path: u.Path,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString(s.secret)
	if err != nil {
		return "", errs.Wrap(err, "sign url")
	}

	q := u.Query()
	q.Set(tokenParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *URLSigner) Verify(signedURL string) error {
	u, err := url.Parse(signedURL)
	if err != nil {
		return errs.Mark(err, ErrInvalidURL)
	}
	raw := u.Query().Get(tokenParam)
	if raw == "" {
		return ErrInvalidURL
	}

	var c claims
	_, err = jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidURL
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return errs.Mark(err, ErrInvalidURL)
	}
	if c.Path != u.Path {
		return ErrInvalidURL
	}
	return nil
}
