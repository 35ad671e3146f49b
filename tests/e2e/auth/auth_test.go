//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"circulation-engine/internal/handler/dto/request"
	resdto "circulation-engine/internal/handler/dto/response"
	"circulation-engine/internal/pkg/cookie"
	"circulation-engine/tests/common/authtest"
	"circulation-engine/tests/common/dbtest"
	"circulation-engine/tests/common/httptest"
	"circulation-engine/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	loginURL   = "/api/auth/login"
	logoutURL  = "/api/auth/logout"
	refreshURL = "/api/auth/refresh"
	meURL      = "/api/auth/me"
)

type authSuite struct {
	e2e.SharedSuite
	jwtHelper *authtest.JWTHelper
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwtHelper = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	// 利用停止中の利用者を作成
	blockedID := dbtest.CreateTestPatron(s.T(), s.DB, dbtest.SeedLibraryID, "23333000000099")
	_, err := s.DB.Exec(s.T().Context(), "UPDATE patrons SET block_reason = 'lost card' WHERE id = $1", blockedID)
	require.NoError(s.T(), err)
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name           string
		barcode        string
		pin            string
		expectedStatus int
		description    string
	}{
		{
			name:           "正常なログイン",
			barcode:        dbtest.SeedBarcode,
			pin:            dbtest.SeedPIN,
			expectedStatus: http.StatusOK,
			description:    "有効な利用者番号とPINでログインできること",
		},
		{
			name:           "前後の空白を含む利用者番号",
			barcode:        "  " + dbtest.SeedBarcode + " ",
			pin:            dbtest.SeedPIN,
			expectedStatus: http.StatusOK,
			description:    "利用者番号の前後の空白は無視されること",
		},
		{
			name:           "存在しない利用者番号",
			barcode:        "00000000000000",
			pin:            dbtest.SeedPIN,
			expectedStatus: http.StatusUnauthorized,
			description:    "存在しない利用者番号でログインできないこと",
		},
		{
			name:           "間違ったPIN",
			barcode:        dbtest.SeedBarcode,
			pin:            "9999",
			expectedStatus: http.StatusUnauthorized,
			description:    "間違ったPINでログインできないこと",
		},
		{
			name:           "空の利用者番号",
			barcode:        "",
			pin:            dbtest.SeedPIN,
			expectedStatus: http.StatusBadRequest,
			description:    "空の利用者番号は拒否されること",
		},
		{
			name:           "短すぎるPIN",
			barcode:        dbtest.SeedBarcode,
			pin:            "12",
			expectedStatus: http.StatusBadRequest,
			description:    "4桁未満のPINは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			reqBody := request.LoginRequest{Barcode: tt.barcode, PIN: tt.pin}
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL, reqBody, "")
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				var loginRes resdto.LoginResponse
				err := httptest.DecodeResponseBody(t, w.Body, &loginRes)
				require.NoError(t, err)
				require.NotEmpty(t, loginRes.AccessToken, "アクセストークンが空")
				require.NotNil(t, loginRes.Patron, "利用者情報が返されていない")
				require.Equal(t, dbtest.SeedPatronID, loginRes.Patron.ID)
				require.Equal(t, dbtest.SeedLibraryID, loginRes.Patron.LibraryID)

				refresh := httptest.ExtractCookie(w, cookie.RefreshTokenCookieName)
				require.NotNil(t, refresh, "リフレッシュトークンのCookieがない")
				require.NotEmpty(t, refresh.Value)
			}
		})
	}
}

func (s *authSuite) TestRefresh() {
	tests := []struct {
		name              string
		setupRefreshToken func() string
		expectedStatus    int
		description       string
	}{
		{
			name: "正常なリフレッシュ",
			setupRefreshToken: func() string {
				reqBody := request.LoginRequest{Barcode: dbtest.SeedBarcode, PIN: dbtest.SeedPIN}
				w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL, reqBody, "")
				require.Equal(s.T(), http.StatusOK, w.Code)
				return httptest.ExtractCookie(w, cookie.RefreshTokenCookieName).Value
			},
			expectedStatus: http.StatusOK,
			description:    "有効なリフレッシュトークンでトークンが更新されること",
		},
		{
			name: "アクセストークンをリフレッシュに使用",
			setupRefreshToken: func() string {
				return s.jwtHelper.GenerateToken(s.T(), dbtest.SeedPatronID, dbtest.SeedLibraryID)
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "アクセストークンではリフレッシュできないこと",
		},
		{
			name: "無効なリフレッシュトークン",
			setupRefreshToken: func() string {
				return "invalid-refresh-token"
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "無効なリフレッシュトークンは拒否されること",
		},
		{
			name: "空のリフレッシュトークン",
			setupRefreshToken: func() string {
				return ""
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "空のリフレッシュトークンは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			reqBody := request.RefreshRequest{RefreshToken: tt.setupRefreshToken()}
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL, reqBody, "")
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				var refreshRes resdto.RefreshResponse
				err := httptest.DecodeResponseBody(t, w.Body, &refreshRes)
				require.NoError(t, err)
				require.NotEmpty(t, refreshRes.AccessToken, "新しいアクセストークンが空")
			}
		})
	}
}

func (s *authSuite) TestLogout() {
	tests := []struct {
		name           string
		setupToken     func() string
		expectedStatus int
		description    string
	}{
		{
			name: "正常なログアウト",
			setupToken: func() string {
				return authtest.LoginPatron(s.T(), s.Router, dbtest.SeedBarcode, dbtest.SeedPIN)
			},
			expectedStatus: http.StatusNoContent,
			description:    "有効なトークンでログアウトできること",
		},
		{
			name: "無効なトークン",
			setupToken: func() string {
				return "invalid-token"
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "無効なトークンでログアウトできないこと",
		},
		{
			name: "トークンなし",
			setupToken: func() string {
				return ""
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "トークンなしでログアウトできないこと",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, logoutURL, nil, tt.setupToken())
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)
		})
	}
}

func (s *authSuite) TestLogoutWithCookies() {
	s.Run("Cookieによるログアウト", func() {
		t := s.T()

		reqBody := request.LoginRequest{Barcode: dbtest.SeedBarcode, PIN: dbtest.SeedPIN}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL, reqBody, "")
		require.Equal(t, http.StatusOK, w.Code)

		authtest.LogoutPatron(t, s.Router, httptest.ExtractCookies(w))
	})
}

func (s *authSuite) TestMe() {
	s.Run("ログイン中の利用者情報取得", func() {
		t := s.T()

		token := authtest.LoginPatron(t, s.Router, dbtest.SeedBarcode, dbtest.SeedPIN)
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		responseBody := w.Body.String()
		require.Contains(t, responseBody, dbtest.SeedBarcode, "レスポンスに利用者番号が含まれていない")
		require.Contains(t, responseBody, "Springfield Public Library", "レスポンスに図書館名が含まれていない")
		require.NotContains(t, responseBody, "pin", "レスポンスにPIN情報が含まれている")
	})

	s.Run("利用停止中の利用者", func() {
		t := s.T()

		token := authtest.LoginPatron(t, s.Router, "23333000000099", dbtest.SeedPIN)
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), `"blocked":true`)
	})

	s.Run("無効なトークン", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, "invalid-token")
		require.Equal(s.T(), http.StatusUnauthorized, w.Code)
	})
}

func (s *authSuite) TestTokenExpiry() {
	s.Run("期限切れトークンの拒否", func() {
		t := s.T()

		expiredToken := s.jwtHelper.CreateExpiredToken(t, dbtest.SeedPatronID, dbtest.SeedLibraryID)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, expiredToken)
		require.Equal(t, http.StatusUnauthorized, w.Code, "期限切れトークンは拒否されるべき")
	})
}

func (s *authSuite) TestAuthenticationRequired() {
	s.Run("認証が必要なエンドポイント", func() {
		t := s.T()

		endpoints := []struct {
			method string
			path   string
		}{
			{http.MethodPost, logoutURL},
			{http.MethodGet, meURL},
			{http.MethodGet, "/api/bookshelf"},
			{http.MethodPost, "/api/pools/" + dbtest.SeedPatronID.String() + "/borrow"},
		}

		for _, endpoint := range endpoints {
			w := httptest.PerformRequest(t, s.Router, endpoint.method, endpoint.path, nil, "")
			require.Equal(t, http.StatusUnauthorized, w.Code, "認証なしでは拒否されるべき: %s", endpoint.path)
		}
	})
}
