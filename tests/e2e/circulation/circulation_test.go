//go:build e2e

package circulation_test

import (
	"net/http"
	"testing"
	"time"

	resdto "circulation-engine/internal/handler/dto/response"
	"circulation-engine/tests/common/authtest"
	"circulation-engine/tests/common/dbtest"
	"circulation-engine/tests/common/httptest"
	"circulation-engine/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const bookshelfURL = "/api/bookshelf"

type circulationSuite struct {
	e2e.SharedSuite
	token string
}

func TestCirculationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(circulationSuite))
}

func (s *circulationSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
	s.token = authtest.LoginPatron(s.T(), s.Router, dbtest.SeedBarcode, dbtest.SeedPIN)
}

func poolURL(poolID uuid.UUID, suffix string) string {
	return "/api/pools/" + poolID.String() + suffix
}

func (s *circulationSuite) openAccessPool(identifier string) uuid.UUID {
	return dbtest.CreateTestPool(s.T(), s.DB, dbtest.PoolFixture{
		CollectionID: dbtest.LocalCollectionID,
		DataSource:   "Project Gutenberg",
		Identifier:   identifier,
		OpenAccess:   true,
	})
}

func (s *circulationSuite) vendorPool(identifier string) uuid.UUID {
	return dbtest.CreateTestPool(s.T(), s.DB, dbtest.PoolFixture{
		CollectionID:      dbtest.VendorCollectionID,
		DataSource:        "Stub Vendor",
		Identifier:        identifier,
		LicensesOwned:     1,
		LicensesAvailable: 1,
		DRMScheme:         "application/vnd.adobe.adept+xml",
	})
}

func (s *circulationSuite) borrow(poolID uuid.UUID, body any) (int, resdto.BorrowResponse) {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, poolURL(poolID, "/borrow"), body, s.token)
	var res resdto.BorrowResponse
	if w.Code < http.StatusBadRequest {
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	}
	return w.Code, res
}

func (s *circulationSuite) bookshelf(force bool) resdto.BookshelfResponse {
	t := s.T()
	url := bookshelfURL
	if force {
		url += "?force=true"
	}
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	httptest.AssertHeaders(t, w, map[string]string{"Content-Type": "application/json; charset=utf-8"})

	var res resdto.BookshelfResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	return res
}

func loanIdentifiers(shelf resdto.BookshelfResponse) []string {
	ids := make([]string, 0, len(shelf.Loans))
	for _, l := range shelf.Loans {
		if l.Pool != nil {
			ids = append(ids, l.Pool.Identifier)
		}
	}
	return ids
}

func (s *circulationSuite) TestOpenAccessLoan() {
	s.Run("オープンアクセス資料の貸出と返却", func() {
		t := s.T()
		poolID := s.openAccessPool("9780000000011")

		status, res := s.borrow(poolID, nil)
		require.Equal(t, http.StatusCreated, status)
		require.NotNil(t, res.Loan, "貸出が作成されていない")
		require.True(t, res.IsNew)
		require.Equal(t, poolID, res.Loan.PoolID)

		// 二度目の貸出は既存の貸出を返す
		status, res = s.borrow(poolID, nil)
		require.Equal(t, http.StatusOK, status)
		require.False(t, res.IsNew)

		shelf := s.bookshelf(true)
		require.Equal(t, []string{"9780000000011"}, loanIdentifiers(shelf), "同期後もローカル貸出が残ること")

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, poolURL(poolID, "/loan"), nil, s.token)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		require.Zero(t, dbtest.CountRows(t, s.DB, "loans", dbtest.SeedPatronID))
	})
}

func (s *circulationSuite) TestVendorLoan() {
	s.Run("ベンダー資料の貸出と閲覧と返却", func() {
		t := s.T()
		poolID := s.vendorPool("9780000000028")

		status, res := s.borrow(poolID, map[string]string{
			"content_type": "application/epub+zip",
			"drm_scheme":   "application/vnd.adobe.adept+xml",
		})
		require.Equal(t, http.StatusCreated, status)
		require.NotNil(t, res.Loan)
		require.NotNil(t, res.Loan.End, "ベンダーの返却期限が記録されていない")
		require.Equal(t, "ext-9780000000028", res.Loan.ExternalIdentifier)
		require.True(t, s.Vendor.HasLoan(dbtest.SeedBarcode, "9780000000028"))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, poolURL(poolID, "/fulfill"), map[string]string{
			"content_type": "application/epub+zip",
			"drm_scheme":   "application/vnd.adobe.adept+xml",
		}, s.token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var fulfillment resdto.FulfillmentResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &fulfillment))
		require.Equal(t, "https://vendor.example/content/9780000000028", fulfillment.ContentLink)

		w = httptest.PerformRequest(t, s.Router, http.MethodDelete, poolURL(poolID, "/loan"), nil, s.token)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		require.False(t, s.Vendor.HasLoan(dbtest.SeedBarcode, "9780000000028"), "ベンダー側の貸出が返却されていない")
		require.Zero(t, dbtest.CountRows(t, s.DB, "loans", dbtest.SeedPatronID))
	})

	s.Run("貸出できない資料は予約になる", func() {
		t := s.T()
		poolID := s.vendorPool("9780000000035")
		s.Vendor.MarkUnavailable("9780000000035")

		status, res := s.borrow(poolID, nil)
		require.Equal(t, http.StatusCreated, status)
		require.Nil(t, res.Loan)
		require.NotNil(t, res.Hold, "予約が作成されていない")
		require.NotNil(t, res.Hold.Position)
		require.Equal(t, 3, *res.Hold.Position)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, poolURL(poolID, "/hold/revocable"), nil, s.token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.JSONEq(t, `{"result":true}`, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodDelete, poolURL(poolID, "/hold"), nil, s.token)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		require.Zero(t, dbtest.CountRows(t, s.DB, "holds", dbtest.SeedPatronID))
	})

	s.Run("貸出のない資料の閲覧は拒否される", func() {
		t := s.T()
		poolID := s.vendorPool("9780000000042")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, poolURL(poolID, "/fulfill"), map[string]string{
			"content_type": "application/epub+zip",
		}, s.token)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), "NO_ACTIVE_LOAN")
	})
}

func (s *circulationSuite) TestBookshelfSync() {
	s.Run("ベンダー側の貸出を同期で取り込む", func() {
		t := s.T()
		s.vendorPool("9780000000059")
		// ローカルに存在しない資料の貸出
		s.Vendor.GrantLoan(dbtest.SeedBarcode, "9780000000066", time.Now().Add(7*24*time.Hour))
		s.Vendor.GrantLoan(dbtest.SeedBarcode, "9780000000059", time.Now().Add(7*24*time.Hour))

		shelf := s.bookshelf(true)
		require.True(t, shelf.Synced)

		want := []string{"9780000000059", "9780000000066"}
		if diff := cmp.Diff(want, loanIdentifiers(shelf), cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
			t.Errorf("bookshelf loans mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, 2, dbtest.CountRows(t, s.DB, "loans", dbtest.SeedPatronID))
	})

	s.Run("ベンダー側で返却された貸出を削除する", func() {
		t := s.T()
		poolID := s.vendorPool("9780000000073")

		status, _ := s.borrow(poolID, nil)
		require.Equal(t, http.StatusCreated, status)

		// 同期の猶予期間を過ぎた貸出にする
		_, err := s.DB.Exec(t.Context(), "UPDATE loans SET start_at = now() - interval '1 day' WHERE license_pool_id = $1", poolID)
		require.NoError(t, err)
		s.Vendor.Reset()

		shelf := s.bookshelf(true)
		require.Empty(t, shelf.Loans, "ベンダー側にない貸出が残っている")
		require.Zero(t, dbtest.CountRows(t, s.DB, "loans", dbtest.SeedPatronID))
	})

	s.Run("直近に同期済みなら同期しない", func() {
		t := s.T()

		shelf := s.bookshelf(true)
		require.True(t, shelf.Synced)

		calls := len(s.Vendor.Calls())
		shelf = s.bookshelf(false)
		require.False(t, shelf.Synced)
		require.Len(t, s.Vendor.Calls(), calls, "ベンダーに問い合わせが発生している")
	})
}
