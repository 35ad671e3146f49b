//go:build e2e

package e2e

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// VendorStub is an in-process vendor speaking the restapi protocol. Titles
// are keyed by identifier value, patrons by the X-Patron-Id header.
type VendorStub struct {
	server *httptest.Server

	mu          sync.Mutex
	unavailable map[string]bool
	loans       map[string]map[string]time.Time
	holds       map[string]map[string]int
	calls       []string
}

func NewVendorStub() *VendorStub {
	v := &VendorStub{}
	v.Reset()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		v.mu.Lock()
		v.calls = append(v.calls, c.Request.Method+" "+c.FullPath())
		v.mu.Unlock()
		c.Next()
	})
	titles := r.Group("/titles/:type/:id")
	{
		titles.POST("/checkout", v.checkout)
		titles.DELETE("/checkout", v.checkin)
		titles.POST("/hold", v.placeHold)
		titles.DELETE("/hold", v.releaseHold)
		titles.POST("/fulfillment", v.fulfill)
		titles.GET("/availability", v.availability)
	}
	r.GET("/patrons/me/activity", v.activity)

	v.server = httptest.NewServer(r)
	return v
}

func (v *VendorStub) URL() string {
	return v.server.URL
}

func (v *VendorStub) Close() {
	v.server.Close()
}

func (v *VendorStub) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unavailable = map[string]bool{}
	v.loans = map[string]map[string]time.Time{}
	v.holds = map[string]map[string]int{}
	v.calls = nil
}

// MarkUnavailable makes checkouts of the title fail with no_copies_available.
func (v *VendorStub) MarkUnavailable(identifier string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unavailable[identifier] = true
}

// GrantLoan records a loan made outside the engine, as if the patron had
// borrowed through another app.
func (v *VendorStub) GrantLoan(barcode, identifier string, end time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loansOf(barcode)[identifier] = end
}

func (v *VendorStub) HasLoan(barcode, identifier string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.loansOf(barcode)[identifier]
	return ok
}

func (v *VendorStub) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

func (v *VendorStub) loansOf(barcode string) map[string]time.Time {
	m, ok := v.loans[barcode]
	if !ok {
		m = map[string]time.Time{}
		v.loans[barcode] = m
	}
	return m
}

func (v *VendorStub) holdsOf(barcode string) map[string]int {
	m, ok := v.holds[barcode]
	if !ok {
		m = map[string]int{}
		v.holds[barcode] = m
	}
	return m
}

func vendorError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"code": code, "message": code})
}

func loanBody(idType, id string, end time.Time) gin.H {
	return gin.H{
		"identifier_type": idType,
		"identifier":      id,
		"end":             end.UTC().Format(time.RFC3339),
		"external_id":     "ext-" + id,
	}
}

func (v *VendorStub) checkout(c *gin.Context) {
	barcode, idType, id := c.GetHeader("X-Patron-Id"), c.Param("type"), c.Param("id")

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unavailable[id] {
		vendorError(c, http.StatusConflict, "no_copies_available")
		return
	}
	end := time.Now().Add(21 * 24 * time.Hour)
	v.loansOf(barcode)[id] = end
	c.JSON(http.StatusOK, gin.H{"loan": loanBody(idType, id, end)})
}

func (v *VendorStub) checkin(c *gin.Context) {
	barcode, id := c.GetHeader("X-Patron-Id"), c.Param("id")

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.loansOf(barcode)[id]; !ok {
		vendorError(c, http.StatusNotFound, "not_checked_out")
		return
	}
	delete(v.loansOf(barcode), id)
	c.Status(http.StatusNoContent)
}

func (v *VendorStub) placeHold(c *gin.Context) {
	barcode, idType, id := c.GetHeader("X-Patron-Id"), c.Param("type"), c.Param("id")

	v.mu.Lock()
	defer v.mu.Unlock()
	holds := v.holdsOf(barcode)
	if _, ok := holds[id]; ok {
		vendorError(c, http.StatusConflict, "already_on_hold")
		return
	}
	holds[id] = 3
	c.JSON(http.StatusOK, gin.H{
		"identifier_type": idType,
		"identifier":      id,
		"position":        3,
		"external_id":     "hold-" + id,
	})
}

func (v *VendorStub) releaseHold(c *gin.Context) {
	barcode, id := c.GetHeader("X-Patron-Id"), c.Param("id")

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.holdsOf(barcode)[id]; !ok {
		vendorError(c, http.StatusNotFound, "not_on_hold")
		return
	}
	delete(v.holdsOf(barcode), id)
	c.Status(http.StatusNoContent)
}

func (v *VendorStub) fulfill(c *gin.Context) {
	var req struct {
		ContentType string `json:"content_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		vendorError(c, http.StatusBadRequest, "delivery_mechanism_error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content_link": "https://vendor.example/content/" + c.Param("id"),
		"content_type": req.ContentType,
	})
}

func (v *VendorStub) availability(c *gin.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	available := 1
	if v.unavailable[c.Param("id")] {
		available = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"licenses_owned":        1,
		"licenses_available":    available,
		"patrons_in_hold_queue": 2,
	})
}

func (v *VendorStub) activity(c *gin.Context) {
	barcode := c.GetHeader("X-Patron-Id")

	v.mu.Lock()
	defer v.mu.Unlock()
	loans := make([]gin.H, 0)
	for id, end := range v.loansOf(barcode) {
		loans = append(loans, loanBody("ISBN", id, end))
	}
	holds := make([]gin.H, 0)
	for id, position := range v.holdsOf(barcode) {
		holds = append(holds, gin.H{
			"identifier_type": "ISBN",
			"identifier":      id,
			"position":        position,
			"external_id":     "hold-" + id,
		})
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "holds": holds})
}
