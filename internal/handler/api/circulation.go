package api

import (
	"net/http"
	"net/url"

	reqdto "circulation-engine/internal/handler/dto/request"
	resdto "circulation-engine/internal/handler/dto/response"
	"circulation-engine/internal/handler/httperr"
	"circulation-engine/internal/handler/middleware"
	"circulation-engine/internal/usecase/circulation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CirculationHandler struct {
	engine circulation.Engine
}

func NewCirculationHandler(engine circulation.Engine) *CirculationHandler {
	return &CirculationHandler{engine: engine}
}

// patronAndPool reads the authenticated patron and the :id pool parameter.
// It aborts the request and returns false when either is missing.
func patronAndPool(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	patronID, ok := middleware.GetPatronID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Patron not authenticated", nil)
		return uuid.Nil, uuid.Nil, false
	}
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid pool ID", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return patronID, poolID, true
}

// @Summary Borrow a title
// @Description Check out a title, or place a hold when no copy is available
// @Tags circulation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "License pool ID"
// @Param X-Patron-Pin header string false "Patron PIN forwarded to the vendor"
// @Param request body reqdto.BorrowRequest false "Borrow request"
// @Success 200 {object} resdto.BorrowResponse "Existing loan or hold"
// @Success 201 {object} resdto.BorrowResponse "New loan or hold"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /pools/{id}/borrow [post]
func (h *CirculationHandler) Borrow(c *gin.Context) {
	patronID, poolID, ok := patronAndPool(c)
	if !ok {
		return
	}

	var req reqdto.BorrowRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}

	result, err := h.engine.Borrow(c.Request.Context(), circulation.BorrowRequest{
		PatronID:    patronID,
		PIN:         middleware.GetPIN(c),
		PoolID:      poolID,
		Mechanism:   req.Mechanism(),
		NotifyEmail: req.NotifyEmail,
	})
	if err != nil {
		abortWithCirculationError(c, err, "Borrow failed")
		return
	}

	res, err := resdto.FromBorrowResult(result)
	if err != nil {
		httperr.Internal(c, err)
		return
	}
	status := http.StatusOK
	if result.IsNew {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// @Summary Fulfill a title
// @Description Get a way to read the title in the requested delivery mechanism
// @Tags circulation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "License pool ID"
// @Param X-Patron-Pin header string false "Patron PIN forwarded to the vendor"
// @Param request body reqdto.FulfillRequest true "Fulfill request"
// @Success 200 {object} resdto.FulfillmentResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /pools/{id}/fulfill [post]
func (h *CirculationHandler) Fulfill(c *gin.Context) {
	patronID, poolID, ok := patronAndPool(c)
	if !ok {
		return
	}

	var req reqdto.FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	if req.Part == "" {
		req.Part = c.Query("part")
	}

	info, err := h.engine.Fulfill(c.Request.Context(), circulation.FulfillRequest{
		PatronID:  patronID,
		PIN:       middleware.GetPIN(c),
		PoolID:    poolID,
		Mechanism: req.Mechanism(),
		Part:      req.Part,
		PartURL:   partURL(c, poolID),
	})
	if err != nil {
		abortWithCirculationError(c, err, "Fulfillment failed")
		return
	}

	content, err := info.Resolve(c.Request.Context())
	if err != nil {
		abortWithCirculationError(c, err, "Fulfillment failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromFulfillment(content))
}

func partURL(c *gin.Context, poolID uuid.UUID) func(string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	host := c.Request.Host
	return func(part string) string {
		u := url.URL{
			Scheme:   scheme,
			Host:     host,
			Path:     "/api/pools/" + poolID.String() + "/fulfill",
			RawQuery: url.Values{"part": {part}}.Encode(),
		}
		return u.String()
	}
}

// @Summary Return a loan
// @Description Return a loan early, locally and at the vendor
// @Tags circulation
// @Security BearerAuth
// @Param id path string true "License pool ID"
// @Param X-Patron-Pin header string false "Patron PIN forwarded to the vendor"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /pools/{id}/loan [delete]
func (h *CirculationHandler) ReturnLoan(c *gin.Context) {
	patronID, poolID, ok := patronAndPool(c)
	if !ok {
		return
	}
	if _, err := h.engine.RevokeLoan(c.Request.Context(), patronID, middleware.GetPIN(c), poolID); err != nil {
		abortWithCirculationError(c, err, "Return failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Release a hold
// @Description Leave the hold queue, locally and at the vendor
// @Tags circulation
// @Security BearerAuth
// @Param id path string true "License pool ID"
// @Param X-Patron-Pin header string false "Patron PIN forwarded to the vendor"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /pools/{id}/hold [delete]
func (h *CirculationHandler) ReleaseHold(c *gin.Context) {
	patronID, poolID, ok := patronAndPool(c)
	if !ok {
		return
	}
	if _, err := h.engine.ReleaseHold(c.Request.Context(), patronID, middleware.GetPIN(c), poolID); err != nil {
		abortWithCirculationError(c, err, "Release hold failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Can the hold be released
// @Tags circulation
// @Produce json
// @Security BearerAuth
// @Param id path string true "License pool ID"
// @Success 200 {object} resdto.BoolResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /pools/{id}/hold/revocable [get]
func (h *CirculationHandler) CanRevokeHold(c *gin.Context) {
	patronID, poolID, ok := patronAndPool(c)
	if !ok {
		return
	}
	result, err := h.engine.CanRevokeHold(c.Request.Context(), patronID, poolID)
	if err != nil {
		abortWithCirculationError(c, err, "Hold lookup failed")
		return
	}
	c.JSON(http.StatusOK, resdto.BoolResponse{Result: result})
}

// @Summary Can the title be read without a loan
// @Tags circulation
// @Produce json
// @Security BearerAuth
// @Param id path string true "License pool ID"
// @Param content_type query string true "Content type"
// @Param drm_scheme query string false "DRM scheme"
// @Success 200 {object} resdto.BoolResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /pools/{id}/can-fulfill-without-loan [get]
func (h *CirculationHandler) CanFulfillWithoutLoan(c *gin.Context) {
	patronID, poolID, ok := patronAndPool(c)
	if !ok {
		return
	}
	var q reqdto.MechanismQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	result, err := h.engine.CanFulfillWithoutLoan(c.Request.Context(), patronID, poolID, q.Mechanism())
	if err != nil {
		abortWithCirculationError(c, err, "Lookup failed")
		return
	}
	c.JSON(http.StatusOK, resdto.BoolResponse{Result: result})
}

// @Summary Patron bookshelf
// @Description Loans and holds, reconciled with every vendor unless recently synced
// @Tags circulation
// @Produce json
// @Security BearerAuth
// @Param X-Patron-Pin header string false "Patron PIN forwarded to the vendor"
// @Param force query bool false "Sync even when the last sync is recent"
// @Success 200 {object} resdto.BookshelfResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /bookshelf [get]
func (h *CirculationHandler) Bookshelf(c *gin.Context) {
	patronID, ok := middleware.GetPatronID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Patron not authenticated", nil)
		return
	}
	var q reqdto.BookshelfQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	shelf, err := h.engine.SyncBookshelf(c.Request.Context(), patronID, middleware.GetPIN(c), q.Force)
	if err != nil {
		abortWithCirculationError(c, err, "Bookshelf sync failed")
		return
	}
	res, err := resdto.FromBookshelf(shelf)
	if err != nil {
		httperr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
