package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/usecase"
)

func TestAffiliateHandler_Links(t *testing.T) {
	affiliates := &mockAffiliate{}
	h := NewAffiliateHandler(AffiliateHandlerParams{AffiliateUC: affiliates, Logger: testLogger})

	e := newTestEcho()
	g := e.Group("/affiliate", as("affiliate-01", entity.RoleAffiliate))
	g.POST("/links", h.CreateLink)
	g.GET("/links/qr", h.LinkQRCode)

	affiliates.On("CreateLink", mock.Anything, "affiliate-01", "creator-01", "1").Return(&usecase.AffiliateLink{
		CreatorID: "creator-01",
		ProductID: "1",
		URL:       "https://course-craft.com/store/creator-01/products/1?ref=sam-promo",
	}, nil)
	affiliates.On("LinkQRCode", mock.Anything, "affiliate-01", "creator-01", "").Return([]byte("\x89PNG"), nil)
	affiliates.On("LinkQRCode", mock.Anything, "affiliate-01", "creator-02", "").
		Return(nil, domainerrors.ErrAffiliateProgramDisabled)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, postJSON("/affiliate/links", `{"creatorId":"creator-01","productId":"1"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "ref=sam-promo")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, postJSON("/affiliate/links", `{"productId":"1"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"creatorId":"required"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/affiliate/links/qr?creatorId=creator-01", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/affiliate/links/qr?creatorId=creator-02", nil))
	assert.Equal(t, domainerrors.ErrAffiliateProgramDisabled.HTTPCode(), rec.Code)

	affiliates.AssertExpectations(t)
}
