package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func protectedHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthorizeAcceptsMatchingToken(t *testing.T) {
	mw := New("s3cret")

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/submit-tests/hw1", nil)
	req.Header.Set("Authorization", "s3cret")
	rec := httptest.NewRecorder()

	mw.Authorize(protectedHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestAuthorizeRejectsWrongToken(t *testing.T) {
	mw := New("s3cret")

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/submit-tests/hw1", nil)
	req.Header.Set("Authorization", "guess")
	rec := httptest.NewRecorder()

	mw.Authorize(protectedHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestAuthorizeRejectsMissingHeader(t *testing.T) {
	mw := New("s3cret")

	var called bool
	req := httptest.NewRequest(http.MethodDelete, "/delete-assignment/hw1", nil)
	rec := httptest.NewRecorder()

	mw.Authorize(protectedHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}
