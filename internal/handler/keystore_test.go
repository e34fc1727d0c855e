package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/keystore"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrap: %w", model.ErrMalformedFormat), want: http.StatusBadRequest},
		{err: keystore.ErrInvalidHashLength, want: http.StatusBadRequest},
		{err: model.ErrInvalidPassword, want: http.StatusUnauthorized},
		{err: model.ErrUnknownAccount, want: http.StatusNotFound},
		{err: model.ErrUnknownWallet, want: http.StatusNotFound},
		{err: model.ErrDuplicateAccount, want: http.StatusConflict},
		{err: model.ErrWatchOnlyAccount, want: http.StatusConflict},
		{err: model.ErrCorruptBlob, want: http.StatusUnprocessableEntity},
		{err: context.Canceled, want: http.StatusRequestTimeout},
		{err: context.DeadlineExceeded, want: http.StatusRequestTimeout},
		{err: &model.StorageError{Op: "write key", Err: errors.New("disk full")}, want: http.StatusInternalServerError},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestPathAddress(t *testing.T) {
	newRequest := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("address", addr)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rec := httptest.NewRecorder()
	addr, ok := pathAddress(rec, newRequest("2c7536e3605d9c16a7a3d7b1898e529396a65c23"))
	assert.True(t, ok)
	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", addr.Hex())

	rec = httptest.NewRecorder()
	_, ok = pathAddress(rec, newRequest("0x2c75"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSONError(rec, http.StatusConflict, "account already exists", "duplicate_account")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"account already exists","code":"duplicate_account"}`, rec.Body.String())
}

func TestDecodeRejectsInvalidBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader("{"))

	var v model.CreateAccountRequest
	assert.False(t, decode(rec, req, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"password":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(body))

	var v model.CreateAccountRequest
	assert.False(t, decode(rec, req, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, v.Password)
}
