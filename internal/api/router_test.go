package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlexZinkM/ether-keystore/internal/crypto"
	"github.com/AlexZinkM/ether-keystore/internal/handler"
	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/internal/storage"
	"github.com/AlexZinkM/ether-keystore/internal/vault"
	"github.com/AlexZinkM/ether-keystore/keystore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	fixturePrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	fixtureAddress    = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	fixtureSignature  = "0xb91467e570a6466aa9e9876cbcd013baba02900b8979d43fe208a4a4f339f5fd" +
		"6007e74cd82e037b800186422fc2da167c747ef045e5d18a5f5d4300f8e1a029" + "1c"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := zaptest.NewLogger(t)
	ks, err := keystore.Open(context.Background(), storage.NewMemory(), vault.NewMemoryVault(), keystore.Config{
		Params:  crypto.LightParams,
		Workers: 2,
		Logger:  log,
	})
	require.NoError(t, err)
	t.Cleanup(ks.Wait)
	return SetupRouter(handler.NewKeystoreHandler(ks, log), log)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func importFixture(t *testing.T, router http.Handler) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/accounts/import/private-key",
		`{"privateKey":"`+fixturePrivateKey+`","passphrase":"p","newPassword":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateAccountAndList(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/accounts", `{"password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.AccountResponse](t, rec)
	assert.True(t, created.Success)
	_, err := model.ParseAddress(created.Address)
	require.NoError(t, err)
	assert.NotEmpty(t, created.QR)

	rec = do(t, router, http.MethodGet, "/wallets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[model.WalletsResponse](t, rec)
	require.Len(t, list.Wallets, 1)
	assert.Equal(t, "real", list.Wallets[0].Type)
	assert.Equal(t, created.Address, list.Wallets[0].Address)
}

func TestSignFixture(t *testing.T) {
	router := newTestRouter(t)
	importFixture(t, router)

	rec := do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/sign", `{"message":"Some data"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[model.SignResponse](t, rec)
	assert.Equal(t, fixtureAddress, resp.Address)
	assert.Equal(t, fixtureSignature, resp.Signature)
}

func TestSignRejectsBadInput(t *testing.T) {
	router := newTestRouter(t)
	importFixture(t, router)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{name: "both payloads", path: "/accounts/" + fixtureAddress + "/sign", body: `{"message":"a","hash":"0x00"}`, want: http.StatusBadRequest},
		{name: "no payload", path: "/accounts/" + fixtureAddress + "/sign", body: `{}`, want: http.StatusBadRequest},
		{name: "short hash", path: "/accounts/" + fixtureAddress + "/sign", body: `{"hash":"0x0102"}`, want: http.StatusBadRequest},
		{name: "bad address", path: "/accounts/not-an-address/sign", body: `{"message":"a"}`, want: http.StatusBadRequest},
		{name: "unknown account", path: "/accounts/0x0000000000000000000000000000000000000001/sign", body: `{"message":"a"}`, want: http.StatusNotFound},
		{name: "invalid json", path: "/accounts/" + fixtureAddress + "/sign", body: `not json`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestImportErrors(t *testing.T) {
	router := newTestRouter(t)
	importFixture(t, router)

	rec := do(t, router, http.MethodPost, "/accounts/import/private-key",
		`{"privateKey":"`+fixturePrivateKey+`","passphrase":"p","newPassword":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_account", decodeBody[model.ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodPost, "/accounts/import/private-key",
		`{"privateKey":"0xzz","passphrase":"p","newPassword":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/accounts/import",
		`{"keystore":{"version":3},"password":"a","newPassword":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed_format", decodeBody[model.ErrorResponse](t, rec).Code)
}

func TestExportDeleteReimport(t *testing.T) {
	router := newTestRouter(t)
	importFixture(t, router)

	rec := do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/export", `{"password":"wrong","newPassword":"exp"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/export", `{"password":"pw","newPassword":"exp"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	exported := rec.Body.Bytes()
	assert.True(t, json.Valid(exported))

	rec = do(t, router, http.MethodDelete, "/wallets/"+fixtureAddress, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodDelete, "/wallets/"+fixtureAddress, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body bytes.Buffer
	body.WriteString(`{"keystore":`)
	body.Write(exported)
	body.WriteString(`,"password":"exp","newPassword":"pw2"}`)
	rec = do(t, router, http.MethodPost, "/accounts/import", body.String())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, fixtureAddress, decodeBody[model.AccountResponse](t, rec).Address)

	rec = do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/sign", `{"message":"Some data"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixtureSignature, decodeBody[model.SignResponse](t, rec).Signature)
}

func TestUpdatePassword(t *testing.T) {
	router := newTestRouter(t)
	importFixture(t, router)

	rec := do(t, router, http.MethodPut, "/accounts/"+fixtureAddress+"/password", `{"password":"pw","newPassword":"pw2"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/export", `{"password":"pw","newPassword":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/export", `{"password":"pw2","newPassword":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	// signing follows the password on file
	rec = do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/sign", `{"message":"Some data"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWatchWallets(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/wallets/watch", `{"address":"`+strings.ToLower(fixtureAddress)+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	watch := decodeBody[model.WalletResponse](t, rec)
	assert.Equal(t, "watch", watch.Type)
	assert.Equal(t, fixtureAddress, watch.Address)

	rec = do(t, router, http.MethodPost, "/wallets/watch", `{"address":"`+fixtureAddress+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/wallets/watch", `{"address":"0x1234"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/accounts/"+fixtureAddress+"/sign", `{"message":"a"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "watch_only_account", decodeBody[model.ErrorResponse](t, rec).Code)

	// importing the key of a watched address is a duplicate
	rec = do(t, router, http.MethodPost, "/accounts/import/private-key",
		`{"privateKey":"`+fixturePrivateKey+`","passphrase":"p","newPassword":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodDelete, "/wallets/"+fixtureAddress, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecentlyUsed(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/wallets/recent", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodPut, "/wallets/recent", `{"address":"`+fixtureAddress+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	importFixture(t, router)
	rec = do(t, router, http.MethodPut, "/wallets/recent", `{"address":"`+fixtureAddress+`"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/wallets/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixtureAddress, decodeBody[model.WalletResponse](t, rec).Address)

	rec = do(t, router, http.MethodDelete, "/wallets/recent", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/wallets/recent", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// deleting the recent wallet clears the pointer
	do(t, router, http.MethodPut, "/wallets/recent", `{"address":"`+fixtureAddress+`"}`)
	rec = do(t, router, http.MethodDelete, "/wallets/"+fixtureAddress, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/wallets/recent", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAccountsRequireJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"password":"pw"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
