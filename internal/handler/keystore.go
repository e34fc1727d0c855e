package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/ether-keystore/internal/common"
	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/keystore"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// KeystoreHandler serves account and wallet endpoints
type KeystoreHandler struct {
	ks  *keystore.Keystore
	log *zap.Logger
}

// NewKeystoreHandler creates a new KeystoreHandler
func NewKeystoreHandler(ks *keystore.Keystore, log *zap.Logger) *KeystoreHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &KeystoreHandler{ks: ks, log: log}
}

// CreateAccount handles POST /accounts
// @Summary      Create account
// @Description  Generates a new key, stores it encrypted under the password and registers a real wallet
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateAccountRequest  true  "Account password"
// @Success      201      {object}  model.AccountResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /accounts [post]
func (h *KeystoreHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if !decode(w, r, &req) {
		return
	}

	password := []byte(req.Password)
	defer clear(password) // Always clear password from memory

	account, err := h.ks.CreateAccountAsync(r.Context(), password).Wait(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccount(w, account, "Account created successfully")
}

// ImportKeystore handles POST /accounts/import
// @Summary      Import keystore
// @Description  Imports a v3 keystore document and stores it under newPassword
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportKeystoreRequest  true  "Keystore and passwords"
// @Success      201      {object}  model.AccountResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /accounts/import [post]
func (h *KeystoreHandler) ImportKeystore(w http.ResponseWriter, r *http.Request) {
	var req model.ImportKeystoreRequest
	if !decode(w, r, &req) {
		return
	}
	keyJSON, err := req.KeystoreBytes()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid keystore field", model.ErrorCode(model.ErrMalformedFormat))
		return
	}

	password, newPassword := []byte(req.Password), []byte(req.NewPassword)
	defer clear(password)
	defer clear(newPassword)

	account, err := h.ks.ImportKeystoreAsync(r.Context(), keyJSON, password, newPassword).Wait(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccount(w, account, "Keystore imported successfully")
}

// ImportPrivateKey handles POST /accounts/import/private-key
// @Summary      Import raw private key
// @Description  Imports a hex-encoded secp256k1 private key and stores it under newPassword
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportPrivateKeyRequest  true  "Private key and passwords"
// @Success      201      {object}  model.AccountResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /accounts/import/private-key [post]
func (h *KeystoreHandler) ImportPrivateKey(w http.ResponseWriter, r *http.Request) {
	var req model.ImportPrivateKeyRequest
	if !decode(w, r, &req) {
		return
	}
	rawKey, err := common.DecodeHex(req.PrivateKey)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid private key: "+err.Error(), model.ErrorCode(model.ErrMalformedFormat))
		return
	}
	defer clear(rawKey)

	passphrase, newPassword := []byte(req.Passphrase), []byte(req.NewPassword)
	defer clear(passphrase)
	defer clear(newPassword)

	account, err := h.ks.ImportPrivateKeyAsync(r.Context(), rawKey, passphrase, newPassword).Wait(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccount(w, account, "Private key imported successfully")
}

// Export handles POST /accounts/{address}/export
// @Summary      Export keystore
// @Description  Returns the account key as a v3 keystore encrypted under newPassword. The stored key is unchanged.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        address  path      string               true  "Account address"
// @Param        request  body      model.ExportRequest  true  "Current and export passwords"
// @Success      200      {object}  model.KeystoreFile
// @Failure      401      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /accounts/{address}/export [post]
func (h *KeystoreHandler) Export(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	var req model.ExportRequest
	if !decode(w, r, &req) {
		return
	}

	password, newPassword := []byte(req.Password), []byte(req.NewPassword)
	defer clear(password)
	defer clear(newPassword)

	data, err := h.ks.ExportAsync(r.Context(), model.Account{Address: addr}, password, newPassword).Wait(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UpdatePassword handles PUT /accounts/{address}/password
// @Summary      Change account password
// @Description  Re-encrypts the stored key under newPassword and replaces the password on file
// @Tags         accounts
// @Accept       json
// @Param        address  path  string               true  "Account address"
// @Param        request  body  model.ExportRequest  true  "Current and new passwords"
// @Success      204
// @Failure      401      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /accounts/{address}/password [put]
func (h *KeystoreHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	var req model.ExportRequest
	if !decode(w, r, &req) {
		return
	}

	password, newPassword := []byte(req.Password), []byte(req.NewPassword)
	defer clear(password)
	defer clear(newPassword)

	if _, err := h.ks.UpdatePasswordAsync(r.Context(), model.Account{Address: addr}, password, newPassword).Wait(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sign handles POST /accounts/{address}/sign
// @Summary      Sign message or hash
// @Description  Signs an EIP-191 personal message or a 32-byte hash with the password on file. Signature is 0x r||s||v, v in {27, 28}.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        address  path      string             true  "Account address"
// @Param        request  body      model.SignRequest  true  "Message or hash"
// @Success      200      {object}  model.SignResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /accounts/{address}/sign [post]
func (h *KeystoreHandler) Sign(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	var req model.SignRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	account := model.Account{Address: addr}
	var sig []byte
	var err error
	if req.Message != nil {
		sig, err = h.ks.SignMessageAsync(r.Context(), []byte(*req.Message), account).Wait(r.Context())
	} else {
		hash, herr := common.DecodeHex(*req.Hash)
		if herr != nil || len(hash) != 32 {
			writeJSONError(w, http.StatusBadRequest, keystore.ErrInvalidHashLength.Error(), "")
			return
		}
		sig, err = h.ks.SignHashAsync(r.Context(), hash, account).Wait(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SignResponse{
		Address:   account.String(),
		Signature: common.EncodeHex(sig),
	})
}

// ListWallets handles GET /wallets
// @Summary      List wallets
// @Description  Lists real and watch-only wallets in insertion order
// @Tags         wallets
// @Produce      json
// @Success      200  {object}  model.WalletsResponse
// @Router       /wallets [get]
func (h *KeystoreHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets := h.ks.Registry().Wallets()
	resp := model.WalletsResponse{Wallets: make([]model.WalletResponse, 0, len(wallets))}
	for _, wallet := range wallets {
		resp.Wallets = append(resp.Wallets, model.NewWalletResponse(wallet))
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddWatch handles POST /wallets/watch
// @Summary      Add watch-only wallet
// @Description  Registers an address without a key
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.WatchRequest  true  "Address to watch"
// @Success      201      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallets/watch [post]
func (h *KeystoreHandler) AddWatch(w http.ResponseWriter, r *http.Request) {
	var req model.WatchRequest
	if !decode(w, r, &req) {
		return
	}
	addr, err := model.ParseAddress(req.Address)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	wallet, err := h.ks.AddWatch(r.Context(), addr)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.NewWalletResponse(wallet))
}

// DeleteWallet handles DELETE /wallets/{address}
// @Summary      Delete wallet
// @Description  Removes a wallet. For a real wallet the stored key and password are purged.
// @Tags         wallets
// @Param        address  path  string  true  "Wallet address"
// @Success      204
// @Failure      404      {object}  model.ErrorResponse
// @Router       /wallets/{address} [delete]
func (h *KeystoreHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	wallet, ok := h.ks.Registry().Lookup(addr)
	if !ok {
		h.writeError(w, model.ErrUnknownWallet)
		return
	}
	if err := h.ks.Delete(r.Context(), wallet); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRecent handles GET /wallets/recent
// @Summary      Get recently used wallet
// @Tags         wallets
// @Produce      json
// @Success      200  {object}  model.WalletResponse
// @Success      204  "No recently used wallet"
// @Router       /wallets/recent [get]
func (h *KeystoreHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.ks.Registry().RecentlyUsed()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, model.NewWalletResponse(wallet))
}

// SetRecent handles PUT /wallets/recent
// @Summary      Set recently used wallet
// @Tags         wallets
// @Accept       json
// @Param        request  body  model.RecentRequest  true  "Registered wallet address"
// @Success      204
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /wallets/recent [put]
func (h *KeystoreHandler) SetRecent(w http.ResponseWriter, r *http.Request) {
	var req model.RecentRequest
	if !decode(w, r, &req) {
		return
	}
	addr, err := model.ParseAddress(req.Address)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	wallet, ok := h.ks.Registry().Lookup(addr)
	if !ok {
		h.writeError(w, model.ErrUnknownWallet)
		return
	}
	if err := h.ks.SetRecentlyUsed(r.Context(), wallet); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearRecent handles DELETE /wallets/recent
// @Summary      Clear recently used wallet
// @Tags         wallets
// @Success      204
// @Router       /wallets/recent [delete]
func (h *KeystoreHandler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	if err := h.ks.ClearRecentlyUsed(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KeystoreHandler) writeAccount(w http.ResponseWriter, account model.Account, message string) {
	qr, err := common.AddressQRCode(account.String())
	if err != nil {
		// account is already stored, respond without QR
		h.log.Warn("failed to generate QR code", zap.String("address", account.String()), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, model.AccountResponse{
		Success: true,
		Message: message,
		Address: account.String(),
		QR:      qr,
	})
}

func (h *KeystoreHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	writeJSONError(w, status, err.Error(), model.ErrorCode(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrMalformedFormat), errors.Is(err, keystore.ErrInvalidHashLength):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrUnknownAccount), errors.Is(err, model.ErrUnknownWallet):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateAccount), errors.Is(err, model.ErrWatchOnlyAccount):
		return http.StatusConflict
	case errors.Is(err, model.ErrCorruptBlob):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func pathAddress(w http.ResponseWriter, r *http.Request) (ethcommon.Address, bool) {
	addr, err := model.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return ethcommon.Address{}, false
	}
	return addr, true
}

// maxBodyBytes bounds request bodies; a keystore document is a few hundred bytes.
const maxBodyBytes = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large", "")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}
