package api

import (
	"net/http"

	"github.com/AlexZinkM/ether-keystore/internal/handler"
	"github.com/AlexZinkM/ether-keystore/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// SetupRouter sets up router with handlers
func SetupRouter(keystoreHandler *handler.KeystoreHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Account endpoints
	r.Route("/accounts", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Post("/", keystoreHandler.CreateAccount)
		r.Post("/import", keystoreHandler.ImportKeystore)
		r.Post("/import/private-key", keystoreHandler.ImportPrivateKey)
		r.Post("/{address}/export", keystoreHandler.Export)
		r.Put("/{address}/password", keystoreHandler.UpdatePassword)
		r.Post("/{address}/sign", keystoreHandler.Sign)
	})

	// Wallet endpoints
	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", keystoreHandler.ListWallets)
		r.Post("/watch", keystoreHandler.AddWatch)
		r.Get("/recent", keystoreHandler.GetRecent)
		r.Put("/recent", keystoreHandler.SetRecent)
		r.Delete("/recent", keystoreHandler.ClearRecent)
		r.Delete("/{address}", keystoreHandler.DeleteWallet)
	})

	return r
}
