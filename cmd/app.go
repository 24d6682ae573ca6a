package cmd

import (
	"fmt"
	"net/http"

	"asana-swit-backend/config"
	"asana-swit-backend/controllers"
	"asana-swit-backend/controllers/authentication"
	"asana-swit-backend/controllers/webhook"
	"asana-swit-backend/services/asana"
	"asana-swit-backend/services/oauth"
	"asana-swit-backend/services/signature"
	"asana-swit-backend/services/swit"
	"asana-swit-backend/services/tokenstore"

	"gorm.io/gorm"
)

// openStore connects to the database and returns the token store on top of it.
func openStore(cfg *config.Config) (*tokenstore.Store, *gorm.DB, error) {
	cipher, err := tokenstore.NewCipher(cfg.TokenEncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("token encryption key: %w", err)
	}
	db, err := config.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return tokenstore.New(db, cipher), db, nil
}

// newHandler assembles the full HTTP handler.
func newHandler(cfg *config.Config, store *tokenstore.Store) http.Handler {
	httpClient := config.NewHTTPClient(cfg)
	switAuth := oauth.NewSwitClient(cfg, httpClient)
	asanaAuth := oauth.NewAsanaClient(cfg, httpClient)

	dispatcher := webhook.New(cfg, webhook.Deps{
		Verifier:  signature.NewVerifier([]byte(cfg.SigningKey), cfg.SignatureMaxDelay),
		Store:     store,
		SwitAuth:  switAuth,
		AsanaAuth: asanaAuth,
		Swit:      swit.NewClient(cfg, httpClient),
		Asana:     asana.NewClient(cfg, httpClient),
	})
	auth := authentication.NewHandler(cfg, switAuth, asanaAuth, store, dispatcher, config.NewSessionStore(cfg))
	return controllers.NewRouter(cfg, dispatcher, auth)
}
