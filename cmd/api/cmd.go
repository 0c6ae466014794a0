package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/freightboard/dashboard-api/internal/bootstrap"
	"github.com/freightboard/dashboard-api/internal/config"
	"github.com/freightboard/dashboard-api/internal/crypto"
	"github.com/freightboard/dashboard-api/internal/docstore"
	"github.com/freightboard/dashboard-api/internal/grid"
	"github.com/freightboard/dashboard-api/internal/handlers"
	"github.com/freightboard/dashboard-api/internal/response"
	"github.com/freightboard/dashboard-api/internal/router"
	"github.com/freightboard/dashboard-api/internal/services"
	"github.com/freightboard/dashboard-api/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// helpers
	kmsHelper := crypto.NewKMS(bs.KMS, cfg.KMSKeyName)

	// stores
	docs := docstore.NewFirestoreStore(bs.Firestore)
	cwstore := store.NewCustomWidgetStore(docs, kmsHelper)
	lstore := store.NewLayoutStore(docs)
	rstore := store.NewRowStore(bs.Firestore)
	sstore := store.NewSourceSecretsStore(bs.SecretManager, cfg.ProjectID)

	// services
	dserv := services.NewDataService(rstore, cwstore, cfg.DataTTL)
	wserv := services.NewWidgetService(cwstore, dserv)
	rserv := services.NewResolverService(cwstore)
	aiserv := services.NewAIWidgetService(bs.VertexAdapter)
	srcserv := services.NewSourceService(sstore)

	// grid controller
	gridCtl := grid.NewController(lstore, rserv, dserv, cfg.LayoutDebounce, bs.Log)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.WidgetSvc = wserv
	deps.GridCtl = gridCtl
	deps.AISvc = aiserv
	deps.SourceSvc = srcserv

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":8080", r)
	exitOnError("server start failed", err, bs.Log)
}
