package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"pharmadash/internal/export"
	"pharmadash/internal/prefs"
	"pharmadash/internal/search"
	"pharmadash/internal/service"
	"pharmadash/internal/sheets"
)

// Deps are the collaborators the HTTP layer needs. Exports, SheetCache and Metrics may be nil.
type Deps struct {
	Records    service.RecordService
	Store      service.AsyncStore
	Search     *search.Service
	Sheets     sheets.Fetcher
	SheetCache sheets.Cache
	Importer   *sheets.Importer
	Exports    *export.Publisher
	Prefs      *prefs.Store
	Checks     map[string]Check
	Metrics    fiber.Handler
	Logger     *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Fixed segments under /records/:kind are registered before /:id so they win.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.Checks))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics)
	}

	app.Get("/schemas", ListSchemas())
	app.Get("/schemas/:kind", GetSchema())

	records := app.Group("/records/:kind")
	records.Get("/", ListRecords(d.Records, d.Prefs))
	records.Post("/", CreateRecord(d.Store, d.Logger))
	records.Get("/selection", GetSelection(d.Records))
	records.Put("/selection", PutSelection(d.Records))
	records.Delete("/selection", ClearSelection(d.Records))
	records.Get("/export", ExportRecords(d.Records, d.Prefs))
	records.Post("/exports", PublishExport(d.Records, d.Prefs, d.Exports))
	records.Get("/:id", GetRecord(d.Records))
	records.Patch("/:id", UpdateRecord(d.Records, d.Store, d.Logger))
	records.Delete("/:id", DeleteRecord(d.Store))

	app.Get("/search", GlobalSearch(d.Search, d.Prefs))
	app.Get("/sheets/:sheetID", FetchSheet(d.Sheets))
	if d.SheetCache != nil {
		app.Delete("/sheets/:sheetID/cache", InvalidateSheet(d.SheetCache))
	}
	app.Post("/imports/sheets", ImportSheet(d.Importer))

	app.Get("/preferences/language", GetLanguage(d.Prefs))
	app.Put("/preferences/language", PutLanguage(d.Prefs))
	app.Delete("/preferences/language", ClearLanguage(d.Prefs))

	app.Get("/dashboard", Dashboard(d.Records))
}
