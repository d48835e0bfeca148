package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Documents service.DocumentService
	Search    service.SearchService
	Costs     service.CostService
}

// Options carries optional route dependencies.
type Options struct {
	// Limiter guards the endpoints that call the analysis model. Nil disables it.
	Limiter fiber.Handler
	// Health lists dependencies probed by /health besides the database.
	Health []Pinger
	// OpenAPIPath is the file served at /openapi.yaml.
	OpenAPIPath string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, call the service, map the result.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services, opts Options) {
	if opts.OpenAPIPath == "" {
		opts.OpenAPIPath = "openapi.yaml"
	}
	guard := opts.Limiter
	if guard == nil {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}

	// OpenAPI document and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile(opts.OpenAPIPath)
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Type("html").SendString(docsPage)
	})

	app.Get("/health", HealthCheck(db, opts.Health...))
	app.Get("/healthz", LivenessProbe())

	app.Post("/upload", guard, UploadDocuments(svcs.Documents))
	app.Post("/search", guard, Search(svcs.Search))

	app.Get("/documents", ListDocuments(svcs.Documents))
	app.Get("/documents/:id", GetDocument(svcs.Documents))
	app.Get("/documents/:id/file", DownloadDocument(svcs.Documents))
	app.Patch("/documents/:id", RenameDocument(svcs.Documents))
	app.Delete("/documents/:id", DeleteDocument(svcs.Documents))

	app.Get("/costs", ListCosts(svcs.Costs))
	app.Get("/costs/summary", CostSummary(svcs.Costs))
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>docvault API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
