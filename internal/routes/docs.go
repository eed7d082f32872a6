package routes

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/config"
)

//go:embed openapi.yaml
var openAPISpec []byte

const docsIndexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    :root {
      --bg: #f4f5f7;
      --ink: #1b1f24;
      --muted: #5b6470;
      --brand: #b4472b;
      --line: #dde1e6;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
      color: var(--ink);
      background: var(--bg);
    }
    main { max-width: 980px; margin: 0 auto; padding: 40px 18px; }
    section {
      background: #fff;
      border: 1px solid var(--line);
      border-radius: 12px;
      margin-bottom: 18px;
    }
    .hero { padding: 24px 28px; }
    .hero h1 { margin: 0 0 8px; font-size: 2.2rem; }
    .hero p { margin: 0; color: var(--muted); line-height: 1.55; }
    .actions { display: flex; gap: 10px; margin-top: 18px; }
    .button {
      padding: 9px 14px;
      border-radius: 8px;
      border: 1px solid var(--brand);
      background: var(--brand);
      color: #fff;
      text-decoration: none;
    }
    .button.secondary { background: transparent; color: var(--brand); }
    .panel { padding: 20px; }
    .panel p { margin: 0 0 12px; color: var(--muted); font-size: 0.9rem; }
    pre {
      margin: 0;
      padding: 18px;
      overflow-x: auto;
      border-radius: 8px;
      background: #14181d;
      color: #e6e9ed;
      font-size: 0.82rem;
      line-height: 1.45;
    }
  </style>
</head>
<body>
  <main>
    <section class="hero">
      <h1>{{ .Title }}</h1>
      <p>Contracts, sessions and trainer scheduling. Every route under /api/v1 needs a bearer token whose subject is the caller's actor id.</p>
      <div class="actions">
        <a class="button" href="/docs/openapi.yaml">Download openapi.yaml</a>
        <a class="button secondary" href="/metrics">Metrics</a>
      </div>
    </section>
    <section class="panel">
      <p>Loaded {{ .LoadedAt }}</p>
      <pre>{{ .Spec }}</pre>
    </section>
  </main>
</body>
</html>
`

type docsPageData struct {
	Title    string
	LoadedAt string
	Spec     string
}

func registerDocsRoutes(app fiber.Router, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	indexTemplate, err := template.New("docs-index").Parse(docsIndexHTML)
	if err != nil {
		return fmt.Errorf("parse docs template: %w", err)
	}

	pageData := docsPageData{
		Title:    "Studio Booking API",
		LoadedAt: time.Now().UTC().Format(time.RFC3339),
		Spec:     string(openAPISpec),
	}

	indexHandler := func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, fiber.MIMETextHTMLCharsetUTF8)
		c.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; base-uri 'none'; form-action 'none'; frame-ancestors 'none'")

		var body bytes.Buffer
		if err := indexTemplate.Execute(&body, pageData); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render api docs")
		}

		return c.Status(fiber.StatusOK).Send(body.Bytes())
	}

	app.Get("/docs", indexHandler)
	app.Get("/docs/", indexHandler)
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, "application/yaml; charset=utf-8")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="openapi.yaml"`)
		return c.Status(fiber.StatusOK).Send(openAPISpec)
	})

	return nil
}

func applyDocsBaseHeaders(c *fiber.Ctx, contentType string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("Cross-Origin-Resource-Policy", "same-origin")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
