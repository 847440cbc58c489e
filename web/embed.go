// Package web carries the dashboard's templates and browser assets.
package web

import "embed"

// TemplatesFS holds the page and component templates, parsed by components.NewRenderer.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.js and app.css, served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
