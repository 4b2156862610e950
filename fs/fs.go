// Package appfs embeds the static assets the application needs at runtime:
// database migrations and email templates.
package appfs

import "embed"

//go:embed all:migrations all:templates
var FS embed.FS
