// Package web embeds the HTML templates rendered by the API layer.
package web

import "embed"

//go:embed views/*.html
var Views embed.FS
