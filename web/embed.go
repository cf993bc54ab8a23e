// Package web embeds the entry page template and its static assets.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the embedded static assets (scripts, styles).
func StaticFS() fs.FS {
	return mustSub("static")
}

// TemplatesFS returns the embedded HTML templates.
func TemplatesFS() fs.FS {
	return mustSub("templates")
}

// mustSub only fails if the embed directive above and dir disagree.
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		panic(fmt.Sprintf("embedded %s directory: %v", dir, err))
	}
	return sub
}
