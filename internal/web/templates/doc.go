// Package templates renders the HTML fragments returned to HTMX callers.
//
// Components are written in fragments.templ; fragments_templ.go is generated
// from it and committed.
package templates

//go:generate templ generate
