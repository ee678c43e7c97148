// Package render turns page templates into HTML documents.
//
// The engine is chosen by file extension: Pug (.pug, .jade), Markdown
// (.md, .markdown) and Go html/template (.tmpl, .gohtml). Markdown and Go
// template pages may start with YAML front matter, which becomes the page
// data. Files whose base name starts with an underscore are partials: they
// are never rendered on their own.
package render
