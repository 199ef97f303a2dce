// Package render turns document text into HTML: Markdown through goldmark,
// Liquid templates through osteele/liquid, and the pipeline debug report.
package render
