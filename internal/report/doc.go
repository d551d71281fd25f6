// Package report renders scan and connect results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: GitHub flavored Markdown for sharing
//
// Writers implement the Writer interface and can be combined with MultiWriter.
package report
