// Package report renders cleaning runs, table profiles and run comparisons.
//
// Three formats are available: SimpleWriter for the terminal, JSONWriter
// for tools and MarkdownWriter for documents. All of them implement Writer,
// and MultiWriter fans a report out to several of them.
package report
