// Package html provides a Normaliser implementation for HTML documents.
// It parses pages with goquery and keeps only the visible text, one line
// per block element.
package html
