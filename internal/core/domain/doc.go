// Package domain holds docchat's entities and error types: Document and
// RawDocument on the ingestion side, Record, Collection and QueryResult
// in the store, and ChatTurn, Answer and AppSettings for the session.
//
// It imports only the standard library. Every other internal package
// may import domain; domain imports none of them.
package domain
