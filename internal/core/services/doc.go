// Package services holds docchat's use cases behind the driving ports.
//
// IngestionService builds the collection once per process and
// RetrievalService answers k-NN queries against it. ChatService turns
// retrieved records into prompts and keeps the bounded history, and
// SettingsService resolves config.toml and environment overrides into
// domain.AppSettings.
package services
