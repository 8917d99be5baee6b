// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestOrchestrator runs the resumable ingestion pipeline and
// RetrievalService answers queries over the ingested corpus.
package services
