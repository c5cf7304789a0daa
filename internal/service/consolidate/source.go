package consolidate

import (
	"context"
	"time"
)

// RawSheet is one named grid of cells from a source document.
type RawSheet struct {
	Name string
	Rows [][]string
}

// RawDocument is one tabular source as delivered by a collaborator: a mail
// attachment workbook dropped into the inbox, or a spreadsheet tab set. The
// document name doubles as the shipment identifier.
type RawDocument struct {
	Name       string
	SourceRef  string // sender, spreadsheet id or other origin hint
	ReceivedAt time.Time
	Sheets     []RawSheet
}

// Source delivers raw documents to a consolidation run and records which of
// them were committed.
type Source interface {
	// FetchDocuments returns the documents currently pending ingestion.
	FetchDocuments(ctx context.Context) ([]RawDocument, error)
	// MarkProcessed acknowledges a document after the store commit succeeded.
	// Implementations for read-only sources may treat this as a no-op.
	MarkProcessed(ctx context.Context, doc RawDocument) error
}
