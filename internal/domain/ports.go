package domain

import (
	"context"
	"errors"
)

// UniqueID asks the store to assign a fresh document id.
const UniqueID = "unique()"

var (
	ErrConfiguration = errors.New("seeder: configuration error")
	ErrRunInProgress = errors.New("seeder: another run holds the lock")
)

// CodedError is a sentinel with a short stable code used as a metric label.
type CodedError struct {
	Code string
	Msg  string
}

func (e *CodedError) Error() string     { return e.Msg }
func (e *CodedError) ErrorCode() string { return e.Code }

// Document is a stored record: an opaque server-assigned id plus its fields.
type Document struct {
	ID   string
	Data map[string]any
}

type DocumentStore interface {
	ListDocuments(ctx context.Context, databaseID, collectionID string) ([]Document, error)
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (Document, error)
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error
}

// RunLock keeps two seeders from reseeding the same database at once.
type RunLock interface {
	Acquire(ctx context.Context, key, owner string) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

// ReportSink receives the final report of a run.
type ReportSink interface {
	Publish(ctx context.Context, r RunReport) error
}
