package storage

import "context"

// Archiver persists accepted uploads for later dataset curation. Saving is
// best-effort: the detection pipeline logs failures and carries on.
type Archiver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// NoopArchiver is used when archiving is not configured.
type NoopArchiver struct{}

func NewNoopArchiver() Archiver {
	return NoopArchiver{}
}

func (NoopArchiver) Save(ctx context.Context, name string, data []byte) error {
	return nil
}
