package curation

import "context"

// Operation names a curation command
type Operation string

const (
	OpRestore     Operation = "restore"
	OpFinalize    Operation = "finalize"
	OpDeleteItems Operation = "delete-items"
	OpTrash       Operation = "trash"
)

// Effect describes the outcome of one curation command
type Effect struct {
	Operation Operation `json:"operation"`
	GalleryID string    `json:"galleryId"`
	FolderID  string    `json:"folderId,omitempty"`
	AssetIDs  []string  `json:"assetIds"`
	TTLDays   int       `json:"ttlDays,omitempty"`
	At        int64     `json:"at"`
}

// Journal receives computed effects. Implementations must be safe for
// concurrent use; the API calls Record once per successful command.
type Journal interface {
	Record(ctx context.Context, effect Effect) error
}

// NopJournal discards every effect
type NopJournal struct{}

func (NopJournal) Record(context.Context, Effect) error { return nil }
