package repository

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
	"github.com/pcbuildsite/pcbuild-backend/internal/storage/filestore"
)

// BuildFunc produces the record to append from the collection as it stands
// inside the store's read-modify-write cycle.
type BuildFunc func(current []domain.Draft) (domain.Draft, error)

// Store owns the persisted draft collection.
//
// Each call is one read-modify-write cycle against the whole collection and
// implementations serialize those cycles, so an Append never loses a
// concurrent Append and ids handed to BuildFunc are never handed out twice.
type Store interface {
	// Load returns the collection. A missing or undecodable collection is
	// returned as empty; only I/O failures produce an error.
	Load(ctx context.Context) ([]domain.Draft, error)

	// Append re-reads the collection, builds a record from it and writes the
	// collection back with the record appended.
	Append(ctx context.Context, build BuildFunc) (domain.Draft, error)

	// Delete removes the draft with the given id. Returns false without writing
	// anything if no draft matched.
	Delete(ctx context.Context, id int) (bool, error)

	// Ping reports whether the backing resource is reachable.
	Ping(ctx context.Context) error
}

// NextID returns 1 for an empty collection, otherwise one more than the
// highest id present. Ids freed by deletion are not reused.
func NextID(drafts []domain.Draft) int {
	highest := 0
	for _, d := range drafts {
		if c := d.IDCeiling(); c > highest {
			highest = c
		}
	}
	return highest + 1
}

// decodeCollection parses a persisted collection. Blank input or null is an
// empty collection and anything other than a JSON list is an error. Elements
// that are not decodable drafts are kept as passthrough records.
func decodeCollection(data []byte) ([]domain.Draft, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Draft{}, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}

	drafts := make([]domain.Draft, 0, len(elems))
	for _, raw := range elems {
		drafts = append(drafts, decodeRecord(raw))
	}
	return drafts, nil
}

// warnPassthrough logs how many stored records were kept without decoding.
func warnPassthrough(logger *zap.Logger, drafts []domain.Draft) {
	n := 0
	for _, d := range drafts {
		if d.Passthrough() {
			n++
		}
	}
	if n > 0 {
		logger.Warn("draft collection has records that are not valid drafts, keeping them as is", zap.Int("records", n))
	}
}

func decodeRecord(raw json.RawMessage) domain.Draft {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.PassthroughDraft(trimmed)
	}
	var d domain.Draft
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return domain.PassthroughDraft(trimmed)
	}
	return d
}

func encodeCollection(drafts []domain.Draft) ([]byte, error) {
	if drafts == nil {
		drafts = []domain.Draft{}
	}
	return filestore.MarshalJSONIndent(drafts)
}

// removeDraft returns the collection without the draft carrying id.
func removeDraft(drafts []domain.Draft, id int) ([]domain.Draft, bool) {
	kept := make([]domain.Draft, 0, len(drafts))
	removed := false
	for _, d := range drafts {
		if d.HasID(id) {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	return kept, removed
}
