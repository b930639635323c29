package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
)

var errPayloadNotObject = errors.New("payload must be a JSON object")

// Builder turns a raw build submission into a draft ready to persist.
// It stamps the id and timestamp and makes sure stats exists; components are
// passed through without any checks.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder. A nil clock means time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build decodes raw and returns the draft with the given id.
func (b *Builder) Build(raw []byte, id int) (domain.Draft, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.Draft{}, &domain.PayloadError{Err: errPayloadNotObject}
	}

	var draft domain.Draft
	if err := json.Unmarshal(trimmed, &draft); err != nil {
		return domain.Draft{}, &domain.PayloadError{Err: err}
	}

	draft.SetID(id)
	draft.SetTimestamp(b.now().Format(domain.TimestampLayout))
	return draft, nil
}
