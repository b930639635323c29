package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// TimestampLayout is the format of stats.timestamp on every saved draft.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	fieldID         = "id"
	fieldComponents = "components"
	fieldStats      = "stats"
	fieldTimestamp  = "timestamp"
)

// maxExactID bounds ids read from float literals such as 2.0 or 1e3.
const maxExactID = 1 << 53

// Stats holds the client-computed build statistics plus the server timestamp.
// Numbers are kept as json.Number so they are written back exactly as read.
type Stats map[string]any

// Draft is a saved build. Components is kept as raw JSON and never interpreted.
// Top-level fields other than id, components and stats are kept in Extra and
// written back unchanged.
type Draft struct {
	ID         int
	Components json.RawMessage
	Stats      Stats
	Extra      map[string]json.RawMessage

	// idUnset marks a decoded record without an integer id. A non-integer id
	// stays in Extra; ceiling is the smallest integer not below it.
	idUnset bool
	ceiling int

	// verbatim holds a stored record that is not a decodable draft.
	verbatim json.RawMessage
}

// PassthroughDraft wraps a stored record that could not be decoded as a draft.
// Its value is written back unchanged. An id is still read from it when possible
// so it takes part in id allocation and deletion.
func PassthroughDraft(raw json.RawMessage) Draft {
	d := Draft{verbatim: append(json.RawMessage(nil), raw...), idUnset: true}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return d
	}
	if idRaw, ok := fields[fieldID]; ok {
		d.applyID(idRaw)
	}
	return d
}

// Passthrough reports whether the draft is an undecodable stored record.
func (d Draft) Passthrough() bool {
	return d.verbatim != nil
}

// HasID reports whether the draft carries exactly this integer id.
func (d Draft) HasID(id int) bool {
	return !d.idUnset && d.ID == id
}

// IDCeiling is the smallest integer not below the draft's id. Drafts without a
// numeric id count as zero.
func (d Draft) IDCeiling() int {
	if d.idUnset {
		return d.ceiling
	}
	return d.ID
}

// SetID assigns id, replacing whatever id the record was decoded with.
func (d *Draft) SetID(id int) {
	d.ID = id
	d.idUnset = false
	d.ceiling = 0
	delete(d.Extra, fieldID)
	if len(d.Extra) == 0 {
		d.Extra = nil
	}
}

// Timestamp returns stats.timestamp, or "" when it is missing.
func (d Draft) Timestamp() string {
	ts, _ := d.Stats[fieldTimestamp].(string)
	return ts
}

// SetTimestamp writes stats.timestamp, creating the stats mapping when needed.
func (d *Draft) SetTimestamp(ts string) {
	if d.Stats == nil {
		d.Stats = Stats{}
	}
	d.Stats[fieldTimestamp] = ts
}

func (d Draft) MarshalJSON() ([]byte, error) {
	if d.verbatim != nil {
		return d.verbatim, nil
	}

	out := make(map[string]json.RawMessage, len(d.Extra)+3)
	for k, v := range d.Extra {
		out[k] = v
	}

	if !d.idUnset {
		id, err := json.Marshal(d.ID)
		if err != nil {
			return nil, err
		}
		out[fieldID] = id
	}

	if len(d.Components) > 0 {
		out[fieldComponents] = d.Components
	} else {
		out[fieldComponents] = json.RawMessage("null")
	}

	stats := d.Stats
	if stats == nil {
		stats = Stats{}
	}
	sb, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}
	out[fieldStats] = sb

	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object whose stats, when present, is an
// object or null. An id that is not an integer is kept as is in Extra.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("draft must be a JSON object")
	}

	draft := Draft{idUnset: true}
	if raw, ok := fields[fieldID]; ok {
		if draft.applyID(raw) {
			delete(fields, fieldID)
		}
	}
	if raw, ok := fields[fieldComponents]; ok {
		draft.Components = append(json.RawMessage(nil), raw...)
		delete(fields, fieldComponents)
	}
	if raw, ok := fields[fieldStats]; ok {
		stats, err := decodeStats(raw)
		if err != nil {
			return fmt.Errorf("decode stats: %w", err)
		}
		draft.Stats = stats
		delete(fields, fieldStats)
	}
	if len(fields) > 0 {
		draft.Extra = fields
	}

	*d = draft
	return nil
}

// applyID reads raw as the draft id and reports whether it is an integer.
func (d *Draft) applyID(raw json.RawMessage) bool {
	id, exact, ceiling := parseID(raw)
	if exact {
		d.ID = id
		d.idUnset = false
		return true
	}
	d.ceiling = ceiling
	return false
}

// parseID reads a JSON number. exact is set for integral values, including
// float literals like 2.0; ceiling is filled for any finite number in range.
func parseID(raw json.RawMessage) (id int, exact bool, ceiling int) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || (t[0] != '-' && (t[0] < '0' || t[0] > '9')) {
		return 0, false, 0
	}
	var n json.Number
	if err := json.Unmarshal(t, &n); err != nil {
		return 0, false, 0
	}

	if i, err := n.Int64(); err == nil && int64(int(i)) == i {
		return int(i), true, int(i)
	}
	f, err := n.Float64()
	if err != nil || math.Abs(f) >= maxExactID {
		return 0, false, 0
	}
	if f == math.Trunc(f) {
		return int(f), true, int(f)
	}
	return 0, false, int(math.Ceil(f))
}

func decodeStats(raw json.RawMessage) (Stats, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var stats Stats
	if err := dec.Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}
