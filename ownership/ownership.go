// Package ownership implements the wire protocol for the account-less
// "my codes" store. The entries themselves live in browser storage; this
// package owns their shape, the additive merge, and the base64 transport
// used by the /manage?sync= cross-device QR and by file export/import.
package ownership

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrInvalidPayload  = errors.New("invalid ownership payload")
	ErrPayloadTooLarge = errors.New("ownership payload exceeds QR capacity")
)

// maxSyncBytes keeps the encoded payload within what a QR code can carry.
const maxSyncBytes = 2048

// Entry maps a code id to the edit token proving ownership, optionally with
// a denormalized cache of the record. Cached scan counts may be stale
// relative to the server value. CreatedAt is a pointer so minimal entries
// stay off the wire entirely; every byte counts against maxSyncBytes.
type Entry struct {
	ID        string     `json:"id,omitempty"` // empty on legacy token-only entries
	EditToken string     `json:"edit_token"`
	TargetURL string     `json:"target_url,omitempty"`
	ScanCount int64      `json:"scan_count,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// key identifies an entry for merging: by id when present, by token for
// legacy entries that predate the richer format.
func (e Entry) key() string {
	if e.ID != "" {
		return "id:" + e.ID
	}
	return "token:" + e.EditToken
}

// ParseEntries decodes an entry list from JSON. The original flat format was
// a bare array of edit tokens; those migrate one-way into token-only entries.
func ParseEntries(data []byte) ([]Entry, error) {
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err == nil {
		entries := make([]Entry, 0, len(tokens))
		for _, token := range tokens {
			if token == "" {
				continue
			}
			entries = append(entries, Entry{EditToken: token})
		}
		return entries, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, ErrInvalidPayload
	}
	for _, entry := range entries {
		if entry.EditToken == "" {
			return nil, ErrInvalidPayload
		}
	}
	return entries, nil
}

// Merge adds incoming entries to current. The merge is additive only:
// entries already present are never overwritten, so importing the same
// export twice is a no-op.
func Merge(current, incoming []Entry) []Entry {
	seen := make(map[string]bool, len(current))
	merged := make([]Entry, 0, len(current)+len(incoming))
	for _, entry := range current {
		if seen[entry.key()] {
			continue
		}
		seen[entry.key()] = true
		merged = append(merged, entry)
	}
	for _, entry := range incoming {
		if seen[entry.key()] {
			continue
		}
		seen[entry.key()] = true
		merged = append(merged, entry)
	}
	return merged
}

// EncodeSync serializes entries for the ?sync= query parameter.
func EncodeSync(entries []Entry) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	encoded := base64.URLEncoding.EncodeToString(data)
	if len(encoded) > maxSyncBytes {
		return "", ErrPayloadTooLarge
	}
	return encoded, nil
}

// DecodeSync decodes a ?sync= parameter. Standard base64 is accepted too so
// sync QRs minted by older clients keep working.
func DecodeSync(param string) ([]Entry, error) {
	data, err := base64.URLEncoding.DecodeString(param)
	if err != nil {
		data, err = base64.StdEncoding.DecodeString(param)
	}
	if err != nil {
		return nil, ErrInvalidPayload
	}
	return ParseEntries(data)
}
