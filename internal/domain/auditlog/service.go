package auditlog

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Truncation caps for recorded metadata. A single oversized value must not
// be able to bloat the audit trail.
const (
	maxStringLength = 500
	maxJSONLength   = 8000
)

// RequestMeta carries the request-derived fields recorded with each event.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// Event describes a single auditable action.
type Event struct {
	RequestMeta
	OwnerUserID uuid.UUID
	Action      string
	EntityType  string
	EntityID    *uuid.UUID
	Summary     string
	Metadata    map[string]interface{}
}

// Recorder persists audit events. Recording is best effort: failures are
// logged and never propagated, so an audit problem cannot fail the
// operation being audited.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record writes one audit entry. Events without an owner are dropped.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if ev.OwnerUserID == uuid.Nil {
		return
	}

	entry := &Entry{
		OwnerUserID:  ev.OwnerUserID,
		Action:       ev.Action,
		EntityType:   ev.EntityType,
		EntityID:     ev.EntityID,
		Summary:      truncateString(ev.Summary),
		MetadataJSON: serializeMetadata(ev.Metadata),
		IPAddress:    ev.IPAddress,
		UserAgent:    truncateString(ev.UserAgent),
		RequestID:    ev.RequestID,
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Warn().Err(err).
			Str("action", ev.Action).
			Str("entity_type", ev.EntityType).
			Msg("audit log failed")
	}
}

// List returns the caller's audit entries, newest first.
func (r *Recorder) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter, limit, offset int) ([]*Entry, int, error) {
	return r.repo.List(ctx, ownerID, filter, limit, offset)
}

func truncateString(s string) string {
	if len(s) > maxStringLength {
		return s[:maxStringLength-3] + "..."
	}
	return s
}

// truncateValue walks the metadata and caps every string it finds.
func truncateValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return truncateString(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = truncateValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = truncateValue(item)
		}
		return out
	default:
		return v
	}
}

func serializeMetadata(metadata map[string]interface{}) *string {
	if metadata == nil {
		return nil
	}
	raw, err := json.Marshal(truncateValue(metadata))
	if err != nil {
		raw = []byte(`{"error":"metadata_unserializable"}`)
	}
	s := string(raw)
	if len(s) > maxJSONLength {
		s = s[:maxJSONLength-3] + "..."
	}
	return &s
}
