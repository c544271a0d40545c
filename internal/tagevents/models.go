package tagevents

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeTagsJoined   EventType = "TAGS_JOINED"
	EventTypeTagsImported EventType = "TAGS_IMPORTED"
	EventTypeTagDeleted   EventType = "TAG_DELETED"
)

// Event is the envelope published for every tag change
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// TagsJoinedPayload describes a join: Merged tags became synonyms of Primary
type TagsJoinedPayload struct {
	PrimaryID   string   `json:"primary_id"`
	PrimaryName string   `json:"primary_name"`
	MergedIDs   []string `json:"merged_ids"`
	MergedNames []string `json:"merged_names"`
}

type TagsImportedPayload struct {
	Database     string   `json:"database"`
	Files        []string `json:"files"`
	TagCount     int      `json:"tag_count"`
	SynonymCount int      `json:"synonym_count"`
}

type TagDeletedPayload struct {
	TagID   string `json:"tag_id"`
	TagName string `json:"tag_name"`
}

// NewEvent wraps payload into an event envelope
func NewEvent(eventType EventType, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps events of one kind ordered on a single partition
func (e *Event) PartitionKey() string {
	return string(e.Type)
}
