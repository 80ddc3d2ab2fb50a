// Package changefeed carries row-level change events from the services that
// write records to the subscribers that keep views live.
package changefeed

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

const (
	TablePosts    = "posts"
	TableLikes    = "likes"
	TableComments = "comments"
)

// Event is a bare row change. INSERT and UPDATE carry New, DELETE carries Old.
// Rows are never joined with related records.
type Event struct {
	Table           string          `json:"table"`
	Type            EventType       `json:"type"`
	New             json.RawMessage `json:"new,omitempty"`
	Old             json.RawMessage `json:"old,omitempty"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

func NewEvent(table string, typ EventType, row interface{}) (Event, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s row: %w", table, err)
	}

	event := Event{Table: table, Type: typ, CommitTimestamp: time.Now().UTC()}
	if typ == Delete {
		event.Old = raw
	} else {
		event.New = raw
	}
	return event, nil
}

// Record returns the row the event is about.
func (e Event) Record() json.RawMessage {
	if e.Type == Delete {
		return e.Old
	}
	return e.New
}

// Decode unmarshals the event's row into v.
func (e Event) Decode(v interface{}) error {
	rec := e.Record()
	if len(rec) == 0 {
		return fmt.Errorf("%s event on %s carries no row", e.Type, e.Table)
	}
	return json.Unmarshal(rec, v)
}
