// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/recipefinder/recipefinder/internal/models"
)

// SchemaVersion is the current event schema version. Increment on
// breaking changes to ProgressEvent.
const SchemaVersion = 1

// Event types carried on the stream.
const (
	TypeIndexProgress   = "index_progress"
	TypeIndexCompleted  = "index_completed"
	TypeImportCompleted = "import_completed"
)

// JetStream topics. The stream subscribes to the recipes.> wildcard so
// new topics land in the same stream without reprovisioning.
const (
	TopicIndexProgress   = "recipes.index.progress"
	TopicIndexCompleted  = "recipes.index.completed"
	TopicImportCompleted = "recipes.import.completed"
	SubjectWildcard      = "recipes.>"
)

// ProgressEvent is the canonical progress message. Exactly one of
// Index or Import is set, matching Type.
type ProgressEvent struct {
	SchemaVersion int                 `json:"schema_version,omitempty"`
	EventID       string              `json:"event_id"`
	Type          string              `json:"type"`
	Timestamp     time.Time           `json:"timestamp"`
	Index         *models.IndexStats  `json:"index,omitempty"`
	Import        *models.ImportStats `json:"import,omitempty"`
}

// NewIndexEvent builds an indexing progress or completion event.
func NewIndexEvent(stats models.IndexStats, completed bool) *ProgressEvent {
	eventType := TypeIndexProgress
	if completed {
		eventType = TypeIndexCompleted
	}
	return &ProgressEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		Index:         &stats,
	}
}

// NewImportEvent builds an import completion event.
func NewImportEvent(stats models.ImportStats) *ProgressEvent {
	return &ProgressEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Type:          TypeImportCompleted,
		Timestamp:     time.Now().UTC(),
		Import:        &stats,
	}
}

// Topic returns the JetStream subject for the event type.
func (e *ProgressEvent) Topic() string {
	switch e.Type {
	case TypeIndexCompleted:
		return TopicIndexCompleted
	case TypeImportCompleted:
		return TopicImportCompleted
	default:
		return TopicIndexProgress
	}
}

// Validate checks the invariants a consumer relies on.
func (e *ProgressEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event missing event_id")
	}
	switch e.Type {
	case TypeIndexProgress, TypeIndexCompleted:
		if e.Index == nil {
			return fmt.Errorf("%s event missing index stats", e.Type)
		}
	case TypeImportCompleted:
		if e.Import == nil {
			return fmt.Errorf("%s event missing import stats", e.Type)
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

// Serializer handles event encoding for NATS payloads.
type Serializer struct{}

// NewSerializer creates a serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal validates and encodes an event.
func (s *Serializer) Marshal(event *ProgressEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes an event payload.
func (s *Serializer) Unmarshal(data []byte) (*ProgressEvent, error) {
	var event ProgressEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}
