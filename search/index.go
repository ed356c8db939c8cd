//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_event_index.go -package=mocks
package search

import (
	"context"
	"event-lab/domain"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
)

const (
	fieldName        = "name"
	fieldCategory    = "category"
	fieldLocation    = "location"
	fieldDescription = "description"
	fieldID          = "_id"
)

type IEventIndex interface {
	Index(event domain.Event) error
	Remove(id domain.EventID) error
	Search(ctx context.Context, text string, limit int) ([]domain.EventID, error)
}

// EventIndex keeps a full-text copy of the searchable event fields.
type EventIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewEventIndex(writer *bluge.Writer, log *slog.Logger) *EventIndex {
	return &EventIndex{writer: writer, log: log}
}

// Index adds or replaces the document of an event.
func (i *EventIndex) Index(event domain.Event) error {
	doc := bluge.NewDocument(string(event.ID)).
		AddField(bluge.NewTextField(fieldName, event.Name)).
		AddField(bluge.NewTextField(fieldCategory, event.Category)).
		AddField(bluge.NewTextField(fieldLocation, event.Location)).
		AddField(bluge.NewTextField(fieldDescription, event.Description))
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index event %s: %w", event.ID, err)
	}
	return nil
}

func (i *EventIndex) Remove(id domain.EventID) error {
	return i.writer.Delete(bluge.Identifier(id))
}

// Search returns the ids of the best scoring events, at most limit of them.
// Any field may match; a blank text matches nothing.
func (i *EventIndex) Search(ctx context.Context, text string, limit int) ([]domain.EventID, error) {
	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return nil, nil
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Unable to close index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().SetMinShould(1)
	for _, field := range []string{fieldName, fieldCategory, fieldLocation, fieldDescription} {
		query.AddShould(bluge.NewMatchQuery(text).SetField(field))
	}

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []domain.EventID
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids = append(ids, domain.EventID(value))
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	i.log.Debug("Event search", "text", text, "hits", len(ids))
	return ids, nil
}
