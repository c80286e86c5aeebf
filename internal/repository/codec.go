package repository

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/verif-backoffice/internal/persistence"
)

// encode converts a record or patch into a document using its json tags.
func encode(v any) (persistence.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	doc := persistence.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return doc, nil
}

func decode(doc persistence.Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID(), err)
	}
	return nil
}

func decodeAll[T any](docs []persistence.Document) ([]T, error) {
	result := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := decode(doc, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func decodeFirst[T any](docs []persistence.Document) (*T, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	var item T
	if err := decode(docs[0], &item); err != nil {
		return nil, err
	}
	return &item, nil
}
