package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/lesson-factory/internal/types"
)

// FromFile ingests one source document, dispatching on extension: .txt and
// .md go through the text splitter, .html and .htm through the goquery
// extractor. The whole file is consumed at once so batch invariants hold.
func FromFile(path string) (*types.ItemBatch, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Message: fmt.Sprintf("source file not found: %s", path), Cause: err}
		}
		return nil, &Error{Message: fmt.Sprintf("failed to read source file %s", path), Cause: err}
	}

	var items []types.Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		items = SplitItems(string(content))
	case ".html", ".htm":
		items, err = ExtractItems(string(content))
		if err != nil {
			return nil, err
		}
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported source extension %q", filepath.Ext(path))}
	}

	if len(items) == 0 {
		return nil, &Error{Message: fmt.Sprintf("source %s produced no items", path)}
	}

	return &types.ItemBatch{
		Source: filepath.Base(path),
		Items:  items,
	}, nil
}

// WriteItems persists an item batch as pretty-printed JSON.
func WriteItems(path string, batch *types.ItemBatch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return &Error{Message: "failed to marshal item batch", Cause: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &Error{Message: fmt.Sprintf("failed to write item batch to %s", path), Cause: err}
	}
	return nil
}

// LoadItems reads a previously written item batch and checks its ordering
// invariant: IDs must be sequential from 1.
func LoadItems(path string) (*types.ItemBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read item batch %s", path), Cause: err}
	}

	var batch types.ItemBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, &Error{Message: fmt.Sprintf("item batch %s is not parseable", path), Cause: err}
	}

	for i, item := range batch.Items {
		if item.ID != i+1 {
			return nil, &Error{Message: fmt.Sprintf(
				"item batch %s is out of order: position %d has id %d", path, i, item.ID)}
		}
	}
	return &batch, nil
}
