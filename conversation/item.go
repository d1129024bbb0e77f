// Package conversation provides the provider-neutral data model for message histories.
//
// Information Hiding:
// - Provider wire shapes are kept opaque behind Item
// - Shape sniffing happens once per item, inside an Adapter, producing a Kind
// - Everything downstream consumes Kind and never re-inspects raw fields

package conversation

import (
	"encoding/json"
	"fmt"
)

// Item is one provider-shaped message unit, decoded from its JSON wire form.
// The engine treats it as opaque and never mutates it.
type Item map[string]any

// ParseItems decodes a JSON array of provider-shaped items.
func ParseItems(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// MarshalItems encodes items as an indented JSON array.
func MarshalItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}

// ItemFromValue converts any JSON-encodable value (for example an SDK param
// struct) into an Item by round-tripping it through JSON.
func ItemFromValue(v any) (Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	return item, nil
}

// String returns the string stored under key, or "" when absent or not a string.
func (it Item) String(key string) string {
	s, _ := it[key].(string)
	return s
}

// Blocks returns the value under key as a list of objects.
// Non-object entries are skipped.
func (it Item) Blocks(key string) []map[string]any {
	raw, ok := it[key].([]any)
	if !ok {
		return nil
	}
	blocks := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if block, ok := entry.(map[string]any); ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
