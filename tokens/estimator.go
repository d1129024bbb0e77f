// Package tokens provides a heuristic token estimator for provider-shaped values.
//
// Information Hiding:
// - No tokenizer: cost is derived from character counts plus fixed structure overheads
// - Traversal bounds (depth, fan-out, cycles) are internal to the walker
// - Images are priced flat instead of by payload size

package tokens

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/richinex/condense/conversation"
)

// Heuristic constants.
const (
	// CharsPerToken is the average number of characters per token.
	CharsPerToken = 3.5

	// MessageOverhead is charged once per object carrying a role.
	MessageOverhead = 4
	// ToolCallOverhead is charged once per tool call structure.
	ToolCallOverhead = 10
	// ToolResultOverhead is charged once per tool result structure.
	ToolResultOverhead = 8

	// ImageHighDetailCost is the flat cost of an image at high (default) detail.
	ImageHighDetailCost = 765
	// ImageLowDetailCost is the flat cost of an image with detail "low".
	ImageLowDetailCost = 85

	// MaxDepth is the deepest nesting level that is walked.
	MaxDepth = 4
	// MaxEntriesPerLevel caps array items and object keys walked per level.
	MaxEntriesPerLevel = 64

	// DeepValueCost is charged for any value below MaxDepth or one that cannot be encoded.
	DeepValueCost = 4
	// CircularRefCost is charged when a value refers back to one of its ancestors.
	CircularRefCost = 2
	// ScalarCost is charged for numbers and booleans.
	ScalarCost = 1
)

// Text estimates the tokens in a string: ceil(runes / CharsPerToken).
func Text(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / CharsPerToken))
}

// Estimate returns the estimated token cost of v. It never panics and
// never mutates v.
func Estimate(v any) (tokens int) {
	defer func() {
		if recover() != nil {
			tokens = DeepValueCost
		}
	}()
	w := walker{path: make(map[uintptr]struct{})}
	return w.value(v, 0)
}

// EstimateAll sums Estimate over items.
func EstimateAll(items []conversation.Item) int {
	total := 0
	for _, item := range items {
		total += Estimate(item)
	}
	return total
}

// walker tracks the identities on the current path to break cycles.
type walker struct {
	path map[uintptr]struct{}
}

func (w *walker) value(v any, depth int) int {
	switch val := v.(type) {
	case nil:
		return 0
	case string:
		return Text(val)
	case json.Number, bool, float64, float32, int, int64, int32, uint, uint64, uint32:
		return ScalarCost
	case []byte:
		return Text(string(val))
	case conversation.Item:
		return w.object(val, depth)
	case map[string]any:
		return w.object(val, depth)
	case []any:
		return w.array(val, depth)
	case []map[string]any:
		entries := make([]any, len(val))
		for i, m := range val {
			entries[i] = m
		}
		return w.array(entries, depth)
	default:
		return w.encoded(val, depth)
	}
}

func (w *walker) object(m map[string]any, depth int) int {
	if depth > MaxDepth {
		return DeepValueCost
	}
	if cost, ok := imageCost(m); ok {
		return cost
	}
	total := overhead(m)
	if len(m) == 0 {
		return total
	}

	id := reflect.ValueOf(m).Pointer()
	if _, ok := w.path[id]; ok {
		return CircularRefCost
	}
	w.path[id] = struct{}{}
	defer delete(w.path, id)

	keys := slices.Sorted(maps.Keys(m))
	for i, key := range keys {
		if i >= MaxEntriesPerLevel {
			total += moreCost(len(keys) - i)
			break
		}
		total += w.value(m[key], depth+1)
	}
	return total
}

func (w *walker) array(a []any, depth int) int {
	if depth > MaxDepth {
		return DeepValueCost
	}
	if len(a) == 0 {
		return 0
	}

	id := reflect.ValueOf(a).Pointer()
	if _, ok := w.path[id]; ok {
		return CircularRefCost
	}
	w.path[id] = struct{}{}
	defer delete(w.path, id)

	total := 0
	for i, entry := range a {
		if i >= MaxEntriesPerLevel {
			total += moreCost(len(a) - i)
			break
		}
		total += w.value(entry, depth+1)
	}
	return total
}

// encoded prices values of unknown Go types (SDK structs, typed slices) via
// their JSON form.
func (w *walker) encoded(v any, depth int) int {
	data, err := json.Marshal(v)
	if err != nil {
		return DeepValueCost
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return DeepValueCost
	}
	return w.value(decoded, depth)
}

func moreCost(n int) int {
	return Text(fmt.Sprintf("... +%d more", n))
}

func overhead(m map[string]any) int {
	total := 0
	if _, ok := m["role"]; ok {
		total += MessageOverhead
	}
	if isToolCall(m) {
		total += ToolCallOverhead
	}
	if isToolResult(m) {
		total += ToolResultOverhead
	}
	return total
}

func isToolCall(m map[string]any) bool {
	typ, _ := m["type"].(string)
	switch typ {
	case "tool_use", "server_tool_use", "function_call":
		return true
	case "function":
		_, ok := m["function"]
		return ok
	}
	_, ok := m["functionCall"]
	return ok
}

func isToolResult(m map[string]any) bool {
	typ, _ := m["type"].(string)
	switch typ {
	case "tool_result", "function_call_output":
		return true
	}
	if role, _ := m["role"].(string); role == "tool" {
		return true
	}
	_, ok := m["functionResponse"]
	return ok
}

func imageCost(m map[string]any) (int, bool) {
	typ, _ := m["type"].(string)
	switch typ {
	case "image", "image_url", "input_image":
		return detailCost(m), true
	}
	for _, key := range []string{"inlineData", "inline_data", "fileData", "file_data"} {
		data, ok := m[key].(map[string]any)
		if ok && isImageMIME(data) {
			return detailCost(m), true
		}
	}
	return 0, false
}

func detailCost(m map[string]any) int {
	detail, _ := m["detail"].(string)
	if nested, ok := m["image_url"].(map[string]any); ok && detail == "" {
		detail, _ = nested["detail"].(string)
	}
	if detail == "low" {
		return ImageLowDetailCost
	}
	return ImageHighDetailCost
}

func isImageMIME(data map[string]any) bool {
	for _, key := range []string{"mimeType", "mime_type"} {
		if mime, ok := data[key].(string); ok {
			return strings.HasPrefix(mime, "image/")
		}
	}
	return false
}
