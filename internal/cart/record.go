package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RecordKey names the durable record holding the cart.
const RecordKey = "choco-cart"

// ErrCorruptRecord marks a stored cart that could not be decoded.
var ErrCorruptRecord = errors.New("cart: corrupt stored record")

// Envelope is the shape the cart record takes once its order was sent.
type Envelope struct {
	Items     []Item `json:"items"`
	Sent      bool   `json:"enviado"`
	Timestamp int64  `json:"timestamp"`
}

// EncodeItems renders the plain array shape.
func EncodeItems(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(raw), nil
}

// EncodeSent renders the sent envelope stamped with at.
func EncodeSent(items []Item, at time.Time) (string, error) {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(Envelope{Items: items, Sent: true, Timestamp: at.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("encode cart envelope: %w", err)
	}
	return string(raw), nil
}

// DecodeRecord accepts both the plain array and the envelope shapes.
func DecodeRecord(raw string) ([]Item, bool, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return nil, false, nil
	}

	if trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		return normalize(items), false, nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return normalize(env.Items), env.Sent, nil
}

// normalize folds duplicate ids and drops non-positive quantities from hand-edited records.
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if pos, ok := index[item.ID]; ok {
			out[pos].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
