package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/quill/internal/engine/cursor"
)

// ErrUnknownEvent is returned by Unmarshal for an unrecognized type tag.
var ErrUnknownEvent = errors.New("unknown event type")

// MarshalJSON encodes the insertion as {"type":"insert",...}.
func (e Insert) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string    `json:"type"`
		At     int       `json:"at"`
		Text   string    `json:"text"`
		Author cursor.ID `json:"author"`
		Behind bool      `json:"behind,omitempty"`
	}{KindInsert.String(), e.At, e.Text, e.Author, e.Behind})
}

// MarshalJSON encodes the deletion as {"type":"delete",...}.
func (e Delete) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string    `json:"type"`
		Start   int       `json:"start"`
		End     int       `json:"end"`
		Removed string    `json:"removed"`
		Author  cursor.ID `json:"author"`
		Forward bool      `json:"forward,omitempty"`
	}{KindDelete.String(), e.Start, e.End, e.Removed, e.Author, e.Forward})
}

// MarshalJSON encodes the move as {"type":"cursor-move",...}.
func (e CursorMove) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string    `json:"type"`
		ID   cursor.ID `json:"id"`
		From int       `json:"from"`
		To   int       `json:"to"`
	}{KindCursorMove.String(), e.ID, e.From, e.To})
}

// MarshalJSON encodes the replacement as {"type":"cursor-set-replace",...}.
func (e CursorSetReplace) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string          `json:"type"`
		Before cursor.Snapshot `json:"before"`
		After  cursor.Snapshot `json:"after"`
	}{KindCursorSetReplace.String(), e.Before, e.After})
}

// Unmarshal decodes an event produced by MarshalJSON.
func Unmarshal(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode event: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	switch typ := doc.Get("type").String(); typ {
	case KindInsert.String():
		return Insert{
			At:     int(doc.Get("at").Int()),
			Text:   doc.Get("text").String(),
			Author: cursor.ID(doc.Get("author").Int()),
			Behind: doc.Get("behind").Bool(),
		}, nil
	case KindDelete.String():
		return Delete{
			Start:   int(doc.Get("start").Int()),
			End:     int(doc.Get("end").Int()),
			Removed: doc.Get("removed").String(),
			Author:  cursor.ID(doc.Get("author").Int()),
			Forward: doc.Get("forward").Bool(),
		}, nil
	case KindCursorMove.String():
		return CursorMove{
			ID:   cursor.ID(doc.Get("id").Int()),
			From: int(doc.Get("from").Int()),
			To:   int(doc.Get("to").Int()),
		}, nil
	case KindCursorSetReplace.String():
		var e CursorSetReplace
		if err := json.Unmarshal([]byte(doc.Get("before").Raw), &e.Before); err != nil {
			return nil, fmt.Errorf("decode before: %w", err)
		}
		if err := json.Unmarshal([]byte(doc.Get("after").Raw), &e.After); err != nil {
			return nil, fmt.Errorf("decode after: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("decode %q: %w", typ, ErrUnknownEvent)
	}
}
