package edit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Batch is a list of edits to apply to one document in order.
type Batch struct {
	UploadID string `json:"upload_id,omitempty"`
	Author   string `json:"author" validate:"required,max=255"`
	Items    []Item `json:"-"`
}

// Item is one entry of a batch. Exactly one of Spec and Err is set: an
// item that fails to decode is kept so that it can be reported.
type Item struct {
	Raw  json.RawMessage
	Spec Spec
	Err  error
}

type wireBatch struct {
	UploadID string            `json:"upload_id"`
	Author   string            `json:"author"`
	Edits    []json.RawMessage `json:"edits"`
}

// wireItem is the wrapped item form {"edit_spec": {...}, "comment": "..."}.
type wireItem struct {
	EditSpec json.RawMessage `json:"edit_spec"`
	Comment  json.RawMessage `json:"comment"`
}

// DecodeBatch parses a batch request. Envelope errors (invalid JSON, no
// author) fail the whole batch; errors in single edits are recorded on
// their Item. Comments without an author are attributed to the batch
// author.
func DecodeBatch(data []byte) (*Batch, error) {
	var wb wireBatch
	if err := json.Unmarshal(data, &wb); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	b := &Batch{UploadID: wb.UploadID, Author: wb.Author}
	if err := validate.Struct(b); err != nil {
		return nil, fmt.Errorf("invalid batch: %s", describe(err))
	}

	for _, raw := range wb.Edits {
		item := Item{Raw: raw}
		item.Spec, item.Err = decodeItem(raw)
		if item.Err == nil {
			b.attribute(item.Spec)
		} else {
			item.Spec = nil
		}
		b.Items = append(b.Items, item)
	}
	return b, nil
}

// decodeItem accepts both the wrapped and the bare form. An item-level
// comment replaces any comment inside the edit.
func decodeItem(raw json.RawMessage) (Spec, error) {
	var wi wireItem
	if err := json.Unmarshal(raw, &wi); err != nil {
		return nil, malformedCause("", "edit is not a JSON object", err)
	}
	if len(bytes.TrimSpace(wi.EditSpec)) == 0 {
		return Decode(raw)
	}

	s, err := Decode(wi.EditSpec)
	if err != nil {
		return nil, err
	}
	c, err := decodeComment(wi.Comment)
	if err != nil {
		return nil, malformedCause(s.Anchor(), "comment must be a string or {author, text}", err)
	}
	if c != nil {
		setComment(s, c)
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func setComment(s Spec, c *Comment) {
	switch v := s.(type) {
	case *Replace:
		v.Comment = c
	case *InsertText:
		v.Comment = c
	case *InsertParagraph:
		v.Comment = c
	}
}

func (b *Batch) attribute(s Spec) {
	if c := s.Review(); c != nil && c.Author == "" {
		c.Author = b.Author
	}
}

// Specs returns the successfully decoded edits in order.
func (b *Batch) Specs() []Spec {
	var out []Spec
	for _, it := range b.Items {
		if it.Spec != nil {
			out = append(out, it.Spec)
		}
	}
	return out
}
