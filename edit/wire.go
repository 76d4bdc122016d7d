package edit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tsawler/redline/anchor"
	"github.com/tsawler/redline/model"
)

// validate is the validator instance for wire edits.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// wireRun is a run as it appears in JSON.
type wireRun struct {
	Text   string   `json:"text"`
	Styles []string `json:"styles,omitempty"`
}

// wireSpec is the JSON form of an edit. Pointer fields distinguish absent
// from empty so that forbidden fields can be reported.
type wireSpec struct {
	Type            string          `json:"type" validate:"required,oneof=replace insert_text insert_paragraph"`
	SurroundingText *string         `json:"surrounding_text,omitempty"`
	Find            *string         `json:"find,omitempty"`
	Replace         *[]wireRun      `json:"replace,omitempty"`
	AdjacentText    *string         `json:"adjacent_text,omitempty"`
	InsertPos       *string         `json:"insert_pos,omitempty" validate:"omitempty,oneof=before after"`
	Insert          *[]wireRun      `json:"insert,omitempty"`
	IsListItem      *bool           `json:"is_list_item,omitempty"`
	ListLevel       *int            `json:"list_level,omitempty" validate:"omitempty,gte=0,lte=8"`
	Comment         json.RawMessage `json:"comment,omitempty"`
}

// Decode parses one edit from its JSON form and validates it.
func Decode(data []byte) (Spec, error) {
	var w wireSpec
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, malformedCause("", "edit is not valid JSON", err)
	}
	return w.spec()
}

func (w *wireSpec) spec() (Spec, error) {
	anchorText := firstNonEmpty(w.SurroundingText, w.AdjacentText)

	if err := validate.Struct(w); err != nil {
		return nil, malformedCause(anchorText, describe(err), err)
	}

	comment, err := decodeComment(w.Comment)
	if err != nil {
		return nil, malformedCause(anchorText, "comment must be a string or {author, text}", err)
	}

	var s Spec
	switch Type(w.Type) {
	case TypeReplace:
		if err := w.forbid(anchorText, "adjacent_text", w.AdjacentText != nil, "insert_pos", w.InsertPos != nil,
			"insert", w.Insert != nil, "is_list_item", w.IsListItem != nil, "list_level", w.ListLevel != nil); err != nil {
			return nil, err
		}
		if err := w.require(anchorText, "surrounding_text", w.SurroundingText != nil, "find", w.Find != nil, "replace", w.Replace != nil); err != nil {
			return nil, err
		}
		runs, err := decodeRuns(anchorText, *w.Replace)
		if err != nil {
			return nil, err
		}
		s = &Replace{Surrounding: *w.SurroundingText, Find: *w.Find, Runs: runs, Comment: comment}

	case TypeInsertText, TypeInsertParagraph:
		anchorText = firstNonEmpty(w.AdjacentText, w.SurroundingText)
		if err := w.forbid(anchorText, "find", w.Find != nil, "replace", w.Replace != nil); err != nil {
			return nil, err
		}
		if Type(w.Type) == TypeInsertText {
			if err := w.forbid(anchorText, "is_list_item", w.IsListItem != nil, "list_level", w.ListLevel != nil); err != nil {
				return nil, err
			}
		}
		if err := w.require(anchorText, "adjacent_text or surrounding_text", anchorText != "", "insert_pos", w.InsertPos != nil, "insert", w.Insert != nil); err != nil {
			return nil, err
		}
		pos, err := anchor.ParsePosition(*w.InsertPos)
		if err != nil {
			return nil, malformedCause(anchorText, err.Error(), err)
		}
		runs, err := decodeRuns(anchorText, *w.Insert)
		if err != nil {
			return nil, err
		}
		if Type(w.Type) == TypeInsertText {
			s = &InsertText{Adjacent: anchorText, Pos: pos, Runs: runs, Comment: comment}
		} else {
			p := &InsertParagraph{Adjacent: anchorText, Pos: pos, Runs: runs, Comment: comment}
			if w.IsListItem != nil {
				p.ListItem = *w.IsListItem
			}
			if w.ListLevel != nil {
				p.ListLevel = *w.ListLevel
			}
			s = p
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// forbid takes (name, present) pairs and fails on the first present field.
func (w *wireSpec) forbid(anchorText string, pairs ...any) error {
	for i := 0; i < len(pairs); i += 2 {
		if pairs[i+1].(bool) {
			return malformed(anchorText, "field %q is not allowed for %s edits", pairs[i], w.Type)
		}
	}
	return nil
}

// require takes (name, present) pairs and fails on the first missing field.
func (w *wireSpec) require(anchorText string, pairs ...any) error {
	for i := 0; i < len(pairs); i += 2 {
		if !pairs[i+1].(bool) {
			return malformed(anchorText, "field %q is required for %s edits", pairs[i], w.Type)
		}
	}
	return nil
}

func decodeRuns(anchorText string, in []wireRun) ([]model.TextRun, error) {
	out := make([]model.TextRun, 0, len(in))
	for i, r := range in {
		st, err := model.ParseStyles(r.Styles)
		if err != nil {
			return nil, malformedCause(anchorText, fmt.Sprintf("run %d: %v", i, err), err)
		}
		out = append(out, model.TextRun{Text: r.Text, Style: st})
	}
	return out, nil
}

func decodeComment(raw json.RawMessage) (*Comment, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		if text == "" {
			return nil, nil
		}
		return &Comment{Text: text}, nil
	}
	var c Comment
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Marshal returns the JSON form of s.
func Marshal(s Spec) ([]byte, error) {
	w := wireSpec{Type: string(s.Type())}
	var err error
	if c := s.Review(); c != nil {
		if w.Comment, err = json.Marshal(c); err != nil {
			return nil, err
		}
	}
	switch v := s.(type) {
	case *Replace:
		w.SurroundingText, w.Find = &v.Surrounding, &v.Find
		runs := encodeRuns(v.Runs)
		w.Replace = &runs
	case *InsertText:
		pos := v.Pos.String()
		runs := encodeRuns(v.Runs)
		w.AdjacentText, w.InsertPos, w.Insert = &v.Adjacent, &pos, &runs
	case *InsertParagraph:
		pos := v.Pos.String()
		runs := encodeRuns(v.Runs)
		w.AdjacentText, w.InsertPos, w.Insert = &v.Adjacent, &pos, &runs
		w.IsListItem, w.ListLevel = &v.ListItem, &v.ListLevel
	default:
		return nil, fmt.Errorf("unknown edit type %T", s)
	}
	return json.Marshal(w)
}

func encodeRuns(runs []model.TextRun) []wireRun {
	out := make([]wireRun, len(runs))
	for i, r := range runs {
		out[i] = wireRun{Text: r.Text, Styles: r.Style.Tags()}
	}
	return out
}

func malformedCause(anchorText, problem string, cause error) *Error {
	return NewError(AnchorMalformed, anchorText, problem, cause)
}

// describe turns validator output into one readable sentence.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %q is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %q must be one of [%s], got %q", fe.Field(), fe.Param(), fmt.Sprint(fe.Value())))
		default:
			msgs = append(msgs, fmt.Sprintf("field %q fails %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

func firstNonEmpty(ps ...*string) string {
	for _, p := range ps {
		if p != nil && *p != "" {
			return *p
		}
	}
	return ""
}
