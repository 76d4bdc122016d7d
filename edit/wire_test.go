package edit

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/redline/anchor"
	"github.com/tsawler/redline/model"
)

func TestDecode_Replace(t *testing.T) {
	s, err := Decode([]byte(`{
		"type": "replace",
		"surrounding_text": "payable within 30 days",
		"find": "30",
		"replace": [{"text": "45", "styles": ["bold"]}],
		"comment": "Extended per negotiation"
	}`))
	require.NoError(t, err)

	r, ok := s.(*Replace)
	require.True(t, ok, "got %T", s)
	assert.Equal(t, TypeReplace, r.Type())
	assert.Equal(t, "payable within 30 days", r.Anchor())
	assert.Equal(t, "30", r.Find)
	assert.Equal(t, []model.TextRun{{Text: "45", Style: model.Style{Bold: true}}}, r.Runs)
	require.NotNil(t, r.Comment)
	assert.Equal(t, "Extended per negotiation", r.Comment.Text)
	assert.Empty(t, r.Comment.Author)
}

func TestDecode_EmptyReplaceIsRemoval(t *testing.T) {
	s, err := Decode([]byte(`{"type":"replace","surrounding_text":"a b c","find":"b","replace":[]}`))
	require.NoError(t, err)
	assert.Empty(t, s.(*Replace).Runs)
}

func TestDecode_InsertText(t *testing.T) {
	s, err := Decode([]byte(`{"type":"insert_text","adjacent_text":"Section 4","insert_pos":"after","insert":[{"text":" (as amended)"}]}`))
	require.NoError(t, err)

	it, ok := s.(*InsertText)
	require.True(t, ok, "got %T", s)
	assert.Equal(t, "Section 4", it.Adjacent)
	assert.Equal(t, anchor.After, it.Pos)
	assert.Nil(t, it.Comment)
}

func TestDecode_InsertTextAcceptsSurrounding(t *testing.T) {
	s, err := Decode([]byte(`{"type":"insert_text","surrounding_text":"Section 4","insert_pos":"before","insert":[{"text":"See "}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Section 4", s.Anchor())
}

func TestDecode_InsertParagraph(t *testing.T) {
	s, err := Decode([]byte(`{
		"type": "insert_paragraph",
		"adjacent_text": "The parties agree:",
		"insert_pos": "after",
		"insert": [{"text": "Confidentiality survives termination."}],
		"is_list_item": true,
		"list_level": 1,
		"comment": {"author": "Legal", "text": "New clause"}
	}`))
	require.NoError(t, err)

	p, ok := s.(*InsertParagraph)
	require.True(t, ok, "got %T", s)
	assert.True(t, p.ListItem)
	assert.Equal(t, 1, p.ListLevel)
	assert.Equal(t, &Comment{Author: "Legal", Text: "New clause"}, p.Comment)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		problem string
	}{
		{"not json", `{`, "not valid JSON"},
		{"missing type", `{"surrounding_text":"a","find":"a","replace":[]}`, `"type" is required`},
		{"unknown type", `{"type":"delete"}`, `"type" must be one of`},
		{"find not in surrounding", `{"type":"replace","surrounding_text":"abc","find":"xyz","replace":[]}`, "does not contain"},
		{"empty find", `{"type":"replace","surrounding_text":"abc","find":"","replace":[]}`, "find is empty"},
		{"missing find", `{"type":"replace","surrounding_text":"abc","replace":[]}`, `"find" is required`},
		{"forbidden field", `{"type":"replace","surrounding_text":"abc","find":"b","replace":[],"insert_pos":"after"}`, `"insert_pos" is not allowed`},
		{"list fields on insert_text", `{"type":"insert_text","adjacent_text":"a","insert_pos":"after","insert":[{"text":"x"}],"is_list_item":true}`, `"is_list_item" is not allowed`},
		{"bad position", `{"type":"insert_text","adjacent_text":"a","insert_pos":"middle","insert":[{"text":"x"}]}`, `"insert_pos" must be one of`},
		{"missing position", `{"type":"insert_text","adjacent_text":"a","insert":[{"text":"x"}]}`, `"insert_pos" is required`},
		{"missing anchor", `{"type":"insert_paragraph","insert_pos":"after","insert":[]}`, "is required"},
		{"empty insert", `{"type":"insert_text","adjacent_text":"a","insert_pos":"after","insert":[{"text":""}]}`, "no text"},
		{"unknown style", `{"type":"replace","surrounding_text":"abc","find":"b","replace":[{"text":"x","styles":["blink"]}]}`, "run 0"},
		{"list level too deep", `{"type":"insert_paragraph","adjacent_text":"a","insert_pos":"after","insert":[],"list_level":9}`, `"list_level"`},
		{"comment without text", `{"type":"replace","surrounding_text":"abc","find":"b","replace":[],"comment":{"author":"x"}}`, "invalid comment"},
		{"comment wrong shape", `{"type":"replace","surrounding_text":"abc","find":"b","replace":[],"comment":42}`, "comment must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAnchorMalformed)
			assert.Equal(t, AnchorMalformed, KindOf(err))
			assert.Contains(t, err.Error(), tt.problem)
			assert.Contains(t, err.Error(), Consequence)
		})
	}
}

func TestDecode_UnknownStyleWrapsModelError(t *testing.T) {
	_, err := Decode([]byte(`{"type":"insert_text","adjacent_text":"a","insert_pos":"after","insert":[{"text":"x","styles":["glow"]}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownStyle))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "a", e.Anchor)
}

func TestMarshal_Decodes(t *testing.T) {
	specs := []Spec{
		&Replace{Surrounding: "net 30 days", Find: "30", Runs: []model.TextRun{{Text: "45", Style: model.Style{Italic: true, Size: 12}}}, Comment: &Comment{Author: "A", Text: "why"}},
		&InsertText{Adjacent: "Section 4", Pos: anchor.Before, Runs: []model.TextRun{{Text: "see "}}},
		&InsertParagraph{Adjacent: "Terms", Pos: anchor.After, Runs: []model.TextRun{{Text: "New"}}, ListItem: true, ListLevel: 2},
	}
	for _, s := range specs {
		data, err := Marshal(s)
		require.NoError(t, err)

		got, err := Decode(data)
		require.NoError(t, err, "%s", data)
		assert.Equal(t, s, got)
	}
}

func TestMarshal_WireNames(t *testing.T) {
	data, err := Marshal(&InsertText{Adjacent: "x", Pos: anchor.After, Runs: []model.TextRun{{Text: "y", Style: model.Style{Bold: true}}}})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "insert_text", m["type"])
	assert.Equal(t, "x", m["adjacent_text"])
	assert.Equal(t, "after", m["insert_pos"])
	assert.NotContains(t, m, "find")
	assert.NotContains(t, m, "comment")
}
