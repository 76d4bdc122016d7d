package revision

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/redline/docx"
	"github.com/tsawler/redline/model"
)

const composeJSON = `{"paragraphs": [
	[
		{"type": "normal", "runs": [{"text": "Payment is due within "}]},
		{"type": "edit", "author": "Drafting Assistant",
		 "old_runs": [{"text": "30"}],
		 "runs": [{"text": "45", "styles": ["bold"]}],
		 "comment": {"text": "Longer term"}},
		{"type": "normal", "runs": [{"text": " days."}]}
	],
	[
		{"type": "normal", "runs": [{"text": "Remove "}]},
		{"type": "edit", "old_runs": [{"text": "this"}], "comment": {"text": "Not needed"}},
		{"type": "normal", "runs": [{"text": " later.", "styles": ["italic"]}]}
	]
]}`

func TestCompose(t *testing.T) {
	var data DocData
	if err := json.Unmarshal([]byte(composeJSON), &data); err != nil {
		t.Fatal(err)
	}

	pkg, err := Compose(&data, WithAuthor("Counsel"), WithClock(func() time.Time { return fixedTime }))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	// Round-trip through bytes to check the package is complete.
	raw, err := pkg.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	reopened, err := docx.OpenBytes(raw)
	if err != nil {
		t.Fatalf("composed package does not open: %v", err)
	}
	doc, err := reopened.Document()
	if err != nil {
		t.Fatal(err)
	}

	paras := doc.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("paragraph count = %d, want 2", len(paras))
	}
	tests := []struct {
		mode docx.RevisionMode
		want []string
	}{
		{docx.SkipRevisions, []string{"Payment is due within  days.", "Remove  later."}},
		{docx.WithInsertions, []string{"Payment is due within 45 days.", "Remove  later."}},
		{docx.AllRuns, []string{"Payment is due within 3045 days.", "Remove this later."}},
	}
	for _, tt := range tests {
		got := []string{paras[0].Text(tt.mode), paras[1].Text(tt.mode)}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("mode %d text mismatch (-want +got):\n%s", tt.mode, diff)
		}
	}

	runs := paras[1].Runs(docx.SkipRevisions)
	if got := runs[len(runs)-1].Style(); got != (model.Style{Italic: true}) {
		t.Errorf("normal run style = %+v, want italic", got)
	}

	comments, err := doc.Comments()
	if err != nil {
		t.Fatal(err)
	}
	want := []docx.Comment{
		{ID: 0, Author: "Drafting Assistant", Date: fixedTime, Text: "Longer term"},
		{ID: 1, Author: "Counsel", Date: fixedTime, Text: "Not needed"},
	}
	if diff := cmp.Diff(want, comments); diff != "" {
		t.Errorf("comments mismatch (-want +got):\n%s", diff)
	}

	// The comment on a pure removal brackets the deletion.
	wantChildren := []string{"w:r", "w:commentRangeStart", "w:del", "w:commentRangeEnd", "w:r", "w:r"}
	if diff := cmp.Diff(wantChildren, childNames(paras[1].Node())); diff != "" {
		t.Errorf("second paragraph mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_Errors(t *testing.T) {
	tests := []struct {
		name string
		data DocData
		want error
	}{
		{"unknown section", DocData{Paragraphs: [][]Section{{{Type: "table"}}}}, nil},
		{"unknown style", DocData{Paragraphs: [][]Section{{{Type: SectionNormal, Runs: []RunData{{Text: "x", Styles: []string{"shadow"}}}}}}}, model.ErrUnknownStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(&tt.data)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
