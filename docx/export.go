package docx

import (
	"errors"
	"fmt"

	"github.com/tsawler/redline/model"
)

// ErrInvalidCursor is returned by Chunks for a negative cursor or a
// non-positive page size.
var ErrInvalidCursor = errors.New("invalid cursor")

// ChunkPage is one page of a chunked export.
type ChunkPage struct {
	Data        []Chunk `json:"data"`
	Cursor      int     `json:"cursor"`
	MoreData    bool    `json:"more_data"`
	TotalChunks int     `json:"total_chunks"`
}

// Chunk is the export form of one paragraph.
type Chunk struct {
	Kind       string     `json:"kind"`
	ChunkIdx   int        `json:"chunk_idx"`
	IsListItem bool       `json:"is_list_item"`
	ListLevel  int        `json:"list_level,omitempty"`
	ListType   string     `json:"list_type,omitempty"`
	Runs       []ChunkRun `json:"runs"`
}

// ChunkRun is the export form of one run.
type ChunkRun struct {
	Text        string   `json:"text"`
	Styles      []string `json:"styles"`
	IsInsertion bool     `json:"is_insertion,omitempty"`
	IsDeletion  bool     `json:"is_deletion,omitempty"`
}

// Chunks exports size paragraphs starting at paragraph index cursor.
// Runs inside existing tracked changes are included and flagged; runs
// without text (comment references, drawings) are omitted. The returned
// Cursor is the index of the next paragraph to request.
func (d *Document) Chunks(cursor, size int) (*ChunkPage, error) {
	if cursor < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: cursor=%d size=%d", ErrInvalidCursor, cursor, size)
	}

	styles, err := d.Styles()
	if err != nil {
		return nil, err
	}
	lists, err := d.Numbering()
	if err != nil {
		return nil, err
	}

	paras := d.Paragraphs()
	end := min(cursor+size, len(paras))
	page := &ChunkPage{
		Data:        []Chunk{},
		TotalChunks: len(paras),
	}

	for i := cursor; i < end; i++ {
		p := paras[i]
		chunk := Chunk{Kind: "paragraph", ChunkIdx: i, Runs: []ChunkRun{}}
		if info, ok := lists.ListInfo(p); ok {
			chunk.IsListItem = true
			chunk.ListLevel = p.ListLevel()
			chunk.ListType = info.Type.String()
		}
		for _, r := range p.Runs(AllRuns) {
			text := r.Text()
			if text == "" {
				continue
			}
			tags := styles.ResolveRun(p, r).Tags()
			if tags == nil {
				tags = []string{}
			}
			chunk.Runs = append(chunk.Runs, ChunkRun{
				Text:        text,
				Styles:      tags,
				IsInsertion: r.Status() == model.Inserted,
				IsDeletion:  r.Status() == model.Deleted,
			})
		}
		page.Data = append(page.Data, chunk)
	}

	page.Cursor = max(end, cursor)
	page.MoreData = end < len(paras)
	return page, nil
}
