package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownStyle is returned when a style tag is not part of the style
// vocabulary.
var ErrUnknownStyle = errors.New("unknown style")

// Style tags used on the wire.
const (
	TagBold          = "bold"
	TagItalic        = "italic"
	TagUnderline     = "underline"
	TagStrikethrough = "strikethrough"
	tagSizePrefix    = "size-"
)

// Style represents character formatting of a run
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Size      float64 // Font size in points, 0 if inherited
}

// IsZero reports whether no formatting is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// HalfPoints returns the size in half-points as stored in w:sz.
func (s Style) HalfPoints() int {
	return int(math.Round(s.Size * 2))
}

// Tags returns the wire representation of the style, e.g.
// ["bold", "size-12"].
func (s Style) Tags() []string {
	var tags []string
	if s.Bold {
		tags = append(tags, TagBold)
	}
	if s.Italic {
		tags = append(tags, TagItalic)
	}
	if s.Underline {
		tags = append(tags, TagUnderline)
	}
	if s.Strike {
		tags = append(tags, TagStrikethrough)
	}
	if s.Size > 0 {
		tags = append(tags, tagSizePrefix+strconv.FormatFloat(math.Round(s.Size*10)/10, 'f', -1, 64))
	}
	return tags
}

// ParseStyles converts wire tags into a Style. Tags are case-insensitive.
func ParseStyles(tags []string) (Style, error) {
	var s Style
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		switch {
		case t == TagBold:
			s.Bold = true
		case t == TagItalic:
			s.Italic = true
		case t == TagUnderline:
			s.Underline = true
		case t == TagStrikethrough, t == "strike":
			s.Strike = true
		case strings.HasPrefix(t, tagSizePrefix):
			size, err := strconv.ParseFloat(strings.TrimPrefix(t, tagSizePrefix), 64)
			if err != nil || size <= 0 || size > 1638 {
				return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, tag)
			}
			s.Size = size
		default:
			return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, tag)
		}
	}
	return s, nil
}
