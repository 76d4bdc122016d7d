// Package model provides the small shared vocabulary used by the editing
// packages: character styles, styled text runs and revision status.
//
// # Styles
//
// Character formatting is a closed set of orthogonal attributes, so it is
// modelled as a struct rather than an open list of tags:
//
//	s := model.Style{Bold: true, Size: 12}
//	s.Tags() // ["bold", "size-12"]
//
// [ParseStyles] converts the wire tags back and rejects anything outside the
// vocabulary with [ErrUnknownStyle].
//
// # Runs
//
// A [TextRun] is text plus a [Style]. Runs read from a document also carry a
// [RevisionStatus] telling whether they sit inside a tracked insertion or
// deletion.
package model
