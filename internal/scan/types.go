package scan

import (
	"puzzle-scanner/internal/classify"
	"puzzle-scanner/internal/extract"
)

// ClassifiedPiece pairs an extracted piece with its classification.
type ClassifiedPiece struct {
	extract.Piece
	Classification classify.Classification `json:"classification"`
}

// Counts summarizes how many pieces fell into each category.
type Counts struct {
	Corners int `json:"corners"`
	Edges   int `json:"edges"`
	NonEdge int `json:"nonEdge"`
	Unknown int `json:"unknown"`
	Total   int `json:"total"`
}

func (c *Counts) add(k classify.Kind) {
	switch k {
	case classify.Corner:
		c.Corners++
	case classify.Edge:
		c.Edges++
	case classify.NonEdge:
		c.NonEdge++
	default:
		c.Unknown++
	}
	c.Total++
}

// CountPieces tallies a classified set. Total always equals the sum of
// the four categories.
func CountPieces(pieces []ClassifiedPiece) Counts {
	var c Counts
	for _, p := range pieces {
		c.add(p.Classification.Kind)
	}
	return c
}

// Visibility selects which categories a presentation layer wants to
// show. Categories absent from the map are visible. Filtering is a
// display concern only; the pipeline always classifies every kept
// piece so the counts stay complete.
type Visibility map[classify.Kind]bool

// Visible reports whether the category should be shown.
func (v Visibility) Visible(k classify.Kind) bool {
	if v == nil {
		return true
	}
	on, ok := v[k]
	if !ok {
		return true
	}
	return on
}

// FilterVisible returns the pieces whose category is visible. The
// input slice is not modified.
func FilterVisible(pieces []ClassifiedPiece, v Visibility) []ClassifiedPiece {
	if v == nil {
		return pieces
	}
	out := make([]ClassifiedPiece, 0, len(pieces))
	for _, p := range pieces {
		if v.Visible(p.Classification.Kind) {
			out = append(out, p)
		}
	}
	return out
}
