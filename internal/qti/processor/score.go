package processor

import (
	"strings"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
)

// scoreResponse scores one submitted response under the detected
// template. A mapped template over a declaration without a mapping falls
// back to exact-match scoring for that response alone.
func scoreResponse(decl *model.ResponseDeclaration, values []string, template string) ProcessedResponse {
	switch template {
	case model.TemplateMapResponse, model.TemplateMapResponsePoint:
		if decl.Mapping == nil {
			return scoreMatchCorrect(decl, values)
		}
		return scoreMapResponse(decl, values)
	default:
		return scoreMatchCorrect(decl, values)
	}
}

// scoreMatchCorrect awards 1 point for a cardinality-aware match against
// the declared correctResponse. Record cardinality has no defined
// equality here and always scores 0.
func scoreMatchCorrect(decl *model.ResponseDeclaration, values []string) ProcessedResponse {
	pr := ProcessedResponse{
		Identifier: decl.Identifier,
		Submitted:  values,
		Correct:    decl.Correct,
		MaxPoints:  1,
	}
	var match bool
	switch decl.Cardinality {
	case model.CardinalityMultiple:
		match = setEqual(decl.Correct, values)
	case model.CardinalityOrdered:
		match = sequenceEqual(decl.Correct, values)
	case model.CardinalityRecord:
		pr.Note = "record cardinality comparison is not implemented"
		match = false
	default:
		match = singleEqual(decl.Correct, values)
	}
	if match {
		pr.IsCorrect = true
		pr.Points = 1
	}
	return pr
}

// scoreMapResponse sums per-value map entries, applies the mapping
// default to unmatched values and clamps the total to the declared
// bounds. Max points is the sum of positive entries, clamped to the
// upper bound.
func scoreMapResponse(decl *model.ResponseDeclaration, values []string) ProcessedResponse {
	m := decl.Mapping
	pr := ProcessedResponse{
		Identifier: decl.Identifier,
		Submitted:  values,
		Correct:    decl.Correct,
		MaxPoints:  m.MaxPoints(),
	}
	points := 0.0
	for _, v := range values {
		points += lookupMapEntry(m, v)
	}
	if m.LowerBound != nil && points < *m.LowerBound {
		points = *m.LowerBound
	}
	if m.UpperBound != nil && points > *m.UpperBound {
		points = *m.UpperBound
	}
	pr.Points = points
	pr.IsCorrect = pr.MaxPoints > 0 && points >= pr.MaxPoints
	return pr
}

func lookupMapEntry(m *model.Mapping, value string) float64 {
	trimmed := strings.TrimSpace(value)
	for _, e := range m.Entries {
		if e.CaseSensitive {
			if strings.TrimSpace(e.MapKey) == trimmed {
				return e.MappedValue
			}
		} else if strings.EqualFold(strings.TrimSpace(e.MapKey), trimmed) {
			return e.MappedValue
		}
	}
	return m.DefaultValue
}
