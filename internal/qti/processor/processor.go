// Package processor scores a learner's submitted responses against a
// parsed assessment item. Processing is a pure function of (item,
// submissions): no state survives between calls and malformed input
// degrades to recorded errors, never to a refused score.
package processor

import (
	"fmt"
	"strconv"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
)

// Response is one submitted answer. Values holds the submitted value(s):
// one element for single cardinality, several for multiple/ordered. An
// empty Values is a null response.
type Response struct {
	Identifier string   `json:"identifier"`
	Values     []string `json:"values"`
}

// ProcessedResponse is the per-response scoring outcome.
type ProcessedResponse struct {
	Identifier string   `json:"identifier"`
	Submitted  []string `json:"submitted,omitempty"`
	Correct    []string `json:"correct,omitempty"`
	IsCorrect  bool     `json:"is_correct"`
	Points     float64  `json:"points"`
	MaxPoints  float64  `json:"max_points"`
	Note       string   `json:"note,omitempty"`
}

// Result is the full scoring outcome for one submission set.
type Result struct {
	IsCorrect       bool                `json:"is_correct"`
	TotalScore      float64             `json:"total_score"`
	MaxScore        float64             `json:"max_score"`
	NormalizedScore float64             `json:"normalized_score"`
	Responses       []ProcessedResponse `json:"responses"`
	Outcomes        map[string]any      `json:"outcomes,omitempty"`
	Errors          []string            `json:"errors,omitempty"`
	ModalFeedback   []string            `json:"modal_feedback,omitempty"`
}

// Processor scores submissions. It is stateless and freely constructible;
// concurrent use needs no coordination.
type Processor struct{}

func New() *Processor { return &Processor{} }

// Process scores the submitted responses against the item. It never
// panics on malformed input: unknown identifiers and failing rules are
// recorded in Errors and scoring continues.
func (p *Processor) Process(item *model.AssessmentItem, responses []Response) Result {
	res := Result{Outcomes: map[string]any{}}

	// phase 1: outcome defaults
	for _, od := range item.OutcomeDeclarations {
		res.Outcomes[od.Identifier] = outcomeDefault(od)
	}
	if _, ok := res.Outcomes[model.ScoreIdentifier]; !ok {
		res.Outcomes[model.ScoreIdentifier] = 0.0
	}

	template := detectTemplate(item)

	// phase 2: per-response scoring
	submitted := map[string][]string{}
	sum := 0.0
	for _, r := range responses {
		decl := item.ResponseDeclaration(r.Identifier)
		if decl == nil {
			res.Errors = append(res.Errors, "unknown response identifier: "+r.Identifier)
			continue
		}
		// one slot per declaration: a repeated identifier must not
		// double-count its points
		if _, dup := submitted[r.Identifier]; dup {
			res.Errors = append(res.Errors, "duplicate response identifier: "+r.Identifier)
			continue
		}
		submitted[r.Identifier] = r.Values
		pr := scoreResponse(decl, r.Values, template)
		sum += pr.Points
		res.Responses = append(res.Responses, pr)
	}
	res.Outcomes[model.ScoreIdentifier] = sum

	// phase 3: custom rules may overwrite phase-2 outcomes
	if item.ResponseProcessing != nil && len(item.ResponseProcessing.Rules) > 0 {
		ctx := &evalContext{item: item, submitted: submitted, outcomes: res.Outcomes}
		res.Errors = append(res.Errors, ctx.applyRules(item.ResponseProcessing.Rules)...)
	}

	// phase 4: aggregate
	res.TotalScore = outcomeFloat(res.Outcomes[model.ScoreIdentifier], sum)
	res.MaxScore = maxScore(item)
	res.NormalizedScore = clamp01(res.TotalScore / res.MaxScore)
	res.IsCorrect = res.NormalizedScore >= 1.0
	res.ModalFeedback = resolveFeedback(item, res.Outcomes, res.IsCorrect)

	return res
}

// detectTemplate applies the fixed precedence: an explicit well-known
// template wins, then the presence of any mapping selects map_response,
// then match_correct is the default. An item with a mapping but an
// explicit match_correct template scores by exact match.
func detectTemplate(item *model.AssessmentItem) string {
	if rp := item.ResponseProcessing; rp != nil {
		switch rp.Template {
		case model.TemplateMapResponsePoint, model.TemplateMapResponse, model.TemplateMatchCorrect:
			return rp.Template
		}
	}
	for i := range item.ResponseDeclarations {
		if item.ResponseDeclarations[i].Mapping != nil {
			return model.TemplateMapResponse
		}
	}
	return model.TemplateMatchCorrect
}

// maxScore: SCORE's declared normalMaximum when present, else the sum of
// per-declaration maxima (mapping max, or 1 for a bare correctResponse),
// else 1 so normalization never divides by zero.
func maxScore(item *model.AssessmentItem) float64 {
	if od := item.OutcomeDeclaration(model.ScoreIdentifier); od != nil && od.NormalMaximum != nil {
		return *od.NormalMaximum
	}
	sum := 0.0
	for i := range item.ResponseDeclarations {
		rd := &item.ResponseDeclarations[i]
		switch {
		case rd.Mapping != nil:
			sum += rd.Mapping.MaxPoints()
		case len(rd.Correct) > 0:
			sum++
		}
	}
	if sum == 0 {
		return 1
	}
	return sum
}

// resolveFeedback applies the show/hide conventions, including the
// literal "correct"/"incorrect" identifiers the authoring format uses.
// Those two literals are a convention of the format, nothing more: other
// identifier strings only match through outcome values.
func resolveFeedback(item *model.AssessmentItem, outcomes map[string]any, isCorrect bool) []string {
	var out []string
	for _, mf := range item.ModalFeedback {
		outcome := stringifyOutcome(outcomes[mf.OutcomeIdentifier])
		matches := outcome == mf.Identifier ||
			(mf.Identifier == "correct" && isCorrect) ||
			(mf.Identifier == "incorrect" && !isCorrect)
		switch mf.ShowHide {
		case model.Hide:
			if outcome != mf.Identifier {
				out = append(out, mf.Identifier)
			}
		default:
			if matches {
				out = append(out, mf.Identifier)
			}
		}
	}
	return out
}

func outcomeDefault(od model.OutcomeDeclaration) any {
	if len(od.Default) == 0 {
		if od.Identifier == model.ScoreIdentifier {
			return 0.0
		}
		return nil
	}
	if len(od.Default) == 1 {
		if f, err := strconv.ParseFloat(od.Default[0], 64); err == nil && numericBaseType(od.BaseType) {
			return f
		}
		return od.Default[0]
	}
	return append([]string(nil), od.Default...)
}

func numericBaseType(bt model.BaseType) bool {
	return bt == model.BaseTypeFloat || bt == model.BaseTypeInteger
}

func outcomeFloat(v any, fallback float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return fallback
}

func stringifyOutcome(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		if len(t) == 1 {
			return t[0]
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
