package processor

import (
	"fmt"
	"strconv"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
)

// evalContext carries the state the rule interpreter reads and writes:
// the item, the submitted response values, and the outcome map (which
// rules may overwrite).
type evalContext struct {
	item      *model.AssessmentItem
	submitted map[string][]string
	outcomes  map[string]any
}

// applyRules walks the rule list in document order. One failing rule is
// recorded and skipped; it never aborts the remaining rules.
func (ctx *evalContext) applyRules(rules model.Rules) []string {
	var errs []string
	for i, rule := range rules {
		if err := ctx.applyRule(rule); err != nil {
			errs = append(errs, fmt.Sprintf("rule %d (%s): %v", i, rule.RuleKind(), err))
		}
	}
	return errs
}

func (ctx *evalContext) applyRule(rule model.Rule) (err error) {
	// rule evaluation must never take down the whole scoring call
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule evaluation panicked: %v", r)
		}
	}()

	switch r := rule.(type) {
	case *model.SetOutcomeValue:
		return ctx.setOutcome(r)
	case *model.ResponseCondition:
		ok, err := ctx.evalCondition(r.If)
		if err != nil {
			return err
		}
		if !ok {
			// else branch is parsed but not evaluated
			return nil
		}
		for _, then := range r.Then {
			if err := ctx.applyRule(then); err != nil {
				return err
			}
		}
		return nil
	case *model.OpaqueRule:
		// passthrough: warned at parse time, nothing to evaluate
		return nil
	default:
		return fmt.Errorf("unhandled rule kind %q", rule.RuleKind())
	}
}

func (ctx *evalContext) setOutcome(r *model.SetOutcomeValue) error {
	if r.Identifier == "" {
		return fmt.Errorf("setOutcomeValue without identifier")
	}
	if r.Value == nil {
		return fmt.Errorf("setOutcomeValue %s has no value expression", r.Identifier)
	}
	values, null, err := ctx.eval(r.Value, true)
	if err != nil {
		return err
	}
	if null {
		ctx.outcomes[r.Identifier] = nil
		return nil
	}
	ctx.outcomes[r.Identifier] = coerceOutcome(ctx.item, r.Identifier, values)
	return nil
}

// eval resolves an expression to its value list. A nil list with
// null=true is a QTI null. correctFallback lets a variable fall back to
// its declared correctResponse; that applies to setOutcomeValue value
// resolution only. Condition operands must see an unanswered response
// as null, or match(variable, correct) would hold for an empty
// submission.
func (ctx *evalContext) eval(e model.Expression, correctFallback bool) (values []string, null bool, err error) {
	switch x := e.(type) {
	case *model.BaseValue:
		return []string{x.Value}, false, nil
	case *model.Variable:
		// resolution order: submitted response, existing outcome,
		// declared correctResponse (value resolution only), null
		if vals, ok := ctx.submitted[x.Identifier]; ok && len(vals) > 0 {
			return vals, false, nil
		}
		if v, ok := ctx.outcomes[x.Identifier]; ok && v != nil {
			return outcomeValues(v), false, nil
		}
		if correctFallback {
			if decl := ctx.item.ResponseDeclaration(x.Identifier); decl != nil && len(decl.Correct) > 0 {
				return decl.Correct, false, nil
			}
		}
		return nil, true, nil
	case *model.Correct:
		decl := ctx.item.ResponseDeclaration(x.Identifier)
		if decl == nil {
			return nil, false, fmt.Errorf("correct references unknown declaration %q", x.Identifier)
		}
		if len(decl.Correct) == 0 {
			return nil, true, nil
		}
		return decl.Correct, false, nil
	case nil:
		return nil, false, fmt.Errorf("missing expression")
	default:
		return nil, false, fmt.Errorf("unevaluable expression kind %q", e.ExprKind())
	}
}

// evalCondition evaluates the boolean test subset: isNull, match, and the
// bare correct primitive (response matches its declared correctResponse).
func (ctx *evalContext) evalCondition(e model.Expression) (bool, error) {
	switch x := e.(type) {
	case *model.IsNullOp:
		if x.Child == nil {
			return false, fmt.Errorf("isNull without child expression")
		}
		_, null, err := ctx.eval(x.Child, false)
		if err != nil {
			return false, err
		}
		return null, nil
	case *model.MatchOp:
		if x.Left == nil || x.Right == nil {
			return false, fmt.Errorf("match needs two operands")
		}
		left, lnull, err := ctx.eval(x.Left, false)
		if err != nil {
			return false, err
		}
		right, rnull, err := ctx.eval(x.Right, false)
		if err != nil {
			return false, err
		}
		if lnull || rnull {
			return lnull && rnull, nil
		}
		return ctx.compareLists(x.Left, x.Right, left, right), nil
	case *model.Correct:
		decl := ctx.item.ResponseDeclaration(x.Identifier)
		if decl == nil {
			return false, fmt.Errorf("correct references unknown declaration %q", x.Identifier)
		}
		submitted := ctx.submitted[x.Identifier]
		switch decl.Cardinality {
		case model.CardinalityMultiple:
			return setEqual(decl.Correct, submitted), nil
		case model.CardinalityOrdered:
			return sequenceEqual(decl.Correct, submitted), nil
		case model.CardinalityRecord:
			return false, nil
		default:
			return singleEqual(decl.Correct, submitted), nil
		}
	case nil:
		return false, fmt.Errorf("missing condition expression")
	default:
		return false, fmt.Errorf("unevaluable condition kind %q", e.ExprKind())
	}
}

// compareLists picks set equality when either operand references a
// multiple-cardinality variable, sequence equality otherwise.
func (ctx *evalContext) compareLists(le, re model.Expression, left, right []string) bool {
	if ctx.cardinalityOf(le) == model.CardinalityMultiple || ctx.cardinalityOf(re) == model.CardinalityMultiple {
		return setEqual(left, right)
	}
	return sequenceEqual(left, right)
}

func (ctx *evalContext) cardinalityOf(e model.Expression) model.Cardinality {
	var ident string
	switch x := e.(type) {
	case *model.Variable:
		ident = x.Identifier
	case *model.Correct:
		ident = x.Identifier
	default:
		return model.CardinalitySingle
	}
	if decl := ctx.item.ResponseDeclaration(ident); decl != nil {
		return decl.Cardinality
	}
	return model.CardinalitySingle
}

func outcomeValues(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case string:
		return []string{t}
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	default:
		return []string{fmt.Sprintf("%v", t)}
	}
}

// coerceOutcome stores a single numeric value as float64 when the outcome
// is declared numeric (or undeclared), so SCORE overwrites stay numbers.
func coerceOutcome(item *model.AssessmentItem, identifier string, values []string) any {
	if len(values) != 1 {
		return append([]string(nil), values...)
	}
	v := values[0]
	od := item.OutcomeDeclaration(identifier)
	numericOK := od == nil || numericBaseType(od.BaseType) || od.BaseType == ""
	if numericOK {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}
