package model

import (
	"encoding/json"
	"fmt"

	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// Well-known response processing template names.
const (
	TemplateMatchCorrect     = "match_correct"
	TemplateMapResponse      = "map_response"
	TemplateMapResponsePoint = "map_response_point"
)

// ResponseProcessing is an item's scoring directive: a template reference,
// explicit rules, or both.
type ResponseProcessing struct {
	Template string `json:"template,omitempty"`
	Rules    Rules  `json:"rules,omitempty"`
}

// Rule is a closed sum over the rule kinds the processor interprets, plus
// an opaque variant for everything it deliberately does not. Adding a rule
// kind means extending the interpreter's switch, not poking at a raw map.
type Rule interface {
	RuleKind() string
	sealedRule()
}

// SetOutcomeValue assigns the value of an expression to a named outcome.
type SetOutcomeValue struct {
	Identifier string     `json:"identifier"`
	Value      Expression `json:"value,omitempty"`
}

// ResponseCondition evaluates a boolean test and applies the then-branch
// rules when it holds. The else branch is parsed but not evaluated by the
// current interpreter.
type ResponseCondition struct {
	If   Expression `json:"if,omitempty"`
	Then Rules      `json:"then,omitempty"`
	Else Rules      `json:"else,omitempty"`
}

// OpaqueRule carries a rule the interpreter does not evaluate. The raw
// node is kept so export and debugging can still see it.
type OpaqueRule struct {
	Tag string        `json:"tag"`
	Raw *xmltree.Node `json:"raw,omitempty"`
}

func (*SetOutcomeValue) RuleKind() string   { return "setOutcomeValue" }
func (*ResponseCondition) RuleKind() string { return "responseCondition" }
func (*OpaqueRule) RuleKind() string        { return "opaque" }

func (*SetOutcomeValue) sealedRule()   {}
func (*ResponseCondition) sealedRule() {}
func (*OpaqueRule) sealedRule()        {}

// Expression is the evaluated subset of the QTI expression grammar:
// literals, variable/correct references, match, isNull. Anything else
// parses into OpaqueExpr and evaluates to an error, not a guess.
type Expression interface {
	ExprKind() string
	sealedExpr()
}

// BaseValue is a typed literal.
type BaseValue struct {
	BaseType BaseType `json:"base_type,omitempty"`
	Value    string   `json:"value"`
}

// Variable references a response or outcome variable by identifier.
type Variable struct {
	Identifier string `json:"identifier"`
}

// Correct references the declared correctResponse of a response variable.
type Correct struct {
	Identifier string `json:"identifier"`
}

// MatchOp compares two sub-expressions for equality.
type MatchOp struct {
	Left  Expression `json:"left,omitempty"`
	Right Expression `json:"right,omitempty"`
}

// IsNullOp tests whether a sub-expression has no value.
type IsNullOp struct {
	Child Expression `json:"child,omitempty"`
}

// OpaqueExpr carries an expression outside the evaluated subset.
type OpaqueExpr struct {
	Tag string        `json:"tag"`
	Raw *xmltree.Node `json:"raw,omitempty"`
}

func (*BaseValue) ExprKind() string  { return "baseValue" }
func (*Variable) ExprKind() string   { return "variable" }
func (*Correct) ExprKind() string    { return "correct" }
func (*MatchOp) ExprKind() string    { return "match" }
func (*IsNullOp) ExprKind() string   { return "isNull" }
func (*OpaqueExpr) ExprKind() string { return "opaque" }

func (*BaseValue) sealedExpr()  {}
func (*Variable) sealedExpr()   {}
func (*Correct) sealedExpr()    {}
func (*MatchOp) sealedExpr()    {}
func (*IsNullOp) sealedExpr()   {}
func (*OpaqueExpr) sealedExpr() {}

/* ---- JSON envelopes: rules and expressions survive persistence ---- */

// Rules is an ordered rule list with envelope-based JSON round-trip.
type Rules []Rule

type ruleEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (rs Rules) MarshalJSON() ([]byte, error) {
	env := make([]ruleEnvelope, 0, len(rs))
	for _, r := range rs {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		env = append(env, ruleEnvelope{Kind: r.RuleKind(), Data: data})
	}
	return json.Marshal(env)
}

func (rs *Rules) UnmarshalJSON(b []byte) error {
	var env []ruleEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	out := make(Rules, 0, len(env))
	for _, e := range env {
		var r Rule
		switch e.Kind {
		case "setOutcomeValue":
			r = &SetOutcomeValue{}
		case "responseCondition":
			r = &ResponseCondition{}
		case "opaque":
			r = &OpaqueRule{}
		default:
			return fmt.Errorf("unknown rule kind %q", e.Kind)
		}
		if err := json.Unmarshal(e.Data, r); err != nil {
			return err
		}
		out = append(out, r)
	}
	*rs = out
	return nil
}

type exprEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func marshalExpr(e Expression) (json.RawMessage, error) {
	if e == nil {
		return json.RawMessage("null"), nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(exprEnvelope{Kind: e.ExprKind(), Data: data})
}

func unmarshalExpr(b []byte) (Expression, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var env exprEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	var e Expression
	switch env.Kind {
	case "baseValue":
		e = &BaseValue{}
	case "variable":
		e = &Variable{}
	case "correct":
		e = &Correct{}
	case "match":
		e = &MatchOp{}
	case "isNull":
		e = &IsNullOp{}
	case "opaque":
		e = &OpaqueExpr{}
	default:
		return nil, fmt.Errorf("unknown expression kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Data, e); err != nil {
		return nil, err
	}
	return e, nil
}

// The structs that hold Expression fields need custom JSON so the concrete
// variant survives. Shadow types avoid marshal recursion.

func (s *SetOutcomeValue) MarshalJSON() ([]byte, error) {
	value, err := marshalExpr(s.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Identifier string          `json:"identifier"`
		Value      json.RawMessage `json:"value,omitempty"`
	}{s.Identifier, value})
}

func (s *SetOutcomeValue) UnmarshalJSON(b []byte) error {
	var raw struct {
		Identifier string          `json:"identifier"`
		Value      json.RawMessage `json:"value,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	value, err := unmarshalExpr(raw.Value)
	if err != nil {
		return err
	}
	s.Identifier = raw.Identifier
	s.Value = value
	return nil
}

func (c *ResponseCondition) MarshalJSON() ([]byte, error) {
	cond, err := marshalExpr(c.If)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		If   json.RawMessage `json:"if,omitempty"`
		Then Rules           `json:"then,omitempty"`
		Else Rules           `json:"else,omitempty"`
	}{cond, c.Then, c.Else})
}

func (c *ResponseCondition) UnmarshalJSON(b []byte) error {
	var raw struct {
		If   json.RawMessage `json:"if,omitempty"`
		Then Rules           `json:"then,omitempty"`
		Else Rules           `json:"else,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	cond, err := unmarshalExpr(raw.If)
	if err != nil {
		return err
	}
	c.If = cond
	c.Then = raw.Then
	c.Else = raw.Else
	return nil
}

func (m *MatchOp) MarshalJSON() ([]byte, error) {
	left, err := marshalExpr(m.Left)
	if err != nil {
		return nil, err
	}
	right, err := marshalExpr(m.Right)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Left  json.RawMessage `json:"left,omitempty"`
		Right json.RawMessage `json:"right,omitempty"`
	}{left, right})
}

func (m *MatchOp) UnmarshalJSON(b []byte) error {
	var raw struct {
		Left  json.RawMessage `json:"left,omitempty"`
		Right json.RawMessage `json:"right,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	left, err := unmarshalExpr(raw.Left)
	if err != nil {
		return err
	}
	right, err := unmarshalExpr(raw.Right)
	if err != nil {
		return err
	}
	m.Left = left
	m.Right = right
	return nil
}

func (n *IsNullOp) MarshalJSON() ([]byte, error) {
	child, err := marshalExpr(n.Child)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Child json.RawMessage `json:"child,omitempty"`
	}{child})
}

func (n *IsNullOp) UnmarshalJSON(b []byte) error {
	var raw struct {
		Child json.RawMessage `json:"child,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	child, err := unmarshalExpr(raw.Child)
	if err != nil {
		return err
	}
	n.Child = child
	return nil
}
