package parser

import (
	"strings"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// parseResponseProcessing reads the template reference and the rule list.
// Rules outside the interpreted subset become OpaqueRule and a warning;
// they are kept, not dropped, so export and auditing still see them.
func parseResponseProcessing(n *xmltree.Node) (*model.ResponseProcessing, []string) {
	rp := &model.ResponseProcessing{
		Template: shortTemplateName(n.Attr("template")),
	}
	var warnings []string
	for _, c := range n.Children {
		rule, ws := parseRule(c)
		rp.Rules = append(rp.Rules, rule)
		warnings = append(warnings, ws...)
	}
	return rp, warnings
}

// shortTemplateName reduces a template URI to its trailing segment, so
// ".../rptemplates/match_correct" and a bare "match_correct" read the same.
func shortTemplateName(template string) string {
	if template == "" {
		return ""
	}
	if i := strings.LastIndexByte(template, '/'); i >= 0 {
		return template[i+1:]
	}
	return template
}

func parseRule(n *xmltree.Node) (model.Rule, []string) {
	switch n.Name {
	case "setOutcomeValue":
		rule := &model.SetOutcomeValue{Identifier: n.Attr("identifier")}
		if len(n.Children) > 0 {
			rule.Value = parseExpression(n.Children[0])
		}
		return rule, nil
	case "responseCondition":
		cond := &model.ResponseCondition{}
		if ri := n.First("responseIf"); ri != nil && len(ri.Children) > 0 {
			cond.If = parseExpression(ri.Children[0])
			for _, c := range ri.Children[1:] {
				r, _ := parseRule(c)
				cond.Then = append(cond.Then, r)
			}
		}
		if re := n.First("responseElse"); re != nil {
			for _, c := range re.Children {
				r, _ := parseRule(c)
				cond.Else = append(cond.Else, r)
			}
		}
		return cond, nil
	default:
		return &model.OpaqueRule{Tag: n.Name, Raw: n},
			[]string{"uninterpreted response processing rule: " + n.Name}
	}
}

func parseExpression(n *xmltree.Node) model.Expression {
	switch n.Name {
	case "baseValue":
		return &model.BaseValue{
			BaseType: model.BaseType(n.Attr("baseType")),
			Value:    n.TrimmedText(),
		}
	case "variable":
		return &model.Variable{Identifier: n.Attr("identifier")}
	case "correct":
		return &model.Correct{Identifier: n.Attr("identifier")}
	case "match":
		m := &model.MatchOp{}
		if len(n.Children) > 0 {
			m.Left = parseExpression(n.Children[0])
		}
		if len(n.Children) > 1 {
			m.Right = parseExpression(n.Children[1])
		}
		return m
	case "isNull":
		e := &model.IsNullOp{}
		if len(n.Children) > 0 {
			e.Child = parseExpression(n.Children[0])
		}
		return e
	default:
		return &model.OpaqueExpr{Tag: n.Name, Raw: n}
	}
}
