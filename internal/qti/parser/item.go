// Package parser converts raw QTI XML (items, tests) and zip content
// packages into the typed model. Fatal structural problems return a
// *ParseError; everything recoverable is reported through the warnings
// slice next to a best-effort result.
package parser

import (
	"strconv"
	"strings"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// ParseItem parses a single assessmentItem document.
func ParseItem(xmlBytes []byte) (*model.AssessmentItem, []string, error) {
	root, err := xmltree.Parse(xmlBytes)
	if err != nil {
		return nil, nil, parseFailure(errMalformedXML + ": " + err.Error())
	}
	normalizeV3Names(root)
	if root.Name != "assessmentItem" {
		return nil, nil, parseFailure(errMissingRootElement + ": want assessmentItem, got " + root.Name)
	}

	version, warnings := detectVersion(root)

	item := &model.AssessmentItem{
		Identifier:    root.Attr("identifier"),
		Title:         root.Attr("title"),
		Adaptive:      attrBool(root, "adaptive"),
		TimeDependent: attrBool(root, "timeDependent"),
		Language:      root.Attr("lang"),
		Version:       version,
	}

	for _, rd := range root.All("responseDeclaration") {
		item.ResponseDeclarations = append(item.ResponseDeclarations, parseResponseDeclaration(rd))
	}
	for _, od := range root.All("outcomeDeclaration") {
		item.OutcomeDeclarations = append(item.OutcomeDeclarations, parseOutcomeDeclaration(od))
	}

	if body := root.First("itemBody"); body != nil {
		item.Body = parseItemBody(body)
	}

	if rp := root.First("responseProcessing"); rp != nil {
		proc, ws := parseResponseProcessing(rp)
		item.ResponseProcessing = proc
		warnings = append(warnings, ws...)
	}

	for _, mf := range root.All("modalFeedback") {
		item.ModalFeedback = append(item.ModalFeedback, model.ModalFeedback{
			Identifier:        mf.Attr("identifier"),
			OutcomeIdentifier: mf.Attr("outcomeIdentifier"),
			ShowHide:          parseShowHide(mf.Attr("showHide")),
			Content:           mf.InnerXML(),
		})
	}

	return item, warnings, nil
}

// normalizeV3Names rewrites QTI 3.0 kebab-case element and attribute
// names (qti-choice-interaction, response-identifier) to the 2.1
// camelCase grammar so one tree walk serves every version.
func normalizeV3Names(root *xmltree.Node) {
	root.Walk(func(n *xmltree.Node) {
		if strings.HasPrefix(n.Name, "qti-") {
			n.Name = kebabToCamel(strings.TrimPrefix(n.Name, "qti-"))
		}
		for k, v := range n.Attrs {
			if k == "xmlns" || !strings.Contains(k, "-") {
				continue
			}
			camel := kebabToCamel(k)
			if _, ok := n.Attrs[camel]; !ok {
				n.Attrs[camel] = v
			}
			delete(n.Attrs, k)
		}
	})
}

func kebabToCamel(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func parseResponseDeclaration(n *xmltree.Node) model.ResponseDeclaration {
	rd := model.ResponseDeclaration{
		Identifier:  n.Attr("identifier"),
		Cardinality: parseCardinality(n.Attr("cardinality")),
		BaseType:    model.BaseType(n.Attr("baseType")),
	}
	if cr := n.First("correctResponse"); cr != nil {
		for _, v := range cr.All("value") {
			rd.Correct = append(rd.Correct, v.TrimmedText())
		}
	}
	if mp := n.First("mapping"); mp != nil {
		rd.Mapping = parseMapping(mp)
	}
	return rd
}

func parseMapping(n *xmltree.Node) *model.Mapping {
	m := &model.Mapping{
		LowerBound:   attrFloatPtr(n, "lowerBound"),
		UpperBound:   attrFloatPtr(n, "upperBound"),
		DefaultValue: attrFloat(n, "defaultValue", 0),
	}
	for _, me := range n.All("mapEntry") {
		caseSensitive := true
		if me.HasAttr("caseSensitive") {
			caseSensitive = attrBool(me, "caseSensitive")
		}
		m.Entries = append(m.Entries, model.MapEntry{
			MapKey:        me.Attr("mapKey"),
			MappedValue:   attrFloat(me, "mappedValue", 0),
			CaseSensitive: caseSensitive,
		})
	}
	return m
}

func parseOutcomeDeclaration(n *xmltree.Node) model.OutcomeDeclaration {
	od := model.OutcomeDeclaration{
		Identifier:    n.Attr("identifier"),
		Cardinality:   parseCardinality(n.Attr("cardinality")),
		BaseType:      model.BaseType(n.Attr("baseType")),
		NormalMaximum: attrFloatPtr(n, "normalMaximum"),
		NormalMinimum: attrFloatPtr(n, "normalMinimum"),
	}
	if dv := n.First("defaultValue"); dv != nil {
		for _, v := range dv.All("value") {
			od.Default = append(od.Default, v.TrimmedText())
		}
	}
	return od
}

func parseItemBody(body *xmltree.Node) model.ItemBody {
	ib := model.ItemBody{RawXML: body.InnerXML()}
	body.Walk(func(n *xmltree.Node) {
		if in := parseInteraction(n); in != nil {
			ib.Interactions = append(ib.Interactions, in)
		}
	})
	return ib
}

func parseShowHide(s string) model.ShowHide {
	if s == string(model.Hide) {
		return model.Hide
	}
	return model.Show
}

func parseCardinality(s string) model.Cardinality {
	switch model.Cardinality(s) {
	case model.CardinalityMultiple, model.CardinalityOrdered, model.CardinalityRecord:
		return model.Cardinality(s)
	default:
		return model.CardinalitySingle
	}
}

/* ---- attribute helpers ---- */

func attrBool(n *xmltree.Node, name string) bool {
	switch strings.ToLower(n.Attr(name)) {
	case "true", "1":
		return true
	}
	return false
}

func attrInt(n *xmltree.Node, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(n.Attr(name)))
	if err != nil {
		return 0
	}
	return v
}

func attrFloat(n *xmltree.Node, name string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(n.Attr(name)), 64)
	if err != nil {
		return def
	}
	return v
}

func attrFloatPtr(n *xmltree.Node, name string) *float64 {
	if !n.HasAttr(name) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(n.Attr(name)), 64)
	if err != nil {
		return nil
	}
	return &v
}
