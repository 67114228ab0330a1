package parser

import (
	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// ParseTest parses a single assessmentTest document.
func ParseTest(xmlBytes []byte) (*model.AssessmentTest, []string, error) {
	root, err := xmltree.Parse(xmlBytes)
	if err != nil {
		return nil, nil, parseFailure(errMalformedXML + ": " + err.Error())
	}
	normalizeV3Names(root)
	if root.Name != "assessmentTest" {
		return nil, nil, parseFailure(errMissingRootElement + ": want assessmentTest, got " + root.Name)
	}

	version, warnings := detectVersion(root)
	test := &model.AssessmentTest{
		Identifier: root.Attr("identifier"),
		Title:      root.Attr("title"),
		Version:    version,
	}

	for _, tp := range root.All("testPart") {
		part := model.TestPart{
			Identifier:     tp.Attr("identifier"),
			NavigationMode: tp.Attr("navigationMode"),
			SubmissionMode: tp.Attr("submissionMode"),
		}
		for _, s := range tp.All("assessmentSection") {
			part.Sections = append(part.Sections, parseSection(s))
		}
		test.TestParts = append(test.TestParts, part)
	}
	return test, warnings, nil
}

func parseSection(n *xmltree.Node) model.AssessmentSection {
	sec := model.AssessmentSection{
		Identifier: n.Attr("identifier"),
		Title:      n.Attr("title"),
		Visible:    !n.HasAttr("visible") || attrBool(n, "visible"),
	}
	for _, ref := range n.All("assessmentItemRef") {
		sec.ItemRefs = append(sec.ItemRefs, model.AssessmentItemRef{
			Identifier: ref.Attr("identifier"),
			Href:       ref.Attr("href"),
			Required:   attrBool(ref, "required"),
			Fixed:      attrBool(ref, "fixed"),
		})
	}
	for _, sub := range n.All("assessmentSection") {
		sec.Sections = append(sec.Sections, parseSection(sub))
	}
	return sec
}
