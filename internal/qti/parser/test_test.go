package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/artpromedia/aivo-qti/internal/qti/parser"
)

func TestParseTest(t *testing.T) {
	xml := `<assessmentTest xmlns="http://www.imsglobal.org/xsd/imsqti_v2p1" identifier="t1" title="Quiz">
  <testPart identifier="p1" navigationMode="nonlinear" submissionMode="simultaneous">
    <assessmentSection identifier="s1" title="Outer">
      <assessmentItemRef identifier="q1" href="q1.xml" fixed="true"/>
      <assessmentSection identifier="s2" title="Inner" visible="false">
        <assessmentItemRef identifier="q2" href="q2.xml"/>
      </assessmentSection>
    </assessmentSection>
  </testPart>
</assessmentTest>`

	test, warnings, err := parser.ParseTest([]byte(xml))
	if err != nil {
		t.Fatalf("ParseTest: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if test.Identifier != "t1" || test.Title != "Quiz" {
		t.Errorf("header = %q / %q", test.Identifier, test.Title)
	}
	if len(test.TestParts) != 1 {
		t.Fatalf("TestParts = %d", len(test.TestParts))
	}
	part := test.TestParts[0]
	if part.NavigationMode != "nonlinear" || part.SubmissionMode != "simultaneous" {
		t.Errorf("part modes = %q / %q", part.NavigationMode, part.SubmissionMode)
	}

	outer := part.Sections[0]
	if !outer.Visible {
		t.Error("visible should default to true")
	}
	if len(outer.Sections) != 1 || outer.Sections[0].Visible {
		t.Error("explicit visible=\"false\" should stick on the nested section")
	}
	if !outer.ItemRefs[0].Fixed {
		t.Error("fixed attribute lost")
	}

	var ids []string
	for _, r := range test.ItemRefs() {
		ids = append(ids, r.Identifier)
	}
	if diff := cmp.Diff([]string{"q1", "q2"}, ids); diff != "" {
		t.Errorf("flattened refs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTestWrongRoot(t *testing.T) {
	if _, _, err := parser.ParseTest([]byte(`<assessmentItem identifier="x"/>`)); err == nil {
		t.Fatal("ParseTest accepted an item document")
	}
}
