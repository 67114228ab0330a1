package export_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/artpromedia/aivo-qti/internal/qti/export"
	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/parser"
)

func up(f float64) *float64 { return &f }

func sampleItem() *model.AssessmentItem {
	return &model.AssessmentItem{
		Identifier: "exported-1",
		Title:      "Round Trip",
		Version:    model.QTI21,
		ResponseDeclarations: []model.ResponseDeclaration{
			{
				Identifier:  "RESPONSE",
				Cardinality: model.CardinalityMultiple,
				BaseType:    model.BaseTypeIdentifier,
				Correct:     []string{"a", "b"},
				Mapping: &model.Mapping{
					UpperBound: up(1),
					Entries: []model.MapEntry{
						{MapKey: "a", MappedValue: 1, CaseSensitive: true},
						{MapKey: "b", MappedValue: 0.5, CaseSensitive: false},
					},
				},
			},
		},
		OutcomeDeclarations: []model.OutcomeDeclaration{
			{
				Identifier:    model.ScoreIdentifier,
				Cardinality:   model.CardinalitySingle,
				BaseType:      model.BaseTypeFloat,
				NormalMaximum: up(1),
				Default:       []string{"0"},
			},
		},
		Body: model.ItemBody{
			RawXML: `<choiceInteraction responseIdentifier="RESPONSE" maxChoices="2"><simpleChoice identifier="a">A</simpleChoice><simpleChoice identifier="b">B</simpleChoice></choiceInteraction>`,
		},
		ResponseProcessing: &model.ResponseProcessing{Template: model.TemplateMapResponse},
		ModalFeedback: []model.ModalFeedback{
			{Identifier: "correct", OutcomeIdentifier: "FEEDBACK", ShowHide: model.Show, Content: "Nice."},
		},
	}
}

func TestBuildItemXMLReparses(t *testing.T) {
	orig := sampleItem()
	xml := export.BuildItemXML(orig)

	got, warnings, err := parser.ParseItem([]byte(xml))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	if got.Identifier != orig.Identifier || got.Title != orig.Title {
		t.Errorf("header = %q / %q", got.Identifier, got.Title)
	}
	if diff := cmp.Diff(orig.ResponseDeclarations, got.ResponseDeclarations); diff != "" {
		t.Errorf("response declarations diverged (-orig +reparsed):\n%s", diff)
	}
	if diff := cmp.Diff(orig.OutcomeDeclarations, got.OutcomeDeclarations); diff != "" {
		t.Errorf("outcome declarations diverged (-orig +reparsed):\n%s", diff)
	}
	if got.ResponseProcessing.Template != model.TemplateMapResponse {
		t.Errorf("Template = %q", got.ResponseProcessing.Template)
	}
	if len(got.Body.Interactions) != 1 || got.Body.Interactions[0].Kind() != model.KindChoice {
		t.Errorf("body interactions = %+v", got.Body.Interactions)
	}
	if len(got.ModalFeedback) != 1 || got.ModalFeedback[0].Identifier != "correct" {
		t.Errorf("modal feedback = %+v", got.ModalFeedback)
	}
}

func TestBuildItemXMLEscapesValues(t *testing.T) {
	item := &model.AssessmentItem{
		Identifier: "esc-1",
		ResponseDeclarations: []model.ResponseDeclaration{
			{
				Identifier:  "RESPONSE",
				Cardinality: model.CardinalitySingle,
				BaseType:    model.BaseTypeString,
				Correct:     []string{"a < b & c"},
			},
		},
	}
	xml := export.BuildItemXML(item)
	if !strings.Contains(xml, "a &lt; b &amp; c") {
		t.Errorf("correct value not escaped:\n%s", xml)
	}
	got, _, err := parser.ParseItem([]byte(xml))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if got.ResponseDeclarations[0].Correct[0] != "a < b & c" {
		t.Errorf("Correct = %q", got.ResponseDeclarations[0].Correct[0])
	}
}

func TestBuildItemXMLKeepsRules(t *testing.T) {
	// explicit rules and no template: the scoring logic must survive the
	// round trip, uninterpreted rules included
	src := `<assessmentItem identifier="ruled-1">
  <responseDeclaration identifier="RESPONSE" cardinality="single" baseType="identifier">
    <correctResponse><value>a</value></correctResponse>
  </responseDeclaration>
  <itemBody><choiceInteraction responseIdentifier="RESPONSE"/></itemBody>
  <responseProcessing>
    <responseCondition>
      <responseIf>
        <match><variable identifier="RESPONSE"/><correct identifier="RESPONSE"/></match>
        <setOutcomeValue identifier="SCORE"><baseValue baseType="float">1</baseValue></setOutcomeValue>
      </responseIf>
      <responseElse>
        <setOutcomeValue identifier="SCORE"><baseValue baseType="float">0</baseValue></setOutcomeValue>
      </responseElse>
    </responseCondition>
    <lookupOutcomeValue identifier="GRADE"/>
  </responseProcessing>
</assessmentItem>`

	orig, _, err := parser.ParseItem([]byte(src))
	if err != nil {
		t.Fatalf("parse source: %v", err)
	}

	xml := export.BuildItemXML(orig)
	got, _, err := parser.ParseItem([]byte(xml))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if got.ResponseProcessing == nil {
		t.Fatal("response processing dropped on export")
	}
	if diff := cmp.Diff(orig.ResponseProcessing.Rules, got.ResponseProcessing.Rules); diff != "" {
		t.Errorf("rules diverged (-orig +reparsed):\n%s", diff)
	}
}

func TestBuildItemXMLTemplateWithRules(t *testing.T) {
	item := sampleItem()
	item.ResponseProcessing.Rules = model.Rules{
		&model.SetOutcomeValue{
			Identifier: "FEEDBACK",
			Value:      &model.BaseValue{BaseType: model.BaseTypeIdentifier, Value: "seen"},
		},
	}

	got, _, err := parser.ParseItem([]byte(export.BuildItemXML(item)))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if got.ResponseProcessing.Template != model.TemplateMapResponse {
		t.Errorf("Template = %q", got.ResponseProcessing.Template)
	}
	if diff := cmp.Diff(item.ResponseProcessing.Rules, got.ResponseProcessing.Rules); diff != "" {
		t.Errorf("rules diverged (-orig +reparsed):\n%s", diff)
	}
}

func TestBuildPackageRoundTrip(t *testing.T) {
	items := map[string]*model.AssessmentItem{
		"res-1": sampleItem(),
	}
	zipBytes, err := export.BuildPackage(items)
	if err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}

	pkg, err := parser.ParsePackage(zipBytes)
	if err != nil {
		t.Fatalf("ParsePackage: %v", err)
	}
	if len(pkg.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", pkg.Warnings)
	}
	item, ok := pkg.Items["res-1"]
	if !ok {
		t.Fatal("exported item not registered under its resource identifier")
	}
	if item.Identifier != "exported-1" {
		t.Errorf("item identifier = %q", item.Identifier)
	}
	if len(pkg.Resources) != 1 || pkg.Resources[0].Type != "imsqti_item_xmlv2p1" {
		t.Errorf("resources = %+v", pkg.Resources)
	}
}
