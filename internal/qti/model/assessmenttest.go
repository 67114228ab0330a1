package model

// AssessmentTest is a parsed test: an ordered arrangement of item
// references. Items themselves are parsed separately; the test only
// carries references.
type AssessmentTest struct {
	Identifier string     `json:"identifier"`
	Title      string     `json:"title,omitempty"`
	Version    Version    `json:"version"`
	TestParts  []TestPart `json:"test_parts,omitempty"`
}

type TestPart struct {
	Identifier     string              `json:"identifier"`
	NavigationMode string              `json:"navigation_mode,omitempty"` // linear|nonlinear
	SubmissionMode string              `json:"submission_mode,omitempty"` // individual|simultaneous
	Sections       []AssessmentSection `json:"sections,omitempty"`
}

type AssessmentSection struct {
	Identifier string              `json:"identifier"`
	Title      string              `json:"title,omitempty"`
	Visible    bool                `json:"visible"`
	ItemRefs   []AssessmentItemRef `json:"item_refs,omitempty"`
	Sections   []AssessmentSection `json:"sections,omitempty"`
}

// AssessmentItemRef points at an item by identifier and href.
type AssessmentItemRef struct {
	Identifier string `json:"identifier"`
	Href       string `json:"href,omitempty"`
	Required   bool   `json:"required,omitempty"`
	Fixed      bool   `json:"fixed,omitempty"`
}

// ItemRefs returns every item reference in the test in document order.
func (t *AssessmentTest) ItemRefs() []AssessmentItemRef {
	var out []AssessmentItemRef
	for _, tp := range t.TestParts {
		for _, s := range tp.Sections {
			out = append(out, sectionRefs(s)...)
		}
	}
	return out
}

func sectionRefs(s AssessmentSection) []AssessmentItemRef {
	out := append([]AssessmentItemRef(nil), s.ItemRefs...)
	for _, sub := range s.Sections {
		out = append(out, sectionRefs(sub)...)
	}
	return out
}
