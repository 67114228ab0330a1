// Package model holds the typed QTI data model shared by the parser and
// the response processor. Values are plain data: the parser builds them
// once per document and nothing mutates them afterwards.
package model

// Version is the detected QTI specification version of a document.
type Version string

const (
	QTI21 Version = "QTI_2.1"
	QTI22 Version = "QTI_2.2"
	QTI30 Version = "QTI_3.0"
)

// Cardinality of a response or outcome variable.
type Cardinality string

const (
	CardinalitySingle   Cardinality = "single"
	CardinalityMultiple Cardinality = "multiple"
	CardinalityOrdered  Cardinality = "ordered"
	CardinalityRecord   Cardinality = "record"
)

// BaseType of a response or outcome variable.
type BaseType string

const (
	BaseTypeBoolean      BaseType = "boolean"
	BaseTypeInteger      BaseType = "integer"
	BaseTypeFloat        BaseType = "float"
	BaseTypeString       BaseType = "string"
	BaseTypeIdentifier   BaseType = "identifier"
	BaseTypePair         BaseType = "pair"
	BaseTypeDirectedPair BaseType = "directedPair"
	BaseTypePoint        BaseType = "point"
	BaseTypeDuration     BaseType = "duration"
	BaseTypeURI          BaseType = "uri"
	BaseTypeFile         BaseType = "file"
)

// AssessmentItem is a single parsed question.
type AssessmentItem struct {
	Identifier    string  `json:"identifier"`
	Title         string  `json:"title,omitempty"`
	Adaptive      bool    `json:"adaptive,omitempty"`
	TimeDependent bool    `json:"time_dependent,omitempty"`
	Language      string  `json:"language,omitempty"`
	Version       Version `json:"version"`

	ResponseDeclarations []ResponseDeclaration `json:"response_declarations,omitempty"`
	OutcomeDeclarations  []OutcomeDeclaration  `json:"outcome_declarations,omitempty"`
	Body                 ItemBody              `json:"body"`
	ResponseProcessing   *ResponseProcessing   `json:"response_processing,omitempty"`
	ModalFeedback        []ModalFeedback       `json:"modal_feedback,omitempty"`
}

// ResponseDeclaration identifies one learner-answerable slot. If Mapping is
// set, Correct may be empty: the mapping alone determines scoring.
type ResponseDeclaration struct {
	Identifier  string      `json:"identifier"`
	Cardinality Cardinality `json:"cardinality"`
	BaseType    BaseType    `json:"base_type,omitempty"`
	Correct     []string    `json:"correct,omitempty"`
	Mapping     *Mapping    `json:"mapping,omitempty"`
}

// Mapping is a partial-credit lookup table. The max achievable score from a
// mapping is the sum of its positive entries, clamped to UpperBound if set.
type Mapping struct {
	LowerBound   *float64   `json:"lower_bound,omitempty"`
	UpperBound   *float64   `json:"upper_bound,omitempty"`
	DefaultValue float64    `json:"default_value,omitempty"`
	Entries      []MapEntry `json:"entries,omitempty"`
}

// MapEntry maps one submitted value to a score contribution.
type MapEntry struct {
	MapKey        string  `json:"map_key"`
	MappedValue   float64 `json:"mapped_value"`
	CaseSensitive bool    `json:"case_sensitive"`
}

// MaxPoints returns the sum of positive entries, clamped to UpperBound.
func (m *Mapping) MaxPoints() float64 {
	if m == nil {
		return 0
	}
	sum := 0.0
	for _, e := range m.Entries {
		if e.MappedValue > 0 {
			sum += e.MappedValue
		}
	}
	if m.UpperBound != nil && sum > *m.UpperBound {
		sum = *m.UpperBound
	}
	return sum
}

// OutcomeDeclaration is a named scoring variable. The identifier SCORE is
// reserved: when present with NormalMaximum, that value is the
// authoritative max score for the item.
type OutcomeDeclaration struct {
	Identifier    string      `json:"identifier"`
	Cardinality   Cardinality `json:"cardinality,omitempty"`
	BaseType      BaseType    `json:"base_type,omitempty"`
	NormalMaximum *float64    `json:"normal_maximum,omitempty"`
	NormalMinimum *float64    `json:"normal_minimum,omitempty"`
	Default       []string    `json:"default,omitempty"`
}

// ScoreIdentifier is the reserved outcome identifier for the item score.
const ScoreIdentifier = "SCORE"

// ItemBody is the renderable content of an item: the raw inner XML for the
// display layer plus the interactions in document (display) order.
type ItemBody struct {
	RawXML       string       `json:"raw_xml,omitempty"`
	Interactions Interactions `json:"interactions,omitempty"`
}

// ShowHide controls modal feedback visibility.
type ShowHide string

const (
	Show ShowHide = "show"
	Hide ShowHide = "hide"
)

// ModalFeedback is post-scoring feedback resolved by the processor and
// rendered elsewhere.
type ModalFeedback struct {
	Identifier        string   `json:"identifier"`
	OutcomeIdentifier string   `json:"outcome_identifier"`
	ShowHide          ShowHide `json:"show_hide"`
	Content           string   `json:"content,omitempty"`
}

// ResponseDeclaration lookup by identifier; nil if absent.
func (it *AssessmentItem) ResponseDeclaration(identifier string) *ResponseDeclaration {
	for i := range it.ResponseDeclarations {
		if it.ResponseDeclarations[i].Identifier == identifier {
			return &it.ResponseDeclarations[i]
		}
	}
	return nil
}

// OutcomeDeclaration lookup by identifier; nil if absent.
func (it *AssessmentItem) OutcomeDeclaration(identifier string) *OutcomeDeclaration {
	for i := range it.OutcomeDeclarations {
		if it.OutcomeDeclarations[i].Identifier == identifier {
			return &it.OutcomeDeclarations[i]
		}
	}
	return nil
}
