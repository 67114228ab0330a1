package model

import (
	"encoding/json"
	"fmt"

	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// InteractionKind names one of the 21 interaction element tags of QTI 2.x.
// This set is closed: tags outside it are never treated as interactions.
type InteractionKind string

const (
	KindChoice           InteractionKind = "choiceInteraction"
	KindOrder            InteractionKind = "orderInteraction"
	KindAssociate        InteractionKind = "associateInteraction"
	KindMatch            InteractionKind = "matchInteraction"
	KindGapMatch         InteractionKind = "gapMatchInteraction"
	KindInlineChoice     InteractionKind = "inlineChoiceInteraction"
	KindTextEntry        InteractionKind = "textEntryInteraction"
	KindExtendedText     InteractionKind = "extendedTextInteraction"
	KindHottext          InteractionKind = "hottextInteraction"
	KindHotspot          InteractionKind = "hotspotInteraction"
	KindSelectPoint      InteractionKind = "selectPointInteraction"
	KindGraphicOrder     InteractionKind = "graphicOrderInteraction"
	KindGraphicAssociate InteractionKind = "graphicAssociateInteraction"
	KindGraphicGapMatch  InteractionKind = "graphicGapMatchInteraction"
	KindPositionObject   InteractionKind = "positionObjectInteraction"
	KindSlider           InteractionKind = "sliderInteraction"
	KindMedia            InteractionKind = "mediaInteraction"
	KindDrawing          InteractionKind = "drawingInteraction"
	KindUpload           InteractionKind = "uploadInteraction"
	KindCustom           InteractionKind = "customInteraction"
	KindEndAttempt       InteractionKind = "endAttemptInteraction"
)

// AllKinds lists every interaction tag the parser recognizes.
var AllKinds = []InteractionKind{
	KindChoice, KindOrder, KindAssociate, KindMatch, KindGapMatch,
	KindInlineChoice, KindTextEntry, KindExtendedText, KindHottext,
	KindHotspot, KindSelectPoint, KindGraphicOrder, KindGraphicAssociate,
	KindGraphicGapMatch, KindPositionObject, KindSlider, KindMedia,
	KindDrawing, KindUpload, KindCustom, KindEndAttempt,
}

// Interaction is a closed sum over the 21 interaction kinds. Each variant
// carries only the fields valid for its kind; fields a kind doesn't have
// simply don't exist on its struct.
type Interaction interface {
	Kind() InteractionKind
	ResponseID() string
	sealed()
}

// InteractionCore holds the fields every interaction shares.
type InteractionCore struct {
	ResponseIdentifier string `json:"response_identifier"`
	Prompt             string `json:"prompt,omitempty"`
}

func (c InteractionCore) ResponseID() string { return c.ResponseIdentifier }
func (InteractionCore) sealed()              {}

// SimpleChoice is one option of a choice-like interaction.
type SimpleChoice struct {
	Identifier string `json:"identifier"`
	Fixed      bool   `json:"fixed,omitempty"`
	Content    string `json:"content,omitempty"`
}

// AssociableChoice is a choice that can be paired with others.
type AssociableChoice struct {
	Identifier string `json:"identifier"`
	MatchMax   int    `json:"match_max,omitempty"`
	Content    string `json:"content,omitempty"`
}

// GapText is a draggable text filler for gapMatch.
type GapText struct {
	Identifier string `json:"identifier"`
	MatchMax   int    `json:"match_max,omitempty"`
	Content    string `json:"content,omitempty"`
}

// GapImg is a draggable image filler for graphicGapMatch.
type GapImg struct {
	Identifier string `json:"identifier"`
	MatchMax   int    `json:"match_max,omitempty"`
	Src        string `json:"src,omitempty"`
}

// HotspotChoice is a clickable region on a graphic.
type HotspotChoice struct {
	Identifier string `json:"identifier"`
	Shape      string `json:"shape,omitempty"`
	Coords     string `json:"coords,omitempty"`
}

type ChoiceInteraction struct {
	InteractionCore
	Shuffle    bool           `json:"shuffle,omitempty"`
	MinChoices int            `json:"min_choices,omitempty"`
	MaxChoices int            `json:"max_choices,omitempty"`
	Choices    []SimpleChoice `json:"choices,omitempty"`
}

type OrderInteraction struct {
	InteractionCore
	Shuffle    bool           `json:"shuffle,omitempty"`
	MinChoices int            `json:"min_choices,omitempty"`
	MaxChoices int            `json:"max_choices,omitempty"`
	Choices    []SimpleChoice `json:"choices,omitempty"`
}

type AssociateInteraction struct {
	InteractionCore
	Shuffle         bool               `json:"shuffle,omitempty"`
	MinAssociations int                `json:"min_associations,omitempty"`
	MaxAssociations int                `json:"max_associations,omitempty"`
	Choices         []AssociableChoice `json:"choices,omitempty"`
}

type MatchInteraction struct {
	InteractionCore
	Shuffle         bool               `json:"shuffle,omitempty"`
	MinAssociations int                `json:"min_associations,omitempty"`
	MaxAssociations int                `json:"max_associations,omitempty"`
	Sources         []AssociableChoice `json:"sources,omitempty"`
	Targets         []AssociableChoice `json:"targets,omitempty"`
}

type GapMatchInteraction struct {
	InteractionCore
	Shuffle  bool      `json:"shuffle,omitempty"`
	GapTexts []GapText `json:"gap_texts,omitempty"`
	GapIDs   []string  `json:"gap_ids,omitempty"`
}

type InlineChoiceInteraction struct {
	InteractionCore
	Shuffle  bool           `json:"shuffle,omitempty"`
	Required bool           `json:"required,omitempty"`
	Choices  []SimpleChoice `json:"choices,omitempty"`
}

type TextEntryInteraction struct {
	InteractionCore
	ExpectedLength  int    `json:"expected_length,omitempty"`
	PatternMask     string `json:"pattern_mask,omitempty"`
	PlaceholderText string `json:"placeholder_text,omitempty"`
}

type ExtendedTextInteraction struct {
	InteractionCore
	ExpectedLength int    `json:"expected_length,omitempty"`
	ExpectedLines  int    `json:"expected_lines,omitempty"`
	MinStrings     int    `json:"min_strings,omitempty"`
	MaxStrings     int    `json:"max_strings,omitempty"`
	Format         string `json:"format,omitempty"`
}

type HottextInteraction struct {
	InteractionCore
	MinChoices int            `json:"min_choices,omitempty"`
	MaxChoices int            `json:"max_choices,omitempty"`
	Hottexts   []SimpleChoice `json:"hottexts,omitempty"`
}

type HotspotInteraction struct {
	InteractionCore
	MinChoices int             `json:"min_choices,omitempty"`
	MaxChoices int             `json:"max_choices,omitempty"`
	Hotspots   []HotspotChoice `json:"hotspots,omitempty"`
}

type SelectPointInteraction struct {
	InteractionCore
	MinChoices int `json:"min_choices,omitempty"`
	MaxChoices int `json:"max_choices,omitempty"`
}

type GraphicOrderInteraction struct {
	InteractionCore
	Hotspots []HotspotChoice `json:"hotspots,omitempty"`
}

type GraphicAssociateInteraction struct {
	InteractionCore
	MaxAssociations int             `json:"max_associations,omitempty"`
	Hotspots        []HotspotChoice `json:"hotspots,omitempty"`
}

type GraphicGapMatchInteraction struct {
	InteractionCore
	GapImgs  []GapImg        `json:"gap_imgs,omitempty"`
	Hotspots []HotspotChoice `json:"hotspots,omitempty"`
}

type PositionObjectInteraction struct {
	InteractionCore
	MinChoices  int    `json:"min_choices,omitempty"`
	MaxChoices  int    `json:"max_choices,omitempty"`
	CenterPoint string `json:"center_point,omitempty"`
}

type SliderInteraction struct {
	InteractionCore
	LowerBound  float64 `json:"lower_bound"`
	UpperBound  float64 `json:"upper_bound"`
	Step        float64 `json:"step,omitempty"`
	StepLabel   bool    `json:"step_label,omitempty"`
	Orientation string  `json:"orientation,omitempty"`
	Reverse     bool    `json:"reverse,omitempty"`
}

type MediaInteraction struct {
	InteractionCore
	Autostart bool `json:"autostart,omitempty"`
	Loop      bool `json:"loop,omitempty"`
	MinPlays  int  `json:"min_plays,omitempty"`
	MaxPlays  int  `json:"max_plays,omitempty"`
}

type DrawingInteraction struct {
	InteractionCore
}

type UploadInteraction struct {
	InteractionCore
	Type string `json:"type,omitempty"` // accepted mime type
}

// CustomInteraction keeps the raw node: its semantics are tool-defined and
// never evaluated here.
type CustomInteraction struct {
	InteractionCore
	Raw *xmltree.Node `json:"raw,omitempty"`
}

type EndAttemptInteraction struct {
	InteractionCore
	Title string `json:"title,omitempty"`
}

func (*ChoiceInteraction) Kind() InteractionKind           { return KindChoice }
func (*OrderInteraction) Kind() InteractionKind            { return KindOrder }
func (*AssociateInteraction) Kind() InteractionKind        { return KindAssociate }
func (*MatchInteraction) Kind() InteractionKind            { return KindMatch }
func (*GapMatchInteraction) Kind() InteractionKind         { return KindGapMatch }
func (*InlineChoiceInteraction) Kind() InteractionKind     { return KindInlineChoice }
func (*TextEntryInteraction) Kind() InteractionKind        { return KindTextEntry }
func (*ExtendedTextInteraction) Kind() InteractionKind     { return KindExtendedText }
func (*HottextInteraction) Kind() InteractionKind          { return KindHottext }
func (*HotspotInteraction) Kind() InteractionKind          { return KindHotspot }
func (*SelectPointInteraction) Kind() InteractionKind      { return KindSelectPoint }
func (*GraphicOrderInteraction) Kind() InteractionKind     { return KindGraphicOrder }
func (*GraphicAssociateInteraction) Kind() InteractionKind { return KindGraphicAssociate }
func (*GraphicGapMatchInteraction) Kind() InteractionKind  { return KindGraphicGapMatch }
func (*PositionObjectInteraction) Kind() InteractionKind   { return KindPositionObject }
func (*SliderInteraction) Kind() InteractionKind           { return KindSlider }
func (*MediaInteraction) Kind() InteractionKind            { return KindMedia }
func (*DrawingInteraction) Kind() InteractionKind          { return KindDrawing }
func (*UploadInteraction) Kind() InteractionKind           { return KindUpload }
func (*CustomInteraction) Kind() InteractionKind           { return KindCustom }
func (*EndAttemptInteraction) Kind() InteractionKind       { return KindEndAttempt }

// Interactions is an ordered interaction list with stable JSON round-trip:
// each element is wrapped in a {kind, data} envelope so the concrete
// variant survives persistence.
type Interactions []Interaction

type interactionEnvelope struct {
	Kind InteractionKind `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (xs Interactions) MarshalJSON() ([]byte, error) {
	env := make([]interactionEnvelope, 0, len(xs))
	for _, in := range xs {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		env = append(env, interactionEnvelope{Kind: in.Kind(), Data: data})
	}
	return json.Marshal(env)
}

func (xs *Interactions) UnmarshalJSON(b []byte) error {
	var env []interactionEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	out := make(Interactions, 0, len(env))
	for _, e := range env {
		in, err := newInteraction(e.Kind)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(e.Data, in); err != nil {
			return err
		}
		out = append(out, in)
	}
	*xs = out
	return nil
}

func newInteraction(kind InteractionKind) (Interaction, error) {
	switch kind {
	case KindChoice:
		return &ChoiceInteraction{}, nil
	case KindOrder:
		return &OrderInteraction{}, nil
	case KindAssociate:
		return &AssociateInteraction{}, nil
	case KindMatch:
		return &MatchInteraction{}, nil
	case KindGapMatch:
		return &GapMatchInteraction{}, nil
	case KindInlineChoice:
		return &InlineChoiceInteraction{}, nil
	case KindTextEntry:
		return &TextEntryInteraction{}, nil
	case KindExtendedText:
		return &ExtendedTextInteraction{}, nil
	case KindHottext:
		return &HottextInteraction{}, nil
	case KindHotspot:
		return &HotspotInteraction{}, nil
	case KindSelectPoint:
		return &SelectPointInteraction{}, nil
	case KindGraphicOrder:
		return &GraphicOrderInteraction{}, nil
	case KindGraphicAssociate:
		return &GraphicAssociateInteraction{}, nil
	case KindGraphicGapMatch:
		return &GraphicGapMatchInteraction{}, nil
	case KindPositionObject:
		return &PositionObjectInteraction{}, nil
	case KindSlider:
		return &SliderInteraction{}, nil
	case KindMedia:
		return &MediaInteraction{}, nil
	case KindDrawing:
		return &DrawingInteraction{}, nil
	case KindUpload:
		return &UploadInteraction{}, nil
	case KindCustom:
		return &CustomInteraction{}, nil
	case KindEndAttempt:
		return &EndAttemptInteraction{}, nil
	default:
		return nil, fmt.Errorf("unknown interaction kind %q", kind)
	}
}
