package parser

import (
	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// parseInteraction dispatches one body element to its per-kind extractor.
// Returns nil for anything outside the closed 21-tag set: unknown tags are
// content, not interactions.
func parseInteraction(n *xmltree.Node) model.Interaction {
	core := model.InteractionCore{
		ResponseIdentifier: n.Attr("responseIdentifier"),
		Prompt:             n.First("prompt").InnerXML(),
	}
	switch model.InteractionKind(n.Name) {
	case model.KindChoice:
		return &model.ChoiceInteraction{
			InteractionCore: core,
			Shuffle:         attrBool(n, "shuffle"),
			MinChoices:      attrInt(n, "minChoices"),
			MaxChoices:      attrInt(n, "maxChoices"),
			Choices:         simpleChoices(n, "simpleChoice"),
		}
	case model.KindOrder:
		return &model.OrderInteraction{
			InteractionCore: core,
			Shuffle:         attrBool(n, "shuffle"),
			MinChoices:      attrInt(n, "minChoices"),
			MaxChoices:      attrInt(n, "maxChoices"),
			Choices:         simpleChoices(n, "simpleChoice"),
		}
	case model.KindAssociate:
		return &model.AssociateInteraction{
			InteractionCore: core,
			Shuffle:         attrBool(n, "shuffle"),
			MinAssociations: attrInt(n, "minAssociations"),
			MaxAssociations: attrInt(n, "maxAssociations"),
			Choices:         associableChoices(n.All("simpleAssociableChoice")),
		}
	case model.KindMatch:
		sets := n.All("simpleMatchSet")
		mi := &model.MatchInteraction{
			InteractionCore: core,
			Shuffle:         attrBool(n, "shuffle"),
			MinAssociations: attrInt(n, "minAssociations"),
			MaxAssociations: attrInt(n, "maxAssociations"),
		}
		if len(sets) > 0 {
			mi.Sources = associableChoices(sets[0].All("simpleAssociableChoice"))
		}
		if len(sets) > 1 {
			mi.Targets = associableChoices(sets[1].All("simpleAssociableChoice"))
		}
		return mi
	case model.KindGapMatch:
		gm := &model.GapMatchInteraction{
			InteractionCore: core,
			Shuffle:         attrBool(n, "shuffle"),
		}
		for _, gt := range n.All("gapText") {
			gm.GapTexts = append(gm.GapTexts, model.GapText{
				Identifier: gt.Attr("identifier"),
				MatchMax:   attrInt(gt, "matchMax"),
				Content:    gt.InnerXML(),
			})
		}
		n.Walk(func(c *xmltree.Node) {
			if c.Name == "gap" {
				gm.GapIDs = append(gm.GapIDs, c.Attr("identifier"))
			}
		})
		return gm
	case model.KindInlineChoice:
		return &model.InlineChoiceInteraction{
			InteractionCore: core,
			Shuffle:         attrBool(n, "shuffle"),
			Required:        attrBool(n, "required"),
			Choices:         simpleChoices(n, "inlineChoice"),
		}
	case model.KindTextEntry:
		return &model.TextEntryInteraction{
			InteractionCore: core,
			ExpectedLength:  attrInt(n, "expectedLength"),
			PatternMask:     n.Attr("patternMask"),
			PlaceholderText: n.Attr("placeholderText"),
		}
	case model.KindExtendedText:
		return &model.ExtendedTextInteraction{
			InteractionCore: core,
			ExpectedLength:  attrInt(n, "expectedLength"),
			ExpectedLines:   attrInt(n, "expectedLines"),
			MinStrings:      attrInt(n, "minStrings"),
			MaxStrings:      attrInt(n, "maxStrings"),
			Format:          n.Attr("format"),
		}
	case model.KindHottext:
		hi := &model.HottextInteraction{
			InteractionCore: core,
			MinChoices:      attrInt(n, "minChoices"),
			MaxChoices:      attrInt(n, "maxChoices"),
		}
		n.Walk(func(c *xmltree.Node) {
			if c.Name == "hottext" {
				hi.Hottexts = append(hi.Hottexts, model.SimpleChoice{
					Identifier: c.Attr("identifier"),
					Content:    c.InnerXML(),
				})
			}
		})
		return hi
	case model.KindHotspot:
		return &model.HotspotInteraction{
			InteractionCore: core,
			MinChoices:      attrInt(n, "minChoices"),
			MaxChoices:      attrInt(n, "maxChoices"),
			Hotspots:        hotspotChoices(n),
		}
	case model.KindSelectPoint:
		return &model.SelectPointInteraction{
			InteractionCore: core,
			MinChoices:      attrInt(n, "minChoices"),
			MaxChoices:      attrInt(n, "maxChoices"),
		}
	case model.KindGraphicOrder:
		return &model.GraphicOrderInteraction{
			InteractionCore: core,
			Hotspots:        hotspotChoices(n),
		}
	case model.KindGraphicAssociate:
		return &model.GraphicAssociateInteraction{
			InteractionCore: core,
			MaxAssociations: attrInt(n, "maxAssociations"),
			Hotspots:        hotspotChoices(n),
		}
	case model.KindGraphicGapMatch:
		gg := &model.GraphicGapMatchInteraction{InteractionCore: core}
		for _, gi := range n.All("gapImg") {
			src := ""
			if obj := gi.First("object"); obj != nil {
				src = obj.Attr("data")
			}
			gg.GapImgs = append(gg.GapImgs, model.GapImg{
				Identifier: gi.Attr("identifier"),
				MatchMax:   attrInt(gi, "matchMax"),
				Src:        src,
			})
		}
		gg.Hotspots = hotspotChoices(n)
		return gg
	case model.KindPositionObject:
		return &model.PositionObjectInteraction{
			InteractionCore: core,
			MinChoices:      attrInt(n, "minChoices"),
			MaxChoices:      attrInt(n, "maxChoices"),
			CenterPoint:     n.Attr("centerPoint"),
		}
	case model.KindSlider:
		return &model.SliderInteraction{
			InteractionCore: core,
			LowerBound:      attrFloat(n, "lowerBound", 0),
			UpperBound:      attrFloat(n, "upperBound", 0),
			Step:            attrFloat(n, "step", 0),
			StepLabel:       attrBool(n, "stepLabel"),
			Orientation:     n.Attr("orientation"),
			Reverse:         attrBool(n, "reverse"),
		}
	case model.KindMedia:
		return &model.MediaInteraction{
			InteractionCore: core,
			Autostart:       attrBool(n, "autostart"),
			Loop:            attrBool(n, "loop"),
			MinPlays:        attrInt(n, "minPlays"),
			MaxPlays:        attrInt(n, "maxPlays"),
		}
	case model.KindDrawing:
		return &model.DrawingInteraction{InteractionCore: core}
	case model.KindUpload:
		return &model.UploadInteraction{
			InteractionCore: core,
			Type:            n.Attr("type"),
		}
	case model.KindCustom:
		return &model.CustomInteraction{
			InteractionCore: core,
			Raw:             n,
		}
	case model.KindEndAttempt:
		return &model.EndAttemptInteraction{
			InteractionCore: core,
			Title:           n.Attr("title"),
		}
	default:
		return nil
	}
}

func simpleChoices(n *xmltree.Node, tag string) []model.SimpleChoice {
	var out []model.SimpleChoice
	for _, c := range n.All(tag) {
		out = append(out, model.SimpleChoice{
			Identifier: c.Attr("identifier"),
			Fixed:      attrBool(c, "fixed"),
			Content:    c.InnerXML(),
		})
	}
	return out
}

func associableChoices(nodes []*xmltree.Node) []model.AssociableChoice {
	var out []model.AssociableChoice
	for _, c := range nodes {
		out = append(out, model.AssociableChoice{
			Identifier: c.Attr("identifier"),
			MatchMax:   attrInt(c, "matchMax"),
			Content:    c.InnerXML(),
		})
	}
	return out
}

func hotspotChoices(n *xmltree.Node) []model.HotspotChoice {
	var out []model.HotspotChoice
	for _, c := range n.All("hotspotChoice") {
		out = append(out, model.HotspotChoice{
			Identifier: c.Attr("identifier"),
			Shape:      c.Attr("shape"),
			Coords:     c.Attr("coords"),
		})
	}
	return out
}
