// Package export rebuilds QTI 2.1 content packages from parsed items so
// the authoring flow can round-trip imported content.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
)

// BuildPackage writes a zip with an imsmanifest.xml plus one item file
// per entry, keyed by the registration identifier.
func BuildPackage(items map[string]*model.AssessmentItem) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	mf := imsManifest{Identifier: "MANIFEST-1"}
	for _, id := range ids {
		itemName := fmt.Sprintf("%s.xml", id)
		mf.Resources = append(mf.Resources, imsResource{
			Identifier: id,
			Type:       "imsqti_item_xmlv2p1",
			Href:       itemName,
			Files:      []imsFile{{Href: itemName}},
		})
		w, err := zw.Create(itemName)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(BuildItemXML(items[id]))); err != nil {
			return nil, err
		}
	}

	mfw, err := zw.Create("imsmanifest.xml")
	if err != nil {
		return nil, err
	}
	b, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return nil, err
	}
	if _, err := mfw.Write([]byte(xml.Header)); err != nil {
		return nil, err
	}
	if _, err := mfw.Write(b); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type imsManifest struct {
	XMLName    xml.Name      `xml:"manifest"`
	Identifier string        `xml:"identifier,attr"`
	Resources  []imsResource `xml:"resources>resource"`
}
type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}
type imsFile struct {
	Href string `xml:"href,attr"`
}

// BuildItemXML renders one assessmentItem document. Declarations are
// regenerated from the model; the body is the preserved raw content.
func BuildItemXML(item *model.AssessmentItem) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<assessmentItem xmlns="http://www.imsglobal.org/xsd/imsqti_v2p1" identifier=%q title=%q adaptive=%q timeDependent=%q>`,
		item.Identifier, item.Title, strconv.FormatBool(item.Adaptive), strconv.FormatBool(item.TimeDependent))
	sb.WriteString("\n")

	for _, rd := range item.ResponseDeclarations {
		fmt.Fprintf(&sb, `  <responseDeclaration identifier=%q cardinality=%q baseType=%q>`+"\n",
			rd.Identifier, rd.Cardinality, rd.BaseType)
		if len(rd.Correct) > 0 {
			sb.WriteString("    <correctResponse>\n")
			for _, v := range rd.Correct {
				fmt.Fprintf(&sb, "      <value>%s</value>\n", escape(v))
			}
			sb.WriteString("    </correctResponse>\n")
		}
		if rd.Mapping != nil {
			sb.WriteString("    <mapping")
			if rd.Mapping.LowerBound != nil {
				fmt.Fprintf(&sb, ` lowerBound="%s"`, formatFloat(*rd.Mapping.LowerBound))
			}
			if rd.Mapping.UpperBound != nil {
				fmt.Fprintf(&sb, ` upperBound="%s"`, formatFloat(*rd.Mapping.UpperBound))
			}
			if rd.Mapping.DefaultValue != 0 {
				fmt.Fprintf(&sb, ` defaultValue="%s"`, formatFloat(rd.Mapping.DefaultValue))
			}
			sb.WriteString(">\n")
			for _, e := range rd.Mapping.Entries {
				fmt.Fprintf(&sb, `      <mapEntry mapKey=%q mappedValue="%s" caseSensitive=%q/>`+"\n",
					e.MapKey, formatFloat(e.MappedValue), strconv.FormatBool(e.CaseSensitive))
			}
			sb.WriteString("    </mapping>\n")
		}
		sb.WriteString("  </responseDeclaration>\n")
	}

	for _, od := range item.OutcomeDeclarations {
		fmt.Fprintf(&sb, `  <outcomeDeclaration identifier=%q cardinality=%q baseType=%q`,
			od.Identifier, od.Cardinality, od.BaseType)
		if od.NormalMaximum != nil {
			fmt.Fprintf(&sb, ` normalMaximum="%s"`, formatFloat(*od.NormalMaximum))
		}
		if od.NormalMinimum != nil {
			fmt.Fprintf(&sb, ` normalMinimum="%s"`, formatFloat(*od.NormalMinimum))
		}
		if len(od.Default) == 0 {
			sb.WriteString("/>\n")
		} else {
			sb.WriteString(">\n    <defaultValue>\n")
			for _, v := range od.Default {
				fmt.Fprintf(&sb, "      <value>%s</value>\n", escape(v))
			}
			sb.WriteString("    </defaultValue>\n  </outcomeDeclaration>\n")
		}
	}

	sb.WriteString("  <itemBody>")
	sb.WriteString(item.Body.RawXML)
	sb.WriteString("</itemBody>\n")

	if rp := item.ResponseProcessing; rp != nil && (rp.Template != "" || len(rp.Rules) > 0) {
		open := "  <responseProcessing>"
		if rp.Template != "" {
			open = fmt.Sprintf(`  <responseProcessing template="http://www.imsglobal.org/question/qti_v2p1/rptemplates/%s">`, rp.Template)
		}
		if len(rp.Rules) == 0 {
			sb.WriteString(strings.TrimSuffix(open, ">") + "/>\n")
		} else {
			sb.WriteString(open + "\n")
			for _, r := range rp.Rules {
				writeRule(&sb, r, "    ")
			}
			sb.WriteString("  </responseProcessing>\n")
		}
	}

	for _, mf := range item.ModalFeedback {
		fmt.Fprintf(&sb, `  <modalFeedback identifier=%q outcomeIdentifier=%q showHide=%q>%s</modalFeedback>`+"\n",
			mf.Identifier, mf.OutcomeIdentifier, mf.ShowHide, mf.Content)
	}

	sb.WriteString("</assessmentItem>\n")
	return sb.String()
}

// writeRule renders one response processing rule. Opaque rules re-emit
// their preserved raw node, so uninterpreted authored logic survives the
// round trip.
func writeRule(sb *strings.Builder, r model.Rule, indent string) {
	switch t := r.(type) {
	case *model.SetOutcomeValue:
		fmt.Fprintf(sb, "%s<setOutcomeValue identifier=%q>", indent, t.Identifier)
		writeExpr(sb, t.Value)
		sb.WriteString("</setOutcomeValue>\n")
	case *model.ResponseCondition:
		sb.WriteString(indent + "<responseCondition>\n")
		sb.WriteString(indent + "  <responseIf>\n")
		sb.WriteString(indent + "    ")
		writeExpr(sb, t.If)
		sb.WriteString("\n")
		for _, then := range t.Then {
			writeRule(sb, then, indent+"    ")
		}
		sb.WriteString(indent + "  </responseIf>\n")
		if len(t.Else) > 0 {
			sb.WriteString(indent + "  <responseElse>\n")
			for _, el := range t.Else {
				writeRule(sb, el, indent+"    ")
			}
			sb.WriteString(indent + "  </responseElse>\n")
		}
		sb.WriteString(indent + "</responseCondition>\n")
	case *model.OpaqueRule:
		sb.WriteString(indent)
		sb.WriteString(t.Raw.XML())
		sb.WriteString("\n")
	}
}

func writeExpr(sb *strings.Builder, e model.Expression) {
	switch t := e.(type) {
	case *model.BaseValue:
		if t.BaseType != "" {
			fmt.Fprintf(sb, `<baseValue baseType=%q>%s</baseValue>`, t.BaseType, escape(t.Value))
		} else {
			fmt.Fprintf(sb, `<baseValue>%s</baseValue>`, escape(t.Value))
		}
	case *model.Variable:
		fmt.Fprintf(sb, `<variable identifier=%q/>`, t.Identifier)
	case *model.Correct:
		fmt.Fprintf(sb, `<correct identifier=%q/>`, t.Identifier)
	case *model.MatchOp:
		sb.WriteString("<match>")
		writeExpr(sb, t.Left)
		writeExpr(sb, t.Right)
		sb.WriteString("</match>")
	case *model.IsNullOp:
		sb.WriteString("<isNull>")
		writeExpr(sb, t.Child)
		sb.WriteString("</isNull>")
	case *model.OpaqueExpr:
		sb.WriteString(t.Raw.XML())
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
