package xmltree

import (
	"sort"
	"strings"
)

// XML renders the subtree back to XML. Attribute order is sorted for
// determinism; mixed text/element interleaving is approximated (all
// character data first), which is fine for the opaque-content uses here.
func (n *Node) XML() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

// InnerXML renders the node's content without the enclosing tag.
func (n *Node) InnerXML() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if t := strings.TrimSpace(n.Text); t != "" {
		sb.WriteString(escapeText(t))
	}
	for _, c := range n.Children {
		c.render(&sb)
	}
	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(n.Name)
	if len(n.Attrs) > 0 {
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(n.Attrs[k]))
			sb.WriteByte('"')
		}
	}
	if len(n.Children) == 0 && strings.TrimSpace(n.Text) == "" {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	if t := strings.TrimSpace(n.Text); t != "" {
		sb.WriteString(escapeText(t))
	}
	for _, c := range n.Children {
		c.render(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Name)
	sb.WriteByte('>')
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeText(s string) string { return textEscaper.Replace(s) }
func escapeAttr(s string) string { return attrEscaper.Replace(s) }
