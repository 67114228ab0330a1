package parser

import (
	"strings"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// detectVersion inspects the root element's namespace / schemaLocation
// markers. Best-effort: an unrecognized marker falls back to 2.1, the
// common-denominator grammar, with a warning rather than a rejection.
func detectVersion(root *xmltree.Node) (model.Version, []string) {
	marker := root.Attr("xmlns") + " " + root.Attr("schemaLocation") + " " + root.Attr("noNamespaceSchemaLocation")
	switch {
	case strings.Contains(marker, "qti/3.0") || strings.Contains(marker, "imsqtiasi_v3p0"):
		return model.QTI30, nil
	case strings.Contains(marker, "2p2"):
		return model.QTI22, nil
	case strings.Contains(marker, "2p1") || strings.Contains(marker, "imsqti_v2"):
		return model.QTI21, nil
	}
	if strings.TrimSpace(marker) == "" {
		return model.QTI21, nil
	}
	return model.QTI21, []string{"unrecognized version marker, assuming QTI 2.1"}
}

// detectPackageVersion scans manifest resource type attributes before the
// per-document heuristic runs. v3p0 / v2p2 substrings decide; otherwise
// the package defaults to 2.1.
func detectPackageVersion(resources []Resource) model.Version {
	for _, r := range resources {
		if strings.Contains(r.Type, "v3p0") {
			return model.QTI30
		}
	}
	for _, r := range resources {
		if strings.Contains(r.Type, "v2p2") {
			return model.QTI22
		}
	}
	return model.QTI21
}
