package parser

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/xmltree"
)

// Resource is one manifest entry.
type Resource struct {
	Identifier   string   `json:"identifier"`
	Type         string   `json:"type"`
	Href         string   `json:"href,omitempty"`
	Files        []string `json:"files,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Package is a parsed content package. Items and tests are registered
// under their manifest resource identifier, which is authoritative for
// package-internal references even when it differs from the document's
// own identifier. Webcontent stays as raw bytes keyed by href.
type Package struct {
	Version    model.Version                    `json:"version"`
	Resources  []Resource                       `json:"resources,omitempty"`
	Items      map[string]*model.AssessmentItem `json:"items,omitempty"`
	Tests      map[string]*model.AssessmentTest `json:"tests,omitempty"`
	WebContent map[string][]byte                `json:"-"`
	Warnings   []string                         `json:"warnings,omitempty"`
}

// ParsePackage parses a zip content package supplied as in-memory bytes.
// A missing imsmanifest.xml is fatal; a resource referencing a missing
// file is a warning and the rest of the package still parses.
func ParsePackage(zipBytes []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, parseFailure(errMalformedXML + ": not a zip archive: " + err.Error())
	}

	files := map[string][]byte{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, parseFailure("unreadable package entry " + f.Name + ": " + err.Error())
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, parseFailure("unreadable package entry " + f.Name + ": " + err.Error())
		}
		files[path.Clean(f.Name)] = b
	}

	manifest, ok := files["imsmanifest.xml"]
	if !ok {
		return nil, parseFailure(errMissingManifest)
	}

	resources, err := parseManifest(manifest)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		Version:    detectPackageVersion(resources),
		Resources:  resources,
		Items:      map[string]*model.AssessmentItem{},
		Tests:      map[string]*model.AssessmentTest{},
		WebContent: map[string][]byte{},
	}

	// items first, then tests, then webcontent passthrough
	for _, r := range resources {
		if !strings.Contains(r.Type, "item") {
			continue
		}
		b, ok := resourceBytes(files, r)
		if !ok {
			pkg.Warnings = append(pkg.Warnings, "resource "+r.Identifier+" references missing file "+r.Href)
			continue
		}
		item, ws, err := ParseItem(b)
		if err != nil {
			pkg.Warnings = append(pkg.Warnings, "item resource "+r.Identifier+": "+err.Error())
			continue
		}
		pkg.Items[r.Identifier] = item
		pkg.Warnings = append(pkg.Warnings, prefixAll(ws, r.Identifier)...)
	}
	for _, r := range resources {
		if !strings.Contains(r.Type, "test") {
			continue
		}
		b, ok := resourceBytes(files, r)
		if !ok {
			pkg.Warnings = append(pkg.Warnings, "resource "+r.Identifier+" references missing file "+r.Href)
			continue
		}
		test, ws, err := ParseTest(b)
		if err != nil {
			pkg.Warnings = append(pkg.Warnings, "test resource "+r.Identifier+": "+err.Error())
			continue
		}
		pkg.Tests[r.Identifier] = test
		pkg.Warnings = append(pkg.Warnings, prefixAll(ws, r.Identifier)...)
	}
	for _, r := range resources {
		if !strings.Contains(r.Type, "webcontent") {
			continue
		}
		for _, href := range resourceHrefs(r) {
			if b, ok := files[path.Clean(href)]; ok {
				pkg.WebContent[href] = b
			} else {
				pkg.Warnings = append(pkg.Warnings, "resource "+r.Identifier+" references missing file "+href)
			}
		}
	}

	return pkg, nil
}

func parseManifest(b []byte) ([]Resource, error) {
	root, err := xmltree.Parse(b)
	if err != nil {
		return nil, parseFailure(errMalformedXML + ": imsmanifest.xml: " + err.Error())
	}
	if root.Name != "manifest" {
		return nil, parseFailure(errMissingRootElement + ": want manifest, got " + root.Name)
	}
	var out []Resource
	if rs := root.First("resources"); rs != nil {
		for _, r := range rs.All("resource") {
			res := Resource{
				Identifier: r.Attr("identifier"),
				Type:       r.Attr("type"),
				Href:       r.Attr("href"),
			}
			for _, f := range r.All("file") {
				res.Files = append(res.Files, f.Attr("href"))
			}
			for _, d := range r.All("dependency") {
				res.Dependencies = append(res.Dependencies, d.Attr("identifierref"))
			}
			out = append(out, res)
		}
	}
	return out, nil
}

// resourceBytes finds the resource's document: the href when set, else the
// first listed file.
func resourceBytes(files map[string][]byte, r Resource) ([]byte, bool) {
	if r.Href != "" {
		b, ok := files[path.Clean(r.Href)]
		return b, ok
	}
	if len(r.Files) > 0 {
		b, ok := files[path.Clean(r.Files[0])]
		return b, ok
	}
	return nil, false
}

func resourceHrefs(r Resource) []string {
	if len(r.Files) > 0 {
		return r.Files
	}
	if r.Href != "" {
		return []string{r.Href}
	}
	return nil
}

func prefixAll(warnings []string, ident string) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, ident+": "+w)
	}
	return out
}
