package outline

import (
	"net/url"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// Outline is a node of a document's heading tree.
type Outline struct {
	models.Heading
	Children []*Outline `json:"children,omitempty"`
}

// Build nests a flat, document-ordered heading sequence into a forest.
//
// Each heading becomes a child of the nearest preceding heading with a
// strictly lower level, or a new root when there is none. Skipped levels do
// not produce intermediate nodes. Build never fails; levels outside 1..6 are
// clamped.
func Build(headings []models.Heading) []*Outline {
	var roots []*Outline
	var stack []*Outline

	for _, h := range headings {
		h.Level = clampLevel(h.Level)
		node := &Outline{Heading: h}

		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}

	return roots
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// Flatten returns the headings of the forest in document order.
func Flatten(roots []*Outline) []models.Heading {
	var out []models.Heading
	var walk func(nodes []*Outline)
	walk = func(nodes []*Outline) {
		for _, n := range nodes {
			out = append(out, n.Heading)
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

// Count returns the number of nodes in the forest.
func Count(roots []*Outline) int {
	total := 0
	for _, n := range roots {
		total += 1 + Count(n.Children)
	}
	return total
}

// ExternalLink returns the editor URL that jumps to a heading of a document.
func ExternalLink(documentID, headingID string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     "docs.google.com",
		Path:     "/document/d/" + documentID + "/edit",
		Fragment: "heading=" + headingID,
	}
	return u.String()
}
