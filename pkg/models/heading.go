package models

import (
	"regexp"
	"strings"
)

// Heading is a single heading extracted from rendered document content
type Heading struct {
	Level int    `json:"level"` // 1..6
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// MarkdownLink is a file name of the form [title](url)
type MarkdownLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

var markdownLinkPattern = regexp.MustCompile(`^\s*\[([^\]]+)\]\((\S+)\)\s*$`)

// ParseMarkdownLink parses a file name written as a markdown link.
// It returns nil when the name is not a link.
func ParseMarkdownLink(name string) *MarkdownLink {
	matches := markdownLinkPattern.FindStringSubmatch(name)
	if len(matches) != 3 {
		return nil
	}
	return &MarkdownLink{
		Title: strings.TrimSpace(matches[1]),
		URL:   matches[2],
	}
}
