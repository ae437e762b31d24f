package frontmatter

import (
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n?(.*)`)

// Frontmatter represents the metadata block at the beginning of a markdown document
type Frontmatter struct {
	Title    string `yaml:"title"`
	Modified string `yaml:"modified,omitempty"`
	ReadOnly bool   `yaml:"readonly,omitempty"` // Clears the edit capability
}

// Parse extracts frontmatter from content and returns the parsed data and body
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		// No frontmatter found
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	return &fm, matches[2], nil
}

// ParseTimestamp parses a frontmatter timestamp. Both the notebook format
// (2006-01-02 15:04:05) and RFC 3339 are accepted.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
