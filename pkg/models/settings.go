package models

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// DisplayMode defines how a folder's children are shown in the content area
type DisplayMode string

const (
	// DisplayUnset means the folder did not declare a mode
	DisplayUnset DisplayMode = ""

	// DisplayList shows children as a plain list
	DisplayList DisplayMode = "list"

	// DisplayTable shows children as a table
	DisplayTable DisplayMode = "table"

	// DisplayHide collapses children behind an expander
	DisplayHide DisplayMode = "hide"
)

// ChildrenDisplaySettings controls where a folder's children are displayed
type ChildrenDisplaySettings struct {
	DisplayInSidebar bool        `mapstructure:"displayinsidebar" json:"display_in_sidebar"`
	DisplayInContent DisplayMode `mapstructure:"displayincontent" json:"display_in_content,omitempty"`
}

// DefaultDisplaySettings returns the settings used when a folder declares none.
func DefaultDisplaySettings() ChildrenDisplaySettings {
	return ChildrenDisplaySettings{DisplayInSidebar: true}
}

// ParseDisplaySettings parses a folder description. The description is a YAML
// mapping; keys match case-insensitively with or without underscores, so
// displayInSidebar and display_in_sidebar are the same key. Parsing never
// fails: anything unreadable yields the defaults.
func ParseDisplaySettings(description string) ChildrenDisplaySettings {
	settings, _ := DecodeDisplaySettings(description)
	return settings
}

// DecodeDisplaySettings is ParseDisplaySettings that also reports what it
// could not read. The returned settings are usable even when err is set.
func DecodeDisplaySettings(description string) (ChildrenDisplaySettings, error) {
	settings := DefaultDisplaySettings()
	if strings.TrimSpace(description) == "" {
		return settings, nil
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(description), &raw); err != nil {
		return settings, fmt.Errorf("parse display settings: %w", err)
	}
	if raw == nil {
		return settings, nil
	}

	normalized := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		key := cases.Fold().String(strings.ReplaceAll(k, "_", ""))
		normalized[key] = v
	}

	decoded := settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return settings, err
	}
	if err := decoder.Decode(normalized); err != nil {
		return settings, fmt.Errorf("decode display settings: %w", err)
	}

	mode := DisplayMode(strings.ToLower(string(decoded.DisplayInContent)))
	switch mode {
	case DisplayUnset, DisplayList, DisplayTable, DisplayHide:
		decoded.DisplayInContent = mode
	default:
		decoded.DisplayInContent = DisplayUnset
		return decoded, fmt.Errorf("unknown displayInContent mode %q", mode)
	}
	return decoded, nil
}
