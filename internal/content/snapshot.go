package content

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Snapshot is the immutable portfolio content tree supplied by the host.
type Snapshot struct {
	Owner    Owner     `yaml:"owner" json:"owner"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Owner identifies the portfolio owner.
type Owner struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Section is a named group of items, mapped to a directory in the VFS.
type Section struct {
	Name     string    `yaml:"name" json:"name"`
	Items    []Item    `yaml:"items,omitempty" json:"items,omitempty"`
	Sections []Section `yaml:"sections,omitempty" json:"sections,omitempty"`
}

// Item is a named piece of text content, mapped to a file in the VFS.
type Item struct {
	Name    string `yaml:"name" json:"name"`
	Content string `yaml:"content" json:"content"`
}

// Parse decodes a snapshot from YAML.
func Parse(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse content snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// LoadFile reads and decodes a snapshot from a YAML file.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content snapshot: %w", err)
	}
	return Parse(data)
}

// Validate checks structural invariants: non-empty names that are
// addressable as path segments, unique among siblings at every level.
func (s *Snapshot) Validate() error {
	return validateLevel("/", s.Sections, nil)
}

func validateLevel(at string, sections []Section, items []Item) error {
	seen := make(map[string]bool)
	for _, sec := range sections {
		if sec.Name == "" {
			return fmt.Errorf("unnamed section under %s", at)
		}
		if err := checkName(at, sec.Name); err != nil {
			return err
		}
		if seen[sec.Name] {
			return fmt.Errorf("duplicate entry %q under %s", sec.Name, at)
		}
		seen[sec.Name] = true
		if err := validateLevel(at+sec.Name+"/", sec.Sections, sec.Items); err != nil {
			return err
		}
	}
	for _, item := range items {
		if item.Name == "" {
			return fmt.Errorf("unnamed item under %s", at)
		}
		if err := checkName(at, item.Name); err != nil {
			return err
		}
		if seen[item.Name] {
			return fmt.Errorf("duplicate entry %q under %s", item.Name, at)
		}
		seen[item.Name] = true
	}
	return nil
}

// checkName rejects names that cannot be addressed as a single path
// segment: a "/" would split across segments, and "." or ".." collide with
// the navigation segments.
func checkName(at, name string) error {
	if strings.Contains(name, "/") || name == "." || name == ".." {
		return fmt.Errorf("unaddressable entry name %q under %s", name, at)
	}
	return nil
}
