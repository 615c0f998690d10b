// Package rules ships the built-in foul rule presets.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/courtside/go/internal/models"
)

//go:embed presets.yaml
var presetsYAML []byte

// ErrUnknownPreset is returned by Lookup for a name that is not defined
var ErrUnknownPreset = errors.New("unknown rule preset")

// Preset is a named rule configuration
type Preset struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Rules       models.RuleConfig `yaml:"rules" json:"rules"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// Registry holds presets by lower-case name
type Registry struct {
	presets map[string]Preset
}

// Builtin parses the embedded presets
func Builtin() (*Registry, error) {
	return Parse(presetsYAML)
}

// Parse reads presets from YAML
func Parse(data []byte) (*Registry, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	r := &Registry{presets: make(map[string]Preset, len(f.Presets))}
	for _, p := range f.Presets {
		if err := Validate(p.Rules); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		r.presets[strings.ToLower(p.Name)] = p
	}
	return r, nil
}

// Lookup finds a preset by case-insensitive name
func (r *Registry) Lookup(name string) (Preset, error) {
	p, ok := r.presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p, nil
}

// All returns every preset sorted by name
func (r *Registry) All() []Preset {
	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Validate rejects limits below one
func Validate(rc models.RuleConfig) error {
	if rc.Limits.Personal < 1 || rc.Limits.Technical < 1 || rc.Limits.Unsportsmanlike < 1 {
		return fmt.Errorf("foul limits must be at least 1, got %+v", rc.Limits)
	}
	return nil
}

// Normalize raises every limit below one to one
func Normalize(rc models.RuleConfig) models.RuleConfig {
	rc.Limits.Personal = max(1, rc.Limits.Personal)
	rc.Limits.Technical = max(1, rc.Limits.Technical)
	rc.Limits.Unsportsmanlike = max(1, rc.Limits.Unsportsmanlike)
	return rc
}
