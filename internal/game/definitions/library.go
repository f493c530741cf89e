package definitions

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound marks a lookup for an id that has no definition. Missing
// definitions are configuration errors: callers must surface them, never
// substitute gameplay defaults.
var ErrNotFound = errors.New("definition not found")

// Library is the read-only definition store the combat engine consumes.
type Library struct {
	skills    map[string]*Skill
	effects   map[string]*StatusEffect
	templates map[string]*Template
}

// NewLibrary builds a Library from already-validated definitions.
// Later entries with duplicate ids overwrite earlier ones.
//
// Postcondition: Returns a non-nil Library.
func NewLibrary(skills []*Skill, effects []*StatusEffect, templates []*Template) *Library {
	l := &Library{
		skills:    make(map[string]*Skill, len(skills)),
		effects:   make(map[string]*StatusEffect, len(effects)),
		templates: make(map[string]*Template, len(templates)),
	}
	for _, s := range skills {
		l.skills[s.ID] = s
	}
	for _, e := range effects {
		l.effects[e.ID] = e
	}
	for _, t := range templates {
		l.templates[t.ID] = t
	}
	return l
}

// Skill returns the skill definition for id.
//
// Postcondition: Returns the definition, or an ErrNotFound-wrapped error.
func (l *Library) Skill(id string) (*Skill, error) {
	s, ok := l.skills[id]
	if !ok {
		return nil, fmt.Errorf("skill %q: %w", id, ErrNotFound)
	}
	return s, nil
}

// StatusEffect returns the status-effect definition for id.
//
// Postcondition: Returns the definition, or an ErrNotFound-wrapped error.
func (l *Library) StatusEffect(id string) (*StatusEffect, error) {
	e, ok := l.effects[id]
	if !ok {
		return nil, fmt.Errorf("status effect %q: %w", id, ErrNotFound)
	}
	return e, nil
}

// Template returns the entity template for id.
//
// Postcondition: Returns the definition, or an ErrNotFound-wrapped error.
func (l *Library) Template(id string) (*Template, error) {
	t, ok := l.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", id, ErrNotFound)
	}
	return t, nil
}

// SkillIDs returns a snapshot of all registered skill ids.
func (l *Library) SkillIDs() []string {
	ids := make([]string, 0, len(l.skills))
	for id := range l.skills {
		ids = append(ids, id)
	}
	return ids
}

// Load reads a full definition set from root, expecting the subdirectories
// skills/, status_effects/, and templates/.
//
// Precondition: root must be a readable directory with the three subdirectories.
// Postcondition: Returns a fully validated Library or an error on the first
// malformed file.
func Load(root string, logger *zap.Logger) (*Library, error) {
	skills, err := LoadSkills(filepath.Join(root, "skills"))
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	effects, err := LoadStatusEffects(filepath.Join(root, "status_effects"))
	if err != nil {
		return nil, fmt.Errorf("loading status effects: %w", err)
	}
	templates, err := LoadTemplates(filepath.Join(root, "templates"))
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	// Cross-reference check: every skill a template knows, every status
	// effect a skill applies, must exist.
	lib := NewLibrary(skills, effects, templates)
	for _, t := range templates {
		for _, skillID := range t.KnownSkills {
			if _, err := lib.Skill(skillID); err != nil {
				return nil, fmt.Errorf("template %q: known skill: %w", t.ID, err)
			}
		}
	}
	for _, s := range skills {
		for i, eff := range s.Effects {
			if eff.Type == EffectStatus {
				if _, err := lib.StatusEffect(eff.StatusEffect); err != nil {
					return nil, fmt.Errorf("skill %q: effect[%d]: %w", s.ID, i, err)
				}
			}
		}
	}

	logger.Info("definitions loaded",
		zap.Int("skills", len(skills)),
		zap.Int("status_effects", len(effects)),
		zap.Int("templates", len(templates)),
	)
	return lib, nil
}

// strictUnmarshal decodes YAML rejecting unknown fields.
func strictUnmarshal(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// loadDirectory reads every *.yaml file in dir and hands its contents to fn.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the first error from reading or fn, or nil.
func loadDirectory(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading definition dir %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}
