package definitions

import "fmt"

// Attributes holds the five primary attribute scores for an entity template.
type Attributes struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Intelligence int `yaml:"intelligence"`
	Constitution int `yaml:"constitution"`
	Wisdom       int `yaml:"wisdom"`
}

// Value returns the score for the named attribute.
//
// Postcondition: Returns (score, true) for a known attribute name, (0, false)
// otherwise.
func (a Attributes) Value(name string) (int, bool) {
	switch name {
	case "strength":
		return a.Strength, true
	case "dexterity":
		return a.Dexterity, true
	case "intelligence":
		return a.Intelligence, true
	case "constitution":
		return a.Constitution, true
	case "wisdom":
		return a.Wisdom, true
	default:
		return 0, false
	}
}

// Defenses holds the base defensive values.
type Defenses struct {
	Armor           int `yaml:"armor"`
	MagicResistance int `yaml:"magic_resistance"`
}

// Resources declares which resource pools a template has and their maxima.
// A nil field means the entity does not use that resource at all.
type Resources struct {
	MaxStamina *int `yaml:"max_stamina"`
	MaxEnergy  *int `yaml:"max_energy"`
	MaxMana    *int `yaml:"max_mana"`
}

// LootEntry is one item entry in an enemy's loot table.
type LootEntry struct {
	ItemID      string  `yaml:"item"`
	Chance      float64 `yaml:"chance"`
	MinQuantity int     `yaml:"min_quantity"`
	MaxQuantity int     `yaml:"max_quantity"`
}

// Template defines a reusable combatant archetype loaded from YAML. Player
// classes, enemy kinds, and NPCs all share this schema; role-specific fields
// (Class, Behavior, rewards) are simply unused by the other roles.
type Template struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Level       int        `yaml:"level"`
	Attributes  Attributes `yaml:"attributes"`
	Defenses    Defenses   `yaml:"defenses"`
	Resources   Resources  `yaml:"resources"`
	KnownSkills []string   `yaml:"known_skills"`

	// Resistances and Vulnerabilities map a damage type to a multiplier
	// delta: resistance 0.5 halves that type, vulnerability 0.5 adds half.
	Resistances     map[string]float64 `yaml:"resistances"`
	Vulnerabilities map[string]float64 `yaml:"vulnerabilities"`

	// CreatureType keys creature-type damage modifiers and enemy basic
	// attacks ("humanoid", "beast", "undead", ...).
	CreatureType string `yaml:"creature_type"`
	// Class is the player class id ("warrior", "mage", ...); empty for
	// non-players.
	Class string `yaml:"class"`
	// Behavior selects the AI strategy for enemies ("melee", "ranged",
	// "support"); empty falls back to melee.
	Behavior string `yaml:"behavior"`
	// Boss entities never attempt to flee.
	Boss bool `yaml:"boss"`

	// GrowthModifiers scale automatic attribute gains on level-up.
	GrowthModifiers map[string]float64 `yaml:"growth_modifiers"`

	// Reward fields, meaningful for enemies.
	ExperienceReward int         `yaml:"experience_reward"`
	GoldReward       int         `yaml:"gold_reward"`
	Loot             []LootEntry `yaml:"loot"`
}

// Validate checks that the template satisfies its invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff the template is well formed; an error naming
// the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("template %q: level must be >= 1, got %d", t.ID, t.Level)
	}
	for _, attr := range []string{"strength", "dexterity", "intelligence", "constitution", "wisdom"} {
		v, _ := t.Attributes.Value(attr)
		if v < 1 {
			return fmt.Errorf("template %q: attribute %s must be >= 1, got %d", t.ID, attr, v)
		}
	}
	if t.Defenses.Armor < 0 || t.Defenses.MagicResistance < 0 {
		return fmt.Errorf("template %q: defenses must be >= 0", t.ID)
	}
	for _, pool := range []struct {
		name string
		max  *int
	}{
		{"max_stamina", t.Resources.MaxStamina},
		{"max_energy", t.Resources.MaxEnergy},
		{"max_mana", t.Resources.MaxMana},
	} {
		if pool.max != nil && *pool.max < 0 {
			return fmt.Errorf("template %q: %s must be >= 0, got %d", t.ID, pool.name, *pool.max)
		}
	}
	for dmgType, v := range t.Resistances {
		if dmgType == "" || v < 0 {
			return fmt.Errorf("template %q: resistance entries must name a damage type with value >= 0", t.ID)
		}
	}
	for dmgType, v := range t.Vulnerabilities {
		if dmgType == "" || v < 0 {
			return fmt.Errorf("template %q: vulnerability entries must name a damage type with value >= 0", t.ID)
		}
	}
	if t.ExperienceReward < 0 {
		return fmt.Errorf("template %q: experience_reward must be >= 0, got %d", t.ID, t.ExperienceReward)
	}
	if t.GoldReward < 0 {
		return fmt.Errorf("template %q: gold_reward must be >= 0, got %d", t.ID, t.GoldReward)
	}
	for i, entry := range t.Loot {
		if entry.ItemID == "" {
			return fmt.Errorf("template %q: loot[%d] must name an item", t.ID, i)
		}
		if entry.Chance <= 0 || entry.Chance > 1.0 {
			return fmt.Errorf("template %q: loot[%d] chance must be in (0, 1.0], got %f", t.ID, i, entry.Chance)
		}
		if entry.MinQuantity < 1 {
			return fmt.Errorf("template %q: loot[%d] min_quantity must be >= 1, got %d", t.ID, i, entry.MinQuantity)
		}
		if entry.MinQuantity > entry.MaxQuantity {
			return fmt.Errorf("template %q: loot[%d] min_quantity (%d) must be <= max_quantity (%d)",
				t.ID, i, entry.MinQuantity, entry.MaxQuantity)
		}
	}
	return nil
}

// applyDefaults fills structural defaults for omitted fields.
func (t *Template) applyDefaults() {
	if t.CreatureType == "" {
		t.CreatureType = "humanoid"
	}
}

// LoadTemplateFromBytes parses a single entity template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template with defaults applied, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := strictUnmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	tmpl.applyDefaults()
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first failure.
func LoadTemplates(dir string) ([]*Template, error) {
	var templates []*Template
	err := loadDirectory(dir, func(path string, data []byte) error {
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}
