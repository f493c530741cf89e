// Package config provides Viper-based configuration loading for the Emberfell
// combat engine. All gameplay constants the engine consumes (hit chance
// parameters, minimum damage, progression curve, resource regeneration) live
// here so the engine itself carries no magic numbers.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// CombatConfig holds combat resolution tuning.
type CombatConfig struct {
	// HitChanceBase is the base probability that a basic attack hits.
	HitChanceBase float64 `mapstructure:"hit_chance_base"`
	// HitChanceAccuracyFactor is the per-point accuracy contribution to hit chance.
	HitChanceAccuracyFactor float64 `mapstructure:"hit_chance_accuracy_factor"`
	// HitChanceEvasionFactor is the per-point evasion reduction of hit chance.
	HitChanceEvasionFactor float64 `mapstructure:"hit_chance_evasion_factor"`
	// HitChanceMin and HitChanceMax clamp the final hit chance.
	HitChanceMin float64 `mapstructure:"hit_chance_min"`
	HitChanceMax float64 `mapstructure:"hit_chance_max"`
	// MinDamage is the damage floor applied after defenses.
	MinDamage int `mapstructure:"min_damage"`
	// BaseWeaponDamage is the value substituted for "weapon_damage" base values.
	BaseWeaponDamage int `mapstructure:"base_weapon_damage"`
	// DefaultBasicAttack is the skill used when no class or creature-type
	// specific basic attack is configured.
	DefaultBasicAttack string `mapstructure:"default_basic_attack"`
	// BasicAttacks maps a player class or enemy creature type to its basic
	// attack skill id.
	BasicAttacks map[string]string `mapstructure:"basic_attacks"`
	// LogTail is the number of combat log entries exposed in summaries.
	LogTail int `mapstructure:"log_tail"`
}

// ProgressionConfig holds the experience curve settings.
type ProgressionConfig struct {
	// XPLevelBase is the XP required to reach level 2.
	XPLevelBase int `mapstructure:"xp_level_base"`
	// XPLevelFactor is the geometric growth factor per level.
	XPLevelFactor float64 `mapstructure:"xp_level_factor"`
}

// RegenConfig holds the flat per-turn resource regeneration rates.
// Player regeneration adds the relevant attribute bonus on top of these.
type RegenConfig struct {
	Stamina int `mapstructure:"stamina"`
	Energy  int `mapstructure:"energy"`
	Mana    int `mapstructure:"mana"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Combat      CombatConfig      `mapstructure:"combat"`
	Progression ProgressionConfig `mapstructure:"progression"`
	Regen       RegenConfig       `mapstructure:"regen"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateProgression(c.Progression); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRegen(c.Regen); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(cc CombatConfig) error {
	var errs []string
	if cc.HitChanceBase <= 0 || cc.HitChanceBase > 1 {
		errs = append(errs, fmt.Sprintf("combat.hit_chance_base must be in (0, 1], got %v", cc.HitChanceBase))
	}
	if cc.HitChanceAccuracyFactor < 0 {
		errs = append(errs, "combat.hit_chance_accuracy_factor must not be negative")
	}
	if cc.HitChanceEvasionFactor < 0 {
		errs = append(errs, "combat.hit_chance_evasion_factor must not be negative")
	}
	if cc.HitChanceMin <= 0 || cc.HitChanceMin >= 1 {
		errs = append(errs, fmt.Sprintf("combat.hit_chance_min must be in (0, 1), got %v", cc.HitChanceMin))
	}
	if cc.HitChanceMax <= cc.HitChanceMin || cc.HitChanceMax > 1 {
		errs = append(errs, fmt.Sprintf("combat.hit_chance_max must be in (min, 1], got %v", cc.HitChanceMax))
	}
	if cc.MinDamage < 1 {
		errs = append(errs, fmt.Sprintf("combat.min_damage must be >= 1, got %d", cc.MinDamage))
	}
	if cc.BaseWeaponDamage < 1 {
		errs = append(errs, fmt.Sprintf("combat.base_weapon_damage must be >= 1, got %d", cc.BaseWeaponDamage))
	}
	if cc.DefaultBasicAttack == "" {
		errs = append(errs, "combat.default_basic_attack must not be empty")
	}
	if cc.LogTail < 1 {
		errs = append(errs, fmt.Sprintf("combat.log_tail must be >= 1, got %d", cc.LogTail))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateProgression(p ProgressionConfig) error {
	var errs []string
	if p.XPLevelBase < 1 {
		errs = append(errs, fmt.Sprintf("progression.xp_level_base must be >= 1, got %d", p.XPLevelBase))
	}
	if p.XPLevelFactor < 1.0 {
		errs = append(errs, fmt.Sprintf("progression.xp_level_factor must be >= 1.0, got %v", p.XPLevelFactor))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRegen(r RegenConfig) error {
	var errs []string
	if r.Stamina < 0 {
		errs = append(errs, fmt.Sprintf("regen.stamina must be >= 0, got %d", r.Stamina))
	}
	if r.Energy < 0 {
		errs = append(errs, fmt.Sprintf("regen.energy must be >= 0, got %d", r.Energy))
	}
	if r.Mana < 0 {
		errs = append(errs, fmt.Sprintf("regen.mana must be >= 0, got %d", r.Mana))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with EMBERFELL_ prefix
	v.SetEnvPrefix("EMBERFELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration with no file loaded.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: built-in defaults failed validation: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("combat.hit_chance_base", 0.9)
	v.SetDefault("combat.hit_chance_accuracy_factor", 0.03)
	v.SetDefault("combat.hit_chance_evasion_factor", 0.02)
	v.SetDefault("combat.hit_chance_min", 0.05)
	v.SetDefault("combat.hit_chance_max", 0.95)
	v.SetDefault("combat.min_damage", 1)
	v.SetDefault("combat.base_weapon_damage", 5)
	v.SetDefault("combat.default_basic_attack", "basic_strike_phys")
	v.SetDefault("combat.basic_attacks", map[string]string{
		"warrior": "basic_strike_phys",
		"rogue":   "basic_strike_finesse",
		"mage":    "basic_magic_bolt",
		"cleric":  "basic_holy_spark",
		"beast":   "basic_strike_finesse",
	})
	v.SetDefault("combat.log_tail", 10)

	v.SetDefault("progression.xp_level_base", 100)
	v.SetDefault("progression.xp_level_factor", 1.5)

	v.SetDefault("regen.stamina", 5)
	v.SetDefault("regen.energy", 10)
	v.SetDefault("regen.mana", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
