// Package rulefile loads bulk-edit rules from TOML, YAML or JSON documents.
//
// A rule document looks like:
//
//	[[conditions]]
//	field = "name"
//	operator = "contains"
//	value = "nuts"
//
//	[[actions]]
//	category = "price"
//	operation = "add_to_price"
//	value = "0.50"
//	price_level = 2
package rulefile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/supereditor"
)

var ErrEmptyRule = errors.New("rule has no conditions and no actions")

type conditionDoc struct {
	Logic    string `mapstructure:"logic"`
	Field    string `mapstructure:"field"`
	Operator string `mapstructure:"operator"`
	Value    string `mapstructure:"value"`
	EntityID *int   `mapstructure:"entity_id"`
}

type actionDoc struct {
	Category   string `mapstructure:"category"`
	Operation  string `mapstructure:"operation"`
	Value      string `mapstructure:"value"`
	EntityID   *int   `mapstructure:"entity_id"`
	SwapFromID *int   `mapstructure:"swap_from"`
	PriceLevel int    `mapstructure:"price_level"`
}

type ruleDoc struct {
	Conditions []conditionDoc `mapstructure:"conditions"`
	Actions    []actionDoc    `mapstructure:"actions"`
}

// Load reads the rule at path; the extension picks the format.
func Load(path string) (supereditor.Rule, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return supereditor.Rule{}, fmt.Errorf("read rule %s: %w", path, err)
	}
	return decode(v)
}

// Parse reads a rule document of the given format ("toml", "yaml" or "json").
func Parse(r io.Reader, format string) (supereditor.Rule, error) {
	v := viper.New()
	v.SetConfigType(strings.TrimPrefix(strings.ToLower(format), "."))
	if err := v.ReadConfig(r); err != nil {
		return supereditor.Rule{}, fmt.Errorf("read rule: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (supereditor.Rule, error) {
	var doc ruleDoc
	if err := v.Unmarshal(&doc); err != nil {
		return supereditor.Rule{}, fmt.Errorf("decode rule: %w", err)
	}
	if len(doc.Conditions) == 0 && len(doc.Actions) == 0 {
		return supereditor.Rule{}, ErrEmptyRule
	}

	var rule supereditor.Rule
	for i, cd := range doc.Conditions {
		c, err := cd.condition()
		if err != nil {
			return supereditor.Rule{}, fmt.Errorf("condition %d: %w", i+1, err)
		}
		rule.Conditions = append(rule.Conditions, c)
	}
	for i, ad := range doc.Actions {
		a, err := ad.action()
		if err != nil {
			return supereditor.Rule{}, fmt.Errorf("action %d: %w", i+1, err)
		}
		rule.Actions = append(rule.Actions, a)
	}
	if err := rule.Validate(); err != nil {
		return supereditor.Rule{}, err
	}
	return rule, nil
}

func (d conditionDoc) condition() (supereditor.Condition, error) {
	c := supereditor.Condition{Value: d.Value, EntityID: optID(d.EntityID)}
	var err error
	if d.Logic != "" {
		if c.Logic, err = supereditor.ParseLogic(d.Logic); err != nil {
			return c, err
		}
	}
	if c.Field, err = supereditor.ParseField(d.Field); err != nil {
		return c, err
	}
	if c.Operator, err = supereditor.ParseOperator(d.Operator); err != nil {
		return c, err
	}
	return c, nil
}

func (d actionDoc) action() (supereditor.Action, error) {
	a := supereditor.Action{
		Value:        d.Value,
		EntityID:     optID(d.EntityID),
		SwapFromID:   optID(d.SwapFromID),
		PriceLevelID: domain.ID(d.PriceLevel),
	}
	var err error
	if a.Category, err = supereditor.ParseCategory(d.Category); err != nil {
		return a, err
	}
	if a.Operation, err = supereditor.ParseOperation(d.Operation); err != nil {
		return a, err
	}
	return a, nil
}

func optID(v *int) *domain.ID {
	if v == nil {
		return nil
	}
	return domain.IDPtr(domain.ID(*v))
}

// Save writes rule to path in the format named by its extension.
func Save(path string, rule supereditor.Rule) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fmt.Errorf("rule path %s needs an extension", path)
	}

	conditions := make([]map[string]any, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		m := map[string]any{
			"logic":    c.Logic.String(),
			"field":    c.Field.String(),
			"operator": c.Operator.String(),
			"value":    c.Value,
		}
		if c.EntityID != nil {
			m["entity_id"] = int(*c.EntityID)
		}
		conditions = append(conditions, m)
	}
	actions := make([]map[string]any, 0, len(rule.Actions))
	for _, a := range rule.Actions {
		m := map[string]any{
			"category":    a.Category.String(),
			"operation":   a.Operation.String(),
			"value":       a.Value,
			"price_level": int(a.PriceLevelID),
		}
		if a.EntityID != nil {
			m["entity_id"] = int(*a.EntityID)
		}
		if a.SwapFromID != nil {
			m["swap_from"] = int(*a.SwapFromID)
		}
		actions = append(actions, m)
	}

	v := viper.New()
	v.SetConfigType(ext)
	v.Set("conditions", conditions)
	v.Set("actions", actions)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write rule %s: %w", path, err)
	}
	return nil
}
