package model

import (
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Ingredient is a single ingredient with optional details.
type Ingredient struct {
	Name          string `json:"name"`
	Concentration string `json:"concentration,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
}

// standardOptionalFields is the number of optional standard fields that feed
// the completeness score: category, key_ingredients, benefits,
// usage_instructions, side_effects, target_audience.
const standardOptionalFields = 6

// Product is the validated record for one commercial item. The structure is
// domain-agnostic and works for skincare, food, supplements, and similar
// catalog items. Instances are built once by NewProduct and never mutated.
type Product struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`

	Category          string                 `json:"category,omitempty"`
	KeyIngredients    []Ingredient           `json:"key_ingredients,omitempty"`
	Benefits          []string               `json:"benefits,omitempty"`
	UsageInstructions string                 `json:"usage_instructions,omitempty"`
	SideEffects       string                 `json:"side_effects,omitempty"`
	TargetAudience    []string               `json:"target_audience,omitempty"`
	CustomFields      map[string]CustomValue `json:"custom_fields,omitempty"`

	// Derived metadata, computed once at construction.
	ID                string    `json:"product_id"`
	CreatedAt         time.Time `json:"created_at"`
	FieldCount        int       `json:"field_count"`
	CompletenessScore float64   `json:"completeness_score"`
}

// NewProduct validates a raw string-keyed record and constructs a Product.
// Required keys: name (non-empty string) and price (positive number).
// Ingredient entries given as plain strings are promoted to {name: <string>}.
// Returns an error describing the first failed validation; no partially
// constructed record is ever returned.
func NewProduct(raw map[string]any) (*Product, error) {
	name, err := stringField(raw, "name", true)
	if err != nil {
		return nil, err
	}

	price, err := numberField(raw, "price")
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, eris.Errorf("product: price must be positive, got %v", price)
	}

	currency, err := stringField(raw, "currency", false)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "₹"
	}

	category, err := stringField(raw, "category", false)
	if err != nil {
		return nil, err
	}
	usage, err := stringField(raw, "usage_instructions", false)
	if err != nil {
		return nil, err
	}
	sideEffects, err := stringField(raw, "side_effects", false)
	if err != nil {
		return nil, err
	}

	ingredients, err := parseIngredients(raw["key_ingredients"])
	if err != nil {
		return nil, err
	}
	benefits, err := stringListField(raw, "benefits")
	if err != nil {
		return nil, err
	}
	audience, err := stringListField(raw, "target_audience")
	if err != nil {
		return nil, err
	}

	custom, err := parseCustomFields(raw["custom_fields"])
	if err != nil {
		return nil, err
	}

	p := &Product{
		Name:              name,
		Price:             price,
		Currency:          currency,
		Category:          category,
		KeyIngredients:    ingredients,
		Benefits:          benefits,
		UsageInstructions: usage,
		SideEffects:       sideEffects,
		TargetAudience:    audience,
		CustomFields:      custom,
		CreatedAt:         time.Now().UTC(),
	}

	filled := p.filledOptionalCount()
	p.ID = ProductID(name)
	p.CompletenessScore = math.Round(float64(filled)/standardOptionalFields*100*100) / 100
	p.FieldCount = filled + len(custom) + 3 // +3 for name, price, currency

	return p, nil
}

// ProductID derives the stable identifier for a product name: lowercased,
// spaces replaced with underscores, truncated to 20 characters, prefixed.
func ProductID(name string) string {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	if r := []rune(slug); len(r) > 20 {
		slug = string(r[:20])
	}
	return "prod_" + slug
}

func (p *Product) filledOptionalCount() int {
	n := 0
	if p.Category != "" {
		n++
	}
	if len(p.KeyIngredients) > 0 {
		n++
	}
	if len(p.Benefits) > 0 {
		n++
	}
	if p.UsageInstructions != "" {
		n++
	}
	if p.SideEffects != "" {
		n++
	}
	if len(p.TargetAudience) > 0 {
		n++
	}
	return n
}

// FirstIngredient returns the name of the first ingredient, or "".
func (p *Product) FirstIngredient() string {
	if len(p.KeyIngredients) == 0 {
		return ""
	}
	return p.KeyIngredients[0].Name
}

// IngredientNames returns lowercased ingredient names as a set.
func (p *Product) IngredientNames() map[string]bool {
	set := make(map[string]bool, len(p.KeyIngredients))
	for _, ing := range p.KeyIngredients {
		set[strings.ToLower(ing.Name)] = true
	}
	return set
}

// parseIngredients normalizes an untyped ingredient list. Plain string
// entries become {name: <string>}; map entries must carry a non-empty name.
func parseIngredients(v any) ([]Ingredient, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]Ingredient); ok {
			return typed, nil
		}
		return nil, eris.Errorf("product: key_ingredients must be a list, got %T", v)
	}

	var out []Ingredient
	for i, item := range list {
		switch t := item.(type) {
		case string:
			if t == "" {
				return nil, eris.Errorf("product: ingredient %d has empty name", i)
			}
			out = append(out, Ingredient{Name: t})
		case map[string]any:
			name, _ := t["name"].(string)
			if name == "" {
				return nil, eris.Errorf("product: ingredient %d is missing a name", i)
			}
			conc, _ := t["concentration"].(string)
			purpose, _ := t["purpose"].(string)
			out = append(out, Ingredient{Name: name, Concentration: conc, Purpose: purpose})
		default:
			return nil, eris.Errorf("product: ingredient %d has unsupported type %T", i, item)
		}
	}
	return out, nil
}

func stringField(raw map[string]any, key string, required bool) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		if required {
			return "", eris.Errorf("product: %s is required", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", eris.Errorf("product: %s must be a string, got %T", key, v)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", eris.Errorf("product: %s must not be empty", key)
	}
	return s, nil
}

func numberField(raw map[string]any, key string) (float64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, eris.Errorf("product: %s is required", key)
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	default:
		return 0, eris.Errorf("product: %s must be a number, got %T", key, v)
	}
}

func stringListField(raw map[string]any, key string) ([]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, eris.Errorf("product: %s[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, eris.Errorf("product: %s must be a list of strings, got %T", key, v)
	}
}
