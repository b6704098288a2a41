// Package planning contains the core domain logic for multi-day meal
// planning. This follows Domain-Driven Design principles with rich domain
// models; the optimizer consumes these types as immutable inputs.
package planning

import (
	"github.com/google/uuid"
)

// DishCategory is the functional role of a dish within a meal.
type DishCategory string

const (
	CategoryStaple  DishCategory = "staple"
	CategoryMain    DishCategory = "main"
	CategorySide    DishCategory = "side"
	CategorySoup    DishCategory = "soup"
	CategoryDessert DishCategory = "dessert"
)

// AllCategories lists every dish category in display order.
func AllCategories() []DishCategory {
	return []DishCategory{CategoryStaple, CategoryMain, CategorySide, CategorySoup, CategoryDessert}
}

// MealSlot is a named eating occasion within a day.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
)

// AllMealSlots lists the meal slots in day order.
func AllMealSlots() []MealSlot {
	return []MealSlot{SlotBreakfast, SlotLunch, SlotDinner}
}

// Allergen is a tag derived from an ingredient.
type Allergen string

const (
	AllergenEgg       Allergen = "egg"
	AllergenMilk      Allergen = "milk"
	AllergenWheat     Allergen = "wheat"
	AllergenSoy       Allergen = "soy"
	AllergenPeanut    Allergen = "peanut"
	AllergenTreeNut   Allergen = "tree_nut"
	AllergenShrimp    Allergen = "shrimp"
	AllergenCrab      Allergen = "crab"
	AllergenFish      Allergen = "fish"
	AllergenBuckwheat Allergen = "buckwheat"
	AllergenSesame    Allergen = "sesame"
)

// MeasurementUnit is the unit an ingredient amount is expressed in.
type MeasurementUnit string

const (
	UnitGram       MeasurementUnit = "g"
	UnitKilogram   MeasurementUnit = "kg"
	UnitMilliliter MeasurementUnit = "ml"
	UnitLiter      MeasurementUnit = "l"
	UnitPiece      MeasurementUnit = "piece"
)

// IngredientRequirement is one raw ingredient needed per serving of a dish.
type IngredientRequirement struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Amount    float64         `json:"amount"` // per serving, in Unit
	Unit      MeasurementUnit `json:"unit"`
	Allergens []Allergen      `json:"allergens,omitempty"`
}

// Dish is a cookable catalog entry. Nutrients are per serving and already
// computed by the catalog provider; nutrient derivation from raw ingredient
// composition is out of scope here.
type Dish struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Category    DishCategory            `json:"category"`
	Slots       []MealSlot              `json:"slots"`
	Nutrients   NutrientVector          `json:"nutrients"`
	StorageDays int                     `json:"storage_days"` // days a cooked batch stays usable after the cook day
	MinServings int                     `json:"min_servings"` // per cooking event
	MaxServings int                     `json:"max_servings"` // per cooking event, per person multiplier applies on top
	Ingredients []IngredientRequirement `json:"ingredients,omitempty"`
}

// Validate checks the structural invariants of a catalog entry.
func (d *Dish) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDishMissingID
	}
	if d.Name == "" {
		return ErrDishMissingName
	}
	if d.MinServings < 1 || d.MaxServings < d.MinServings {
		return ErrDishServingBounds
	}
	if d.StorageDays < 0 {
		return ErrDishStorageDays
	}
	if len(d.Slots) == 0 {
		return ErrDishNoSlots
	}
	return nil
}

// AllowsSlot reports whether the dish may be served at the given slot.
func (d *Dish) AllowsSlot(slot MealSlot) bool {
	for _, s := range d.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// ContainsAllergen reports whether any ingredient carries one of the
// excluded allergen tags.
func (d *Dish) ContainsAllergen(excluded map[Allergen]bool) bool {
	for _, ing := range d.Ingredients {
		for _, a := range ing.Allergens {
			if excluded[a] {
				return true
			}
		}
	}
	return false
}

// UsesIngredient reports whether the dish uses any of the given ingredients.
func (d *Dish) UsesIngredient(excluded map[uuid.UUID]bool) bool {
	for _, ing := range d.Ingredients {
		if excluded[ing.ID] {
			return true
		}
	}
	return false
}

// ContainsIngredient reports whether the dish uses any of the given
// ingredient ids (preference matching).
func (d *Dish) ContainsIngredient(ids map[uuid.UUID]bool) bool {
	return d.UsesIngredient(ids)
}
