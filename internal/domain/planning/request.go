package planning

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// VarietyLevel limits how often a dish may repeat across the horizon.
type VarietyLevel string

const (
	VarietyRelaxed  VarietyLevel = "relaxed"
	VarietyModerate VarietyLevel = "moderate"
	VarietyStrict   VarietyLevel = "strict"
)

// BatchCookingLevel expresses how strongly the plan should prefer fewer,
// larger cooking events.
type BatchCookingLevel string

const (
	BatchLow    BatchCookingLevel = "low"
	BatchMedium BatchCookingLevel = "medium"
	BatchHigh   BatchCookingLevel = "high"
)

// CategoryBounds is the [min, max] distinct-dish count for one category
// within one meal slot.
type CategoryBounds struct {
	Min int `json:"min" validate:"min=0"`
	Max int `json:"max" validate:"min=0"`
}

// SlotPlan configures one meal slot for every day of the horizon.
type SlotPlan struct {
	Enabled    bool                            `json:"enabled"`
	Categories map[DishCategory]CategoryBounds `json:"categories"`
}

// OwnedIngredient is a quantity the household already has on hand; it is
// subtracted from the shopping list.
type OwnedIngredient struct {
	ID     uuid.UUID       `json:"id"`
	Amount float64         `json:"amount"`
	Unit   MeasurementUnit `json:"unit"`
}

// PlanningRequest is the immutable input of one optimize call.
type PlanningRequest struct {
	HorizonDays int `json:"horizon_days" validate:"min=1,max=7"`
	People      int `json:"people" validate:"min=1,max=6"`

	Slots map[MealSlot]SlotPlan `json:"slots" validate:"required"`

	VarietyLevel      VarietyLevel      `json:"variety_level" validate:"oneof=relaxed moderate strict"`
	BatchCookingLevel BatchCookingLevel `json:"batch_cooking_level" validate:"oneof=low medium high"`

	RequiredDishIDs       []uuid.UUID `json:"required_dish_ids"`
	ExcludedAllergens     []Allergen  `json:"excluded_allergens"`
	ExcludedDishIDs       []uuid.UUID `json:"excluded_dish_ids"`
	ExcludedIngredientIDs []uuid.UUID `json:"excluded_ingredient_ids"`

	PreferredDishIDs       []uuid.UUID       `json:"preferred_dish_ids"`
	PreferredIngredientIDs []uuid.UUID       `json:"preferred_ingredient_ids"`
	OwnedIngredients       []OwnedIngredient `json:"owned_ingredients"`

	// NutrientOverrides replace the configured daily targets per nutrient.
	NutrientOverrides        map[NutrientKey]NutrientTarget `json:"nutrient_overrides"`
	IncludeExtendedNutrients bool                           `json:"include_extended_nutrients"`
}

var requestValidator = validator.New()

// Validate checks the request against its structural invariants.
func (r *PlanningRequest) Validate() error {
	if r.HorizonDays < 1 || r.HorizonDays > 7 {
		return ErrHorizonOutOfRange
	}
	if r.People < 1 || r.People > 6 {
		return ErrPeopleOutOfRange
	}
	if len(r.EnabledSlots()) == 0 {
		return ErrNoEnabledSlots
	}
	for _, plan := range r.Slots {
		for _, b := range plan.Categories {
			if b.Min < 0 || b.Max < b.Min {
				return ErrCategoryBounds
			}
		}
	}
	switch r.VarietyLevel {
	case VarietyRelaxed, VarietyModerate, VarietyStrict:
	default:
		return ErrUnknownVariety
	}
	switch r.BatchCookingLevel {
	case BatchLow, BatchMedium, BatchHigh:
	default:
		return ErrUnknownBatchLevel
	}
	for _, owned := range r.OwnedIngredients {
		if owned.Amount < 0 {
			return ErrOwnedAmountInvalid
		}
	}
	return requestValidator.Struct(r)
}

// EnabledSlots returns the enabled meal slots in day order.
func (r *PlanningRequest) EnabledSlots() []MealSlot {
	var slots []MealSlot
	for _, slot := range AllMealSlots() {
		if plan, ok := r.Slots[slot]; ok && plan.Enabled {
			slots = append(slots, slot)
		}
	}
	return slots
}

// RequiredCategories returns the categories with a minimum count above zero
// in at least one enabled slot.
func (r *PlanningRequest) RequiredCategories() map[DishCategory]bool {
	required := make(map[DishCategory]bool)
	for _, slot := range r.EnabledSlots() {
		for cat, b := range r.Slots[slot].Categories {
			if b.Min > 0 {
				required[cat] = true
			}
		}
	}
	return required
}

// Clone returns a deep copy, used by refine calls to derive a follow-up
// request without mutating the original.
func (r *PlanningRequest) Clone() *PlanningRequest {
	out := *r
	out.Slots = make(map[MealSlot]SlotPlan, len(r.Slots))
	for slot, plan := range r.Slots {
		cats := make(map[DishCategory]CategoryBounds, len(plan.Categories))
		for cat, b := range plan.Categories {
			cats[cat] = b
		}
		out.Slots[slot] = SlotPlan{Enabled: plan.Enabled, Categories: cats}
	}
	out.RequiredDishIDs = append([]uuid.UUID(nil), r.RequiredDishIDs...)
	out.ExcludedAllergens = append([]Allergen(nil), r.ExcludedAllergens...)
	out.ExcludedDishIDs = append([]uuid.UUID(nil), r.ExcludedDishIDs...)
	out.ExcludedIngredientIDs = append([]uuid.UUID(nil), r.ExcludedIngredientIDs...)
	out.PreferredDishIDs = append([]uuid.UUID(nil), r.PreferredDishIDs...)
	out.PreferredIngredientIDs = append([]uuid.UUID(nil), r.PreferredIngredientIDs...)
	out.OwnedIngredients = append([]OwnedIngredient(nil), r.OwnedIngredients...)
	if r.NutrientOverrides != nil {
		out.NutrientOverrides = make(map[NutrientKey]NutrientTarget, len(r.NutrientOverrides))
		for k, t := range r.NutrientOverrides {
			out.NutrientOverrides[k] = t
		}
	}
	return &out
}
