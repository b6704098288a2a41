// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/alchemorsel/planner/internal/domain/planning"
)

// DishBuilder provides a fluent interface for building test dishes
type DishBuilder struct {
	id          uuid.UUID
	name        string
	category    planning.DishCategory
	slots       []planning.MealSlot
	nutrients   planning.NutrientVector
	storageDays int
	minServings int
	maxServings int
	ingredients []planning.IngredientRequirement
}

// NewDishBuilder creates a new dish builder with default values
func NewDishBuilder() *DishBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &DishBuilder{
		id:       uuid.New(),
		name:     faker.Dinner(),
		category: planning.CategoryMain,
		slots:    []planning.MealSlot{planning.SlotLunch, planning.SlotDinner},
		nutrients: planning.NutrientVector{
			planning.NutrientEnergy:       450,
			planning.NutrientProtein:      22,
			planning.NutrientFat:          15,
			planning.NutrientCarbohydrate: 55,
			planning.NutrientFiber:        5,
			planning.NutrientSalt:         1.5,
			planning.NutrientCalcium:      150,
			planning.NutrientIron:         2,
			planning.NutrientVitaminA:     200,
			planning.NutrientVitaminC:     25,
		},
		storageDays: 2,
		minServings: 1,
		maxServings: 6,
	}
}

// WithID sets the dish ID
func (b *DishBuilder) WithID(id uuid.UUID) *DishBuilder {
	b.id = id
	return b
}

// WithName sets the dish name
func (b *DishBuilder) WithName(name string) *DishBuilder {
	b.name = name
	return b
}

// WithCategory sets the dish category
func (b *DishBuilder) WithCategory(category planning.DishCategory) *DishBuilder {
	b.category = category
	return b
}

// WithSlots sets the meal slots the dish may be served at
func (b *DishBuilder) WithSlots(slots ...planning.MealSlot) *DishBuilder {
	b.slots = slots
	return b
}

// WithNutrients replaces the per-serving nutrient vector
func (b *DishBuilder) WithNutrients(nutrients planning.NutrientVector) *DishBuilder {
	b.nutrients = nutrients
	return b
}

// WithNutrient sets one per-serving nutrient amount
func (b *DishBuilder) WithNutrient(key planning.NutrientKey, amount float64) *DishBuilder {
	b.nutrients = b.nutrients.Clone()
	b.nutrients[key] = amount
	return b
}

// WithStorageDays sets how many days a cooked batch keeps
func (b *DishBuilder) WithStorageDays(days int) *DishBuilder {
	b.storageDays = days
	return b
}

// WithServingBounds sets the per-event serving bounds
func (b *DishBuilder) WithServingBounds(min, max int) *DishBuilder {
	b.minServings = min
	b.maxServings = max
	return b
}

// WithIngredients sets the raw ingredient requirements
func (b *DishBuilder) WithIngredients(ingredients ...planning.IngredientRequirement) *DishBuilder {
	b.ingredients = ingredients
	return b
}

// WithAllergen adds a single-ingredient allergen carrier
func (b *DishBuilder) WithAllergen(allergen planning.Allergen) *DishBuilder {
	b.ingredients = append(b.ingredients, planning.IngredientRequirement{
		ID:        uuid.New(),
		Name:      string(allergen) + " carrier",
		Amount:    50,
		Unit:      planning.UnitGram,
		Allergens: []planning.Allergen{allergen},
	})
	return b
}

// Build creates the dish
func (b *DishBuilder) Build() *planning.Dish {
	return &planning.Dish{
		ID:          b.id,
		Name:        b.name,
		Category:    b.category,
		Slots:       b.slots,
		Nutrients:   b.nutrients.Clone(),
		StorageDays: b.storageDays,
		MinServings: b.minServings,
		MaxServings: b.maxServings,
		Ingredients: b.ingredients,
	}
}

// CatalogFactory builds dish sets that cover every category.
type CatalogFactory struct {
	faker *gofakeit.Faker
}

// NewCatalogFactory creates a catalog factory with a seeded faker
func NewCatalogFactory(seed int64) *CatalogFactory {
	return &CatalogFactory{faker: gofakeit.New(seed)}
}

// Dishes builds n dishes per category, each servable at lunch and dinner,
// with nutrient vectors varied around realistic per-serving amounts.
func (f *CatalogFactory) Dishes(perCategory int) []*planning.Dish {
	var dishes []*planning.Dish
	for _, cat := range planning.AllCategories() {
		for i := 0; i < perCategory; i++ {
			dish := NewDishBuilder().
				WithName(fmt.Sprintf("%s %s %d", f.faker.Adjective(), cat, i+1)).
				WithCategory(cat).
				WithNutrient(planning.NutrientEnergy, 250+f.faker.Float64Range(0, 400)).
				WithNutrient(planning.NutrientProtein, 8+f.faker.Float64Range(0, 25)).
				WithNutrient(planning.NutrientSalt, f.faker.Float64Range(0.2, 2.5)).
				Build()
			dishes = append(dishes, dish)
		}
	}
	return dishes
}

// RequestBuilder provides a fluent interface for building planning requests
type RequestBuilder struct {
	request *planning.PlanningRequest
}

// NewRequestBuilder creates a request builder with a valid two-day,
// two-person default: lunch and dinner enabled, one main plus one staple
// per slot, relaxed variety, low batch cooking.
func NewRequestBuilder() *RequestBuilder {
	slotPlan := planning.SlotPlan{
		Enabled: true,
		Categories: map[planning.DishCategory]planning.CategoryBounds{
			planning.CategoryMain:   {Min: 1, Max: 1},
			planning.CategoryStaple: {Min: 1, Max: 1},
		},
	}
	return &RequestBuilder{
		request: &planning.PlanningRequest{
			HorizonDays: 2,
			People:      2,
			Slots: map[planning.MealSlot]planning.SlotPlan{
				planning.SlotLunch:  slotPlan,
				planning.SlotDinner: slotPlan,
			},
			VarietyLevel:      planning.VarietyRelaxed,
			BatchCookingLevel: planning.BatchLow,
		},
	}
}

// WithHorizon sets the horizon length in days
func (b *RequestBuilder) WithHorizon(days int) *RequestBuilder {
	b.request.HorizonDays = days
	return b
}

// WithPeople sets the household size
func (b *RequestBuilder) WithPeople(people int) *RequestBuilder {
	b.request.People = people
	return b
}

// WithSlot configures one meal slot
func (b *RequestBuilder) WithSlot(slot planning.MealSlot, plan planning.SlotPlan) *RequestBuilder {
	b.request.Slots[slot] = plan
	return b
}

// WithVariety sets the variety level
func (b *RequestBuilder) WithVariety(level planning.VarietyLevel) *RequestBuilder {
	b.request.VarietyLevel = level
	return b
}

// WithBatchCooking sets the batch-cooking level
func (b *RequestBuilder) WithBatchCooking(level planning.BatchCookingLevel) *RequestBuilder {
	b.request.BatchCookingLevel = level
	return b
}

// WithRequiredDishes marks dishes that must be cooked at least once
func (b *RequestBuilder) WithRequiredDishes(ids ...uuid.UUID) *RequestBuilder {
	b.request.RequiredDishIDs = append(b.request.RequiredDishIDs, ids...)
	return b
}

// WithExcludedDishes marks dishes that must never appear
func (b *RequestBuilder) WithExcludedDishes(ids ...uuid.UUID) *RequestBuilder {
	b.request.ExcludedDishIDs = append(b.request.ExcludedDishIDs, ids...)
	return b
}

// WithExcludedAllergens excludes dishes carrying the allergens
func (b *RequestBuilder) WithExcludedAllergens(allergens ...planning.Allergen) *RequestBuilder {
	b.request.ExcludedAllergens = append(b.request.ExcludedAllergens, allergens...)
	return b
}

// WithPreferredDishes marks dishes the objective should reward
func (b *RequestBuilder) WithPreferredDishes(ids ...uuid.UUID) *RequestBuilder {
	b.request.PreferredDishIDs = append(b.request.PreferredDishIDs, ids...)
	return b
}

// WithOwnedIngredient registers an on-hand ingredient quantity
func (b *RequestBuilder) WithOwnedIngredient(id uuid.UUID, amount float64, unit planning.MeasurementUnit) *RequestBuilder {
	b.request.OwnedIngredients = append(b.request.OwnedIngredients, planning.OwnedIngredient{
		ID: id, Amount: amount, Unit: unit,
	})
	return b
}

// WithNutrientOverride overrides one nutrient target
func (b *RequestBuilder) WithNutrientOverride(key planning.NutrientKey, target planning.NutrientTarget) *RequestBuilder {
	if b.request.NutrientOverrides == nil {
		b.request.NutrientOverrides = make(map[planning.NutrientKey]planning.NutrientTarget)
	}
	b.request.NutrientOverrides[key] = target
	return b
}

// WithExtendedNutrients enables the extended nutrient set
func (b *RequestBuilder) WithExtendedNutrients() *RequestBuilder {
	b.request.IncludeExtendedNutrients = true
	return b
}

// Build returns the planning request
func (b *RequestBuilder) Build() *planning.PlanningRequest {
	return b.request
}
