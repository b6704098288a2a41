package planning

import (
	"fmt"

	"github.com/google/uuid"
)

// CookingEvent is one instance of preparing a dish on a given day,
// producing a fixed serving count.
type CookingEvent struct {
	DishID   uuid.UUID `json:"dish_id"`
	DishName string    `json:"dish_name"`
	Day      int       `json:"day"` // zero-based day within the horizon
	Servings int       `json:"servings"`
}

// ConsumptionEvent assigns servings from a cooking event to a (day, slot).
// Day is always within [CookDay, CookDay + storage days of the dish].
type ConsumptionEvent struct {
	DishID   uuid.UUID `json:"dish_id"`
	CookDay  int       `json:"cook_day"`
	Day      int       `json:"day"`
	Slot     MealSlot  `json:"slot"`
	Servings int       `json:"servings"`
}

// ServedDish is one dish with servings inside a daily assignment.
type ServedDish struct {
	DishID   uuid.UUID    `json:"dish_id"`
	DishName string       `json:"dish_name"`
	Category DishCategory `json:"category"`
	Servings int          `json:"servings"`
}

// DailyAssignment lists what is eaten per meal slot on one day.
type DailyAssignment struct {
	Day   int                       `json:"day"`
	Meals map[MealSlot][]ServedDish `json:"meals"`
}

// ShoppingItem is aggregated raw-ingredient demand across all cooking
// events, minus owned quantities, in display units.
type ShoppingItem struct {
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Name         string          `json:"name"`
	Amount       float64         `json:"amount"`
	Unit         MeasurementUnit `json:"unit"`
}

// WarningCode classifies advisory plan warnings.
type WarningCode string

const (
	WarnSolveDegraded    WarningCode = "solve_degraded"
	WarnGreedyDay        WarningCode = "greedy_day"
	WarnNutrientDeficit  WarningCode = "nutrient_deficit"
	WarnNutrientExceeded WarningCode = "nutrient_exceeded"
)

// Warning is an advisory note attached to a returned plan. Warnings never
// fail the call.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// MultiDayPlan is the complete output of one optimize call.
type MultiDayPlan struct {
	PlanID           uuid.UUID                   `json:"plan_id"`
	HorizonDays      int                         `json:"horizon_days"`
	People           int                         `json:"people"`
	CookingSchedule  []CookingEvent              `json:"cooking_schedule"`
	Consumption      []ConsumptionEvent          `json:"consumption"`
	DailyAssignments []DailyAssignment           `json:"daily_assignments"`
	ShoppingList     []ShoppingItem              `json:"shopping_list"`
	NutrientTotals   NutrientVector              `json:"overall_nutrient_totals"`
	Achievement      map[NutrientKey]float64     `json:"overall_achievement_percentages"`
	Warnings         []Warning                   `json:"warnings"`
	Degraded         bool                        `json:"degraded"`
}

// CheckConservation verifies that every cooking event's servings are fully
// consumed, with no shortfall and no waste.
func (p *MultiDayPlan) CheckConservation() error {
	consumed := make(map[string]int)
	for _, c := range p.Consumption {
		consumed[conservationKey(c.DishID, c.CookDay)] += c.Servings
	}
	for _, e := range p.CookingSchedule {
		key := conservationKey(e.DishID, e.Day)
		if consumed[key] != e.Servings {
			return fmt.Errorf("dish %s cooked day %d: %d servings cooked, %d consumed",
				e.DishID, e.Day, e.Servings, consumed[key])
		}
		delete(consumed, key)
	}
	for key, n := range consumed {
		if n != 0 {
			return fmt.Errorf("consumption without cooking event: %s", key)
		}
	}
	return nil
}

func conservationKey(dish uuid.UUID, day int) string {
	return fmt.Sprintf("%s@%d", dish, day)
}
