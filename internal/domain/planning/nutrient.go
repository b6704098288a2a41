package planning

// NutrientKey identifies a tracked nutrient.
type NutrientKey string

// Core nutrients are always active in a solve.
const (
	NutrientEnergy       NutrientKey = "energy"
	NutrientProtein      NutrientKey = "protein"
	NutrientFat          NutrientKey = "fat"
	NutrientCarbohydrate NutrientKey = "carbohydrate"
	NutrientFiber        NutrientKey = "fiber"
	NutrientSalt         NutrientKey = "salt"
	NutrientCalcium      NutrientKey = "calcium"
	NutrientIron         NutrientKey = "iron"
	NutrientVitaminA     NutrientKey = "vitamin_a"
	NutrientVitaminC     NutrientKey = "vitamin_c"
)

// Extended nutrients participate only when the request enables them.
const (
	NutrientVitaminD    NutrientKey = "vitamin_d"
	NutrientVitaminE    NutrientKey = "vitamin_e"
	NutrientVitaminK    NutrientKey = "vitamin_k"
	NutrientVitaminB1   NutrientKey = "vitamin_b1"
	NutrientVitaminB2   NutrientKey = "vitamin_b2"
	NutrientVitaminB6   NutrientKey = "vitamin_b6"
	NutrientVitaminB12  NutrientKey = "vitamin_b12"
	NutrientFolate      NutrientKey = "folate"
	NutrientMagnesium   NutrientKey = "magnesium"
	NutrientPotassium   NutrientKey = "potassium"
	NutrientZinc        NutrientKey = "zinc"
	NutrientPhosphorus  NutrientKey = "phosphorus"
	NutrientCholesterol NutrientKey = "cholesterol"
)

// CoreNutrients returns the fixed set that is active in every solve.
func CoreNutrients() []NutrientKey {
	return []NutrientKey{
		NutrientEnergy,
		NutrientProtein,
		NutrientFat,
		NutrientCarbohydrate,
		NutrientFiber,
		NutrientSalt,
		NutrientCalcium,
		NutrientIron,
		NutrientVitaminA,
		NutrientVitaminC,
	}
}

// ExtendedNutrients returns the togglable extended set.
func ExtendedNutrients() []NutrientKey {
	return []NutrientKey{
		NutrientVitaminD,
		NutrientVitaminE,
		NutrientVitaminK,
		NutrientVitaminB1,
		NutrientVitaminB2,
		NutrientVitaminB6,
		NutrientVitaminB12,
		NutrientFolate,
		NutrientMagnesium,
		NutrientPotassium,
		NutrientZinc,
		NutrientPhosphorus,
		NutrientCholesterol,
	}
}

// NutrientVector maps nutrient keys to per-serving amounts.
type NutrientVector map[NutrientKey]float64

// Clone returns a copy of the vector.
func (v NutrientVector) Clone() NutrientVector {
	out := make(NutrientVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// AddScaled adds factor*other into v in place.
func (v NutrientVector) AddScaled(other NutrientVector, factor float64) {
	for k, val := range other {
		v[k] += val * factor
	}
}

// PenaltyDirection describes which side of a target is penalized.
type PenaltyDirection string

const (
	// PenaltyDeficit penalizes intake below the target only.
	PenaltyDeficit PenaltyDirection = "deficit"
	// PenaltyCap penalizes intake above the limit only.
	PenaltyCap PenaltyDirection = "cap"
	// PenaltyRange penalizes intake outside [Min, Max] on both sides.
	PenaltyRange PenaltyDirection = "range"
)

// NutrientTarget describes the daily per-person bounds for one nutrient.
// Min is the target for deficit-type nutrients and the lower edge for
// range-type ones. Max is the limit for cap-type nutrients and the upper
// edge for range-type ones.
type NutrientTarget struct {
	Min       float64          `json:"min,omitempty"`
	Max       float64          `json:"max,omitempty"`
	Weight    float64          `json:"weight,omitempty"`
	Direction PenaltyDirection `json:"direction,omitempty"`
}

// Reference returns the value deviations are normalized against.
func (t NutrientTarget) Reference() float64 {
	switch t.Direction {
	case PenaltyCap:
		return t.Max
	default:
		return t.Min
	}
}
