package domain

// TripParameters is the set of attributes gathered by the conversation and
// consumed by the itinerary request. Dates are carried exactly as the model
// produced them (YYYY-MM-DD expected).
type TripParameters struct {
	Destination   string   `json:"destination"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	MinBudget     *float64 `json:"minBudget"`
	MaxBudget     *float64 `json:"maxBudget"`
	Interests     []string `json:"interests"`
	FreeformNotes string   `json:"prompt"`
}

// Clone returns a deep copy.
func (p TripParameters) Clone() TripParameters {
	out := p
	if p.MinBudget != nil {
		v := *p.MinBudget
		out.MinBudget = &v
	}
	if p.MaxBudget != nil {
		v := *p.MaxBudget
		out.MaxBudget = &v
	}
	if p.Interests != nil {
		out.Interests = append([]string(nil), p.Interests...)
	}
	return out
}

// Budget returns a pointer to v, for building parameters in literals.
func Budget(v float64) *float64 {
	return &v
}
