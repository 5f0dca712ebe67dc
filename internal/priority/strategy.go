package priority

import (
	"strings"
)

// Strategy selects one of the built-in weight profiles.
type Strategy int

const (
	SmartBalance Strategy = iota
	FastestWins
	HighImpact
	DeadlineDriven
)

// DefaultStrategy is used when a request names no strategy.
const DefaultStrategy = SmartBalance

// Weights is the contribution of each factor to the composite score.
type Weights struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependencies"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Urgency + w.Importance + w.Effort + w.Dependency
}

type profile struct {
	name        string
	description string
	weights     Weights
}

var profiles = [...]profile{
	SmartBalance: {
		name:        "smart_balance",
		description: "Balances deadlines, importance, effort and blocking work",
		weights:     Weights{Urgency: 0.35, Importance: 0.30, Effort: 0.15, Dependency: 0.20},
	},
	FastestWins: {
		name:        "fastest_wins",
		description: "Prefers quick wins with low estimated effort",
		weights:     Weights{Urgency: 0.20, Importance: 0.20, Effort: 0.50, Dependency: 0.10},
	},
	HighImpact: {
		name:        "high_impact",
		description: "Prefers the most important work regardless of effort",
		weights:     Weights{Urgency: 0.15, Importance: 0.60, Effort: 0.10, Dependency: 0.15},
	},
	DeadlineDriven: {
		name:        "deadline_driven",
		description: "Prefers whatever is due soonest or already overdue",
		weights:     Weights{Urgency: 0.60, Importance: 0.20, Effort: 0.05, Dependency: 0.15},
	},
}

// Strategies lists every built-in strategy in table order.
func Strategies() []Strategy {
	out := make([]Strategy, len(profiles))
	for i := range profiles {
		out[i] = Strategy(i)
	}
	return out
}

// ParseStrategy resolves a strategy name. An empty name selects the default.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultStrategy, nil
	}
	for i, p := range profiles {
		if p.name == name {
			return Strategy(i), nil
		}
	}
	return 0, invalidStrategy(name)
}

// Valid reports whether s is a built-in strategy.
func (s Strategy) Valid() bool {
	return s >= 0 && int(s) < len(profiles)
}

func (s Strategy) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return profiles[s].name
}

// Description returns a one-line summary of the strategy.
func (s Strategy) Description() string {
	if !s.Valid() {
		return ""
	}
	return profiles[s].description
}

// Weights returns the weight profile of s.
func (s Strategy) Weights() Weights {
	if !s.Valid() {
		return Weights{}
	}
	return profiles[s].weights
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, invalidStrategy(s.String())
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StrategyInfo describes a strategy for listings.
type StrategyInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weights     Weights `json:"weights"`
}

// Catalog returns the description of every built-in strategy.
func Catalog() []StrategyInfo {
	out := make([]StrategyInfo, 0, len(profiles))
	for _, s := range Strategies() {
		out = append(out, StrategyInfo{Name: s.String(), Description: s.Description(), Weights: s.Weights()})
	}
	return out
}

// StrategyNames returns the names of the built-in strategies in table order.
func StrategyNames() []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.name)
	}
	return out
}

func strategyList() string {
	return strings.Join(StrategyNames(), ", ")
}
