package priority

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyWeightsSumToOne(t *testing.T) {
	t.Parallel()

	for _, s := range Strategies() {
		assert.InDelta(t, 1.0, s.Weights().Sum(), 1e-9, s.String())
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for _, s := range Strategies() {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, SmartBalance, got)

	_, err = ParseStrategy("unknown_strategy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStrategy))
	assert.False(t, errors.Is(err, ErrNoTasksAvailable))
	assert.Contains(t, err.Error(), "unknown_strategy")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindInvalidStrategy, perr.Kind)
}

func TestStrategyTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"smart_balance", "fastest_wins", "high_impact", "deadline_driven"}, StrategyNames())
	assert.Equal(t, Weights{Urgency: 0.20, Importance: 0.20, Effort: 0.50, Dependency: 0.10}, FastestWins.Weights())
	assert.Equal(t, Weights{Urgency: 0.60, Importance: 0.20, Effort: 0.05, Dependency: 0.15}, DeadlineDriven.Weights())

	catalog := Catalog()
	require.Len(t, catalog, 4)
	assert.Equal(t, "high_impact", catalog[2].Name)
	assert.NotEmpty(t, catalog[2].Description)
}

func TestStrategyText(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(struct {
		S Strategy `json:"s"`
	}{S: HighImpact})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"high_impact"}`, string(raw))

	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte("deadline_driven")))
	assert.Equal(t, DeadlineDriven, s)
	assert.Error(t, s.UnmarshalText([]byte("slowest_wins")))

	assert.False(t, Strategy(9).Valid())
	assert.Equal(t, "unknown", Strategy(9).String())
	_, err = Strategy(9).MarshalText()
	assert.Error(t, err)
}
