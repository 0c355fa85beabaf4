package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCondition(t *testing.T) {
	engine := NewEngine()

	env := map[string]interface{}{
		"source":   "qr-yard-sign",
		"priority": "high",
		"phone":    "555-0100",
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"equality match", `source == "qr-yard-sign"`, true},
		{"equality miss", `source == "web"`, false},
		{"conjunction", `source == "qr-yard-sign" && priority == "high"`, true},
		{"string helper", `source startsWith "qr"`, true},
		{"undefined variable is nil", `region == "west"`, false},
		{"constant true", `true`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.EvaluateCondition(tt.expr, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConditionErrors(t *testing.T) {
	engine := NewEngine()
	env := map[string]interface{}{"source": "web"}

	_, err := engine.EvaluateCondition("", env)
	assert.Error(t, err)

	_, err = engine.EvaluateCondition(`source`, env)
	assert.Error(t, err, "non-boolean result must not be coerced")
}

func TestValidate(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.Validate(`source == "web"`))
	assert.Error(t, engine.Validate(`source ==`))
}

func TestProgramCacheReuse(t *testing.T) {
	engine := NewEngine()
	env := map[string]interface{}{"source": "web"}

	_, err := engine.EvaluateCondition(`source == "web"`, env)
	require.NoError(t, err)
	_, err = engine.EvaluateCondition(`source == "web"`, env)
	require.NoError(t, err)

	engine.mu.RLock()
	defer engine.mu.RUnlock()
	assert.Len(t, engine.programCache, 1)
}
