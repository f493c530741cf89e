package formula_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/emberfell/emberfell/internal/game/formula"
)

func TestEval(t *testing.T) {
	b := formula.Bindings{Base: 10, Attribute: 14, AttributeBonus: 2}

	tests := []struct {
		expr string
		want float64
	}{
		{"base", 10},
		{"attribute", 14},
		{"attribute_bonus", 2},
		{"base + attribute_bonus", 12},
		{"base + attribute_bonus * 2", 14},
		{"(base + attribute_bonus) * 2", 24},
		{"base - attribute / 2", 3},
		{"-base + 12", 2},
		{"base * 1.5", 15},
		{"  base+attribute_bonus ", 12},
		{"10 - 2 - 3", 5}, // left associative
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := formula.Eval(tc.expr, b)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEval_Rejects(t *testing.T) {
	b := formula.Bindings{Base: 10}

	exprs := []string{
		"",
		"base +",
		"strength",            // only the three named substitutions
		"base ** 2",
		"base + (attribute",
		"__import__",
		"base; attribute",
		"max(base, 1)",
		"base $ 2",
		"1 / 0",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := formula.Eval(expr, b)
			assert.Error(t, err)
		})
	}
}

func TestEvalInt_Truncates(t *testing.T) {
	got, err := formula.EvalInt("base * 1.9", formula.Bindings{Base: 5})
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}

func TestEval_Property_BindingsOnlyInputs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := formula.Bindings{
			Base:           float64(rapid.IntRange(0, 100).Draw(rt, "base")),
			Attribute:      float64(rapid.IntRange(1, 30).Draw(rt, "attribute")),
			AttributeBonus: float64(rapid.IntRange(-5, 10).Draw(rt, "bonus")),
		}
		got, err := formula.Eval("base + attribute_bonus * 2", b)
		require.NoError(rt, err)
		assert.Equal(rt, b.Base+b.AttributeBonus*2, got)
	})
}
