package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/courtside/go/internal/models"
)

func TestBuiltin(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)

	fiba, err := reg.Lookup("FIBA")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRuleConfig(), fiba.Rules)

	nba, err := reg.Lookup(" nba ")
	require.NoError(t, err)
	assert.Equal(t, 6, nba.Rules.Limits.Personal)
	assert.True(t, nba.Rules.CountsTowardTeam.Common)
	assert.False(t, nba.Rules.CountsTowardTeam.Offensive)

	_, err = reg.Lookup("ncaa")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	names := []string{}
	for _, p := range reg.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"fiba", "nba"}, names)
}

func TestParse_RejectsZeroLimits(t *testing.T) {
	_, err := Parse([]byte(`
presets:
  - name: broken
    rules:
      limits: {personal: 0, technical: 2, unsportsmanlike: 2}
`))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	rc := Normalize(models.RuleConfig{Limits: models.FoulLimits{Personal: 0, Technical: -3, Unsportsmanlike: 4}})
	assert.Equal(t, models.FoulLimits{Personal: 1, Technical: 1, Unsportsmanlike: 4}, rc.Limits)
}
