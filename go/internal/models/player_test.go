package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlayerID(t *testing.T) {
	team, number, err := ParsePlayerID(PlayerID(SideAway, "00"))
	require.NoError(t, err)
	assert.Equal(t, SideAway, team)
	assert.Equal(t, "00", number)

	for _, id := range []string{"", "7", "home#", "bench#7", "#7"} {
		_, _, err := ParsePlayerID(id)
		assert.Error(t, err, id)
	}
}
