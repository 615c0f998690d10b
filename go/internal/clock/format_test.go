package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatShot(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{24000, "24"},
		{8999, "8"},
		{8001, "8"},
		{8000, "8.00"},
		{7800, "7.80"},
		{55, "0.05"},
		{-10, "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatShot(tt.ms), "ms=%d", tt.ms)
	}
}

func TestFormatGame(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{720000, "12:00"},
		{60000, "1:00"},
		{59990, "0:59.99"},
		{5430, "0:05.43"},
		{0, "0:00.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatGame(tt.ms), "ms=%d", tt.ms)
	}
}

func TestGranularity(t *testing.T) {
	assert.Equal(t, GranularitySeconds, Granularity(KindShot, 8001))
	assert.Equal(t, GranularityHundredths, Granularity(KindShot, 8000))
	assert.Equal(t, GranularitySeconds, Granularity(KindGame, 60000))
	assert.Equal(t, GranularityHundredths, Granularity(KindGame, 59999))
	assert.Equal(t, "2:05", FormatMinutes(125400))
}
