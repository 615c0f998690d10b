package clock

import "time"

// Kind distinguishes the two clocks of a match
type Kind string

const (
	KindGame Kind = "game"
	KindShot Kind = "shot"
)

const (
	shotCoarseCadence = 200 * time.Millisecond
	gameCoarseCadence = 250 * time.Millisecond
	fineCadence       = 50 * time.Millisecond

	// ShotFineThresholdMs is the remaining time at or below which the shot clock shows hundredths.
	ShotFineThresholdMs int64 = 8_000
	// GameFineThresholdMs is the remaining time below which the game clock shows hundredths.
	GameFineThresholdMs int64 = 60_000
)

// CadencePolicy picks the tick interval for a remaining time
type CadencePolicy func(remainingMs int64) time.Duration

// ShotCadence ticks every 200ms above eight seconds and every 50ms from there down.
func ShotCadence(remainingMs int64) time.Duration {
	if remainingMs > ShotFineThresholdMs {
		return shotCoarseCadence
	}
	return fineCadence
}

// GameCadence ticks every 250ms while a minute or more remains and every 50ms in the last minute.
func GameCadence(remainingMs int64) time.Duration {
	if remainingMs >= GameFineThresholdMs {
		return gameCoarseCadence
	}
	return fineCadence
}
