package clock

import "fmt"

// FormatShot renders the shot clock the way the scoreboard shows it:
// whole seconds (truncated) above eight seconds, seconds with hundredths below.
func FormatShot(remainingMs int64) string {
	if remainingMs < 0 {
		remainingMs = 0
	}
	if remainingMs > ShotFineThresholdMs {
		return fmt.Sprintf("%d", remainingMs/1000)
	}
	return fmt.Sprintf("%d.%02d", remainingMs/1000, (remainingMs%1000)/10)
}

// FormatGame renders m:ss while a minute or more remains and m:ss.hh in the last minute.
func FormatGame(remainingMs int64) string {
	if remainingMs < 0 {
		remainingMs = 0
	}
	secs := remainingMs / 1000
	m, s := secs/60, secs%60
	if secs >= 60 {
		return fmt.Sprintf("%d:%02d", m, s)
	}
	return fmt.Sprintf("%d:%02d.%02d", m, s, (remainingMs%1000)/10)
}

// FormatMinutes renders accumulated play time as m:ss
func FormatMinutes(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// DisplayGranularity reports whether a clock is currently showing whole seconds or hundredths.
type DisplayGranularity int

const (
	GranularitySeconds DisplayGranularity = iota
	GranularityHundredths
)

// Granularity returns the display mode for the given clock and remaining time
func Granularity(kind Kind, remainingMs int64) DisplayGranularity {
	switch kind {
	case KindShot:
		if remainingMs > ShotFineThresholdMs {
			return GranularitySeconds
		}
	case KindGame:
		if remainingMs >= GameFineThresholdMs {
			return GranularitySeconds
		}
	}
	return GranularityHundredths
}
