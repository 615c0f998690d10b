// Package audio synthesizes the horn sounded when a clock expires.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
)

const (
	DefaultFrequency  = 440.0
	DefaultDuration   = 600 * time.Millisecond
	DefaultVolume     = 0.4
	DefaultSampleRate = beep.SampleRate(44100)
)

// Buzzer describes the horn: a square wave with a short attack and a fading tail.
type Buzzer struct {
	Frequency  float64
	Duration   time.Duration
	Volume     float64 // linear gain, 0 is silent
	SampleRate beep.SampleRate
}

// DefaultBuzzer is a 440Hz horn lasting 600ms
func DefaultBuzzer() Buzzer {
	return Buzzer{
		Frequency:  DefaultFrequency,
		Duration:   DefaultDuration,
		Volume:     DefaultVolume,
		SampleRate: DefaultSampleRate,
	}
}

// Streamer returns a fresh stream of the horn
func (b Buzzer) Streamer() beep.Streamer {
	osc := &squareWave{
		freq:     b.Frequency,
		rate:     b.SampleRate,
		duration: b.SampleRate.N(b.Duration),
	}
	shaped := &fade{
		streamer: osc,
		attack:   b.SampleRate.N(10 * time.Millisecond),
		total:    osc.duration,
	}
	return gain(shaped, b.Volume)
}

// Format is the PCM format the horn is rendered in
func (b Buzzer) Format() beep.Format {
	return beep.Format{SampleRate: b.SampleRate, NumChannels: 2, Precision: 2}
}

// WriteWAV encodes the horn as a WAV file
func (b Buzzer) WriteWAV(w io.WriteSeeker) error {
	if b.Duration <= 0 || b.SampleRate <= 0 {
		return errors.New("buzzer needs a positive duration and sample rate")
	}
	if err := wav.Encode(w, b.Streamer(), b.Format()); err != nil {
		return fmt.Errorf("encode buzzer: %w", err)
	}
	return nil
}

// Render returns the horn as WAV bytes
func (b Buzzer) Render() ([]byte, error) {
	buf := &seekBuffer{}
	if err := b.WriteWAV(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// squareWave is a bounded square oscillator
type squareWave struct {
	freq     float64
	phase    float64
	rate     beep.SampleRate
	duration int
	position int
}

func (o *squareWave) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		val := -1.0
		if o.phase < 0.5 {
			val = 1.0
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *squareWave) Err() error { return nil }

// fade ramps the volume up over attack samples and exponentially down over the rest.
type fade struct {
	streamer beep.Streamer
	attack   int
	total    int
	position int
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if f.position < f.attack && f.attack > 0 {
			vol = float64(f.position) / float64(f.attack)
		} else if f.total > f.attack {
			progress := float64(f.position-f.attack) / float64(f.total-f.attack)
			vol = math.Exp(-4 * progress)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }

func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// seekBuffer is an in-memory io.WriteSeeker for the WAV encoder, which
// rewrites the header sizes once the stream has been drained.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	copy(s.buf[s.pos:], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(s.pos) + offset
	case io.SeekEnd:
		next = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, errors.New("negative seek position")
	}
	s.pos = int(next)
	return next, nil
}

func (s *seekBuffer) Bytes() []byte { return bytes.Clone(s.buf) }
