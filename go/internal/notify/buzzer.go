package notify

import (
	"context"
	"fmt"

	"github.com/mcdev12/courtside/go/internal/audio"
	"github.com/mcdev12/courtside/go/internal/events"
)

// AudioSink plays or forwards a rendered WAV clip
type AudioSink interface {
	PlayWAV(ctx context.Context, wav []byte) error
}

// Buzzer sounds the horn on buzzer events. The clip is rendered once up front.
type Buzzer struct {
	clip []byte
	sink AudioSink
}

// NewBuzzer renders the horn and returns a notifier that sends it to sink
func NewBuzzer(horn audio.Buzzer, sink AudioSink) (*Buzzer, error) {
	clip, err := horn.Render()
	if err != nil {
		return nil, fmt.Errorf("render buzzer: %w", err)
	}
	return &Buzzer{clip: clip, sink: sink}, nil
}

// Clip returns the rendered WAV
func (b *Buzzer) Clip() []byte { return b.clip }

func (b *Buzzer) Publish(ctx context.Context, event events.Event) error {
	if event.Type != events.TypeBuzzer {
		return nil
	}
	return b.sink.PlayWAV(ctx, b.clip)
}
