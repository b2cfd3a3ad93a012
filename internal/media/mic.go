package media

import (
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"
)

// Mic is the shared local audio source. Every session attaches the
// same underlying track, so one live/muted switch gates all of them
// uniformly and immediately. Capture hardware is outside this module;
// whatever drives it feeds encoded Opus frames through WriteSample.
type Mic struct {
	track *webrtc.TrackLocalStaticSample
	live  atomic.Bool
}

// NewMic creates the shared Opus source track. It starts muted.
func NewMic() (*Mic, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio", "vc-mic",
	)
	if err != nil {
		return nil, err
	}
	return &Mic{track: track}, nil
}

// SetLive opens or mutes the source for every attached session.
func (m *Mic) SetLive(live bool) {
	m.live.Store(live)
}

// Live reports whether the source is currently open.
func (m *Mic) Live() bool {
	return m.live.Load()
}

// WriteSample pushes one encoded audio frame to all attached sessions.
// Frames written while muted are dropped at the source so no link ever
// sees them.
func (m *Mic) WriteSample(data []byte, duration time.Duration) error {
	if !m.live.Load() {
		return nil
	}
	return m.track.WriteSample(pionmedia.Sample{Data: data, Duration: duration})
}
