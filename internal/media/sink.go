package media

import (
	"sync"

	"github.com/rs/zerolog"
)

// trackSink drains one remote track. Draining keeps the transport's
// receive buffers moving whether or not a playback pipeline is
// attached downstream.
type trackSink struct {
	log  zerolog.Logger
	done chan struct{}
	once sync.Once
}

func newTrackSink(track RemoteTrack, log zerolog.Logger) *trackSink {
	s := &trackSink{
		log:  log.With().Str("track_id", track.ID()).Logger(),
		done: make(chan struct{}),
	}
	go s.drain(track)
	return s
}

func (s *trackSink) drain(track RemoteTrack) {
	s.log.Debug().Msg("sink attached")
	buf := make([]byte, 1500)
	for {
		if _, err := track.Read(buf); err != nil {
			s.log.Debug().Err(err).Msg("sink detached")
			return
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

func (s *trackSink) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
