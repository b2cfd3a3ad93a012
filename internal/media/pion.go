package media

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

// ICEConfig names the STUN/TURN servers sessions negotiate through.
type ICEConfig struct {
	STUNServers []string
	TURNServers []string
	TURNUser    string
	TURNPass    string
}

func (c ICEConfig) servers() []webrtc.ICEServer {
	servers := []webrtc.ICEServer{{URLs: c.STUNServers}}
	if len(c.TURNServers) > 0 {
		servers = append(servers, webrtc.ICEServer{
			URLs:       c.TURNServers,
			Username:   c.TURNUser,
			Credential: c.TURNPass,
		})
	}
	return servers
}

// Engine implements Factory on pion/webrtc. All sessions it creates
// send the shared Mic track.
type Engine struct {
	ice webrtc.Configuration
	mic *Mic
	log zerolog.Logger
}

// NewEngine builds the session factory around a shared source.
func NewEngine(ice ICEConfig, mic *Mic, log zerolog.Logger) *Engine {
	return &Engine{
		ice: webrtc.Configuration{ICEServers: ice.servers()},
		mic: mic,
		log: log,
	}
}

// NewSession opens a peer connection with the local source attached
// and the given callbacks wired.
func (e *Engine) NewSession(cb Callbacks) (Session, error) {
	pc, err := webrtc.NewPeerConnection(e.ice)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	if _, err := pc.AddTrack(e.mic.track); err != nil {
		pc.Close()
		return nil, fmt.Errorf("attach local source: %w", err)
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil || cb.OnCandidate == nil {
			return
		}
		blob, err := json.Marshal(c.ToJSON())
		if err != nil {
			e.log.Error().Err(err).Msg("marshal candidate")
			return
		}
		cb.OnCandidate(blob)
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if cb.OnStateChange == nil {
			return
		}
		cb.OnStateChange(mapState(s))
	})

	pc.OnTrack(func(t *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if t.Kind() != webrtc.RTPCodecTypeAudio || cb.OnRemoteTrack == nil {
			return
		}
		cb.OnRemoteTrack(remoteTrack{t})
	})

	return &pionSession{pc: pc}, nil
}

// NewSink attaches a draining sink to a remote track.
func (e *Engine) NewSink(track RemoteTrack) Sink {
	return newTrackSink(track, e.log)
}

func mapState(s webrtc.PeerConnectionState) State {
	switch s {
	case webrtc.PeerConnectionStateConnected:
		return StateConnected
	case webrtc.PeerConnectionStateDisconnected:
		return StateDisconnected
	case webrtc.PeerConnectionStateFailed:
		return StateFailed
	case webrtc.PeerConnectionStateClosed:
		return StateClosed
	}
	return StateConnecting
}

type pionSession struct {
	pc *webrtc.PeerConnection
}

func (s *pionSession) CreateOffer(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	// Candidates trickle separately; the description goes out
	// immediately.
	return json.Marshal(s.pc.LocalDescription())
}

func (s *pionSession) Answer(ctx context.Context, offer json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var remote webrtc.SessionDescription
	if err := json.Unmarshal(offer, &remote); err != nil {
		return nil, fmt.Errorf("parse offer: %w", err)
	}
	if err := s.pc.SetRemoteDescription(remote); err != nil {
		return nil, fmt.Errorf("set remote description: %w", err)
	}
	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return json.Marshal(s.pc.LocalDescription())
}

func (s *pionSession) AcceptAnswer(answer json.RawMessage) error {
	var remote webrtc.SessionDescription
	if err := json.Unmarshal(answer, &remote); err != nil {
		return fmt.Errorf("parse answer: %w", err)
	}
	if err := s.pc.SetRemoteDescription(remote); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

func (s *pionSession) AddCandidate(candidate json.RawMessage) error {
	var init webrtc.ICECandidateInit
	if err := json.Unmarshal(candidate, &init); err != nil {
		return fmt.Errorf("parse candidate: %w", err)
	}
	if err := s.pc.AddICECandidate(init); err != nil {
		return fmt.Errorf("add candidate: %w", err)
	}
	return nil
}

func (s *pionSession) Close() error {
	return s.pc.Close()
}

type remoteTrack struct {
	t *webrtc.TrackRemote
}

func (r remoteTrack) ID() string { return r.t.ID() }

func (r remoteTrack) Read(b []byte) (int, error) {
	n, _, err := r.t.Read(b)
	return n, err
}
