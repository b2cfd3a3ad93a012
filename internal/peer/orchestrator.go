package peer

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/FarhadNuri/VC/internal/media"
	"github.com/FarhadNuri/VC/internal/protocol"
)

// Sender relays envelopes toward the signaling server.
type Sender interface {
	Send(msg *protocol.Message)
}

// Orchestrator owns every Peer Link of one local participant. Handle*
// methods are safe to call from the session event loop and from
// transport callbacks; a single mutex serializes all state machine
// transitions while the slow negotiation steps run outside it.
type Orchestrator struct {
	mu     sync.Mutex
	relay  Sender
	media  media.Factory
	links  map[string]*Link
	sinks  map[string]media.Sink
	names  map[string]string
	log    zerolog.Logger
	closed bool
}

// New creates an orchestrator for one room membership.
func New(relay Sender, factory media.Factory, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		relay: relay,
		media: factory,
		links: make(map[string]*Link),
		sinks: make(map[string]media.Sink),
		names: make(map[string]string),
		log:   log,
	}
}

// ExpectMembers records the members already present at join time. The
// newcomer does not initiate toward them; each of them will send an
// offer, and this list only tells us which remote ids to expect.
func (o *Orchestrator) ExpectMembers(members []protocol.Member) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range members {
		o.names[m.ID] = m.Identifier
		o.log.Debug().Str("remote_id", m.ID).Str("identifier", m.Identifier).Msg("expecting offer")
	}
}

// HandleParticipantJoined starts an initiator link toward a newly
// joined participant: create the session (local source attached),
// produce an offer, relay it.
func (o *Orchestrator) HandleParticipantJoined(connID, identifier string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.names[connID] = identifier
	if old, ok := o.links[connID]; ok {
		// A rejoin under the same connection id; start over.
		o.closeLinkLocked(old)
	}

	l, err := o.newLinkLocked(connID, RoleInitiator)
	if err != nil {
		o.log.Error().Err(err).Str("remote_id", connID).Msg("create initiator link")
		return
	}
	l.state = StateLocalOfferPending
	go o.produceOffer(l)
}

// HandleParticipantLeft tears down the link for a departed remote.
func (o *Orchestrator) HandleParticipantLeft(connID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.names, connID)
	if l, ok := o.links[connID]; ok {
		o.closeLinkLocked(l)
	}
}

// HandleOffer advances or lazily creates the responder link for a
// relayed offer. An offer for a link that is already negotiating or
// established is a protocol anomaly; the stale link is discarded and
// negotiation restarts fresh in responder role rather than ever
// applying a second remote description to one link.
func (o *Orchestrator) HandleOffer(senderID string, blob json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	if old, ok := o.links[senderID]; ok {
		o.log.Warn().
			Str("remote_id", senderID).
			Str("state", old.state.String()).
			Msg("duplicate offer, restarting link as responder")
		o.closeLinkLocked(old)
	}

	l, err := o.newLinkLocked(senderID, RoleResponder)
	if err != nil {
		o.log.Error().Err(err).Str("remote_id", senderID).Msg("create responder link")
		return
	}
	l.state = StateRemoteOfferReceived
	go o.produceAnswer(l, blob)
}

// HandleAnswer applies a relayed answer to the matching initiator
// link.
func (o *Orchestrator) HandleAnswer(senderID string, blob json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.links[senderID]
	if !ok || l.state != StateAwaitingAnswer || l.answering {
		o.log.Warn().Str("remote_id", senderID).Msg("unexpected answer, dropping")
		return
	}
	l.answering = true
	go o.acceptAnswer(l, blob)
}

// HandleCandidate applies a relayed candidate, or queues it if the
// link's remote description is not in place yet. Candidates are
// applied synchronously under the lock, so queued ones flush in
// arrival order exactly once and later arrivals cannot overtake them.
func (o *Orchestrator) HandleCandidate(senderID string, blob json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.links[senderID]
	if !ok || l.state == StateClosed {
		o.log.Debug().Str("remote_id", senderID).Msg("candidate for unknown link, dropping")
		return
	}
	if !l.remoteApplied {
		l.pending = append(l.pending, blob)
		return
	}
	if err := l.session.AddCandidate(blob); err != nil {
		o.log.Warn().Err(err).Str("remote_id", senderID).Msg("apply candidate")
	}
}

// LinkState reports the negotiation state of the link to connID.
func (o *Orchestrator) LinkState(connID string) (State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.links[connID]
	if !ok {
		return StateClosed, false
	}
	return l.state, true
}

// Identify resolves a connection id to its display identifier, if
// known.
func (o *Orchestrator) Identify(connID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	name, ok := o.names[connID]
	return name, ok
}

// Close tears down every link and sink. Called when the local side
// leaves the room or the transport drops.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	for _, l := range o.links {
		o.closeLinkLocked(l)
	}
}

// newLinkLocked builds a link and its media session. Session callbacks
// close over the link object, so events for a superseded link are
// identifiable and ignored.
func (o *Orchestrator) newLinkLocked(remoteID string, role Role) (*Link, error) {
	l := &Link{remoteID: remoteID, role: role, state: StateIdle}
	session, err := o.media.NewSession(media.Callbacks{
		OnCandidate: func(blob json.RawMessage) {
			o.localCandidate(l, blob)
		},
		OnStateChange: func(s media.State) {
			o.sessionStateChanged(l, s)
		},
		OnRemoteTrack: func(t media.RemoteTrack) {
			o.remoteTrackArrived(l, t)
		},
	})
	if err != nil {
		return nil, err
	}
	l.session = session
	o.links[remoteID] = l
	return l, nil
}

// produceOffer runs the slow offer step off the lock and relays the
// result, unless the link was closed or replaced in the meantime.
func (o *Orchestrator) produceOffer(l *Link) {
	blob, err := l.session.CreateOffer(context.Background())

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.activeLocked(l) {
		return
	}
	if err != nil {
		// Leave the link non-advancing; teardown comes from the
		// session state or a departure notification.
		o.log.Error().Err(err).Str("remote_id", l.remoteID).Msg("produce offer")
		return
	}
	l.state = StateAwaitingAnswer
	o.relay.Send(&protocol.Message{
		Kind:     protocol.KindOffer,
		TargetID: l.remoteID,
		Blob:     blob,
	})
}

func (o *Orchestrator) produceAnswer(l *Link, offer json.RawMessage) {
	blob, err := l.session.Answer(context.Background(), offer)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.activeLocked(l) {
		return
	}
	if err != nil {
		o.log.Error().Err(err).Str("remote_id", l.remoteID).Msg("produce answer")
		return
	}
	l.remoteApplied = true
	o.flushCandidatesLocked(l)
	l.state = StateLocalAnswerPending
	o.relay.Send(&protocol.Message{
		Kind:     protocol.KindAnswer,
		TargetID: l.remoteID,
		Blob:     blob,
	})
}

func (o *Orchestrator) acceptAnswer(l *Link, answer json.RawMessage) {
	err := l.session.AcceptAnswer(answer)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.activeLocked(l) {
		return
	}
	if err != nil {
		o.log.Error().Err(err).Str("remote_id", l.remoteID).Msg("apply answer")
		return
	}
	l.remoteApplied = true
	o.flushCandidatesLocked(l)
	// Established once the transport reports connected.
}

// flushCandidatesLocked applies queued candidates in arrival order.
// The queue is cleared first so a flush can never run twice.
func (o *Orchestrator) flushCandidatesLocked(l *Link) {
	pending := l.pending
	l.pending = nil
	for _, blob := range pending {
		if err := l.session.AddCandidate(blob); err != nil {
			o.log.Warn().Err(err).Str("remote_id", l.remoteID).Msg("apply queued candidate")
		}
	}
}

// localCandidate relays one locally gathered candidate. The remote
// side queues it if its description isn't applied yet.
func (o *Orchestrator) localCandidate(l *Link, blob json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.activeLocked(l) {
		return
	}
	o.relay.Send(&protocol.Message{
		Kind:     protocol.KindICECandidate,
		TargetID: l.remoteID,
		Blob:     blob,
	})
}

func (o *Orchestrator) sessionStateChanged(l *Link, s media.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.activeLocked(l) {
		return
	}
	switch s {
	case media.StateConnected:
		l.state = StateEstablished
		o.log.Info().Str("remote_id", l.remoteID).Msg("link established")
	case media.StateFailed, media.StateDisconnected, media.StateClosed:
		o.log.Info().Str("remote_id", l.remoteID).Str("media_state", s.String()).Msg("link lost")
		o.closeLinkLocked(l)
	}
}

// remoteTrackArrived binds the inbound stream to a sink for that
// remote. A duplicate or renegotiated stream replaces the old sink,
// which is torn down first.
func (o *Orchestrator) remoteTrackArrived(l *Link, t media.RemoteTrack) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.activeLocked(l) {
		return
	}
	if old, ok := o.sinks[l.remoteID]; ok {
		old.Close()
	}
	o.sinks[l.remoteID] = o.media.NewSink(t)
}

// activeLocked reports whether l is still the live link for its
// remote. False for closed, superseded, or post-Close links; callers
// discard their results in that case.
func (o *Orchestrator) activeLocked(l *Link) bool {
	return !o.closed && l.state != StateClosed && o.links[l.remoteID] == l
}

func (o *Orchestrator) closeLinkLocked(l *Link) {
	if l.state == StateClosed {
		return
	}
	l.state = StateClosed
	l.session.Close()
	if o.links[l.remoteID] == l {
		delete(o.links, l.remoteID)
		if sink, ok := o.sinks[l.remoteID]; ok {
			sink.Close()
			delete(o.sinks, l.remoteID)
		}
	}
	o.log.Debug().Str("remote_id", l.remoteID).Str("role", l.role.String()).Msg("link closed")
}
