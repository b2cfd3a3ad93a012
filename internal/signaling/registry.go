package signaling

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/FarhadNuri/VC/internal/protocol"
)

// Registry errors. The first two are caller errors reported back to
// the requesting client; code-space exhaustion is systemic and should
// essentially never happen with a 36^5 code space.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrCodeSpaceExhausted = errors.New("unable to generate unique room code")
)

// RegistryConfig carries the observable constants of the room
// protocol. Zero values fall back to the defaults below.
type RegistryConfig struct {
	MaxRoomSize    int
	CodeLength     int
	CodeAlphabet   string
	MaxCodeRetries int
}

const (
	DefaultMaxRoomSize    = 5
	DefaultCodeLength     = 5
	DefaultCodeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultMaxCodeRetries = 100
)

func (c RegistryConfig) withDefaults() RegistryConfig {
	if c.MaxRoomSize <= 0 {
		c.MaxRoomSize = DefaultMaxRoomSize
	}
	if c.CodeLength <= 0 {
		c.CodeLength = DefaultCodeLength
	}
	if c.CodeAlphabet == "" {
		c.CodeAlphabet = DefaultCodeAlphabet
	}
	if c.MaxCodeRetries <= 0 {
		c.MaxCodeRetries = DefaultMaxCodeRetries
	}
	return c
}

// Participant is one live connection's session state. A participant
// exists from upgrade to disconnect and belongs to at most one room.
type Participant struct {
	ConnID     string
	Identifier string
	RoomCode   string
}

// Room is an active code-addressed group of participants. A room never
// exists empty: it is created with its first member and destroyed when
// the last one leaves.
type Room struct {
	Code      string
	CreatedAt time.Time
	Members   map[string]*Participant
}

// Registry owns every active room and participant session. All
// mutations run under one mutex; with small expected room counts,
// global serialization is simpler than per-room locks and rules out
// capacity-check races by construction.
type Registry struct {
	mu    sync.Mutex
	cfg   RegistryConfig
	rooms map[string]*Room
	// members indexes participants that currently hold a room
	// membership, keyed by connection id.
	members map[string]*Participant
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		cfg:     cfg.withDefaults(),
		rooms:   make(map[string]*Room),
		members: make(map[string]*Participant),
	}
}

// CreateRoom registers a new room with connID as its sole member and
// returns the room code and the creator's identifier (always User-1).
// Fails with ErrCodeSpaceExhausted if no free code is found within the
// bounded retry count.
func (r *Registry) CreateRoom(connID string) (code, identifier string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err = r.generateCode()
	if err != nil {
		return "", "", err
	}

	p := &Participant{ConnID: connID, Identifier: "User-1", RoomCode: code}
	r.rooms[code] = &Room{
		Code:      code,
		CreatedAt: time.Now(),
		Members:   map[string]*Participant{connID: p},
	}
	r.members[connID] = p
	return code, p.Identifier, nil
}

// JoinRoom adds connID to the room addressed by code (case-insensitive,
// surrounding whitespace ignored) and returns the normalized code, the
// assigned identifier, and the other current members so the caller
// knows which peers to expect offers from.
func (r *Registry) JoinRoom(connID, code string) (string, string, []protocol.Member, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[normalized]
	if !ok {
		return "", "", nil, ErrRoomNotFound
	}
	if len(room.Members) >= r.cfg.MaxRoomSize {
		return "", "", nil, ErrRoomFull
	}

	existing := make([]string, 0, len(room.Members))
	others := make([]protocol.Member, 0, len(room.Members))
	for _, m := range room.Members {
		existing = append(existing, m.Identifier)
		others = append(others, protocol.Member{ID: m.ConnID, Identifier: m.Identifier})
	}

	p := &Participant{
		ConnID:     connID,
		Identifier: NextIdentifier(existing),
		RoomCode:   normalized,
	}
	room.Members[connID] = p
	r.members[connID] = p
	return normalized, p.Identifier, others, nil
}

// LeaveInfo describes the outcome of a Leave so the relay can notify
// the remaining members.
type LeaveInfo struct {
	RoomCode   string
	Identifier string
	// Remaining holds the connection ids still in the room. Empty
	// when the room was destroyed.
	Remaining []string
	Destroyed bool
}

// Leave removes connID from its room, destroying the room if it
// empties. It is idempotent: a second call for the same connection
// (explicit leave racing a disconnect) reports ok=false and changes
// nothing, so participant-left is never broadcast twice.
func (r *Registry) Leave(connID string) (LeaveInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.members[connID]
	if !ok {
		return LeaveInfo{}, false
	}
	delete(r.members, connID)

	room := r.rooms[p.RoomCode]
	delete(room.Members, connID)

	info := LeaveInfo{RoomCode: p.RoomCode, Identifier: p.Identifier}
	if len(room.Members) == 0 {
		delete(r.rooms, room.Code)
		info.Destroyed = true
		return info, true
	}
	for id := range room.Members {
		info.Remaining = append(info.Remaining, id)
	}
	return info, true
}

// Lookup returns the participant session for connID, if it holds a
// room membership.
func (r *Registry) Lookup(connID string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.members[connID]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// SameRoom reports whether two connections currently share a room.
// Connections without any membership never share one.
func (r *Registry) SameRoom(a, b string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pa, ok := r.members[a]
	if !ok {
		return false
	}
	pb, ok := r.members[b]
	if !ok {
		return false
	}
	return pa.RoomCode == pb.RoomCode
}

// MemberIDs returns the connection ids of every member of the room
// connID is in, including connID itself.
func (r *Registry) MemberIDs(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.members[connID]
	if !ok {
		return nil
	}
	room := r.rooms[p.RoomCode]
	ids := make([]string, 0, len(room.Members))
	for id := range room.Members {
		ids = append(ids, id)
	}
	return ids
}

// RoomCount returns the number of active rooms.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// generateCode draws random codes until one is free. Caller holds the
// registry lock.
func (r *Registry) generateCode() (string, error) {
	for attempt := 0; attempt < r.cfg.MaxCodeRetries; attempt++ {
		code := r.randomCode()
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func (r *Registry) randomCode() string {
	buf := make([]byte, r.cfg.CodeLength)
	for i := range buf {
		buf[i] = r.cfg.CodeAlphabet[randomIndex(len(r.cfg.CodeAlphabet))]
	}
	return string(buf)
}

// randomIndex returns a cryptographically secure random index below max.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		// crypto/rand only fails if the platform source is broken.
		panic(err)
	}
	return int(n.Int64())
}
