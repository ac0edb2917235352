package room

import (
	"time"

	"coderoomsgo/internal/problems"
	"coderoomsgo/internal/protocol"
)

// Peer is the delivery side of one live connection. Send must never block the
// caller; a slow consumer is the transport's problem, not the room's.
type Peer interface {
	Send(v any) error
}

// Room groups up to MaxRoomSize connections around one pending or running
// round. Members and States always share the same key set.
type Room struct {
	ID        string
	Members   map[string]Peer
	States    map[string]protocol.PlayerState
	Completed map[int]struct{} // problem ids already played here
	InGame    bool
	Round     *Round // non-nil iff InGame
}

// Round is one timed attempt at a single problem.
type Round struct {
	Problem       *problems.Problem
	StartedAt     time.Time
	Expiry        time.Time
	FinishedOrder []string
	Forfeited     map[string]struct{}

	// timer forces termination at Expiry+grace; stopped on every other path
	// that ends the round.
	timer *time.Timer
}

func (r *Room) anyPlaying() bool {
	for _, st := range r.States {
		if st == protocol.StatePlaying {
			return true
		}
	}
	return false
}

func (r *Room) allReady() bool {
	for _, st := range r.States {
		if st != protocol.StateReady {
			return false
		}
	}
	return len(r.States) > 0
}

// Snapshot is the read-only view exposed over REST.
type Snapshot struct {
	RoomID  string `json:"room_id"`
	Members int    `json:"members"`
	InGame  bool   `json:"in_game"`
}

// RoundRecord summarises a concluded round for the match log.
type RoundRecord struct {
	RoomID        string
	ProblemID     int
	FinishedOrder []string
	Forfeited     []string
	Expired       bool
	StartedAt     time.Time
	EndedAt       time.Time
}

// Recorder receives round outcomes, best effort.
type Recorder interface {
	RecordRound(rec RoundRecord)
}
