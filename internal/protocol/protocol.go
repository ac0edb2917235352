package protocol

import (
	"encoding/json"
	"time"

	"coderoomsgo/internal/problems"
)

// ActionType identifies every frame exchanged over the room socket. Values are
// numeric on the wire and must keep their positions.
type ActionType int

const (
	Create ActionType = iota
	Join
	Leave
	ChatMessage
	Hint
	Discussion
	Solutions
	Submit
	Finished
	Failed
	Action
	Ready
	Unready
	StartGame
	EndGame
	Forfeit
	UpdateUserState
)

func (t ActionType) String() string {
	switch t {
	case Create:
		return "create"
	case Join:
		return "join"
	case Leave:
		return "leave"
	case ChatMessage:
		return "message"
	case Hint:
		return "hint"
	case Discussion:
		return "discussion"
	case Solutions:
		return "solutions"
	case Submit:
		return "submit"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	case Action:
		return "action"
	case Ready:
		return "ready"
	case Unready:
		return "unready"
	case StartGame:
		return "start_game"
	case EndGame:
		return "end_game"
	case Forfeit:
		return "forfeit"
	case UpdateUserState:
		return "update_user_state"
	}
	return "unknown"
}

// PlayerState is a member's per-round status.
type PlayerState int

const (
	StateReady PlayerState = iota
	StateUnready
	StatePlaying
	StateSpectating
	StateFinished
	StateForfeited
)

func (s PlayerState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateUnready:
		return "unready"
	case StatePlaying:
		return "playing"
	case StateSpectating:
		return "spectating"
	case StateFinished:
		return "finished"
	case StateForfeited:
		return "forfeited"
	}
	return "unknown"
}

// Envelope is the inbound frame. Params stays raw until the router knows the
// action-specific shape to decode it into.
type Envelope struct {
	Type   ActionType      `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
	TS     time.Time       `json:"ts"`
}

// Message is the outbound frame.
type Message struct {
	Type   ActionType `json:"type"`
	Params *Params    `json:"params,omitempty"`
	TS     time.Time  `json:"ts"`
}

// Params is the variant payload. Which fields are set depends on Type.
type Params struct {
	RoomID       string                 `json:"roomId,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Problem      *problems.Problem      `json:"problem,omitempty"`
	UserInfo     *UserInfo              `json:"userInfo,omitempty"`
	PlayerStates map[string]PlayerState `json:"playerStates,omitempty"`
}

type UserInfo struct {
	UserID    string  `json:"userId" validate:"required"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// ──────────────────────────── inbound param shapes ───────────────────────────
//
// One struct per action that carries a payload; the router decodes and
// validates these as a tagged union keyed by ActionType.

type CreateParams struct {
	UserInfo *UserInfo `json:"userInfo" validate:"required"`
}

type JoinParams struct {
	RoomID   string    `json:"roomId" validate:"required"`
	UserInfo *UserInfo `json:"userInfo" validate:"required"`
}

type ChatParams struct {
	Message string `json:"message" validate:"required"`
}

// NoParams is for actions whose params, if any, are ignored.
type NoParams struct{}

// ──────────────────────────── outbound constructors ──────────────────────────

func ActionNotice(text string) Message {
	return Message{Type: Action, Params: &Params{Message: text}, TS: time.Now()}
}

func RoomCreated(roomID string) Message {
	return Message{Type: Create, Params: &Params{RoomID: roomID}, TS: time.Now()}
}

func StateUpdate(states map[string]PlayerState) Message {
	return Message{Type: UpdateUserState, Params: &Params{PlayerStates: states}, TS: time.Now()}
}

func GameStarted(p *problems.Problem) Message {
	return Message{Type: StartGame, Params: &Params{Problem: p}, TS: time.Now()}
}

func GameEnded() Message {
	return Message{Type: EndGame, TS: time.Now()}
}

func Chat(from, text string, ts time.Time) Message {
	if ts.IsZero() {
		ts = time.Now()
	}
	return Message{
		Type:   ChatMessage,
		Params: &Params{Message: text, UserInfo: &UserInfo{UserID: from}},
		TS:     ts,
	}
}
