package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coderoomsgo/internal/problems"
	"coderoomsgo/internal/protocol"
)

// Config is injected policy; the service owns none of these numbers.
type Config struct {
	MaxRoomSize int
	RoundTime   time.Duration
	Grace       time.Duration // added on top of the round expiry before the timer fires
	Filter      *problems.Filter
}

// Selector picks one unused problem, or nil when the pool is exhausted.
type Selector interface {
	Select(excluded map[int]struct{}, f *problems.Filter) *problems.Problem
}

// IRoomService is the room/session state machine. Every method is atomic:
// it either fully applies its effect and broadcasts, or mutates nothing and
// returns false (silent rejection, callers are not acked).
type IRoomService interface {
	CreateRoom(p Peer, userID string) (string, bool)
	JoinRoom(p Peer, userID, roomID string) bool
	Leave(userID string) bool
	Ready(userID string) bool
	Unready(userID string) bool
	Finished(userID string) bool
	Forfeit(userID string) bool
	Chat(from, text string, ts time.Time) bool
	ViewedHint(userID string) bool
	ViewedDiscussion(userID string) bool
	ViewedSolutions(userID string) bool
	Submitted(userID string) bool
	SubmitFailed(userID string) bool
	Snapshot(roomID string) (Snapshot, bool)
}

type roomService struct {
	mu       sync.Mutex // serializes every action across every room
	cfg      Config
	selector Selector
	recorder Recorder // optional

	rooms    map[string]*Room
	userRoom map[string]string // user id -> room id, at most one room per user
}

func NewRoomService(cfg Config, sel Selector, rec Recorder) IRoomService {
	return &roomService{
		cfg:      cfg,
		selector: sel,
		recorder: rec,
		rooms:    make(map[string]*Room),
		userRoom: make(map[string]string),
	}
}

// ---------------------------------------------------------------------------
//  Room directory
// ---------------------------------------------------------------------------

// newRoomID generates an id unused by any live room. Collisions are
// vanishingly rare but still checked.
func (s *roomService) newRoomID() string {
	for {
		id := uuid.NewString()
		if _, taken := s.rooms[id]; !taken {
			return id
		}
	}
}

func (s *roomService) roomOf(userID string) (*Room, bool) {
	roomID, ok := s.userRoom[userID]
	if !ok {
		return nil, false
	}
	r, ok := s.rooms[roomID]
	return r, ok
}

func (s *roomService) Snapshot(roomID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{RoomID: r.ID, Members: len(r.Members), InGame: r.InGame}, true
}

// ---------------------------------------------------------------------------
//  Broadcast engine
// ---------------------------------------------------------------------------

func (s *roomService) sendToUser(r *Room, userID string, msg any) bool {
	if r == nil {
		return false
	}
	p, ok := r.Members[userID]
	if !ok {
		return false
	}
	_ = p.Send(msg)
	return true
}

func (s *roomService) broadcastAll(r *Room, msg any) bool {
	if r == nil || len(r.Members) == 0 {
		return false
	}
	for _, p := range r.Members {
		_ = p.Send(msg)
	}
	return true
}

func (s *roomService) broadcastExcept(r *Room, excluded string, msg any) bool {
	if r == nil || len(r.Members) == 0 {
		return false
	}
	for uid, p := range r.Members {
		if uid == excluded {
			continue
		}
		_ = p.Send(msg)
	}
	return true
}

func (s *roomService) broadcastState(r *Room, userID string, st protocol.PlayerState) {
	s.broadcastAll(r, protocol.StateUpdate(map[string]protocol.PlayerState{userID: st}))
}

func (s *roomService) broadcastStateAll(r *Room, st protocol.PlayerState) {
	states := make(map[string]protocol.PlayerState, len(r.States))
	for uid := range r.States {
		states[uid] = st
	}
	s.broadcastAll(r, protocol.StateUpdate(states))
}

// ---------------------------------------------------------------------------
//  Action handlers
// ---------------------------------------------------------------------------

func (s *roomService) CreateRoom(p Peer, userID string) (string, bool) {
	if userID == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, inRoom := s.userRoom[userID]; inRoom {
		return "", false
	}

	r := &Room{
		ID:        s.newRoomID(),
		Members:   map[string]Peer{userID: p},
		States:    map[string]protocol.PlayerState{userID: protocol.StateUnready},
		Completed: make(map[int]struct{}),
	}
	s.rooms[r.ID] = r
	s.userRoom[userID] = r.ID

	s.broadcastState(r, userID, protocol.StateUnready)
	s.broadcastAll(r, protocol.ActionNotice(fmt.Sprintf("%s created a room (%s)!", userID, r.ID)))
	s.sendToUser(r, userID, protocol.RoomCreated(r.ID))

	zap.L().Info("room.create", zap.String("room", r.ID), zap.String("user", userID))
	return r.ID, true
}

func (s *roomService) JoinRoom(p Peer, userID, roomID string) bool {
	if userID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, inRoom := s.userRoom[userID]; inRoom {
		return false
	}
	r, ok := s.rooms[roomID]
	if !ok || len(r.Members) >= s.cfg.MaxRoomSize {
		return false
	}

	s.userRoom[userID] = roomID
	r.Members[userID] = p

	// Spectating if a round is running, otherwise Unready.
	st := protocol.StateUnready
	if r.InGame {
		st = protocol.StateSpectating
	}
	r.States[userID] = st
	s.broadcastState(r, userID, st)
	s.broadcastAll(r, protocol.ActionNotice(fmt.Sprintf("%s joined the room!", userID)))

	zap.L().Info("room.join", zap.String("room", roomID), zap.String("user", userID))
	return true
}

// Leave is shared by graceful disconnects and the liveness sweep; calling it
// twice for the same user is safe.
func (s *roomService) Leave(userID string) bool {
	if userID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roomOf(userID)
	if !ok {
		delete(s.userRoom, userID)
		return false
	}
	if _, member := r.Members[userID]; !member {
		return false
	}

	delete(r.Members, userID)
	delete(r.States, userID)
	delete(s.userRoom, userID)

	if len(r.Members) == 0 {
		if r.Round != nil {
			r.Round.timer.Stop()
		}
		delete(s.rooms, r.ID)
		zap.L().Info("room.delete", zap.String("room", r.ID))
		return true
	}

	s.broadcastAll(r, protocol.ActionNotice(fmt.Sprintf("%s left the room!", userID)))

	// The leaver may have been the last one still playing.
	if r.InGame && !r.anyPlaying() {
		s.endGame(r, false)
	}
	return true
}

func (s *roomService) Ready(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roomOf(userID)
	if !ok {
		return false
	}
	if _, member := r.States[userID]; !member {
		return false
	}

	r.States[userID] = protocol.StateReady
	s.broadcastState(r, userID, protocol.StateReady)
	s.broadcastAll(r, protocol.ActionNotice(fmt.Sprintf("%s is ready!", userID)))

	// Re-evaluated after every Ready: a solitary member readying up starts a
	// round of one.
	if r.allReady() {
		s.startGame(r)
	}
	return true
}

func (s *roomService) Unready(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roomOf(userID)
	if !ok {
		return false
	}
	if _, member := r.States[userID]; !member {
		return false
	}

	r.States[userID] = protocol.StateUnready
	s.broadcastState(r, userID, protocol.StateUnready)
	s.broadcastAll(r, protocol.ActionNotice(fmt.Sprintf("%s is not ready", userID)))
	return true
}

func (s *roomService) Finished(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.playing(userID)
	if !ok {
		return false
	}

	r.Round.FinishedOrder = append(r.Round.FinishedOrder, userID)
	r.States[userID] = protocol.StateFinished
	s.broadcastState(r, userID, protocol.StateFinished)
	s.broadcastAll(r, protocol.ActionNotice(fmt.Sprintf("🎉 %s finished! 🎉", userID)))

	if !r.anyPlaying() {
		s.endGame(r, false)
	}
	return true
}

func (s *roomService) Forfeit(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.playing(userID)
	if !ok {
		return false
	}

	r.Round.Forfeited[userID] = struct{}{}
	r.States[userID] = protocol.StateForfeited
	s.broadcastState(r, userID, protocol.StateForfeited)
	s.broadcastAll(r, protocol.ActionNotice(fmt.Sprintf("🏳️ %s forfeited! 🏳️", userID)))

	if !r.anyPlaying() {
		s.endGame(r, false)
	}
	return true
}

func (s *roomService) Chat(from, text string, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roomOf(from)
	if !ok {
		return false
	}
	// The sender renders its own message locally.
	return s.broadcastExcept(r, from, protocol.Chat(from, text, ts))
}

func (s *roomService) ViewedHint(userID string) bool {
	return s.playingNotice(userID, fmt.Sprintf("👀 %s viewed a hint! 👀", userID))
}

func (s *roomService) ViewedDiscussion(userID string) bool {
	return s.playingNotice(userID, fmt.Sprintf("👀 %s viewed the Discussions tab! 👀", userID))
}

func (s *roomService) ViewedSolutions(userID string) bool {
	return s.playingNotice(userID, fmt.Sprintf("👀 %s viewed the Solutions tab! 👀", userID))
}

func (s *roomService) Submitted(userID string) bool {
	return s.playingNotice(userID, fmt.Sprintf("%s submitted!", userID))
}

func (s *roomService) SubmitFailed(userID string) bool {
	return s.playingNotice(userID, fmt.Sprintf("❌ %s's submission failed! ❌", userID))
}

// ---------------------------------------------------------------------------
//  Internal transitions
// ---------------------------------------------------------------------------

// playing resolves the caller's room when a round is active and the caller is
// still Playing. Must be called with s.mu held.
func (s *roomService) playing(userID string) (*Room, bool) {
	r, ok := s.roomOf(userID)
	if !ok || !r.InGame || r.Round == nil {
		return nil, false
	}
	if r.States[userID] != protocol.StatePlaying {
		return nil, false
	}
	return r, true
}

// playingNotice broadcasts an informational line without touching state.
func (s *roomService) playingNotice(userID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.playing(userID)
	if !ok {
		return false
	}
	return s.broadcastAll(r, protocol.ActionNotice(text))
}

// startGame begins a round. Aborts silently when every problem has been
// played already. Must be called with s.mu held.
func (s *roomService) startGame(r *Room) bool {
	if r.InGame {
		return false
	}

	p := s.selector.Select(r.Completed, s.cfg.Filter)
	if p == nil {
		zap.L().Warn("room.problems_exhausted", zap.String("room", r.ID))
		return false
	}

	now := time.Now()
	rd := &Round{
		Problem:   p,
		StartedAt: now,
		Expiry:    now.Add(s.cfg.RoundTime),
		Forfeited: make(map[string]struct{}),
	}
	roomID := r.ID
	rd.timer = time.AfterFunc(s.cfg.RoundTime+s.cfg.Grace, func() {
		s.expire(roomID, rd)
	})

	r.InGame = true
	r.Round = rd
	// Reserved immediately so a concurrent room can't observe it available
	// mid-round either.
	r.Completed[p.ID] = struct{}{}

	for uid := range r.States {
		r.States[uid] = protocol.StatePlaying
	}
	s.broadcastStateAll(r, protocol.StatePlaying)
	s.broadcastAll(r, protocol.GameStarted(p))
	s.broadcastAll(r, protocol.ActionNotice("Game started!"))

	zap.L().Info("room.start",
		zap.String("room", r.ID),
		zap.Int("problem", p.ID),
		zap.Int("players", len(r.Members)),
	)
	return true
}

// endGame concludes the active round exactly once, whichever path got here
// first. Must be called with s.mu held and r.Round non-nil.
func (s *roomService) endGame(r *Room, expired bool) {
	rd := r.Round
	rd.timer.Stop()

	if s.recorder != nil {
		forfeited := make([]string, 0, len(rd.Forfeited))
		for uid := range rd.Forfeited {
			forfeited = append(forfeited, uid)
		}
		s.recorder.RecordRound(RoundRecord{
			RoomID:        r.ID,
			ProblemID:     rd.Problem.ID,
			FinishedOrder: append([]string(nil), rd.FinishedOrder...),
			Forfeited:     forfeited,
			Expired:       expired,
			StartedAt:     rd.StartedAt,
			EndedAt:       time.Now(),
		})
	}

	r.Round = nil
	r.InGame = false
	for uid := range r.States {
		r.States[uid] = protocol.StateUnready
	}

	s.broadcastStateAll(r, protocol.StateUnready)
	s.broadcastAll(r, protocol.GameEnded())
	s.broadcastAll(r, protocol.ActionNotice("Game finished!"))

	zap.L().Info("room.end",
		zap.String("room", r.ID),
		zap.Bool("expired", expired),
		zap.Int("finished", len(rd.FinishedOrder)),
	)
}

// expire is the forced-termination callback. The round pointer check makes a
// stale timer a no-op: if the round it was scheduled for is gone, so is its
// authority to end anything.
func (s *roomService) expire(roomID string, rd *Round) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok || !r.InGame || r.Round != rd {
		return
	}
	s.endGame(r, true)
}
