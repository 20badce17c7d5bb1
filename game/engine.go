package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	MinPlayers        = 4
	DefaultMaxPlayers = 8
	MaxPlayersCeiling = 12
)

// Engine is the room lifecycle state machine. Every operation runs under a
// per-room mutex held across the whole load-mutate-save, closing the
// read-modify-write race two concurrent actions on the same room would
// otherwise hit (the store itself gives no atomicity).
type Engine struct {
	store    RoomStore
	codes    *CodeGenerator
	validate AnswerValidator
	assign   Assigner
	log      zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(store RoomStore, rng Rand, validator AnswerValidator, log zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		codes:    NewCodeGenerator(store, rng),
		validate: validator,
		assign:   NewAssigner(rng),
		log:      log,
		locks:    map[string]*sync.Mutex{},
	}
}

// lockRoom returns the room's mutex, locked. Entries are evicted when a
// room disappears; a waiter that acquired an evicted mutex retries on the
// current one, so two operations can never hold different locks for the
// same code.
func (e *Engine) lockRoom(code string) *sync.Mutex {
	for {
		e.mu.Lock()
		l, ok := e.locks[code]
		if !ok {
			l = &sync.Mutex{}
			e.locks[code] = l
		}
		e.mu.Unlock()

		l.Lock()
		e.mu.Lock()
		current := e.locks[code] == l
		e.mu.Unlock()
		if current {
			return l
		}
		l.Unlock()
	}
}

// dropLock evicts a room's lock entry. Only called while holding the room
// lock; parked waiters notice the eviction and retry.
func (e *Engine) dropLock(code string) {
	e.mu.Lock()
	delete(e.locks, code)
	e.mu.Unlock()
}

// loadRoom reads a room inside its lock. A vanished room (deleted or aged
// out of the store) evicts the lock entry, so the map does not accumulate
// mutexes for rooms that no longer exist.
func (e *Engine) loadRoom(ctx context.Context, code string) (*Room, error) {
	room, err := e.store.Get(ctx, code)
	if errors.Is(err, ErrRoomNotFound) {
		e.dropLock(code)
	}
	return room, err
}

// SubmitResult carries the outcome of a SubmitAnswer call. ShouldReveal
// tells the caller the round is complete; the reveal broadcast (and its
// dramatic delay) is the caller's concern.
type SubmitResult struct {
	Room         *Room
	ShouldReveal bool
}

func normalizeSettings(s RoomSettings) RoomSettings {
	if s.MaxPlayers < MinPlayers {
		s.MaxPlayers = DefaultMaxPlayers
	}
	if s.MaxPlayers > MaxPlayersCeiling {
		s.MaxPlayers = MaxPlayersCeiling
	}
	if s.Language == "" {
		s.Language = "en"
	}
	return s
}

// CreateRoom mints a unique code and seeds the room with its host. The only
// failure paths are code exhaustion and the store.
func (e *Engine) CreateRoom(ctx context.Context, hostID, hostName string, settings RoomSettings) (*Room, error) {
	code, err := e.codes.Generate(ctx)
	if err != nil {
		return nil, err
	}
	room := &Room{
		Code:   code,
		HostID: hostID,
		Players: []*Player{{
			ID:     hostID,
			Name:   hostName,
			IsHost: true,
		}},
		Settings: normalizeSettings(settings),
		State: GameState{
			Phase:         PhaseLobby,
			Answers:       map[QuestionType]Answer{},
			QuestionOrder: Questions,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	e.log.Info().Str("room", code).Str("host", hostName).Msg("room created")
	return room, nil
}

// GetRoom loads a snapshot without mutating it.
func (e *Engine) GetRoom(ctx context.Context, code string) (*Room, error) {
	return e.store.Get(ctx, code)
}

func (e *Engine) JoinRoom(ctx context.Context, code, playerID, name string) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.State.Phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if len(room.Players) >= room.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}
	if room.HasPlayerNamed(name) {
		return nil, ErrNameTaken
	}
	room.Players = append(room.Players, &Player{ID: playerID, Name: name})
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// RemovePlayer drops a player and keeps the host invariant: the
// earliest-joined remaining player inherits the host slot. When the last
// player leaves the room is deleted and (nil, nil) is returned.
func (e *Engine) RemovePlayer(ctx context.Context, code, playerID string) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return e.removeLocked(ctx, room, playerID)
}

// KickPlayer is the host-initiated removal. The authorization check runs
// under the room lock, so a host migration racing the kick cannot let the
// stale host through.
func (e *Engine) KickPlayer(ctx context.Context, code, actorID, targetID string) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != actorID {
		return nil, ErrNotHost
	}
	if targetID == "" || targetID == actorID {
		return nil, ErrPlayerNotFound
	}
	return e.removeLocked(ctx, room, targetID)
}

func (e *Engine) removeLocked(ctx context.Context, room *Room, playerID string) (*Room, error) {
	code := room.Code
	removed := room.FindPlayer(playerID)
	if removed == nil {
		return room, nil
	}
	kept := room.Players[:0]
	for _, p := range room.Players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	room.Players = kept

	if len(room.Players) == 0 {
		if err := e.store.Delete(ctx, code); err != nil {
			return nil, err
		}
		e.dropLock(code)
		e.log.Info().Str("room", code).Msg("room emptied, deleted")
		return nil, nil
	}
	if removed.IsHost {
		next := room.Players[0]
		next.IsHost = true
		room.HostID = next.ID
	}
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ToggleReady flips a player's lobby ready flag. Advisory only: the host
// may start regardless.
func (e *Engine) ToggleReady(ctx context.Context, code, playerID string) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.State.Phase != PhaseLobby {
		return nil, ErrInvalidState
	}
	p := room.FindPlayer(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	p.IsReady = !p.IsReady
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// StartGame begins the first round. Host-only; the check happens under the
// room lock so it cannot go stale against a concurrent host migration.
func (e *Engine) StartGame(ctx context.Context, code, actorID string) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != actorID {
		return nil, ErrNotHost
	}
	if room.State.Phase != PhaseLobby {
		return nil, ErrInvalidState
	}
	if len(room.Players) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}
	e.beginRound(room)
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	e.log.Info().Str("room", code).Int("players", len(room.Players)).Msg("game started")
	return room, nil
}

func (e *Engine) beginRound(room *Room) {
	e.assign.Assign(room)
	room.State.Phase = PhasePlaying
	room.State.CurrentRound++
	room.State.CurrentTurnIndex = 0
	room.State.Answers = map[QuestionType]Answer{}
}

// SubmitAnswer records one player's answer for their assigned question.
// At most one answer per player per round; a duplicate submission (retry,
// double-click) is rejected without mutation. When the fourth slot fills,
// the room flips to reveal and ShouldReveal is reported.
func (e *Engine) SubmitAnswer(ctx context.Context, code, playerID, rawAnswer string) (SubmitResult, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return SubmitResult{}, err
	}
	if room.State.Phase != PhasePlaying {
		return SubmitResult{}, ErrInvalidState
	}
	p := room.FindPlayer(playerID)
	if p == nil || p.AssignedQuestion == nil {
		return SubmitResult{}, ErrNoAssignedQuestion
	}
	if p.HasAnswered {
		return SubmitResult{}, ErrAlreadyAnswered
	}
	res := e.validate.Validate(rawAnswer, room.Settings.ModerationEnabled)
	if !res.Valid {
		return SubmitResult{}, res.Err
	}

	room.State.Answers[*p.AssignedQuestion] = Answer{PlayerID: playerID, Text: res.Cleaned}
	p.HasAnswered = true

	shouldReveal := len(room.State.Answers) == len(Questions)
	if shouldReveal {
		room.State.Phase = PhaseReveal
	}
	if err := e.store.Save(ctx, room); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Room: room, ShouldReveal: shouldReveal}, nil
}

func (e *Engine) StartNewRound(ctx context.Context, code, actorID string) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != actorID {
		return nil, ErrNotHost
	}
	if room.State.Phase != PhaseReveal {
		return nil, ErrInvalidState
	}
	e.beginRound(room)
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ResetToLobby returns the room to the lobby from any phase, optionally
// merging partial settings overrides, and wipes all round state. Host-only.
func (e *Engine) ResetToLobby(ctx context.Context, code, actorID string, patch *SettingsPatch) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != actorID {
		return nil, ErrNotHost
	}
	if patch != nil {
		if patch.MaxPlayers != nil {
			room.Settings.MaxPlayers = *patch.MaxPlayers
		}
		if patch.Language != nil {
			room.Settings.Language = *patch.Language
		}
		if patch.ModerationEnabled != nil {
			room.Settings.ModerationEnabled = *patch.ModerationEnabled
		}
		if patch.TimerSeconds != nil {
			room.Settings.TimerSeconds = *patch.TimerSeconds
		}
		room.Settings = normalizeSettings(room.Settings)
	}
	room.State = GameState{
		Phase:         PhaseLobby,
		Answers:       map[QuestionType]Answer{},
		QuestionOrder: Questions,
	}
	for _, p := range room.Players {
		p.AssignedQuestion = nil
		p.PreviousQuestion = nil
		p.HasAnswered = false
		p.IsReady = false
	}
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// RebindPlayer swaps a player's transport identifier after a reconnect.
// The logical player record (name, question, answers) stays in place; only
// the id changes, including the room's host id when the host reconnects.
func (e *Engine) RebindPlayer(ctx context.Context, code, oldID, newID string) (*Room, error) {
	l := e.lockRoom(code)
	defer l.Unlock()

	room, err := e.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	p := room.FindPlayer(oldID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	p.ID = newID
	if room.HostID == oldID {
		room.HostID = newID
	}
	if answer, ok := room.State.Answers[questionOf(p)]; ok && answer.PlayerID == oldID {
		answer.PlayerID = newID
		room.State.Answers[questionOf(p)] = answer
	}
	if err := e.store.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func questionOf(p *Player) QuestionType {
	if p.AssignedQuestion == nil {
		return ""
	}
	return *p.AssignedQuestion
}
