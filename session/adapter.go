package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"storyparty/game"
)

// ErrNotHost is the authorization failure for host-only actions. The engine
// raises it under the room lock; reported to the caller, never broadcast.
var ErrNotHost = game.ErrNotHost

// storeRetries bounds how often the adapter re-runs an engine operation
// that failed on a transient store error. The engine never retries itself.
const storeRetries = 2

// GameEngine is the slice of the engine the adapter consumes.
type GameEngine interface {
	CreateRoom(ctx context.Context, hostID, hostName string, settings game.RoomSettings) (*game.Room, error)
	GetRoom(ctx context.Context, code string) (*game.Room, error)
	JoinRoom(ctx context.Context, code, playerID, name string) (*game.Room, error)
	RemovePlayer(ctx context.Context, code, playerID string) (*game.Room, error)
	KickPlayer(ctx context.Context, code, actorID, targetID string) (*game.Room, error)
	ToggleReady(ctx context.Context, code, playerID string) (*game.Room, error)
	StartGame(ctx context.Context, code, actorID string) (*game.Room, error)
	SubmitAnswer(ctx context.Context, code, playerID, rawAnswer string) (game.SubmitResult, error)
	StartNewRound(ctx context.Context, code, actorID string) (*game.Room, error)
	ResetToLobby(ctx context.Context, code, actorID string, patch *game.SettingsPatch) (*game.Room, error)
	RebindPlayer(ctx context.Context, code, oldID, newID string) (*game.Room, error)
}

// Adapter maps transport connections to room membership and drives the
// engine from inbound actions. It owns the session registry, the pub/sub
// hub and every cancellable timer (disconnect grace, reveal delay).
type Adapter struct {
	engine      GameEngine
	hub         *Hub
	registry    *Registry
	timers      *TimerSet
	grace       time.Duration
	revealDelay time.Duration
	log         zerolog.Logger
}

func NewAdapter(engine GameEngine, grace, revealDelay time.Duration, log zerolog.Logger) *Adapter {
	return &Adapter{
		engine:      engine,
		hub:         NewHub(),
		registry:    NewRegistry(),
		timers:      NewTimerSet(),
		grace:       grace,
		revealDelay: revealDelay,
		log:         log,
	}
}

// Dispatch routes one inbound action. Client and authorization errors go
// back to the caller only; everything else becomes a generic failure after
// bounded store retries.
func (a *Adapter) Dispatch(ctx context.Context, c *Conn, act Action) {
	var err error
	switch act.Type {
	case ActionCreateRoom:
		err = a.createRoom(ctx, c, act)
	case ActionJoinRoom:
		err = a.joinRoom(ctx, c, act)
	case ActionRejoinRoom:
		err = a.rejoinRoom(ctx, c, act)
	case ActionLeaveRoom:
		a.leaveRoom(ctx, c)
	case ActionToggleReady:
		err = a.toggleReady(ctx, c)
	case ActionStartGame:
		err = a.startGame(ctx, c)
	case ActionSubmitAnswer:
		err = a.submitAnswer(ctx, c, act)
	case ActionNewRound:
		err = a.newRound(ctx, c)
	case ActionKickPlayer:
		err = a.kickPlayer(ctx, c, act)
	case ActionResetToLobby:
		err = a.resetToLobby(ctx, c, act)
	default:
		a.log.Debug().Str("type", act.Type).Msg("unknown action")
		return
	}
	if err != nil {
		a.reportError(c, err)
	}
}

func (a *Adapter) reportError(c *Conn, err error) {
	switch {
	case game.IsClientError(err), errors.Is(err, game.ErrNotEnoughPlayers):
		c.Send(errorEvent(err.Error()))
	case errors.Is(err, game.ErrCodeSpaceExhausted):
		a.log.Error().Err(err).Msg("room code space exhausted")
		c.Send(errorEvent("could not create room"))
	default:
		a.log.Error().Err(err).Str("conn", c.ID).Msg("action failed")
		c.Send(errorEvent("something went wrong, try again"))
	}
}

// withRoomRetry re-runs fn on transient store failures, bounded.
func withRoomRetry(fn func() (*game.Room, error)) (*game.Room, error) {
	var room *game.Room
	var err error
	for attempt := 0; attempt <= storeRetries; attempt++ {
		room, err = fn()
		if !errors.Is(err, game.ErrStoreUnavailable) {
			return room, err
		}
	}
	return room, err
}

// roomOf resolves the caller's room. Callers not in any room get (_, false)
// and the action is a no-op.
func (a *Adapter) roomOf(c *Conn) (string, bool) {
	return a.registry.Lookup(c.ID)
}

func (a *Adapter) createRoom(ctx context.Context, c *Conn, act Action) error {
	if _, ok := a.roomOf(c); ok {
		return game.ErrGameInProgress
	}
	settings := game.RoomSettings{}
	if act.Settings != nil {
		settings = *act.Settings
	}
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.CreateRoom(ctx, c.ID, act.Name, settings)
	})
	if err != nil {
		return err
	}
	a.registry.Bind(c.ID, room.Code)
	a.hub.Subscribe(room.Code, c)
	c.Send(roomUpdated(room.PublicSnapshot()))
	return nil
}

func (a *Adapter) joinRoom(ctx context.Context, c *Conn, act Action) error {
	if _, ok := a.roomOf(c); ok {
		return game.ErrGameInProgress
	}
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.JoinRoom(ctx, act.Code, c.ID, act.Name)
	})
	if err != nil {
		return err
	}
	a.registry.Bind(c.ID, room.Code)
	a.hub.Subscribe(room.Code, c)
	a.hub.Broadcast(room.Code, Event{Type: EventPlayerJoined, PlayerName: act.Name})
	a.hub.Broadcast(room.Code, roomUpdated(room.PublicSnapshot()))
	return nil
}

// rejoinRoom reattaches a returning player. A pending grace timer is
// cancelled; if the player record survived, its id is rebound in place; if
// it was already purged and the room is still in lobby, this degrades to a
// normal join. Strangers cannot rejoin an in-progress game.
func (a *Adapter) rejoinRoom(ctx context.Context, c *Conn, act Action) error {
	a.timers.Cancel(act.Code, act.PlayerID)

	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.GetRoom(ctx, act.Code)
	})
	if err != nil {
		return err
	}
	if room.FindPlayer(act.PlayerID) != nil {
		room, err = withRoomRetry(func() (*game.Room, error) {
			return a.engine.RebindPlayer(ctx, act.Code, act.PlayerID, c.ID)
		})
		if err != nil {
			return err
		}
		a.registry.Bind(c.ID, room.Code)
		a.hub.Subscribe(room.Code, c)
		a.hub.Broadcast(room.Code, roomUpdated(room.PublicSnapshot()))
		if p := room.FindPlayer(c.ID); p != nil && p.AssignedQuestion != nil && !p.HasAnswered && room.State.Phase == game.PhasePlaying {
			c.Send(Event{Type: EventYourTurn, Question: p.AssignedQuestion})
		}
		return nil
	}
	if room.State.Phase == game.PhaseLobby {
		return a.joinRoom(ctx, c, act)
	}
	return game.ErrGameInProgress
}

func (a *Adapter) leaveRoom(ctx context.Context, c *Conn) {
	code, ok := a.roomOf(c)
	if !ok {
		return
	}
	a.hub.Unsubscribe(code, c.ID)
	a.registry.Unbind(c.ID)
	a.finalizeRemoval(ctx, code, c.ID)
}

// HandleDisconnect starts the grace window instead of removing the player
// outright; a rejoin before it fires cancels the removal.
func (a *Adapter) HandleDisconnect(c *Conn) {
	code, ok := a.roomOf(c)
	if !ok {
		return
	}
	a.hub.Unsubscribe(code, c.ID)
	a.registry.Unbind(c.ID)
	playerID := c.ID
	a.timers.Schedule(code, playerID, a.grace, func() {
		a.finalizeRemoval(context.Background(), code, playerID)
	})
}

func (a *Adapter) finalizeRemoval(ctx context.Context, code, playerID string) {
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.RemovePlayer(ctx, code, playerID)
	})
	if err != nil {
		if !errors.Is(err, game.ErrRoomNotFound) {
			a.log.Error().Err(err).Str("room", code).Msg("removing player")
		}
		return
	}
	if room == nil {
		// Last player out; nothing left to notify.
		return
	}
	a.hub.Broadcast(code, Event{Type: EventPlayerLeft})
	a.hub.Broadcast(code, roomUpdated(room.PublicSnapshot()))
}

func (a *Adapter) toggleReady(ctx context.Context, c *Conn) error {
	code, ok := a.roomOf(c)
	if !ok {
		return nil
	}
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.ToggleReady(ctx, code, c.ID)
	})
	if err != nil {
		return err
	}
	a.hub.Broadcast(code, roomUpdated(room.PublicSnapshot()))
	return nil
}

func (a *Adapter) startGame(ctx context.Context, c *Conn) error {
	code, ok := a.roomOf(c)
	if !ok {
		return nil
	}
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.StartGame(ctx, code, c.ID)
	})
	if err != nil {
		return err
	}
	a.broadcastRoundStart(room)
	return nil
}

func (a *Adapter) broadcastRoundStart(room *game.Room) {
	a.hub.Broadcast(room.Code, Event{Type: EventGameStarted, Room: room.PublicSnapshot()})
	for _, p := range room.Players {
		member, ok := a.hub.Member(room.Code, p.ID)
		if !ok {
			continue
		}
		if p.AssignedQuestion != nil {
			member.Send(Event{Type: EventYourTurn, Question: p.AssignedQuestion})
		} else {
			member.Send(Event{Type: EventWaitingForOthers})
		}
	}
}

func (a *Adapter) submitAnswer(ctx context.Context, c *Conn, act Action) error {
	code, ok := a.roomOf(c)
	if !ok {
		return nil
	}
	var res game.SubmitResult
	_, err := withRoomRetry(func() (*game.Room, error) {
		var err error
		res, err = a.engine.SubmitAnswer(ctx, code, c.ID, act.Answer)
		return res.Room, err
	})
	if err != nil {
		return err
	}
	a.hub.Broadcast(code, roomUpdated(res.Room.PublicSnapshot()))
	if !res.ShouldReveal {
		c.Send(Event{Type: EventWaitingForOthers})
		return nil
	}
	// The reveal pause is pacing, not correctness: the room is already in
	// the reveal phase, so the data is captured now and only the broadcast
	// waits. A reset or new round cancels the pending task.
	reveal := game.GenerateReveal(res.Room)
	snapshot := res.Room.PublicSnapshot()
	a.timers.Schedule(code, "", a.revealDelay, func() {
		a.hub.Broadcast(code, Event{Type: EventReveal, Reveal: reveal, Room: snapshot})
	})
	return nil
}

func (a *Adapter) newRound(ctx context.Context, c *Conn) error {
	code, ok := a.roomOf(c)
	if !ok {
		return nil
	}
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.StartNewRound(ctx, code, c.ID)
	})
	if err != nil {
		return err
	}
	a.timers.Cancel(code, "")
	a.broadcastRoundStart(room)
	return nil
}

// kickPlayer removes a player on the host's request. The engine authorizes
// the kick; a grace timer left by a racing disconnect is cancelled so the
// removal cannot fire twice.
func (a *Adapter) kickPlayer(ctx context.Context, c *Conn, act Action) error {
	code, ok := a.roomOf(c)
	if !ok {
		return nil
	}
	target := act.PlayerID
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.KickPlayer(ctx, code, c.ID, target)
	})
	if err != nil {
		return err
	}
	a.timers.Cancel(code, target)
	if member, ok := a.hub.Member(code, target); ok {
		member.Send(Event{Type: EventKicked})
		a.hub.Unsubscribe(code, target)
		member.Close("kicked")
	}
	a.registry.Unbind(target)
	if room != nil {
		a.hub.Broadcast(code, Event{Type: EventPlayerLeft})
		a.hub.Broadcast(code, roomUpdated(room.PublicSnapshot()))
	}
	return nil
}

func (a *Adapter) resetToLobby(ctx context.Context, c *Conn, act Action) error {
	code, ok := a.roomOf(c)
	if !ok {
		return nil
	}
	room, err := withRoomRetry(func() (*game.Room, error) {
		return a.engine.ResetToLobby(ctx, code, c.ID, act.Patch)
	})
	if err != nil {
		return err
	}
	a.timers.Cancel(code, "")
	a.hub.Broadcast(code, Event{Type: EventGameReset})
	a.hub.Broadcast(code, roomUpdated(room.PublicSnapshot()))
	return nil
}
