package session

import "storyparty/game"

// Inbound action types. Each maps 1:1 to an engine operation.
const (
	ActionCreateRoom   = "create-room"
	ActionJoinRoom     = "join-room"
	ActionLeaveRoom    = "leave-room"
	ActionRejoinRoom   = "rejoin-room"
	ActionToggleReady  = "toggle-ready"
	ActionStartGame    = "start-game"
	ActionSubmitAnswer = "submit-answer"
	ActionNewRound     = "new-round"
	ActionKickPlayer   = "kick-player"
	ActionResetToLobby = "reset-to-lobby"
)

// Outbound event types.
const (
	EventRoomUpdated      = "room-updated"
	EventGameStarted      = "game-started"
	EventYourTurn         = "your-turn"
	EventWaitingForOthers = "waiting-for-others"
	EventReveal           = "reveal"
	EventPlayerJoined     = "player-joined"
	EventPlayerLeft       = "player-left"
	EventError            = "error"
	EventKicked           = "kicked"
	EventGameReset        = "game-reset"
)

// Action is the inbound wire frame. Fields are populated per action type;
// PlayerID carries the prior session id on rejoin and the target on kick.
type Action struct {
	Type     string              `json:"type"`
	Code     string              `json:"code,omitempty"`
	Name     string              `json:"name,omitempty"`
	Answer   string              `json:"answer,omitempty"`
	PlayerID string              `json:"playerId,omitempty"`
	Settings *game.RoomSettings  `json:"settings,omitempty"`
	Patch    *game.SettingsPatch `json:"settingsPatch,omitempty"`
}

// Event is the outbound wire frame. Room carries the full snapshot on
// room-updated; the rest of the fields are event-specific.
type Event struct {
	Type       string             `json:"type"`
	Room       *game.Room         `json:"room,omitempty"`
	Question   *game.QuestionType `json:"question,omitempty"`
	Reveal     *game.RevealData   `json:"reveal,omitempty"`
	PlayerName string             `json:"playerName,omitempty"`
	Message    string             `json:"message,omitempty"`
}

func roomUpdated(room *game.Room) Event {
	return Event{Type: EventRoomUpdated, Room: room}
}

func errorEvent(msg string) Event {
	return Event{Type: EventError, Message: msg}
}
