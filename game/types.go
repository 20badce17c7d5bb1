package game

import "time"

type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseReveal  Phase = "reveal"
)

type QuestionType string

const (
	QuestionWho      QuestionType = "who"
	QuestionWithWhom QuestionType = "withWhom"
	QuestionWhere    QuestionType = "where"
	QuestionHow      QuestionType = "how"
)

// Questions is the fixed slot order. Every round fills exactly these four.
var Questions = [4]QuestionType{QuestionWho, QuestionWithWhom, QuestionWhere, QuestionHow}

type Player struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	IsHost           bool          `json:"isHost"`
	IsReady          bool          `json:"isReady"`
	AssignedQuestion *QuestionType `json:"assignedQuestion,omitempty"`
	HasAnswered      bool          `json:"hasAnswered"`
	PreviousQuestion *QuestionType `json:"previousQuestion,omitempty"`
}

type RoomSettings struct {
	MaxPlayers        int    `json:"maxPlayers"`
	Language          string `json:"language"`
	ModerationEnabled bool   `json:"moderationEnabled"`
	TimerSeconds      int    `json:"timerSeconds,omitempty"`
}

// SettingsPatch carries partial overrides for ResetToLobby. Nil fields keep
// the current value.
type SettingsPatch struct {
	MaxPlayers        *int    `json:"maxPlayers,omitempty"`
	Language          *string `json:"language,omitempty"`
	ModerationEnabled *bool   `json:"moderationEnabled,omitempty"`
	TimerSeconds      *int    `json:"timerSeconds,omitempty"`
}

type Answer struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

type GameState struct {
	Phase            Phase                   `json:"phase"`
	CurrentRound     int                     `json:"currentRound"`
	Answers          map[QuestionType]Answer `json:"answers"`
	CurrentTurnIndex int                     `json:"currentTurnIndex"`
	QuestionOrder    [4]QuestionType         `json:"questionOrder"`
	RotationIndex    int                     `json:"rotationIndex"`
}

// Room is the unit of persistence and the unit of broadcast. Players keeps
// insertion order; the earliest-joined remaining player inherits the host
// slot when the host leaves.
type Room struct {
	Code      string       `json:"code"`
	HostID    string       `json:"hostId"`
	Players   []*Player    `json:"players"`
	Settings  RoomSettings `json:"settings"`
	State     GameState    `json:"gameState"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) HasPlayerNamed(name string) bool {
	for _, p := range r.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ActivePlayers returns the players holding a question this round.
func (r *Room) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(Questions))
	for _, p := range r.Players {
		if p.AssignedQuestion != nil {
			active = append(active, p)
		}
	}
	return active
}
