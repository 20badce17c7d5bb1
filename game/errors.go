package game

import "errors"

// Client request errors: reported to the originating caller only, never
// broadcast, and never accompanied by a state mutation.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrNameTaken          = errors.New("name already taken")
	ErrGameInProgress     = errors.New("game already in progress")
	ErrInvalidState       = errors.New("action not valid in current phase")
	ErrAlreadyAnswered    = errors.New("answer already submitted this round")
	ErrNoAssignedQuestion = errors.New("player has no question this round")
	ErrPlayerNotFound     = errors.New("player not in room")
	ErrNotHost            = errors.New("only the host can do that")

	ErrEmptyAnswer   = errors.New("answer is empty")
	ErrAnswerTooLong = errors.New("answer exceeds maximum length")
	ErrProfaneAnswer = errors.New("answer contains disallowed content")
)

// ErrNotEnoughPlayers is a caller error on start-game, surfaced distinctly
// from the recoverable client errors above.
var ErrNotEnoughPlayers = errors.New("at least 4 players required to start")

// ErrCodeSpaceExhausted means the generator could not find a free room code
// within its retry cap. Unrecoverable for the request, not for the service.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")

// ErrStoreUnavailable wraps transient store failures. Callers may retry a
// bounded number of times; the engine itself never does.
var ErrStoreUnavailable = errors.New("room store unavailable")

// IsClientError reports whether err belongs to the recoverable
// client-request taxonomy.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrRoomNotFound, ErrRoomFull, ErrNameTaken, ErrGameInProgress,
		ErrInvalidState, ErrAlreadyAnswered, ErrNoAssignedQuestion, ErrPlayerNotFound, ErrNotHost,
		ErrEmptyAnswer, ErrAnswerTooLong, ErrProfaneAnswer,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
