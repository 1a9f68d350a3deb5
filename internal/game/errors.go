package game

import "errors"

// Rejections returned by Room operations. None of them change room state.
var (
	ErrUnknownPlayer   = errors.New("game: player is not in this room")
	ErrMissingIdentity = errors.New("game: identity is required")
	ErrNotSeated       = errors.New("game: spectators cannot act")
	ErrNotYourTurn     = errors.New("game: not your turn")
	ErrCardNotInHand   = errors.New("game: card not in hand")
	ErrMustFollowSuit  = errors.New("game: must follow the lead suit")
	ErrWrongPhase      = errors.New("game: action not allowed in this phase")
	ErrTrumpNotSet     = errors.New("game: waiting for trump to be chosen")
	ErrTrumpAlreadySet = errors.New("game: trump already chosen")
	ErrNotTrumpCaller  = errors.New("game: only the trump caller can choose trump")
	ErrInvalidSuit     = errors.New("game: invalid suit")
	ErrAlreadyFinished = errors.New("game: already finished this round")
	ErrGameOver        = errors.New("game: game is over")
	ErrEmptyMessage    = errors.New("game: empty chat message")
	ErrUnknownIntent   = errors.New("game: unknown intent")
)
