package engine

import "errors"

var (
	ErrInvalidPlayerCount      = errors.New("invalid player count")
	ErrGameNotInProgress       = errors.New("game is not in progress")
	ErrTurnUnresolved          = errors.New("another turn is still being resolved")
	ErrInvalidDice             = errors.New("invalid dice result")
	ErrLinkGenerationExhausted = errors.New("random link generation exhausted its attempts")
	ErrInvalidRules            = errors.New("invalid rules")
	ErrNodeOutOfRange          = errors.New("node out of range")
)
