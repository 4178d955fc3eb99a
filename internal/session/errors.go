package session

import (
	"errors"
	"fmt"

	"github.com/feltlabs/holdemd/internal/agent"
)

var (
	// ErrGameNotFound means the game id has no live session.
	ErrGameNotFound = errors.New("game not found")

	// ErrOutOfTurn mirrors the bridge error for the core boundary.
	ErrOutOfTurn = agent.ErrOutOfTurn

	// ErrNotReady rejects advance while a hand is still running.
	ErrNotReady = errors.New("a hand is still in progress")

	// ErrSessionTerminal rejects operations on a Completed or Error
	// session.
	ErrSessionTerminal = errors.New("session is terminal")

	// ErrOverloaded rejects creation beyond the concurrency cap.
	ErrOverloaded = errors.New("too many concurrent games")
)

// InvalidConfigError rejects a create_game request.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", e.Reason)
}

func invalidConfigf(format string, args ...any) *InvalidConfigError {
	return &InvalidConfigError{Reason: fmt.Sprintf(format, args...)}
}
