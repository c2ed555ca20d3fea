package error

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPlacement = errors.New("invalid ship placement")
	ErrOutOfBounds      = errors.New("coordinates out of grid bound")
	ErrAlreadyTargeted  = errors.New("position already targeted")
	ErrSetupFailure     = errors.New("fleet setup failed")
	ErrNoTargets        = errors.New("no untargeted positions left")

	ErrIllegalTransition = errors.New("command not allowed in current phase")

	ErrNotFound     = errors.New("not found")
	ErrSignalAbsent = errors.New("incoming req payload must contain 'code' field")
)

func ErrShipPlacement(kind string, x, y int) error {
	return fmt.Errorf("%w: cannot place %s at\tx: %d\ty: %d", ErrInvalidPlacement, kind, x, y)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrOutOfBounds, x, y)
}

func ErrAttackPositionAlreadyFilled(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrAlreadyTargeted, x, y)
}

func ErrRandomPlacementFailed(kind string, attempts int) error {
	return fmt.Errorf("%w: could not place %s after %d attempts", ErrSetupFailure, kind, attempts)
}

func ErrBoardExhausted(size int) error {
	return fmt.Errorf("%w on %dx%d board", ErrNoTargets, size, size)
}

func ErrIllegalCommand(command, phase string) error {
	return fmt.Errorf("%w\tcommand: %s\tphase: %s", ErrIllegalTransition, command, phase)
}

func ErrMatchNotExists(matchId string) error {
	return fmt.Errorf("match with this id does not exist, id: %s: %w", matchId, ErrNotFound)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s: %w", sessionId, ErrNotFound)
}

func ErrInvalidGameDifficulty(difficulty string) error {
	return fmt.Errorf("invalid game difficulty: %s", difficulty)
}

func ErrInvalidOrientation(orientation string) error {
	return fmt.Errorf("invalid ship orientation: %s", orientation)
}

func ErrInvalidShipKind(kind string) error {
	return fmt.Errorf("invalid ship kind: %s", kind)
}

func ErrInvalidShotResult(result string) error {
	return fmt.Errorf("invalid shot result: %s", result)
}
