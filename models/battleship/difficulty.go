package battleship

import (
	"strconv"
	"strings"

	cerr "github.com/coltonsurfer/battleship/internal/error"
)

type Difficulty uint8

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

const DefaultDifficulty = DifficultyEasy

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "difficulty(" + strconv.Itoa(int(d)) + ")"
	}
}

func (d Difficulty) IsValid() bool {
	return d <= DifficultyHard
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium", "normal":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return DefaultDifficulty, cerr.ErrInvalidGameDifficulty(s)
}
