package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/coltonsurfer/battleship/models/match"
)

const schemaVersion = "battleship_turn_v1"

// TurnRow is one resolved shot of a finished match. Every row of a match
// repeats the match level columns so a file can be filtered without joins.
type TurnRow struct {
	GameID     string `parquet:"game_id,dict"`
	Seed       int64  `parquet:"seed"`
	Difficulty string `parquet:"difficulty,dict"`
	Winner     string `parquet:"winner,dict"`
	Turns      int32  `parquet:"turns"`

	Turn    int32  `parquet:"turn"`
	Shooter string `parquet:"shooter,dict"`
	X       int32  `parquet:"x"`
	Y       int32  `parquet:"y"`
	Result  string `parquet:"result,dict"`
	Kind    string `parquet:"kind,dict"`
	Sunk    bool   `parquet:"sunk"`
	AtUnix  int64  `parquet:"at_unix_ms"`
}

// RowsFromState flattens the turn log of s. Matches still in setup have no
// rows.
func RowsFromState(gameID string, seed int64, s match.State) []TurnRow {
	history := s.History()
	rows := make([]TurnRow, 0, len(history))
	for _, record := range history {
		rows = append(rows, TurnRow{
			GameID:     gameID,
			Seed:       seed,
			Difficulty: s.Difficulty().String(),
			Winner:     s.Winner().String(),
			Turns:      int32(len(history)),
			Turn:       int32(record.Turn),
			Shooter:    record.Shooter.String(),
			X:          int32(record.Target.X),
			Y:          int32(record.Target.Y),
			Result:     record.Result.String(),
			Kind:       string(record.Kind),
			Sunk:       record.Sunk,
			AtUnix:     record.At.UnixMilli(),
		})
	}
	return rows
}

func WriteTurnsParquet(outPath string, rows []TurnRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Write to a temp file and rename atomically.
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteBatchParquetAtomic writes rows to a new batch file under outDir and
// returns its path.
func WriteBatchParquetAtomic(outDir string, rows []TurnRow) (string, error) {
	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	outPath := filepath.Join(outDir, name)
	if err := WriteTurnsParquet(outPath, rows); err != nil {
		return "", err
	}
	return outPath, nil
}

func ReadTurnsParquet(path string) ([]TurnRow, error) {
	rows, err := parquet.ReadFile[TurnRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
