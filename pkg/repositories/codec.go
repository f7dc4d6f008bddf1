package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
	"github.com/klauspost/compress/zstd"
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

func compress(b []byte) []byte {
	return encoder.EncodeAll(b, nil)
}

func decompress(b []byte) ([]byte, error) {
	out, err := decoder.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %v", err)
	}
	return out, nil
}

// row is the column layout shared by the SQL repositories and the hash
// values of the Redis repository. The maze is stored zstd compressed.
type row struct {
	ID        string `json:"id"`
	Config    []byte `json:"config"`
	Maze      []byte `json:"maze"`
	CreatedAt int64  `json:"createdAt"`
}

func encodeRow(record *models.GameRecord) (*row, error) {
	config, err := json.Marshal(record.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config of game %s: %v", record.ID, err)
	}
	m, err := json.Marshal(record.Maze)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal maze of game %s: %v", record.ID, err)
	}
	return &row{
		ID:        record.ID,
		Config:    config,
		Maze:      compress(m),
		CreatedAt: record.CreatedAt.UnixMilli(),
	}, nil
}

func decodeRow(r *row) (*models.GameRecord, error) {
	record := &models.GameRecord{
		ID:        r.ID,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
	if err := json.Unmarshal(r.Config, &record.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config of game %s: %v", r.ID, err)
	}
	b, err := decompress(r.Maze)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze of game %s: %v", r.ID, err)
	}
	m := &maze.Maze{}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal maze of game %s: %v", r.ID, err)
	}
	record.Maze = m
	return record, nil
}
