package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
)

// FileRepository keeps every snapshot in a single zstd compressed JSON file,
// rewritten atomically on each change.
type FileRepository struct {
	lock    sync.Mutex
	path    string
	records map[string]*models.GameRecord
}

func NewFileRepository(path string) (Repository, error) {
	r := &FileRepository{
		path:    path,
		records: make(map[string]*models.GameRecord),
	}
	records, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		r.records[record.ID] = record
	}
	return r, nil
}

func (r *FileRepository) Close(ctx context.Context) error {
	return nil
}

func (r *FileRepository) SaveGames(ctx context.Context, records []*models.GameRecord) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, record := range records {
		r.records[record.ID] = record
	}
	return r.write()
}

func (r *FileRepository) LoadGames(ctx context.Context) ([]*models.GameRecord, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	records := make([]*models.GameRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.Before(records[j].CreatedAt) })
	return records, nil
}

func (r *FileRepository) DeleteGames(ctx context.Context, ids []string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, id := range ids {
		delete(r.records, id)
	}
	return r.write()
}

func (r *FileRepository) read() ([]*models.GameRecord, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", r.path, err)
	}
	b, err = decompress(b)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", r.path, err)
	}
	var records []*models.GameRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %v", r.path, err)
	}
	return records, nil
}

// write must be called with the lock held.
func (r *FileRepository) write() error {
	records := make([]*models.GameRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal games: %v", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(compress(b)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write games: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %v", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace %s: %v", r.path, err)
	}
	return nil
}
