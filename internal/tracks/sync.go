package tracks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"racebase/internal/config"
	"racebase/internal/storage"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

// Sync refreshes the track master data: upserts every track, drops a JSON
// snapshot in the output directory and records the sync time.
func (s *SyncService) Sync(ctx context.Context) (int, error) {
	records, err := s.client.ListTracks(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertTracks(records); err != nil {
		return 0, err
	}

	blob, _ := json.MarshalIndent(records, "", "  ")
	snapshotPath := filepath.Join(s.cfg.OutputDir, "tracks.json")
	if err := os.MkdirAll(filepath.Dir(snapshotPath), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(snapshotPath, blob, 0o644); err != nil {
		return 0, err
	}

	_ = s.db.SetMetadata("tracks.last_sync", time.Now().UTC().Format(time.RFC3339))
	return len(records), nil
}
