package service

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/jobs"
)

// ActivityService keeps a bounded in-memory log of recent admin
// actions, mirrored to a JSON file. The file is loaded synchronously
// at construction so early pushes can never be overwritten by a late
// load, and flushes run through a single-worker queue so writers never
// interleave.
type ActivityService struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
	size    int
	path    string
	queue   *jobs.Queue
	logger  *zap.Logger
}

// NewActivityService constructs the service and loads the persisted
// log. A missing or unreadable file starts an empty log.
func NewActivityService(path string, size int, logger *zap.Logger) *ActivityService {
	if size <= 0 {
		size = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ActivityService{size: size, path: path, logger: logger}
	s.load()
	s.queue = jobs.NewQueue("activity-flush", s.flush, jobs.QueueConfig{
		Workers:    1,
		BufferSize: size,
		Logger:     logger,
	})
	return s
}

// Start launches the flush worker.
func (s *ActivityService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the flush worker.
func (s *ActivityService) Stop() {
	s.queue.Stop()
}

// Push appends an entry, evicting the oldest once the cap is reached,
// and schedules a flush to disk.
func (s *ActivityService) Push(userID, actionType string, data map[string]interface{}) {
	entry := models.ActivityEntry{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   actionType,
		Data:   data,
		At:     time.Now().UTC(),
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.size {
		s.entries = s.entries[len(s.entries)-s.size:]
	}
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: entry.ID, Type: "flush"}); err != nil {
		s.logger.Warn("failed to schedule activity flush", zap.Error(err))
	}
}

// Entries returns the log newest first.
func (s *ActivityService) Entries(_ context.Context) ([]models.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ActivityEntry, len(s.entries))
	for i, entry := range s.entries {
		out[len(s.entries)-1-i] = entry
	}
	return out, nil
}

func (s *ActivityService) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read activity log", zap.String("path", s.path), zap.Error(err))
		}
		return
	}
	var entries []models.ActivityEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Warn("failed to parse activity log", zap.String("path", s.path), zap.Error(err))
		return
	}
	if len(entries) > s.size {
		entries = entries[len(entries)-s.size:]
	}
	s.entries = entries
}

// flush snapshots the log under the lock and writes it outside of it.
func (s *ActivityService) flush(_ context.Context, _ jobs.Job) error {
	s.mu.Lock()
	snapshot := make([]models.ActivityEntry, len(s.entries))
	copy(snapshot, s.entries)
	s.mu.Unlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to marshal activity log")
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write activity log")
	}
	return nil
}
