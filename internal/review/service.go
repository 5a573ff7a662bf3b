package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

// Committer persists a confirmed review in one all-or-nothing call.
type Committer interface {
	Commit(ctx context.Context, userID string, meeting model.Meeting, tasks []model.Task) (model.Snapshot, error)
}

// Service owns the staged review of each user. Operations on the same user
// are serialized so load-modify-save never interleaves.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock is dropped from the map once nobody holds or waits on it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*userLock),
	}
}

func (s *Service) lock(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// Stage replaces the user's review with a new one.
func (s *Service) Stage(ctx context.Context, userID string, meeting model.Meeting, tasks []model.Task, warning string) (*Buffer, error) {
	defer s.lock(userID)()

	if tasks == nil {
		tasks = []model.Task{}
	}
	b := &Buffer{
		Meeting:   meeting,
		Tasks:     tasks,
		Warning:   warning,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, userID, b); err != nil {
		return nil, err
	}
	s.logger.Info("review staged",
		zap.String("user", userID),
		zap.String("meeting", meeting.Name),
		zap.Int("tasks", len(tasks)),
	)
	return b, nil
}

func (s *Service) Current(ctx context.Context, userID string) (*Buffer, error) {
	return s.store.Load(ctx, userID)
}

func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) (*Buffer, error) {
	defer s.lock(userID)()

	b, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !b.DeleteTask(taskID) {
		return nil, ErrTaskNotFound
	}
	if err := s.store.Save(ctx, userID, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) EditTask(ctx context.Context, userID, taskID string, e TaskEdit) (*Buffer, error) {
	defer s.lock(userID)()

	b, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := b.EditTask(taskID, e); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, userID, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Confirm hands the whole review to c and returns the snapshot together with
// the review exactly as it was committed. The review is cleared only after
// the commit succeeds; on failure it stays staged so the user can retry.
func (s *Service) Confirm(ctx context.Context, userID string, c Committer) (model.Snapshot, *Buffer, error) {
	defer s.lock(userID)()

	b, err := s.store.Load(ctx, userID)
	if err != nil {
		return model.Snapshot{}, nil, err
	}
	snap, err := c.Commit(ctx, userID, b.Meeting, b.Tasks)
	if err != nil {
		return snap, nil, fmt.Errorf("commit review: %w", err)
	}
	if err := s.store.Clear(ctx, userID); err != nil {
		s.logger.Warn("failed to clear confirmed review", zap.String("user", userID), zap.Error(err))
	}
	s.logger.Info("review confirmed",
		zap.String("user", userID),
		zap.String("meeting", b.Meeting.Name),
		zap.Int("tasks", len(b.Tasks)),
	)
	return snap, b, nil
}

// Discard drops the review without touching persisted data.
func (s *Service) Discard(ctx context.Context, userID string) error {
	defer s.lock(userID)()
	return s.store.Clear(ctx, userID)
}
