package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"doc-verify-bot/internal/entity"
	"doc-verify-bot/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository is the in-process fallback store. Entries carry a long
// TTL so abandoned sessions are eventually purged instead of leaking.
type SessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex // serializes read-modify-write cycles
}

func NewSessionRepository() *SessionRepository {
	// 24h expiration for abandoned sessions, purge sweep every 10 minutes
	c := cache.New(24*time.Hour, 10*time.Minute)
	return &SessionRepository{cache: c}
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context, chatID int64) (*entity.Session, error) {
	now := time.Now()
	session := &entity.Session{
		Id:        uuid.New().String(),
		ChatId:    chatID,
		Fields:    entity.NewFields(),
		Status:    entity.StatusPendingVerification,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.cache.Set(session.Id, session, cache.DefaultExpiration)
	return copied(session), nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	if x, found := r.cache.Get(id); found {
		return copied(x.(*entity.Session)), nil
	}
	return nil, fmt.Errorf("session %s: %w", id, entity.ErrNotFound)
}

func (r *SessionRepository) Update(ctx context.Context, id string, upd entity.SessionUpdate) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id)
	if !found {
		return nil, fmt.Errorf("session %s: %w", id, entity.ErrNotFound)
	}
	session := copied(x.(*entity.Session))
	session.Apply(upd)
	r.cache.Set(id, session, cache.DefaultExpiration)
	return copied(session), nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.cache.Get(id); !found {
		return false, nil
	}
	r.cache.Delete(id)
	return true, nil
}

func (r *SessionRepository) FindOneAwaitingEdit(ctx context.Context, chatID int64) (*entity.Session, error) {
	var best *entity.Session
	for _, item := range r.cache.Items() {
		session, ok := item.Object.(*entity.Session)
		if !ok || session.ChatId != chatID || session.Status != entity.StatusAwaitingEdit {
			continue
		}
		if best == nil || session.UpdatedAt.After(best.UpdatedAt) {
			best = session
		}
	}
	if best == nil {
		return nil, nil
	}
	return copied(best), nil
}

// copied keeps callers from mutating the cached record in place.
func copied(s *entity.Session) *entity.Session {
	clone := *s
	return &clone
}
