package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doc-verify-bot/internal/entity"
	"doc-verify-bot/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	// casRetries bounds the optimistic-locking loop on contended updates.
	casRetries = 5
)

// SessionRepositoryRedis keeps one JSON record per session plus a per-chat
// index set used by free-text routing. Updates go through WATCH so a
// concurrent write to the same session aborts and retries the merge.
type SessionRepositoryRedis struct {
	rdb *redis.Client
}

func NewSessionRepositoryRedis(rdb *redis.Client) contract.SessionRepository {
	return &SessionRepositoryRedis{rdb: rdb}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func chatIndexKey(chatID int64) string {
	return fmt.Sprintf("chat_sessions:%d", chatID)
}

func (r *SessionRepositoryRedis) Create(ctx context.Context, chatID int64) (*entity.Session, error) {
	now := time.Now()
	session := &entity.Session{
		Id:        uuid.New().String(),
		ChatId:    chatID,
		Fields:    entity.NewFields(),
		Status:    entity.StatusPendingVerification,
		CreatedAt: now,
		UpdatedAt: now,
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal session: %v", entity.ErrPersistence, err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.Id), payload, 0)
		pipe.SAdd(ctx, chatIndexKey(chatID), session.Id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", entity.ErrPersistence, err)
	}
	return session, nil
}

func (r *SessionRepositoryRedis) Get(ctx context.Context, id string) (*entity.Session, error) {
	val, err := r.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get session %s: %v", entity.ErrPersistence, id, err)
	}
	return decodeSession(val)
}

func (r *SessionRepositoryRedis) Update(ctx context.Context, id string, upd entity.SessionUpdate) (*entity.Session, error) {
	key := sessionKey(id)
	var updated *entity.Session

	txn := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session %s: %w", id, entity.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("%w: get session %s: %v", entity.ErrPersistence, id, err)
		}

		session, err := decodeSession(val)
		if err != nil {
			return err
		}
		session.Apply(upd)

		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("%w: marshal session %s: %v", entity.ErrPersistence, id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = session
		return nil
	}

	for i := 0; i < casRetries; i++ {
		err := r.rdb.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // lost the race, re-read and merge again
		}
		if errors.Is(err, entity.ErrNotFound) || errors.Is(err, entity.ErrPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update session %s: %v", entity.ErrPersistence, id, err)
	}
	return nil, fmt.Errorf("%w: update session %s: too many concurrent writes", entity.ErrPersistence, id)
}

func (r *SessionRepositoryRedis) Delete(ctx context.Context, id string) (bool, error) {
	session, err := r.Get(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, chatIndexKey(session.ChatId), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: delete session %s: %v", entity.ErrPersistence, id, err)
	}
	return true, nil
}

func (r *SessionRepositoryRedis) FindOneAwaitingEdit(ctx context.Context, chatID int64) (*entity.Session, error) {
	ids, err := r.rdb.SMembers(ctx, chatIndexKey(chatID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list chat %d sessions: %v", entity.ErrPersistence, chatID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: load chat %d sessions: %v", entity.ErrPersistence, chatID, err)
	}

	var best *entity.Session
	var stale []interface{}
	for i, raw := range values {
		if raw == nil {
			stale = append(stale, ids[i])
			continue
		}
		session, err := decodeSession(raw.(string))
		if err != nil {
			return nil, err
		}
		if session.Status != entity.StatusAwaitingEdit {
			continue
		}
		if best == nil || session.UpdatedAt.After(best.UpdatedAt) {
			best = session
		}
	}

	// Drop index entries whose records were deleted elsewhere.
	if len(stale) > 0 {
		r.rdb.SRem(ctx, chatIndexKey(chatID), stale...)
	}
	return best, nil
}

func decodeSession(val string) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", entity.ErrPersistence, err)
	}
	return &session, nil
}
