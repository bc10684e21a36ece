package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	errs "gamesave/internal/errors"
)

// RedisSlotStore keeps each save as a string value under prefix:slot.
type RedisSlotStore struct {
	client *redis.Client
	prefix string
	log    *zap.SugaredLogger
}

func NewRedisSlotStore(client *redis.Client, prefix string, log *zap.SugaredLogger) *RedisSlotStore {
	return &RedisSlotStore{client: client, prefix: prefix, log: log}
}

func (s *RedisSlotStore) key(slot string) string {
	return s.prefix + ":" + slot
}

func (s *RedisSlotStore) Open(ctx context.Context, slot string) (io.ReadSeekCloser, error) {
	if err := checkSlotName(slot); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("slot %q: %w", slot, errs.ErrSlotNotFound)
	}
	if err != nil {
		s.log.Errorw("Failed to read save slot", "slot", slot, zap.Error(err))
		return nil, err
	}
	return newMemSlot(data), nil
}

func (s *RedisSlotStore) Write(ctx context.Context, slot string, data []byte) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Set(ctx, s.key(slot), data, 0).Err()
}

func (s *RedisSlotStore) List(ctx context.Context) ([]SlotInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out []SlotInfo
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		size, err := s.client.StrLen(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, SlotInfo{Slot: strings.TrimPrefix(key, s.prefix+":"), Size: size})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *RedisSlotStore) Delete(ctx context.Context, slot string) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.key(slot)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("slot %q: %w", slot, errs.ErrSlotNotFound)
	}
	return nil
}
