package cron

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zsmartex/venuex/config"
)

// Locker serializes runs of the same job. Acquire reports false when another
// run holds the lock.
type Locker interface {
	Acquire(name string, ttl time.Duration) (release func(), acquired bool, err error)
}

// NewLocker shares locks through Redis when it is configured, otherwise only
// within this process.
func NewLocker() Locker {
	if config.Redis != nil {
		return &RedisLocker{Cache: config.Redis}
	}

	return NewMemoryLocker()
}

type RedisLocker struct {
	Cache *config.CacheService
}

func (l *RedisLocker) Acquire(name string, ttl time.Duration) (func(), bool, error) {
	key := "venuex:jobs:" + name + ":lock"
	token := uuid.New().String()

	acquired, err := l.Cache.AcquireLock(key, token, ttl)
	if err != nil || !acquired {
		return nil, false, err
	}

	return func() {
		if err := l.Cache.ReleaseLock(key, token); err != nil {
			config.GetLogger().WithField("job", name).Errorf("Failed to release job lock: %v", err)
		}
	}, true, nil
}

type MemoryLocker struct {
	mutex   sync.Mutex
	running map[string]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{running: make(map[string]bool)}
}

func (l *MemoryLocker) Acquire(name string, ttl time.Duration) (func(), bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.running[name] {
		return nil, false, nil
	}
	l.running[name] = true

	return func() {
		l.mutex.Lock()
		delete(l.running, name)
		l.mutex.Unlock()
	}, true, nil
}
