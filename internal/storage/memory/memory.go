// Package memory хранилище в памяти процесса на go-cache. Используется
// при storage.driver: memory и в тестах.
package memory

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const cleanupInterval = time.Minute

type Store struct {
	c *cache.Cache

	mu     sync.Mutex
	nextID int64
}

func New() *Store {
	return &Store{
		c: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set сохраняет копию значения. ttl == 0 означает без срока.
func (s *Store) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s.c.Set(key, append([]byte(nil), value...), ttl)
}

func (s *Store) Delete(key string) {
	s.c.Delete(key)
}

// Keys возвращает неистёкшие ключи.
func (s *Store) Keys() []string {
	items := s.c.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}

// NextID выдаёт последовательные идентификаторы начиная с 1.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	return s.nextID
}

func (s *Store) Flush() {
	s.c.Flush()
}

func IDKey(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}
