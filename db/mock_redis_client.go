package db

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
)

// MockRedisClient simulates a Redis client for testing purposes.
type MockRedisClient struct {
	data  map[string]string   // Key-value store
	lists map[string][]string // List store
	mu    sync.RWMutex

	// PingErr, when set, is returned by Ping.
	PingErr error
}

// NewMockRedisClient initializes a new MockRedisClient.
func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data:  make(map[string]string),
		lists: make(map[string][]string),
	}
}

// Set stores a key-value pair in the mock Redis.
func (m *MockRedisClient) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, key)
	m.data[key] = value
	return nil
}

// Get retrieves a value for a given key from the mock Redis.
func (m *MockRedisClient) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.data[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.lists, k)
	}
	return nil
}

// Keys matches glob patterns the way Redis does for the simple '*' and '?' forms.
func (m *MockRedisClient) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]string, 0, len(m.data)+len(m.lists))
	for k := range m.data {
		all = append(all, k)
	}
	for k := range m.lists {
		all = append(all, k)
	}

	var keys []string
	for _, k := range all {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockRedisClient) RPush(_ context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, isString := m.data[key]; isString {
		return fmt.Errorf("WRONGTYPE key %s holds a string", key)
	}
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *MockRedisClient) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.lists[key]
	lo, hi, ok := listBounds(len(list), start, stop)
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), list[lo:hi]...), nil
}

func (m *MockRedisClient) LTrim(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	lo, hi, ok := listBounds(len(list), start, stop)
	if !ok {
		delete(m.lists, key)
		return nil
	}
	m.lists[key] = append([]string(nil), list[lo:hi]...)
	return nil
}

// listBounds resolves Redis-style inclusive, possibly negative, indexes into a slice range.
func listBounds(n int, start, stop int64) (int, int, bool) {
	size := int64(n)
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	return int(start), int(stop) + 1, true
}

// Ping simulates a Redis Ping operation.
func (m *MockRedisClient) Ping(_ context.Context) error {
	return m.PingErr
}
