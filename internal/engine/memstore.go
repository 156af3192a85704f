package engine

import (
	"log/slog"
	"sync"
)

// MemStore is the thread-safe in-memory engine.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [bucket][key]value
	data      map[string]map[string]any
	persister *Persistence
	wg        sync.WaitGroup
}

// NewMemStore initializes a store from previously loaded data (may be nil)
// and an optional persister. A nil persister keeps the store memory-only.
func NewMemStore(initial map[string]map[string]any, p *Persistence) *MemStore {
	if initial == nil {
		initial = make(map[string]map[string]any)
	}
	return &MemStore{
		data:      initial,
		persister: p,
	}
}

// Wait blocks until all background persistence tasks have completed.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

func (m *MemStore) Get(bucket, key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.data[bucket]
	if !ok {
		return nil, ErrBucketNotFound
	}
	val, ok := b[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val, nil
}

func (m *MemStore) Set(bucket, key string, val any) error {
	m.mu.Lock()
	if m.data[bucket] == nil {
		m.data[bucket] = make(map[string]any)
	}
	m.data[bucket][key] = val

	// Snapshot under the lock so the background save sees a stable view.
	snapshot := m.copyBucket(bucket)
	m.mu.Unlock()

	m.persist(bucket, snapshot)
	return nil
}

func (m *MemStore) Delete(bucket, key string) error {
	m.mu.Lock()
	if b, ok := m.data[bucket]; ok {
		delete(b, key)
	}
	snapshot := m.copyBucket(bucket)
	m.mu.Unlock()

	m.persist(bucket, snapshot)
	return nil
}

func (m *MemStore) persist(bucket string, snapshot map[string]any) {
	if m.persister == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.persister.SaveBucket(bucket, snapshot); err != nil {
			slog.Error("bucket persist failed", "bucket", bucket, "err", err)
		}
	}()
}

// copyBucket returns a shallow copy of a bucket's map.
// Callers must hold m.mu.
func (m *MemStore) copyBucket(bucket string) map[string]any {
	original, ok := m.data[bucket]
	if !ok {
		return nil
	}
	cp := make(map[string]any, len(original))
	for k, v := range original {
		cp[k] = v
	}
	return cp
}

func (m *MemStore) Buckets() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []string
	for id := range m.data {
		list = append(list, id)
	}
	return list, nil
}

func (m *MemStore) Keys(bucket string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []string
	if b, ok := m.data[bucket]; ok {
		for k := range b {
			list = append(list, k)
		}
	}
	return list, nil
}

func (m *MemStore) DumpBucket(bucket string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.data[bucket]
	if !ok {
		return nil, ErrBucketNotFound
	}
	cp := make(map[string]any, len(b))
	for k, v := range b {
		cp[k] = v
	}
	return cp, nil
}
