package checkpoint

import (
	"fmt"

	"DomainAI/domain"
)

// MemoryStore 是纯内存实现，用于不落盘的运行和测试。
// 它仍然承担同一轮内重复词的去重。
type MemoryStore struct {
	records map[string]domain.Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.Result)}
}

func (m *MemoryStore) Has(word string) bool {
	_, ok := m.records[word]
	return ok
}

func (m *MemoryStore) Get(word string) (domain.Result, bool) {
	rec, ok := m.records[word]
	return rec, ok
}

func (m *MemoryStore) Put(word string, rec domain.Result) error {
	if !rec.Status.Final() {
		return fmt.Errorf("中间状态不允许写入检查点: %s", rec.Status)
	}
	if _, ok := m.records[word]; !ok {
		m.records[word] = rec
	}
	return nil
}

func (m *MemoryStore) Flush() error { return nil }

func (m *MemoryStore) Close() error { return nil }
