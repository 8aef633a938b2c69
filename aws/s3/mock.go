package s3

import (
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"sync"
)

// MockStore is an in-memory Client for tests.
type MockStore struct {
	sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	PutCounts    map[string]int
	GetCalls     int   // number of Get invocations.
	GetErr       error // returned by Get when set.
	PutErr       error // returned by Put/BufferPut when set.
	ListErr      error // returned by List when set.
}

func NewMockStore() *MockStore {
	return &MockStore{
		Objects:      map[string][]byte{},
		ContentTypes: map[string]string{},
		PutCounts:    map[string]int{},
	}
}

func (m *MockStore) List(prefix string) ([]string, error) {
	m.Lock()
	defer m.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects { // for each stored object...
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockStore) Get(key string) ([]byte, error) {
	m.Lock()
	defer m.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.Objects[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MockStore) Exists(key string) (bool, error) {
	m.Lock()
	defer m.Unlock()
	_, ok := m.Objects[key]
	return ok, nil
}

func (m *MockStore) Put(key string, data []byte, contentType string) error {
	m.Lock()
	defer m.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.Objects[key] = cp
	m.ContentTypes[key] = contentType
	m.PutCounts[key]++
	return nil
}

func (m *MockStore) BufferPut(key string, buf io.ReadSeeker, contentType string) error {
	data, err := ioutil.ReadAll(buf)
	if err != nil {
		return err
	}
	return m.Put(key, data, contentType)
}

// Move copies src to dst then deletes src, matching the real client.
func (m *MockStore) Move(src, dst string) error {
	data, err := m.Get(src)
	if err != nil {
		return err
	}
	if err = m.Put(dst, data, ""); err != nil {
		return err
	}
	return m.Delete(src)
}

func (m *MockStore) Delete(key string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.Objects, key)
	delete(m.ContentTypes, key)
	return nil
}
