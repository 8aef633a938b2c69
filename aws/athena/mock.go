package athena

import (
	"fmt"
	"sync"
)

// MockEngine is an in-memory Client for tests. Each submission consumes the
// scripted States sequence one status per poll, holding the last state once
// the script runs out.
type MockEngine struct {
	sync.Mutex
	States       []Status          // the status sequence GetStatus walks through.
	StartErr     error             // returned by StartQuery when set.
	StatusErr    error             // returned by GetStatus when set.
	Submissions  []Query           // every StartQuery call in order.
	TokensSeen   map[string]string // idempotency token -> query id issued for it.
	nextQueryID  int
	pollsByQuery map[string]int
}

func NewMockEngine(states ...Status) *MockEngine {
	return &MockEngine{
		States:       states,
		TokensSeen:   map[string]string{},
		pollsByQuery: map[string]int{},
	}
}

func (m *MockEngine) StartQuery(q Query) (string, error) {
	m.Lock()
	defer m.Unlock()
	if m.StartErr != nil {
		return "", m.StartErr
	}
	m.Submissions = append(m.Submissions, q)
	if q.Token != "" { // if the caller supplied an idempotency token...
		if id, ok := m.TokensSeen[q.Token]; ok { // if this token was seen before, return the existing execution.
			return id, nil
		}
	}
	m.nextQueryID++
	id := fmt.Sprintf("query-%v", m.nextQueryID)
	if q.Token != "" {
		m.TokensSeen[q.Token] = id
	}
	return id, nil
}

func (m *MockEngine) GetStatus(queryID string) (Status, error) {
	m.Lock()
	defer m.Unlock()
	if m.StatusErr != nil {
		return Status{}, m.StatusErr
	}
	idx := m.pollsByQuery[queryID]
	m.pollsByQuery[queryID]++
	if len(m.States) == 0 {
		return Status{State: StateSucceeded}, nil
	}
	if idx >= len(m.States) { // if the script ran out, hold the last state...
		idx = len(m.States) - 1
	}
	return m.States[idx], nil
}
