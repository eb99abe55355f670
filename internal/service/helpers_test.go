package service

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// stubPolicy answers access questions from fixed tables.
type stubPolicy struct {
	owners     map[uint]uint
	members    map[uint][]uint
	roles      map[uint]string
	evaluators map[uint]bool
}

func newStubPolicy() *stubPolicy {
	return &stubPolicy{
		owners:     make(map[uint]uint),
		members:    make(map[uint][]uint),
		roles:      make(map[uint]string),
		evaluators: make(map[uint]bool),
	}
}

func (p *stubPolicy) IsOwner(_ context.Context, userID, documentID uint) (bool, error) {
	return p.owners[documentID] == userID, nil
}

func (p *stubPolicy) IsGroupMember(_ context.Context, userID, groupID uint) (bool, error) {
	for _, member := range p.members[groupID] {
		if member == userID {
			return true, nil
		}
	}
	return false, nil
}

func (p *stubPolicy) HasRole(_ context.Context, userID uint, role string) (bool, error) {
	return p.roles[userID] == role, nil
}

func (p *stubPolicy) CanEvaluate(_ context.Context, userID uint) (bool, error) {
	return p.evaluators[userID], nil
}

// capturePublisher records published events instead of hitting a bus.
type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
}

func (c *capturePublisher) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *capturePublisher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}
