package testhelpers

import (
	"context"
	"sync/atomic"

	"contestbot/domain/interfaces"
)

// DirectTransactor runs transactional work straight against a repository and
// publisher, tracking how many transactions are open at once
type DirectTransactor struct {
	Repo      interfaces.ServerConfigRepository
	Publisher interfaces.EventPublisher
	// Err, when set, is returned instead of running fn
	Err error

	open  int32
	calls int32
}

// NewDirectTransactor creates a transactor over repo and publisher
func NewDirectTransactor(repo interfaces.ServerConfigRepository, publisher interfaces.EventPublisher) *DirectTransactor {
	return &DirectTransactor{Repo: repo, Publisher: publisher}
}

func (t *DirectTransactor) InTransaction(ctx context.Context, guildID int64, fn func(repo interfaces.ServerConfigRepository, publisher interfaces.EventPublisher) error) error {
	atomic.AddInt32(&t.calls, 1)
	if t.Err != nil {
		return t.Err
	}

	atomic.AddInt32(&t.open, 1)
	defer atomic.AddInt32(&t.open, -1)
	return fn(t.Repo, t.Publisher)
}

// Open returns the number of transactions currently running
func (t *DirectTransactor) Open() int {
	return int(atomic.LoadInt32(&t.open))
}

// Calls returns how many transactions were requested
func (t *DirectTransactor) Calls() int {
	return int(atomic.LoadInt32(&t.calls))
}
