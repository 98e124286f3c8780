package repository

import (
	"sync"
	"time"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
)

type memoryEventLog struct {
	mu      sync.Mutex
	records []*auction.Record
	now     func() time.Time
}

// NewMemoryEventLog keeps the audit log in memory. It backs tests and
// single-node runs without a document store.
func NewMemoryEventLog() auction.EventLog {
	return &memoryEventLog{now: time.Now}
}

func (l *memoryEventLog) Append(ctx bCtx.Ctx, caller domain.Address, events ...auction.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for _, ev := range events {
		l.records = append(l.records, &auction.Record{
			Seq:       uint64(len(l.records)),
			Name:      ev.Name(),
			Caller:    caller,
			EmittedAt: now,
			Payload:   ev,
		})
	}
	return nil
}

func (l *memoryEventLog) List(ctx bCtx.Ctx, offset, limit int) ([]*auction.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(l.records) {
		return []*auction.Record{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(l.records) {
		end = len(l.records)
	}
	out := make([]*auction.Record, end-offset)
	copy(out, l.records[offset:end])
	return out, nil
}
