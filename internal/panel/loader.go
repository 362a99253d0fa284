package panel

import (
	"context"
	"sync"

	"github.com/kk-code-lab/rpanes/internal/listing"
)

// Lister builds a listing. *listing.Engine satisfies it.
type Lister interface {
	ListContext(ctx context.Context, q listing.Query) ([]listing.Record, error)
}

type loadRequest struct {
	Token    uint64
	Query    listing.Query
	Callback func(loadResult)
}

type loadResult struct {
	Token   uint64
	Query   listing.Query
	Records []listing.Record
	Err     error
}

// loader runs listings on goroutines. A cancelled job never calls back.
type loader struct {
	lister Lister

	mu   sync.Mutex
	jobs map[uint64]context.CancelFunc
}

func newLoader(lister Lister) *loader {
	return &loader{
		lister: lister,
		jobs:   make(map[uint64]context.CancelFunc),
	}
}

func (l *loader) Start(req loadRequest) {
	if req.Token == 0 || req.Query.Root == "" || req.Callback == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.mu.Lock()
	l.jobs[req.Token] = cancel
	l.mu.Unlock()

	go func() {
		defer func() {
			l.mu.Lock()
			delete(l.jobs, req.Token)
			l.mu.Unlock()
			cancel()
		}()

		records, err := l.lister.ListContext(ctx, req.Query)

		select {
		case <-ctx.Done():
			return
		default:
		}

		req.Callback(loadResult{
			Token:   req.Token,
			Query:   req.Query,
			Records: records,
			Err:     err,
		})
	}()
}

func (l *loader) CancelAll() {
	l.mu.Lock()
	for token, cancel := range l.jobs {
		cancel()
		delete(l.jobs, token)
	}
	l.mu.Unlock()
}
