package fixpool

import (
	"context"
	"log"
	"sync"

	"tricks_check/attribution"
	"tricks_check/cache"
	"tricks_check/store"
	"tricks_check/wcl"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Options struct {
	Cache  *cache.Storage // optional
	Ledger *store.Ledger  // optional
	Logger *zap.Logger
	Locale *wcl.Locale // used when a snapshot names neither a locale nor a report url
}

// Pool corrects snapshots one at a time, in arrival order.
type Pool struct {
	cache  *cache.Storage
	ledger *store.Ledger
	logger *zap.Logger
	locale *wcl.Locale

	queueLock sync.Mutex
	queue     []*queueData
	queueWake chan struct{}
}

func New(opt Options) *Pool {
	p := &Pool{
		cache:     opt.Cache,
		ledger:    opt.Ledger,
		logger:    opt.Logger,
		locale:    opt.Locale,
		queue:     make([]*queueData, 0, 16),
		queueWake: make(chan struct{}, 1),
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.locale == nil {
		p.locale = wcl.Default()
	}
	return p
}

// Run is the queue worker. It returns when ctx is done.
func (p *Pool) Run(ctx context.Context) {
	for {
		var q *queueData

		p.queueLock.Lock()
		if len(p.queue) > 0 {
			q = p.queue[0]

			copy(p.queue, p.queue[1:])
			p.queue[len(p.queue)-1] = nil
			p.queue = p.queue[:len(p.queue)-1]

			for i, w := range p.queue {
				go w.Reorder(i + 1)
			}
		}
		p.queueLock.Unlock()

		if q == nil {
			select {
			case <-p.queueWake:
			case <-ctx.Done():
				return
			}
			continue
		}

		if q.ctx.Err() != nil {
			continue
		}

		log.Printf("Start: %s (%s, %d rows)", q.token[:8], q.loc.Code, len(q.snap.Entries))
		q.Start()
		res, err := p.fix(q)
		log.Printf("End: %s", q.token[:8])

		q.resp <- queueResult{res, err}
	}
}

func (p *Pool) enqueue(q *queueData) {
	p.queueLock.Lock()
	defer p.queueLock.Unlock()

	if len(p.queue) == 0 {
		select {
		case p.queueWake <- struct{}{}:
		default:
		}
	}
	p.queue = append(p.queue, q)
	go q.Reorder(len(p.queue))
}

func (p *Pool) fix(q *queueData) (*attribution.Result, error) {
	res, err := attribution.Fix(
		q.snap,
		&attribution.Options{
			Locale:    q.loc,
			Logger:    p.logger.With(zap.String("token", q.token)),
			ReportURL: q.snap.ReportURL,
		},
	)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Save(getSnapshotHash(q.snap), res)
	}

	if p.ledger != nil {
		err = p.ledger.MarkProcessed(
			q.ctx,
			store.Entry{
				InputToken:  q.token,
				OutputToken: Token(res.Snapshot()),
				Locale:      res.Locale,
				Rows:        len(res.Rows),
				Removed:     len(res.RemovedIndexes),
			},
		)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// Submit validates snap and waits for its corrected result. A snapshot already seen
// is answered from the cache. A snapshot that is itself a corrected output is refused
// with ErrAlreadyCorrected.
func (p *Pool) Submit(ctx context.Context, snap *attribution.Snapshot) (*attribution.Result, error) {
	return p.submit(ctx, &queueData{snap: snap})
}

func (p *Pool) submit(ctx context.Context, q *queueData) (*attribution.Result, error) {
	if !checkSnapshotValidation(q.snap) {
		return nil, errors.WithStack(ErrInvalidSnapshot)
	}

	loc, err := resolveLocale(q.snap, p.locale)
	if err != nil {
		return nil, err
	}

	h := getSnapshotHash(q.snap)

	q.ctx = ctx
	q.loc = loc
	q.token = Token(q.snap)
	q.resp = make(chan queueResult, 1)

	if p.ledger != nil {
		corrected, err := p.ledger.IsCorrectedOutput(ctx, q.token)
		if err != nil {
			return nil, err
		}
		if corrected {
			return nil, errors.WithStack(ErrAlreadyCorrected)
		}
	}

	if p.cache != nil {
		var res *attribution.Result
		if p.cache.Load(h, &res) && res != nil {
			p.logger.Debug("cache hit", zap.String("token", q.token))
			return res, nil
		}
	}

	p.enqueue(q)

	select {
	case r := <-q.resp:
		return r.res, r.err
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	}
}
