package services

import (
	"context"
	"time"

	"mandi-backend/notify"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier receives fire-and-forget events after a successful commit.
type Notifier interface {
	Publish(ctx context.Context, ev notify.Event)
}

type Options struct {
	Locker   Locker
	Notifier Notifier
	Logger   *logrus.Logger
	// Timeout bounds every compound operation, lock wait included.
	Timeout time.Duration
	Now     func() time.Time
}

// Engine is the transaction coordinator: it runs the compound sale, credit
// and stock operations as single units of work and is the only caller of
// the balance ledger, stock allocator and audit recorder.
type Engine struct {
	db       *gorm.DB
	locker   Locker
	notifier Notifier
	log      *logrus.Logger
	timeout  time.Duration
	now      func() time.Time

	balances *BalanceLedger
	stock    *StockAllocator
	audit    *AuditRecorder
}

func NewEngine(db *gorm.DB, opts Options) *Engine {
	if opts.Locker == nil {
		opts.Locker = NewLocalLocker()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		db:       db,
		locker:   opts.Locker,
		notifier: opts.Notifier,
		log:      opts.Logger,
		timeout:  opts.Timeout,
		now:      opts.Now,
		balances: &BalanceLedger{now: opts.Now},
		stock:    &StockAllocator{now: opts.Now, log: opts.Logger},
		audit:    &AuditRecorder{now: opts.Now},
	}
}

// atomically takes the locks for keys, then runs fn inside one database
// transaction. Any error rolls the whole transaction back; the caller never
// sees a half-applied operation.
func (e *Engine) atomically(ctx context.Context, op string, keys []string, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	unlock, err := e.locker.Lock(ctx, keys...)
	if err != nil {
		e.log.WithFields(logrus.Fields{"op": op, "keys": keys}).WithError(err).Warn("lock not obtained")
		return classify(op, err)
	}
	defer unlock()

	if err := e.db.WithContext(ctx).Transaction(fn); err != nil {
		err = classify(op, err)
		entry := e.log.WithFields(logrus.Fields{"op": op, "keys": keys, "code": CodeOf(err)})
		if IsClientError(err) || IsNotFound(err) {
			entry.Info("rolled back: " + err.Error())
		} else {
			entry.WithError(err).Error("rolled back")
		}
		return err
	}
	return nil
}

// read runs a query with the engine timeout applied.
func (e *Engine) read(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return classify(op, fn(e.db.WithContext(ctx)))
}

func (e *Engine) publish(ctx context.Context, typ string, data any) {
	if e.notifier == nil {
		return
	}
	e.notifier.Publish(context.WithoutCancel(ctx), notify.Event{Type: typ, Data: data, At: e.now()})
}
