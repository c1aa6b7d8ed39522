// Package syncer pushes locally recorded transactions to the remote sink
// whenever the terminal is online. At most one pass runs at a time; a
// trigger that arrives during a pass is dropped, and whatever is still
// unsynced afterwards is picked up by the next trigger.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/connectivity"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Ledger is the local record of transactions and their sync state. The
// coordinator is the only caller of MarkSynced and MarkRejected.
type Ledger interface {
	ListUnsynced(ctx context.Context) ([]model.Transaction, error)
	MarkSynced(ctx context.Context, id, remoteID string) error
	MarkRejected(ctx context.Context, id, reason string) error
}

type Config struct {
	// PushTimeout bounds a single push. Zero leaves it to the sink.
	PushTimeout time.Duration
	// RetrySchedule is a cron expression for re-running passes while online.
	// Empty disables periodic retries.
	RetrySchedule string
}

// PassResult summarizes one sync pass.
type PassResult struct {
	Pending  int
	Synced   int
	Rejected int
	Failed   int
	// Aborted is set when the terminal went offline, or ctx ended, before
	// every pending transaction was attempted.
	Aborted bool
	Err     error
}

type Coordinator struct {
	ledger  Ledger
	sink    remote.Sink
	monitor connectivity.Monitor
	cfg     Config
	logger  logger.ZapLogger

	running atomic.Bool

	mu          sync.Mutex
	started     bool
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	cron        *cron.Cron
	wg          sync.WaitGroup
}

func NewCoordinator(ledger Ledger, sink remote.Sink, monitor connectivity.Monitor, cfg Config, log logger.ZapLogger) *Coordinator {
	return &Coordinator{
		ledger:  ledger,
		sink:    sink,
		monitor: monitor,
		cfg:     cfg,
		logger:  log,
	}
}

// Trigger runs a pass in the calling goroutine. It returns false without
// doing anything when another pass is already running.
func (c *Coordinator) Trigger(ctx context.Context) (PassResult, bool) {
	if !c.running.CompareAndSwap(false, true) {
		c.logger.Debug("sync pass already running, trigger dropped")
		return PassResult{}, false
	}
	defer c.running.Store(false)
	return c.runPass(ctx), true
}

func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// Start subscribes to connectivity changes and the retry schedule, and
// triggers a pass right away if the terminal is online.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("sync coordinator already started")
	}

	var scheduler *cron.Cron
	if c.cfg.RetrySchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(c.cfg.RetrySchedule, func() {
			if c.monitor.IsOnline() {
				c.triggerAsync("retry")
			}
		})
		if err != nil {
			return fmt.Errorf("invalid retry schedule %q: %w", c.cfg.RetrySchedule, err)
		}
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.unsubscribe = c.monitor.OnChange(func(online bool) {
		if online {
			c.triggerAsync("online")
		}
	})
	if scheduler != nil {
		c.cron = scheduler
		c.cron.Start()
	}

	if c.monitor.IsOnline() {
		c.spawnLocked("startup")
	}
	c.logger.Info("sync coordinator started",
		zap.Bool("online", c.monitor.IsOnline()),
		zap.String("retry_schedule", c.cfg.RetrySchedule),
		zap.Duration("push_timeout", c.cfg.PushTimeout),
	)
	return nil
}

// Stop unsubscribes, cancels the running pass and waits for it to return.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	unsubscribe := c.unsubscribe
	var cronDone context.Context
	if c.cron != nil {
		cronDone = c.cron.Stop()
		c.cron = nil
	}
	c.cancel()
	c.mu.Unlock()

	// a callback may be blocked on c.mu, which the bus waits for on unsubscribe
	unsubscribe()
	if cronDone != nil {
		<-cronDone.Done()
	}
	c.wg.Wait()
	c.logger.Info("sync coordinator stopped")
}

func (c *Coordinator) triggerAsync(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.spawnLocked(reason)
}

func (c *Coordinator) spawnLocked(reason string) {
	ctx := c.ctx
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, ran := c.Trigger(ctx); !ran {
			c.logger.Debug("sync trigger coalesced", zap.String("reason", reason))
		}
	}()
}

func (c *Coordinator) runPass(ctx context.Context) PassResult {
	var res PassResult

	pending, err := c.ledger.ListUnsynced(ctx)
	if err != nil {
		c.logger.Error("failed to list unsynced transactions", zap.Error(err))
		res.Err = err
		return res
	}
	res.Pending = len(pending)
	if res.Pending == 0 {
		return res
	}
	c.logger.Info("sync pass started", zap.Int("pending", res.Pending))

	for i := range pending {
		tx := &pending[i]
		if ctx.Err() != nil || !c.monitor.IsOnline() {
			res.Aborted = true
			c.logger.Info("sync pass aborted", zap.Int("remaining", res.Pending-i))
			break
		}

		if err := tx.VerifyTotal(); err != nil {
			c.logger.Warn("pushing transaction with inconsistent totals", zap.String("transaction_id", tx.ID), zap.Error(err))
		}

		remoteID, err := c.push(ctx, tx)
		// the outcome is recorded even if Stop cancels after the remote answered
		recordCtx := context.WithoutCancel(ctx)
		switch {
		case err == nil:
			if err := c.ledger.MarkSynced(recordCtx, tx.ID, remoteID); err != nil {
				res.Failed++
				c.logger.Error("pushed but failed to mark synced",
					zap.String("transaction_id", tx.ID),
					zap.String("remote_id", remoteID),
					zap.Error(err),
				)
				continue
			}
			res.Synced++
		case remote.IsRejected(err):
			res.Rejected++
			c.logger.Error("remote rejected transaction", zap.String("transaction_id", tx.ID), zap.Error(err))
			if err := c.ledger.MarkRejected(recordCtx, tx.ID, err.Error()); err != nil {
				c.logger.Error("failed to mark transaction rejected", zap.String("transaction_id", tx.ID), zap.Error(err))
			}
		default:
			res.Failed++
			c.logger.Warn("push failed, will retry", zap.String("transaction_id", tx.ID), zap.Error(err))
		}
	}

	c.logger.Info("sync pass finished",
		zap.Int("pending", res.Pending),
		zap.Int("synced", res.Synced),
		zap.Int("rejected", res.Rejected),
		zap.Int("failed", res.Failed),
		zap.Bool("aborted", res.Aborted),
	)
	return res
}

func (c *Coordinator) push(ctx context.Context, tx *model.Transaction) (string, error) {
	if c.cfg.PushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PushTimeout)
		defer cancel()
	}

	remoteID, err := c.sink.Push(ctx, tx)
	if err != nil {
		if !errors.Is(err, apperr.ErrRemoteRejected) && !errors.Is(err, apperr.ErrRemoteTransient) {
			err = remote.Transient(err)
		}
		return "", err
	}
	if remoteID == "" {
		return "", remote.Transient(errors.New("sink returned an empty remote id"))
	}
	return remoteID, nil
}
