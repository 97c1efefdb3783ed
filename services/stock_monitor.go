package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/inventory"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
)

const defaultRetryBatch = 50

// StockMetrics counts what the retry monitor has done since start.
type StockMetrics struct {
	Runs      int64 `json:"runs"`
	Recovered int64 `json:"recovered"`
	Failed    int64 `json:"failed"`
	Exhausted int64 `json:"exhausted"`
}

type RetryLedger interface {
	ApplyOne(ctx context.Context, d models.StockDecrement) error
	ResolveRecipes(ctx context.Context, consumption map[string]int) (inventory.Plan, []apperrors.StockFailure)
}

// StockRetryMonitor replays decrements that failed after their sale was saved.
type StockRetryMonitor struct {
	outbox store.RetryOutbox
	ledger RetryLedger
	log    logrus.FieldLogger

	Interval    time.Duration
	MaxAttempts int
	BatchSize   int
	// OnRecovered runs after a pass that changed stock.
	OnRecovered func()

	metrics  StockMetrics
	mutex    sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewStockRetryMonitor(outbox store.RetryOutbox, ledger RetryLedger, log logrus.FieldLogger, interval time.Duration, maxAttempts int) *StockRetryMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StockRetryMonitor{
		outbox:      outbox,
		ledger:      ledger,
		log:         log,
		Interval:    interval,
		MaxAttempts: maxAttempts,
		BatchSize:   defaultRetryBatch,
		stopChan:    make(chan struct{}),
	}
}

func (m *StockRetryMonitor) Start() {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.RunOnce(context.Background())
			case <-m.stopChan:
				return
			}
		}
	}()
	m.log.WithField("interval", m.Interval.String()).Info("Stock retry monitor started")
}

func (m *StockRetryMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// RunOnce processes one batch of pending retries and returns how many were
// recovered.
func (m *StockRetryMonitor) RunOnce(ctx context.Context) int {
	pending, err := m.outbox.PendingStockRetries(ctx, m.MaxAttempts, m.BatchSize)
	if err != nil {
		m.log.WithError(err).Error("Failed to load stock retries")
		return 0
	}
	m.bump(func(s *StockMetrics) { s.Runs++ })
	if len(pending) == 0 {
		return 0
	}
	m.log.WithField("count", len(pending)).Info("Processing stock retry queue")

	recovered := 0
	for i := range pending {
		if m.retry(ctx, &pending[i]) {
			recovered++
		}
	}
	if recovered > 0 && m.OnRecovered != nil {
		m.OnRecovered()
	}
	return recovered
}

func (m *StockRetryMonitor) retry(ctx context.Context, r *models.StockRetry) bool {
	entry := m.log.WithFields(logrus.Fields{
		"retry_id":  r.ID,
		"order_id":  r.OrderID,
		"kind":      r.Kind,
		"target_id": r.TargetID,
	})

	r.Attempts++
	err := m.replay(ctx, r)
	if err == nil {
		r.Processed = true
		r.LastError = ""
	} else {
		r.LastError = err.Error()
	}
	if saveErr := m.outbox.SaveStockRetry(ctx, r); saveErr != nil {
		entry.WithError(saveErr).Error("Failed to update stock retry")
	}

	switch {
	case err == nil:
		entry.Info("Stock retry applied")
		m.bump(func(s *StockMetrics) { s.Recovered++ })
		return true
	case m.MaxAttempts > 0 && r.Attempts >= m.MaxAttempts:
		entry.WithError(err).Error("Stock retry gave up, manual stock adjustment needed")
		m.bump(func(s *StockMetrics) { s.Failed++; s.Exhausted++ })
	default:
		entry.WithError(err).Warn("Stock retry failed")
		m.bump(func(s *StockMetrics) { s.Failed++ })
	}
	return false
}

// replay applies a retry row. A recipe row is expanded into ingredient rows
// that are queued on their own, so a partial failure is never applied twice.
func (m *StockRetryMonitor) replay(ctx context.Context, r *models.StockRetry) error {
	if r.Kind != models.StockKindRecipe {
		return m.ledger.ApplyOne(ctx, models.StockDecrement{Kind: r.Kind, TargetID: r.TargetID, Quantity: r.Quantity})
	}

	plan, failures := m.ledger.ResolveRecipes(ctx, map[string]int{r.TargetID: int(r.Quantity.IntPart())})
	if len(failures) > 0 {
		return &apperrors.InventoryWarning{Failures: failures}
	}
	rows := make([]models.StockRetry, 0, len(plan.Decrements))
	for _, d := range plan.Decrements {
		rows = append(rows, models.StockRetry{OrderID: r.OrderID, Kind: d.Kind, TargetID: d.TargetID, Quantity: d.Quantity})
	}
	return m.outbox.EnqueueStockRetries(ctx, rows)
}

func (m *StockRetryMonitor) bump(f func(*StockMetrics)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	f(&m.metrics)
}

func (m *StockRetryMonitor) GetMetrics() StockMetrics {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.metrics
}
