// Package store holds the whole ledger in memory and mirrors every change to
// a kv.Store.
//
// Reads are served from memory. A mutation updates memory under the write
// lock and queues a JSON snapshot of the affected key for a single writer
// goroutine, so snapshots reach storage in the order the mutations happened.
// Persistence is best effort: failures are logged and the in-memory state
// stays authoritative for the lifetime of the process.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taxledger/internal/kv"
	"taxledger/internal/models"
	"taxledger/internal/uuid"
	"taxledger/internal/validator"
)

// Persisted keys.
const (
	KeyIncome            = "@tax_app_income"
	KeyExpenses          = "@tax_app_expenses"
	KeyIncomeCategories  = "@tax_app_income_categories"
	KeyExpenseCategories = "@tax_app_expense_categories"
	KeyThemeMode         = "@tax_app_theme_mode"
)

const (
	writeQueueSize = 64
	persistTimeout = 10 * time.Second
)

var (
	ErrInvalidType         = errors.New("store: unknown transaction type")
	ErrTransactionNotFound = errors.New("store: transaction not found")
	ErrCategoryNotFound    = errors.New("store: category not found")
	ErrDuplicateCategory   = errors.New("store: category already exists")
	ErrInvalidThemeMode    = errors.New("store: unknown theme mode")
	ErrClosed              = errors.New("store: closed")
)

// TransactionKey returns the storage key of the t ledger.
func TransactionKey(t models.TransactionType) string {
	if t == models.TransactionTypeIncome {
		return KeyIncome
	}
	return KeyExpenses
}

// CategoryKey returns the storage key of the t category set.
func CategoryKey(t models.TransactionType) string {
	if t == models.TransactionTypeIncome {
		return KeyIncomeCategories
	}
	return KeyExpenseCategories
}

type write struct {
	key   string
	value []byte
	// barrier is closed once every earlier write has been handled.
	barrier chan struct{}
}

// Store is the in-memory ledger.
type Store struct {
	kv  kv.Store
	log *zap.SugaredLogger

	mu           sync.RWMutex
	transactions map[models.TransactionType][]models.Transaction
	categories   map[models.TransactionType][]models.Category
	theme        models.ThemeMode
	closed       bool

	writes chan write
	done   chan struct{}
}

// Open hydrates a Store from backend. Keys are read concurrently. Records that
// fail validation are dropped and counted in the log; a missing or unreadable
// category set is replaced by the defaults. Only a cancelled ctx makes Open
// fail.
func Open(ctx context.Context, backend kv.Store, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Store{
		kv:           backend,
		log:          log,
		transactions: make(map[models.TransactionType][]models.Transaction, 2),
		categories:   make(map[models.TransactionType][]models.Category, 2),
		theme:        models.ThemeModeAuto,
		writes:       make(chan write, writeQueueSize),
		done:         make(chan struct{}),
	}

	var (
		income, expenses                    []models.Transaction
		incomeCategories, expenseCategories []models.Category
		theme                               models.ThemeMode
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = s.loadTransactions(gctx, KeyIncome)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.loadTransactions(gctx, KeyExpenses)
		return err
	})
	g.Go(func() (err error) {
		incomeCategories, err = s.loadCategories(gctx, models.TransactionTypeIncome)
		return err
	})
	g.Go(func() (err error) {
		expenseCategories, err = s.loadCategories(gctx, models.TransactionTypeExpense)
		return err
	})
	g.Go(func() (err error) {
		theme, err = s.loadThemeMode(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	s.transactions[models.TransactionTypeIncome] = income
	s.transactions[models.TransactionTypeExpense] = expenses
	s.categories[models.TransactionTypeIncome] = incomeCategories
	s.categories[models.TransactionTypeExpense] = expenseCategories
	s.theme = theme

	go s.writer()

	log.Infow("ledger loaded",
		"income", len(income),
		"expenses", len(expenses),
		"income_categories", len(incomeCategories),
		"expense_categories", len(expenseCategories),
		"theme_mode", theme,
	)
	return s, nil
}

// read fetches key, logging storage failures. ok is false when nothing
// usable was stored. A non-nil error is only returned for ctx cancellation.
func (s *Store) read(ctx context.Context, key string) (data []byte, ok bool, err error) {
	data, err = s.kv.Get(ctx, key)
	switch {
	case err == nil:
		return data, true, nil
	case errors.Is(err, kv.ErrNotFound):
		return nil, false, nil
	case ctx.Err() != nil:
		return nil, false, ctx.Err()
	default:
		s.log.Errorw("error loading key", "key", key, "error", err)
		return nil, false, nil
	}
}

func (s *Store) loadTransactions(ctx context.Context, key string) ([]models.Transaction, error) {
	data, ok, err := s.read(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	records, dropped, err := validator.Transactions(data)
	if err != nil {
		s.log.Warnw("discarding unreadable ledger", "key", key, "error", err)
		return nil, nil
	}
	if dropped > 0 {
		s.log.Warnw("dropped invalid transactions", "key", key, "dropped", dropped, "kept", len(records))
	}
	return records, nil
}

func (s *Store) loadCategories(ctx context.Context, t models.TransactionType) ([]models.Category, error) {
	key := CategoryKey(t)
	data, ok, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return models.DefaultCategories(t), nil
	}
	records, dropped, err := validator.Categories(data)
	if err != nil {
		s.log.Warnw("unreadable categories, using defaults", "key", key, "error", err)
		return models.DefaultCategories(t), nil
	}
	if dropped > 0 {
		s.log.Warnw("dropped invalid categories", "key", key, "dropped", dropped, "kept", len(records))
	}
	return records, nil
}

// loadThemeMode accepts both the bare value and a JSON string.
func (s *Store) loadThemeMode(ctx context.Context) (models.ThemeMode, error) {
	data, ok, err := s.read(ctx, KeyThemeMode)
	if err != nil || !ok {
		return models.ThemeModeAuto, err
	}
	mode := models.ThemeMode(strings.Trim(strings.TrimSpace(string(data)), `"`))
	if !mode.Valid() {
		s.log.Warnw("ignoring unknown theme mode", "value", string(data))
		return models.ThemeModeAuto, nil
	}
	return mode, nil
}

// writer applies queued snapshots one at a time until the queue is closed.
func (s *Store) writer() {
	defer close(s.done)
	for w := range s.writes {
		if w.barrier != nil {
			close(w.barrier)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := s.kv.Set(ctx, w.key, w.value); err != nil {
			s.log.Errorw("error saving key", "key", w.key, "error", err)
		}
		cancel()
	}
}

// enqueue must be called with mu held for writing.
func (s *Store) enqueue(key string, value any) {
	if s.closed {
		s.log.Warnw("store closed, change not persisted", "key", key)
		return
	}
	var data []byte
	if mode, ok := value.(models.ThemeMode); ok {
		data = []byte(mode)
	} else {
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			s.log.Errorw("error encoding key", "key", key, "error", err)
			return
		}
	}
	s.writes <- write{key: key, value: data}
}

// Flush waits until every change made before the call has been handed to
// storage.
func (s *Store) Flush(ctx context.Context) error {
	barrier := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.writes <- write{barrier: barrier}
	s.mu.Unlock()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for the queue to drain. Calling it
// again is a no-op.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.writes)
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func checkType(t models.TransactionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return nil
}

func newID() string { return uuid.New() }
