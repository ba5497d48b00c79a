package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/common/validation"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/events"
	"github.com/shopspring/decimal"
)

// CollectionsAPI reads and overwrites the two persisted collections.
// Loading a collection that was never written yields an empty slice.
type CollectionsAPI interface {
	LoadPending(ctx context.Context) ([]PayoutRequest, error)
	LoadHistory(ctx context.Context) ([]PayoutRequest, error)
	SavePending(ctx context.Context, seq []PayoutRequest) error
	SaveHistory(ctx context.Context, seq []PayoutRequest) error
}

type RepositoryAPI interface {
	CollectionsAPI
	PendingExists(ctx context.Context) (bool, error)
	// Transaction runs fn against a view whose writes commit together or not at all.
	Transaction(ctx context.Context, fn func(c CollectionsAPI) error) error
	Clear(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Policy carries the configurable business figures.
type Policy struct {
	MinimumWithdrawal decimal.Decimal
	Overview          Overview
}

func DefaultPolicy() Policy {
	minimum := decimal.NewFromInt(500)
	return Policy{
		MinimumWithdrawal: minimum,
		Overview: Overview{
			HoursRecorded:     decimal.RequireFromString("12.5"),
			TotalEarnings:     decimal.NewFromInt(3250),
			AvailableToPayout: decimal.NewFromInt(1200),
			MinimumWithdrawal: minimum,
		},
	}
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	policy    Policy
	logger    *slog.Logger
	now       func() time.Time

	// serialises read-modify-write cycles within this process
	mu sync.Mutex
}

func NewService(repo RepositoryAPI, publisher EventPublisher, policy Policy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	policy.Overview.MinimumWithdrawal = policy.MinimumWithdrawal
	return &Service{
		repo:      repo,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for decision timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Initialize writes seed as the pending collection when none is stored yet,
// or when the stored one cannot be decoded. It reports whether it wrote.
func (s *Service) Initialize(ctx context.Context, seed []PayoutRequest) (bool, error) {
	if err := ValidatePending(seed); err != nil {
		return false, internal.ErrInvalidCollection.WithCause(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.repo.PendingExists(ctx)
	if err != nil {
		return false, fmt.Errorf("initialize pending: %w", err)
	}
	if exists {
		_, err := s.repo.LoadPending(ctx)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, ErrMalformedCollection) {
			return false, fmt.Errorf("initialize pending: %w", err)
		}
		s.logger.Warn("stored pending collection is unreadable, reseeding", "error", err)
	}

	if seed == nil {
		seed = []PayoutRequest{}
	}
	if err := s.repo.SavePending(ctx, seed); err != nil {
		s.logger.Error("failed to seed pending collection", "error", err)
		return false, fmt.Errorf("initialize pending: %w", err)
	}

	s.logger.Info("pending collection seeded", "count", len(seed))
	return true, nil
}

// LoadPending returns the pending collection in stored order. Unreadable
// data is logged and treated as empty.
func (s *Service) LoadPending(ctx context.Context) ([]PayoutRequest, error) {
	return s.loadOrEmpty(ctx, "pending", s.repo.LoadPending)
}

func (s *Service) LoadHistory(ctx context.Context) ([]PayoutRequest, error) {
	return s.loadOrEmpty(ctx, "history", s.repo.LoadHistory)
}

func (s *Service) SavePending(ctx context.Context, seq []PayoutRequest) error {
	if err := ValidatePending(seq); err != nil {
		return internal.ErrInvalidCollection.WithCause(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.SavePending(ctx, seq)
}

func (s *Service) SaveHistory(ctx context.Context, seq []PayoutRequest) error {
	if err := ValidateHistory(seq); err != nil {
		return internal.ErrInvalidCollection.WithCause(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.SaveHistory(ctx, seq)
}

// Resolve closes the pending request id with outcome: every pending record
// with that id is removed and one closed copy is appended to history, both
// collections written in one transaction. An id that is not pending is a
// no-op and returns (nil, nil). If either stored collection is unreadable
// nothing is written and ErrUnreadableCollection is returned.
func (s *Service) Resolve(ctx context.Context, id int64, outcome Status) (*PayoutRequest, error) {
	if !outcome.IsTerminal() {
		return nil, internal.ErrInvalidOutcome
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var resolved *PayoutRequest
	err := s.repo.Transaction(ctx, func(c CollectionsAPI) error {
		resolved = nil

		pending, err := loadForWrite(ctx, c.LoadPending)
		if err != nil {
			return err
		}

		idx := indexOf(pending, id)
		if idx < 0 {
			return nil
		}

		history, err := loadForWrite(ctx, c.LoadHistory)
		if err != nil {
			return err
		}

		closed := pending[idx].Close(outcome, s.now())
		remaining := make([]PayoutRequest, 0, len(pending)-1)
		for _, r := range pending {
			if r.ID != id {
				remaining = append(remaining, r)
			}
		}
		history = append(history, closed)

		if err := c.SavePending(ctx, remaining); err != nil {
			return err
		}
		if err := c.SaveHistory(ctx, history); err != nil {
			return err
		}
		resolved = &closed
		return nil
	})
	if err != nil {
		s.logger.Error("failed to resolve payout request", "error", err, "payout_id", id, "outcome", outcome)
		return nil, fmt.Errorf("resolve payout %d: %w", id, err)
	}

	if resolved == nil {
		s.logger.Info("payout request not pending, nothing to resolve", "payout_id", id, "outcome", outcome)
		return nil, nil
	}

	s.logger.Info("payout request resolved",
		"payout_id", id,
		"outcome", outcome,
		"amount", resolved.PayoutAmount.String())

	s.publish(ctx, events.NewPayoutResolvedEvent(resolved.ID, resolved.Name, resolved.PaymentMethod,
		resolved.PayoutAmount, string(resolved.RequestStatus), *resolved.Timestamp))

	return resolved, nil
}

// Submit appends a new pending request with the next free id.
func (s *Service) Submit(ctx context.Context, dto SubmitPayoutDTO) (*PayoutRequest, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		s.logger.Warn("payout submission validation failed", "error", appErr.GetDetailedMessage())
		return nil, appErr
	}
	if !IsPaymentMethod(dto.PaymentMethod) {
		return nil, internal.ErrInvalidPaymentMethod
	}
	if dto.PayoutAmount.LessThan(s.policy.MinimumWithdrawal) {
		s.logger.Warn("payout below minimum withdrawal",
			"amount", dto.PayoutAmount.String(),
			"minimum", s.policy.MinimumWithdrawal.String())
		return nil, internal.ErrBelowMinimumWithdrawal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created PayoutRequest
	err := s.repo.Transaction(ctx, func(c CollectionsAPI) error {
		pending, err := loadForWrite(ctx, c.LoadPending)
		if err != nil {
			return err
		}
		history, err := loadForWrite(ctx, c.LoadHistory)
		if err != nil {
			return err
		}

		created = PayoutRequest{
			ID:            NextID(pending, history),
			Name:          dto.Name,
			Hours:         dto.Hours,
			Earnings:      dto.Earnings,
			PayoutAmount:  dto.PayoutAmount,
			PaymentMethod: dto.PaymentMethod,
			RequestStatus: StatusPending,
		}
		return c.SavePending(ctx, append(pending, created))
	})
	if err != nil {
		s.logger.Error("failed to submit payout request", "error", err, "name", dto.Name)
		return nil, fmt.Errorf("submit payout: %w", err)
	}

	s.logger.Info("payout request submitted",
		"payout_id", created.ID,
		"amount", created.PayoutAmount.String(),
		"payment_method", created.PaymentMethod)

	s.publish(ctx, events.NewPayoutSubmittedEvent(created.ID, created.Name, created.PaymentMethod, created.PayoutAmount, s.now()))

	return &created, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	pending, err := s.LoadPending(ctx)
	if err != nil {
		return Stats{}, err
	}
	history, err := s.LoadHistory(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(pending, history), nil
}

func (s *Service) History(ctx context.Context) (*HistoryView, error) {
	history, err := s.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}
	return &HistoryView{
		Requests: SortNewestFirst(history),
		Summary:  Summarize(history),
	}, nil
}

func (s *Service) Overview() Overview {
	return s.policy.Overview
}

func (s *Service) PaymentMethods() []string {
	return PaymentMethods()
}

// Reset drops both collections.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("reset collections: %w", err)
	}
	s.logger.Warn("payout collections cleared")
	return nil
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", ev.EventType())
	}
}

func (s *Service) loadOrEmpty(ctx context.Context, name string, load func(context.Context) ([]PayoutRequest, error)) ([]PayoutRequest, error) {
	return loadOrEmpty(ctx, s.logger, name, load)
}

// loadForWrite reads a collection inside a write transaction. Unreadable data
// aborts the transaction so it is never overwritten.
func loadForWrite(ctx context.Context, load func(context.Context) ([]PayoutRequest, error)) ([]PayoutRequest, error) {
	seq, err := load(ctx)
	if errors.Is(err, ErrMalformedCollection) {
		return nil, internal.ErrUnreadableCollection.WithCause(err)
	}
	return seq, err
}

func loadOrEmpty(ctx context.Context, logger *slog.Logger, name string, load func(context.Context) ([]PayoutRequest, error)) ([]PayoutRequest, error) {
	seq, err := load(ctx)
	if err != nil {
		if errors.Is(err, ErrMalformedCollection) {
			logger.Warn("stored collection is unreadable, using empty", "collection", name, "error", err)
			return []PayoutRequest{}, nil
		}
		return nil, err
	}
	return seq, nil
}

func indexOf(seq []PayoutRequest, id int64) int {
	for i, r := range seq {
		if r.ID == id {
			return i
		}
	}
	return -1
}
