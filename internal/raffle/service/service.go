// Package service implements the round lifecycle state machine. A round
// cycles OPEN -> CALCULATING -> OPEN forever: entries accumulate while open,
// a triggered draw locks the round and requests randomness, and the
// asynchronous fulfillment pays out the pool and resets the round.
package service

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"raffle/internal/raffle/bank"
	"raffle/internal/raffle/ledger"
	"raffle/internal/raffle/metrics"
	"raffle/internal/raffle/models"
	"raffle/internal/raffle/upkeep"
	"raffle/internal/raffle/vrf"
	dErrors "raffle/pkg/domain-errors"
)

var tracer = otel.Tracer("raffle/service")

// Bank moves stake between accounts. Transfer must be atomic: a failed
// payout may not leave a partial debit behind.
type Bank interface {
	Deposit(ctx context.Context, account string, amount uint64) error
	Transfer(ctx context.Context, from, to string, amount uint64) error
	Balance(ctx context.Context, account string) (uint64, error)
}

// Coordinator dispatches a randomness request to the external provider.
// Completion arrives later through FulfillRandomness, never as a return
// value here.
type Coordinator interface {
	RequestRandomWords(ctx context.Context, req vrf.WordsRequest) error
}

// RequestStore tracks the single outstanding randomness request.
type RequestStore interface {
	Put(ctx context.Context, req models.RandomnessRequest) error
	Outstanding(ctx context.Context) (models.RandomnessRequest, error)
	Consume(ctx context.Context, id uuid.UUID) (models.RandomnessRequest, error)
}

// RoundStore records completed rounds.
type RoundStore interface {
	Record(ctx context.Context, rec models.CompletedRound) error
	Last(ctx context.Context) (models.CompletedRound, error)
}

// Publisher emits the Entered and Winner notifications.
type Publisher interface {
	PublishEntered(ctx context.Context, event models.EnteredEvent) error
	PublishWinner(ctx context.Context, event models.WinnerEvent) error
}

// Service is the round state machine. All public operations serialize
// through one mutex: the execution model is single-writer and an operation
// either completes or leaves no trace. The CALCULATING state extends that
// exclusion across the asynchronous randomness round trip.
type Service struct {
	mu sync.Mutex

	cfg         models.RoundConfig
	callbackURL string

	roundID    uuid.UUID
	state      models.RoundState
	openedAt   time.Time
	lastWinner *models.CompletedRound

	ledger      *ledger.Ledger
	bank        Bank
	coordinator Coordinator
	requests    RequestStore
	rounds      RoundStore

	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	clock     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithCallbackURL sets the fulfillment callback URL forwarded to the
// coordinator with each request.
func WithCallbackURL(url string) Option {
	return func(s *Service) {
		s.callbackURL = url
	}
}

// New constructs the state machine with a fresh open round. Invalid
// configuration is rejected here, before the service can accept any entry.
func New(cfg models.RoundConfig, l *ledger.Ledger, b Bank, c Coordinator, requests RequestStore, rounds RoundStore, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if l == nil || b == nil || c == nil || requests == nil || rounds == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "ledger, bank, coordinator and stores are required")
	}

	s := &Service{
		cfg:         cfg,
		roundID:     uuid.New(),
		state:       models.StateOpen,
		ledger:      l,
		bank:        b,
		coordinator: c,
		requests:    requests,
		rounds:      rounds,
		logger:      slog.Default(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.openedAt = s.clock()
	return s, nil
}

// Enter joins the current round with the given stake. Valid only while the
// round is open; the stake must meet the configured minimum. Both rejections
// leave the ledger and pool untouched.
func (s *Service) Enter(ctx context.Context, depositor string, stake uint64) (int, error) {
	ctx, span := tracer.Start(ctx, "raffle.enter")
	defer span.End()
	span.SetAttributes(attribute.String("depositor", depositor))

	s.mu.Lock()
	defer s.mu.Unlock()

	if depositor == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "depositor is required")
	}
	if s.state != models.StateOpen {
		s.recordRejectedEntry()
		return 0, dErrors.New(dErrors.CodeRoundNotOpen, "round is not open for entries").
			With("state", s.state.String())
	}
	if stake < s.cfg.MinimumStake {
		s.recordRejectedEntry()
		return 0, dErrors.New(dErrors.CodeStakeTooLow, "stake below entrance minimum").
			With("stake", stake).
			With("minimum_stake", s.cfg.MinimumStake)
	}
	if stake > math.MaxUint64-s.ledger.Pool() {
		s.recordRejectedEntry()
		return 0, dErrors.New(dErrors.CodeValidation, "stake would overflow the pool").
			With("stake", stake).
			With("pool", s.ledger.Pool())
	}

	now := s.clock()
	if err := s.bank.Deposit(ctx, bank.PoolAccount, stake); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit the pool")
	}
	index, err := s.ledger.Append(models.Entrance{Depositor: depositor, Stake: stake, EnteredAt: now})
	if err != nil {
		// Overflow was pre-checked; reaching here means the ledger and the
		// pool account disagree.
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record entrance")
	}

	if s.metrics != nil {
		s.metrics.RecordEntry(s.ledger.Pool(), s.ledger.Len())
	}
	s.publishEntered(ctx, models.EnteredEvent{
		RoundID:   s.roundID,
		Depositor: depositor,
		Amount:    stake,
		EnteredAt: now,
	})

	s.logger.InfoContext(ctx, "entrance accepted",
		"round_id", s.roundID,
		"depositor", depositor,
		"stake", stake,
		"participants", s.ledger.Len(),
		"pool", s.ledger.Pool(),
	)
	return index, nil
}

// EvaluateUpkeep reports whether a draw may be triggered now. The byte
// payload is reserved and always empty.
func (s *Service) EvaluateUpkeep(ctx context.Context) (bool, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := upkeep.Evaluate(s.snapshot(), s.cfg, s.clock())
	return result.Needed(), nil
}

// TriggerDraw locks the round and dispatches exactly one randomness request.
// The state flip and the request correlation commit before the coordinator
// is called, so any reentry during the outstanding call observes
// CALCULATING and is rejected.
func (s *Service) TriggerDraw(ctx context.Context) (uuid.UUID, error) {
	ctx, span := tracer.Start(ctx, "raffle.trigger_draw")
	defer span.End()

	s.mu.Lock()
	now := s.clock()
	snap := s.snapshot()
	result := upkeep.Evaluate(snap, s.cfg, now)
	if !result.Needed() {
		s.mu.Unlock()
		return uuid.Nil, dErrors.New(dErrors.CodeUpkeepNotNeeded, "draw is not eligible").
			With("state", snap.State.String()).
			With("participants", snap.Participants).
			With("balance", snap.Pool)
	}

	req := vrf.NewWordsRequest(s.cfg, s.callbackURL)
	if err := s.requests.Put(ctx, req.Correlation(s.roundID, now)); err != nil {
		s.mu.Unlock()
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store randomness request")
	}
	s.state = models.StateCalculating
	if s.metrics != nil {
		s.metrics.RecordDrawTriggered()
	}
	roundID := s.roundID
	s.mu.Unlock()

	// Interaction happens after the lock committed; a synchronous dispatch
	// failure means the provider never saw the request, so the round reverts
	// to open rather than waiting for a fulfillment that cannot come.
	if err := s.coordinator.RequestRandomWords(ctx, req); err != nil {
		s.revertDraw(ctx, req.RequestID)
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "randomness request dispatch failed").
			With("request_id", req.RequestID)
	}

	span.SetAttributes(attribute.String("request_id", req.RequestID.String()))
	s.logger.InfoContext(ctx, "draw triggered",
		"round_id", roundID,
		"request_id", req.RequestID,
		"participants", snap.Participants,
		"pool", snap.Pool,
	)
	return req.RequestID, nil
}

// FulfillRandomness completes the round for a previously dispatched request.
// Only the outstanding request ID is accepted, exactly once. The payout runs
// before any destructive reset: if the transfer fails the round stays
// CALCULATING with its ledger and pool intact, and the error reports why.
func (s *Service) FulfillRandomness(ctx context.Context, requestID uuid.UUID, words []uint64) (models.CompletedRound, error) {
	ctx, span := tracer.Start(ctx, "raffle.fulfill_randomness")
	defer span.End()
	span.SetAttributes(attribute.String("request_id", requestID.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateCalculating {
		return models.CompletedRound{}, dErrors.New(dErrors.CodeUnknownRequest, "no draw in progress").
			With("state", s.state.String()).
			With("request_id", requestID)
	}
	outstanding, err := s.requests.Outstanding(ctx)
	if err != nil {
		return models.CompletedRound{}, dErrors.Wrap(err, dErrors.CodeUnknownRequest, "no outstanding randomness request").
			With("request_id", requestID)
	}
	if outstanding.ID != requestID {
		return models.CompletedRound{}, dErrors.New(dErrors.CodeUnknownRequest, "request does not match the outstanding draw").
			With("request_id", requestID).
			With("outstanding_request", outstanding.ID)
	}
	if len(words) == 0 {
		return models.CompletedRound{}, dErrors.New(dErrors.CodeValidation, "fulfillment carries no random words").
			With("request_id", requestID)
	}

	participants := s.ledger.Len()
	if participants == 0 {
		// Upkeep guarantees a non-empty ledger before any draw; hitting this
		// means the lock was violated somewhere.
		return models.CompletedRound{}, dErrors.New(dErrors.CodeInternal, "calculating round has an empty ledger").
			With("request_id", requestID)
	}

	winnerIndex := int(words[0] % uint64(participants))
	winner, err := s.ledger.Participant(winnerIndex)
	if err != nil {
		return models.CompletedRound{}, dErrors.Wrap(err, dErrors.CodeInternal, "winner index out of range")
	}
	prize := s.ledger.Pool()
	now := s.clock()

	// Payout before reset: a failed transfer must leave the ledger intact so
	// the round can be inspected or the fulfillment retried.
	if err := s.bank.Transfer(ctx, bank.PoolAccount, winner.Depositor, prize); err != nil {
		if s.metrics != nil {
			s.metrics.RecordPayoutFailure()
		}
		return models.CompletedRound{}, dErrors.Wrap(err, dErrors.CodePayoutFailed, "payout transfer failed").
			With("winner", winner.Depositor).
			With("prize", prize).
			With("request_id", requestID)
	}

	if _, err := s.requests.Consume(ctx, requestID); err != nil {
		// The in-process state machine is the authority on acceptance; a
		// correlation store that cannot confirm the consume only degrades
		// cross-restart deduplication.
		s.logger.ErrorContext(ctx, "failed to consume randomness request",
			"request_id", requestID,
			"error", err.Error(),
		)
	}

	completed := models.CompletedRound{
		RoundID:      s.roundID,
		RequestID:    requestID,
		Winner:       winner.Depositor,
		Prize:        prize,
		Participants: participants,
		OpenedAt:     s.openedAt,
		DecidedAt:    now,
	}
	if err := s.rounds.Record(ctx, completed); err != nil {
		// History is derived state; the payout already happened and the
		// round must reopen regardless.
		s.logger.ErrorContext(ctx, "failed to record completed round",
			"round_id", completed.RoundID,
			"error", err.Error(),
		)
	}

	s.ledger.Reset()
	s.lastWinner = &completed
	s.state = models.StateOpen
	s.openedAt = now
	s.roundID = uuid.New()

	if s.metrics != nil {
		s.metrics.RecordRoundCompleted()
	}
	s.publishWinner(ctx, models.WinnerEvent{
		RoundID:   completed.RoundID,
		RequestID: requestID,
		Winner:    completed.Winner,
		Prize:     prize,
		DecidedAt: now,
	})

	s.logger.InfoContext(ctx, "round completed",
		"round_id", completed.RoundID,
		"request_id", requestID,
		"winner", completed.Winner,
		"prize", prize,
		"participants", participants,
	)
	return completed, nil
}

// Status returns the live round view, including the outstanding randomness
// request when a draw is in flight. A round stuck in CALCULATING because the
// provider never called back is visible here; the core applies no timeout.
func (s *Service) Status(ctx context.Context) models.RoundStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := models.RoundStatus{
		RoundSnapshot: s.snapshot(),
		EntranceFee:   s.cfg.MinimumStake,
	}
	if s.state == models.StateCalculating {
		if outstanding, err := s.requests.Outstanding(ctx); err == nil {
			id := outstanding.ID
			status.OutstandingRequest = &id
		}
	}
	return status
}

// Participant returns the entrance at the given index in the current round.
func (s *Service) Participant(ctx context.Context, index int) (models.Entrance, error) {
	entrance, err := s.ledger.Participant(index)
	if err != nil {
		return models.Entrance{}, dErrors.Wrap(err, dErrors.CodeNotFound, "no participant at index").
			With("index", index)
	}
	return entrance, nil
}

// LastWinner returns the record of the most recently completed round.
func (s *Service) LastWinner(ctx context.Context) (models.CompletedRound, error) {
	s.mu.Lock()
	if s.lastWinner != nil {
		rec := *s.lastWinner
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	rec, err := s.rounds.Last(ctx)
	if err != nil {
		return models.CompletedRound{}, dErrors.Wrap(err, dErrors.CodeNotFound, "no completed rounds yet")
	}
	return rec, nil
}

// EntranceFee returns the configured minimum stake.
func (s *Service) EntranceFee() uint64 {
	return s.cfg.MinimumStake
}

// snapshot must be called with the mutex held.
func (s *Service) snapshot() models.RoundSnapshot {
	return models.RoundSnapshot{
		ID:           s.roundID,
		State:        s.state,
		OpenedAt:     s.openedAt,
		Participants: s.ledger.Len(),
		Pool:         s.ledger.Pool(),
	}
}

func (s *Service) revertDraw(ctx context.Context, requestID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requests.Consume(ctx, requestID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear reverted randomness request",
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	s.state = models.StateOpen
	if s.metrics != nil {
		s.metrics.RecordDrawReverted()
	}
	s.logger.WarnContext(ctx, "draw reverted after dispatch failure", "request_id", requestID)
}

func (s *Service) recordRejectedEntry() {
	if s.metrics != nil {
		s.metrics.RecordRejectedEntry()
	}
}

func (s *Service) publishEntered(ctx context.Context, event models.EnteredEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntered(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish entered notification",
			"depositor", event.Depositor,
			"error", err.Error(),
		)
	}
}

func (s *Service) publishWinner(ctx context.Context, event models.WinnerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishWinner(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish winner notification",
			"winner", event.Winner,
			"error", err.Error(),
		)
	}
}
