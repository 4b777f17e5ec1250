package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

type SchedulerConfig struct {
	Workers      int
	MaxAttempts  int
	BackoffBase  time.Duration
	FullInterval time.Duration
	LiveInterval time.Duration
}

const (
	leagueRunSuccess = "success"
	leagueRunFailed  = "failed"
)

type LeagueRunResult struct {
	LeagueID int64  `json:"league_id"`
	SeasonID int64  `json:"season_id"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Message  string `json:"message,omitempty"`

	Counts LeagueCollectionResult `json:"counts"`
}

type FullRunResult struct {
	LeagueCount  int               `json:"league_count"`
	SuccessCount int               `json:"success_count"`
	FailedCount  int               `json:"failed_count"`
	WorkerCount  int               `json:"worker_count"`
	Leagues      []LeagueRunResult `json:"leagues"`
}

type LiveRunResult struct {
	NoOp             bool    `json:"no_op"`
	LiveCount        int     `json:"live_count"`
	ImminentCount    int     `json:"imminent_count"`
	RecentCount      int     `json:"recent_count"`
	RefreshedLeagues []int64 `json:"refreshed_leagues"`
	FailedLeagues    []int64 `json:"failed_leagues"`
}

type TriggerResult struct {
	Status string `json:"status"` // queued or skipped
}

type RunStamp struct {
	At      time.Time `json:"at"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
}

type PriorityBuckets struct {
	// High holds league ids with a live fixture; Medium holds league ids
	// with a fixture kicking off inside the upcoming window.
	High   []int64 `json:"high"`
	Medium []int64 `json:"medium"`
}

type LiveSummary struct {
	LiveCount       int `json:"live_count"`
	ImminentCount   int `json:"imminent_count"`
	RecentCount     int `json:"recently_finished_count"`
	LiveLeagueCount int `json:"live_league_count"`
	TrackedFixtures int `json:"tracked_fixtures"`
}

type CollectionStatus struct {
	State           string          `json:"state"` // idle or collecting
	LeaguesTracked  int             `json:"leagues_tracked"`
	LastFullRun     *RunStamp       `json:"last_full_run,omitempty"`
	LastLiveRun     *RunStamp       `json:"last_live_run,omitempty"`
	LiveSummary     LiveSummary     `json:"live_summary"`
	PriorityBuckets PriorityBuckets `json:"priority_buckets"`
}

// SchedulerService owns the two reconciliation cadences: the bounded
// worker-pool full collection and the lightweight live delta loop. One
// full collection runs at a time; overlapping triggers are skipped.
type SchedulerService struct {
	collector  *CollectorService
	live       *LiveMatchService
	leagueRepo league.Repository
	cfg        SchedulerConfig
	logger     *logging.Logger
	now        func() time.Time

	collecting atomic.Bool
	loops      conc.WaitGroup

	mu          sync.RWMutex
	lastFullRun *RunStamp
	lastLiveRun *RunStamp
}

func NewSchedulerService(
	collector *CollectorService,
	live *LiveMatchService,
	leagueRepo league.Repository,
	cfg SchedulerConfig,
	logger *logging.Logger,
) *SchedulerService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 2 * time.Second
	}
	if cfg.FullInterval <= 0 {
		cfg.FullInterval = 6 * time.Hour
	}
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = time.Minute
	}

	return &SchedulerService{
		collector:  collector,
		live:       live,
		leagueRepo: leagueRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RunFullCollection discovers leagues and collects each on the worker
// pool. Per-league failures are counted, not propagated; an empty league
// list or zero successes is fatal.
func (s *SchedulerService) RunFullCollection(ctx context.Context) (FullRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.RunFullCollection")
	defer span.End()

	result, err := s.runFullCollection(ctx)
	s.recordFullRun(result, err)
	return result, err
}

func (s *SchedulerService) runFullCollection(ctx context.Context) (FullRunResult, error) {
	leagues, err := s.collector.SyncLeagues(ctx)
	if err != nil {
		return FullRunResult{}, fmt.Errorf("%w: %v", ErrCollectionFailed, err)
	}
	if len(leagues) == 0 {
		return FullRunResult{}, fmt.Errorf("%w: no leagues loaded from provider", ErrCollectionFailed)
	}

	workerCount := s.cfg.Workers
	if len(leagues) < workerCount {
		workerCount = len(leagues)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return FullRunResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan LeagueRunResult, len(leagues))
	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, target := range leagues {
		target := target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			row := s.collectLeagueWithRetry(ctx, target)
			if row.Status == leagueRunSuccess {
				successCount.Add(1)
			} else {
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return FullRunResult{}, fmt.Errorf("submit league to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	out := FullRunResult{
		LeagueCount: len(leagues),
		WorkerCount: workerCount,
		Leagues:     make([]LeagueRunResult, 0, len(leagues)),
	}
	for row := range results {
		out.Leagues = append(out.Leagues, row)
	}
	sort.SliceStable(out.Leagues, func(i, j int) bool {
		return out.Leagues[i].LeagueID < out.Leagues[j].LeagueID
	})
	out.SuccessCount = int(successCount.Load())
	out.FailedCount = int(failedCount.Load())

	if out.SuccessCount == 0 {
		return out, fmt.Errorf("%w: every league collection failed", ErrCollectionFailed)
	}

	s.logger.InfoContext(ctx, "full collection finished",
		"league_count", out.LeagueCount,
		"success_count", out.SuccessCount,
		"failed_count", out.FailedCount,
	)
	return out, nil
}

// collectLeagueWithRetry retries a league's full pass with exponential
// backoff until the attempt ceiling, then reports the failure.
func (s *SchedulerService) collectLeagueWithRetry(ctx context.Context, target league.League) LeagueRunResult {
	row := LeagueRunResult{LeagueID: target.ID, SeasonID: target.SeasonID}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		row.Attempts = attempt

		counts, err := s.collector.CollectLeague(ctx, target)
		if err == nil {
			row.Status = leagueRunSuccess
			row.Counts = counts
			return row
		}
		lastErr = err
		s.logger.WarnContext(ctx, "league collection attempt failed",
			"league_id", target.ID,
			"attempt", attempt,
			"max_attempts", s.cfg.MaxAttempts,
			"error", err,
		)

		if attempt == s.cfg.MaxAttempts {
			break
		}
		backoff := s.cfg.BackoffBase << (attempt - 1)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			row.Status = leagueRunFailed
			row.Message = ctx.Err().Error()
			return row
		case <-timer.C:
		}
	}

	row.Status = leagueRunFailed
	if lastErr != nil {
		row.Message = lastErr.Error()
	}
	return row
}

// TriggerOptions narrows a manual trigger to one league and lets an
// operator force a run past the in-progress guard.
type TriggerOptions struct {
	LeagueID int64
	Force    bool
}

// TriggerCollection queues a background collection, or reports skipped
// when one is already running and the trigger is not forced.
func (s *SchedulerService) TriggerCollection(ctx context.Context, opts TriggerOptions) TriggerResult {
	acquired := s.collecting.CompareAndSwap(false, true)
	if !acquired && !opts.Force {
		s.logger.InfoContext(ctx, "collection trigger skipped, run already in progress")
		return TriggerResult{Status: "skipped"}
	}

	s.loops.Go(func() {
		if acquired {
			defer s.collecting.Store(false)
		}
		// Detached from the request so a client disconnect cannot abort
		// a half-finished collection.
		runCtx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		if opts.LeagueID > 0 {
			s.runSingleLeagueCollection(runCtx, opts.LeagueID)
			return
		}
		if _, err := s.RunFullCollection(runCtx); err != nil {
			s.logger.Error("triggered collection failed", "error", err)
		}
	})

	s.logger.InfoContext(ctx, "collection trigger queued", "league_id", opts.LeagueID, "force", opts.Force)
	return TriggerResult{Status: "queued"}
}

func (s *SchedulerService) runSingleLeagueCollection(ctx context.Context, leagueID int64) {
	target, found, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		s.logger.Error("triggered league collection failed", "league_id", leagueID, "error", err)
		return
	}
	if !found {
		s.logger.Warn("triggered league collection skipped, league unknown", "league_id", leagueID)
		return
	}
	if row := s.collectLeagueWithRetry(ctx, target); row.Status != leagueRunSuccess {
		s.logger.Error("triggered league collection failed", "league_id", leagueID, "message", row.Message)
	}
}

// RunLiveDelta refreshes only the leagues touched by the live snapshot.
// Standings rebuild is limited to leagues that had a live fixture. An
// empty snapshot short-circuits the tick.
func (s *SchedulerService) RunLiveDelta(ctx context.Context) (LiveRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.RunLiveDelta")
	defer span.End()

	snapshot, err := s.live.Snapshot(ctx)
	if err != nil {
		s.recordLiveRun(LiveRunResult{}, err)
		return LiveRunResult{}, err
	}

	result := LiveRunResult{
		LiveCount:     len(snapshot.Live),
		ImminentCount: len(snapshot.Imminent),
		RecentCount:   len(snapshot.RecentlyFinished),
	}
	if snapshot.Empty() {
		result.NoOp = true
		s.recordLiveRun(result, nil)
		return result, nil
	}

	liveLeagues := snapshot.LiveLeagueIDs()
	for _, leagueID := range snapshot.LeagueIDs() {
		target, found, err := s.leagueRepo.GetByID(ctx, leagueID)
		if err != nil || !found {
			result.FailedLeagues = append(result.FailedLeagues, leagueID)
			s.logger.WarnContext(ctx, "live delta skipped unknown league", "league_id", leagueID, "error", err)
			continue
		}

		_, rebuild := liveLeagues[leagueID]
		if _, err := s.collector.RefreshLeagueFixtures(ctx, target, rebuild); err != nil {
			result.FailedLeagues = append(result.FailedLeagues, leagueID)
			s.logger.WarnContext(ctx, "live delta refresh failed", "league_id", leagueID, "error", err)
			continue
		}
		result.RefreshedLeagues = append(result.RefreshedLeagues, leagueID)
	}

	s.recordLiveRun(result, nil)
	return result, nil
}

// Start launches the periodic loops. They stop when ctx is canceled;
// Stop blocks until both have exited.
func (s *SchedulerService) Start(ctx context.Context) {
	s.loops.Go(func() {
		ticker := time.NewTicker(s.cfg.FullInterval)
		defer ticker.Stop()

		s.runGuardedFullCollection(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runGuardedFullCollection(ctx)
			}
		}
	})

	s.loops.Go(func() {
		ticker := time.NewTicker(s.cfg.LiveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunLiveDelta(ctx); err != nil {
					s.logger.Error("live delta tick failed", "error", err)
				}
			}
		}
	})
}

func (s *SchedulerService) Stop() {
	s.loops.Wait()
}

func (s *SchedulerService) runGuardedFullCollection(ctx context.Context) {
	if !s.collecting.CompareAndSwap(false, true) {
		s.logger.Info("scheduled collection skipped, run already in progress")
		return
	}
	defer s.collecting.Store(false)

	if _, err := s.RunFullCollection(ctx); err != nil {
		s.logger.Error("scheduled collection failed", "error", err)
	}
}

// Status summarizes scheduler health for the status endpoint, including
// the priority buckets derived from the live snapshot.
func (s *SchedulerService) Status(ctx context.Context) (CollectionStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.Status")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return CollectionStatus{}, fmt.Errorf("collection status: %w", err)
	}

	snapshot, err := s.live.Snapshot(ctx)
	if err != nil {
		return CollectionStatus{}, fmt.Errorf("collection status: %w", err)
	}

	state := "idle"
	if s.collecting.Load() {
		state = "collecting"
	}

	out := CollectionStatus{
		State:          state,
		LeaguesTracked: len(leagues),
		LiveSummary: LiveSummary{
			LiveCount:       len(snapshot.Live),
			ImminentCount:   len(snapshot.Imminent),
			RecentCount:     len(snapshot.RecentlyFinished),
			LiveLeagueCount: len(snapshot.LiveLeagueIDs()),
			TrackedFixtures: len(snapshot.Live) + len(snapshot.Imminent) + len(snapshot.RecentlyFinished),
		},
		PriorityBuckets: buildPriorityBuckets(snapshot),
	}

	s.mu.RLock()
	out.LastFullRun = s.lastFullRun
	out.LastLiveRun = s.lastLiveRun
	s.mu.RUnlock()

	return out, nil
}

func buildPriorityBuckets(snapshot LiveDeltaSnapshot) PriorityBuckets {
	high := snapshot.LiveLeagueIDs()

	medium := make(map[int64]struct{})
	for _, f := range snapshot.Imminent {
		if _, isHigh := high[f.LeagueID]; !isHigh {
			medium[f.LeagueID] = struct{}{}
		}
	}

	return PriorityBuckets{
		High:   sortedIDs(high),
		Medium: sortedIDs(medium),
	}
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *SchedulerService) recordFullRun(result FullRunResult, err error) {
	stamp := &RunStamp{At: s.now().UTC(), Status: "success"}
	if err != nil {
		stamp.Status = "failed"
		stamp.Message = err.Error()
	} else {
		stamp.Message = fmt.Sprintf("%d/%d leagues collected", result.SuccessCount, result.LeagueCount)
	}

	s.mu.Lock()
	s.lastFullRun = stamp
	s.mu.Unlock()
}

func (s *SchedulerService) recordLiveRun(result LiveRunResult, err error) {
	stamp := &RunStamp{At: s.now().UTC(), Status: "success"}
	switch {
	case err != nil:
		stamp.Status = "failed"
		stamp.Message = err.Error()
	case result.NoOp:
		stamp.Status = "noop"
	default:
		stamp.Message = fmt.Sprintf("%d leagues refreshed", len(result.RefreshedLeagues))
	}

	s.mu.Lock()
	s.lastLiveRun = stamp
	s.mu.Unlock()
}
