package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/league-tracker/internal/platform/logging"
	"github.com/riskibarqy/league-tracker/internal/usecase"
)

// ProviderStats reports upstream client health alongside the collection
// status payload.
type ProviderStats struct {
	RequestsLastMinute int    `json:"requests_last_minute"`
	CircuitState       string `json:"circuit_state"`
}

type Handler struct {
	standings     *usecase.StandingsService
	topScorers    *usecase.TopScorerService
	scheduler     *usecase.SchedulerService
	providerStats func() ProviderStats
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	standings *usecase.StandingsService,
	topScorers *usecase.TopScorerService,
	scheduler *usecase.SchedulerService,
	providerStats func() ProviderStats,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		standings:     standings,
		topScorers:    topScorers,
		scheduler:     scheduler,
		providerStats: providerStats,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type triggerCollectionRequest struct {
	LeagueID int64 `json:"league_id" validate:"omitempty,gt=0"`
	Force    bool  `json:"force"`
}

func (h *Handler) TriggerCollection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerCollection")
	defer span.End()

	var req triggerCollectionRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: malformed request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	result := h.scheduler.TriggerCollection(ctx, usecase.TriggerOptions{
		LeagueID: req.LeagueID,
		Force:    req.Force,
	})
	writeSuccess(ctx, w, http.StatusAccepted, result)
}

func (h *Handler) GetLeagueStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStandings")
	defer span.End()

	leagueID, err := parseLeagueID(r.PathValue("leagueID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.standings.GetStandings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}

type topScorersQuery struct {
	Limit int `validate:"omitempty,gte=1,lte=100"`
}

func (h *Handler) GetTopScorers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTopScorers")
	defer span.End()

	leagueID, err := parseLeagueID(r.PathValue("leagueID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var query topScorersQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		query.Limit = limit
	}
	if err := h.validator.Struct(query); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	table, err := h.topScorers.GetTopScorers(ctx, leagueID, query.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get top scorers failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}

type collectionStatusDTO struct {
	usecase.CollectionStatus
	Provider *ProviderStats `json:"provider,omitempty"`
}

func (h *Handler) GetCollectionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCollectionStatus")
	defer span.End()

	status, err := h.scheduler.Status(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "collection status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := collectionStatusDTO{CollectionStatus: status}
	if h.providerStats != nil {
		stats := h.providerStats()
		dto.Provider = &stats
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

func parseLeagueID(raw string) (int64, error) {
	leagueID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: league id must be numeric", usecase.ErrInvalidInput)
	}
	return leagueID, nil
}
