// Package handler is the thin HTTP layer over the round state machine. It
// delegates to the service without embedding lifecycle logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"raffle/internal/platform/middleware"
	"raffle/internal/raffle/models"
	"raffle/internal/raffle/vrf"
	dErrors "raffle/pkg/domain-errors"
)

// Service defines the round lifecycle operations the handler exposes.
type Service interface {
	Enter(ctx context.Context, depositor string, stake uint64) (int, error)
	EvaluateUpkeep(ctx context.Context) (bool, []byte)
	TriggerDraw(ctx context.Context) (uuid.UUID, error)
	FulfillRandomness(ctx context.Context, requestID uuid.UUID, words []uint64) (models.CompletedRound, error)
	Status(ctx context.Context) models.RoundStatus
	Participant(ctx context.Context, index int) (models.Entrance, error)
	LastWinner(ctx context.Context) (models.CompletedRound, error)
}

// Handler handles raffle endpoints.
type Handler struct {
	logger         *slog.Logger
	raffle         Service
	jwtSigningKey  string
	providerSecret string
}

// New creates a new raffle Handler.
func New(raffle Service, logger *slog.Logger, jwtSigningKey, providerSecret string) *Handler {
	return &Handler{
		logger:         logger,
		raffle:         raffle,
		jwtSigningKey:  jwtSigningKey,
		providerSecret: providerSecret,
	}
}

// Register registers the raffle routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.ContentTypeJSON)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtSigningKey, h.logger))
		r.Post("/raffle/enter", h.handleEnter)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireProviderSecret(h.providerSecret, h.logger))
		r.Post("/vrf/fulfillments", h.handleFulfillment)
	})

	router.Get("/raffle", h.handleStatus)
	router.Get("/raffle/upkeep", h.handleUpkeep)
	router.Post("/raffle/draw", h.handleTriggerDraw)
	router.Get("/raffle/participants/{index}", h.handleParticipant)
	router.Get("/raffle/winner", h.handleLastWinner)

	r.Mount("/", router)
}

type enterRequest struct {
	Stake uint64 `json:"stake"`
}

type enterResponse struct {
	Index     int    `json:"index"`
	Depositor string `json:"depositor"`
	Stake     uint64 `json:"stake"`
}

// handleEnter joins the authenticated depositor into the current round.
func (h *Handler) handleEnter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	depositor := middleware.GetDepositor(ctx)
	if depositor == "" {
		// Unreachable when RequireAuth is configured correctly.
		writeError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req enterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	index, err := h.raffle.Enter(ctx, depositor, req.Stake)
	if err != nil {
		h.logError(ctx, "enter rejected", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, enterResponse{Index: index, Depositor: depositor, Stake: req.Stake})
}

type upkeepResponse struct {
	UpkeepNeeded bool   `json:"upkeep_needed"`
	PerformData  []byte `json:"perform_data,omitempty"`
}

func (h *Handler) handleUpkeep(w http.ResponseWriter, r *http.Request) {
	needed, performData := h.raffle.EvaluateUpkeep(r.Context())
	writeJSON(w, http.StatusOK, upkeepResponse{UpkeepNeeded: needed, PerformData: performData})
}

type drawResponse struct {
	RequestID uuid.UUID `json:"request_id"`
}

func (h *Handler) handleTriggerDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := h.raffle.TriggerDraw(ctx)
	if err != nil {
		h.logError(ctx, "draw rejected", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, drawResponse{RequestID: requestID})
}

type fulfillmentResponse struct {
	Winner    string    `json:"winner"`
	Prize     uint64    `json:"prize"`
	DecidedAt time.Time `json:"decided_at"`
}

// handleFulfillment is the randomness provider's callback. Authentication is
// enforced by the provider-secret middleware; here only the payload and the
// request correlation are checked.
func (h *Handler) handleFulfillment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var fulfillment vrf.Fulfillment
	if err := json.NewDecoder(r.Body).Decode(&fulfillment); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid fulfillment body"))
		return
	}
	if fulfillment.RequestID == uuid.Nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "request_id is required"))
		return
	}

	completed, err := h.raffle.FulfillRandomness(ctx, fulfillment.RequestID, fulfillment.Words)
	if err != nil {
		h.logError(ctx, "fulfillment rejected", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fulfillmentResponse{
		Winner:    completed.Winner,
		Prize:     completed.Prize,
		DecidedAt: completed.DecidedAt,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.raffle.Status(r.Context()))
}

func (h *Handler) handleParticipant(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "index must be a non-negative integer"))
		return
	}

	entrance, err := h.raffle.Participant(r.Context(), index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entrance)
}

func (h *Handler) handleLastWinner(w http.ResponseWriter, r *http.Request) {
	rec, err := h.raffle.LastWinner(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
