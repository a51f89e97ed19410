package raffle

import (
	"log/slog"

	"raffle/internal/raffle/handler"
	"raffle/internal/raffle/ledger"
	"raffle/internal/raffle/models"
	"raffle/internal/raffle/service"
)

// Service exposes the round lifecycle state machine.
type Service = service.Service

// Handler wires HTTP endpoints to the raffle service.
type Handler = handler.Handler

// NewService constructs the state machine with required dependencies.
func NewService(cfg models.RoundConfig, bank service.Bank, coordinator service.Coordinator, requests service.RequestStore, rounds service.RoundStore, opts ...service.Option) (*Service, error) {
	return service.New(cfg, ledger.New(), bank, coordinator, requests, rounds, opts...)
}

// NewHandler constructs the HTTP handler for raffle routes.
func NewHandler(s *Service, logger *slog.Logger, jwtSigningKey, providerSecret string) *Handler {
	return handler.New(s, logger, jwtSigningKey, providerSecret)
}
