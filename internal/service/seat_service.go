package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/librarydesk/librarydesk-api/internal/seating"
	appErrors "github.com/librarydesk/librarydesk-api/pkg/errors"
)

type occupiedSeatLister interface {
	OccupiedSeats(ctx context.Context) ([]string, error)
}

// SeatService renders the seat grid. The grid is a pure projection over the
// current student set; the selected seat is request-scoped and never stored.
type SeatService struct {
	repo     occupiedSeatLister
	universe seating.Universe
	logger   *zap.Logger
}

// NewSeatService constructs the seat service.
func NewSeatService(repo occupiedSeatLister, universe seating.Universe, logger *zap.Logger) *SeatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatService{repo: repo, universe: universe, logger: logger}
}

// Layout returns every zone with tri-state seat cells. selected carries the
// caller's in-progress choice; a booked seat silently wins over it.
func (s *SeatService) Layout(ctx context.Context, selected string) ([]seating.ZoneLayout, error) {
	occupied, err := s.repo.OccupiedSeats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "failed to load seat assignments")
	}
	return s.universe.Index(occupied, selected), nil
}

// Universe exposes the fixed zone catalogue.
func (s *SeatService) Universe() seating.Universe {
	return s.universe
}
