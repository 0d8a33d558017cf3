package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarydesk/librarydesk-api/internal/seating"
	appErrors "github.com/librarydesk/librarydesk-api/pkg/errors"
)

type occupiedSeatsMock struct {
	seats []string
	err   error
}

func (m *occupiedSeatsMock) OccupiedSeats(_ context.Context) ([]string, error) {
	return m.seats, m.err
}

func seatState(t *testing.T, layouts []seating.ZoneLayout, id string) seating.State {
	t.Helper()
	for _, layout := range layouts {
		for _, seat := range layout.Seats {
			if seat.ID == id {
				return seat.State
			}
		}
	}
	t.Fatalf("seat %s not in layout", id)
	return ""
}

func TestSeatLayout(t *testing.T) {
	svc := NewSeatService(&occupiedSeatsMock{seats: []string{"F1", "s10"}}, seating.NewUniverse(15, 42, 4), nil)

	layouts, err := svc.Layout(context.Background(), "F2")
	require.NoError(t, err)
	require.Len(t, layouts, 3)

	assert.Equal(t, seating.StateBooked, seatState(t, layouts, "F1"))
	assert.Equal(t, seating.StateBooked, seatState(t, layouts, "S10"))
	assert.Equal(t, seating.StateSelected, seatState(t, layouts, "F2"))
	assert.Equal(t, seating.StateAvailable, seatState(t, layouts, "C1"))
}

func TestSeatLayoutBookedWinsOverSelection(t *testing.T) {
	svc := NewSeatService(&occupiedSeatsMock{seats: []string{"F5"}}, seating.NewUniverse(15, 42, 4), nil)

	layouts, err := svc.Layout(context.Background(), "f5")
	require.NoError(t, err)
	assert.Equal(t, seating.StateBooked, seatState(t, layouts, "F5"))
}

func TestSeatLayoutLoadFailure(t *testing.T) {
	svc := NewSeatService(&occupiedSeatsMock{err: errors.New("connection refused")}, seating.NewUniverse(15, 42, 4), nil)

	_, err := svc.Layout(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLoadFailed.Code, appErrors.FromError(err).Code)
}
