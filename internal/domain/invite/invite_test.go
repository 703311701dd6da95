package invite

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusFilter(t *testing.T) {
	assert.Nil(t, ParseStatusFilter(""))
	assert.Nil(t, ParseStatusFilter("  "))
	assert.Nil(t, ParseStatusFilter("all"))
	assert.Nil(t, ParseStatusFilter("ALL"))

	got := ParseStatusFilter("pending")
	require.NotNil(t, got)
	assert.Equal(t, StatusPending, *got)

	// Anything else is an exact match, even when it matches nothing.
	got = ParseStatusFilter("Pending")
	require.NotNil(t, got)
	assert.Equal(t, Status("Pending"), *got)
}

func TestNormalizeTime(t *testing.T) {
	in := time.Date(2025, 1, 10, 12, 0, 0, 123456789, time.FixedZone("EET", 2*60*60))
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 123000000, time.UTC), NormalizeTime(in))
}

func TestInvite_IsUpcoming(t *testing.T) {
	at := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	inv := Invite{ScheduledAt: at}

	assert.True(t, inv.IsUpcoming(at.Add(-time.Nanosecond)))
	assert.False(t, inv.IsUpcoming(at))
	assert.False(t, inv.IsUpcoming(at.Add(time.Second)))
}

func TestCreateInviteRequest_Validate(t *testing.T) {
	req := CreateInviteRequest{TeacherID: 1, StudentID: 5, ScheduledAt: "2025-01-10T10:00:00.250Z"}
	require.NoError(t, req.Validate())
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 250000000, time.UTC), req.ScheduledTime())

	bad := CreateInviteRequest{ScheduledAt: "yesterday"}
	err := bad.Validate()
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestRespondRequest_Validate(t *testing.T) {
	assert.NoError(t, (&RespondRequest{InviteID: 1, Status: "accepted"}).Validate())
	assert.NoError(t, (&RespondRequest{InviteID: 1, Status: "rejected"}).Validate())
	assert.ErrorIs(t, (&RespondRequest{InviteID: 0, Status: "accepted"}).Validate(), ErrInvalidInviteID)
	assert.ErrorIs(t, (&RespondRequest{InviteID: 1, Status: "pending"}).Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, (&RespondRequest{InviteID: 1, Status: "Accepted"}).Validate(), ErrInvalidStatus)
}

func TestKindOf(t *testing.T) {
	conflict := &ConflictError{InviteID: 3, ScheduledAt: time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)}

	tests := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{ErrInvalidStatus, KindInvalidArgument},
		{fmt.Errorf("lookup: %w", ErrInviteNotFound), KindNotFound},
		{ErrLessonInPast, KindInvalidState},
		{ErrInviteAlreadyAccepted, KindInvalidState},
		{ErrInviteAlreadyExists, KindConflict},
		{fmt.Errorf("accept: %w", conflict), KindConflict},
		{fmt.Errorf("list: %w: %w", ErrStoreUnavailable, errors.New("conn reset")), KindUnavailable},
		{errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}

	assert.True(t, KindUnavailable.Retryable())
	assert.False(t, KindConflict.Retryable())
	assert.ErrorIs(t, conflict, ErrStudentAlreadyBooked)
	assert.Contains(t, conflict.Error(), "invite 3")
}

func TestNewInviteDetailsResponse(t *testing.T) {
	at := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	resp := NewInviteDetailsResponse(InviteWithDetails{
		Invite: Invite{ID: 1, TeacherID: 2, StudentID: 5, ScheduledAt: at, Status: StatusPending, CreatedAt: at, UpdatedAt: at},
	})

	assert.Equal(t, "2025-01-10T10:00:00.000Z", resp.ScheduledAt)
	assert.Equal(t, "pending", resp.Status)
	assert.Nil(t, resp.Teacher)
	assert.Nil(t, resp.Student)
}
