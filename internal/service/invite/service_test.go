package invite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/audit"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
	auditsink "github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/audit"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/clock"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/repository/sqlite"
	directorysvc "github.com/EhsanSarboukh/Lesson-Invites-Project/internal/service/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

const slot = "2025-01-10T10:00:00Z"

type fixture struct {
	svc   invite.InviteService
	repo  invite.InviteRepository
	sink  *auditsink.MemorySink
	clock *clock.Fixed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "invites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.DB().Exec(`
		INSERT INTO teachers (id, name, email) VALUES (1, 'Ada Teacher', 'ada@school.test'), (2, 'Ben Teacher', 'ben@school.test');
		INSERT INTO students (id, name, email) VALUES (5, 'Cleo Student', 'cleo@school.test');
	`)
	require.NoError(t, err)

	repo := sqlite.NewInviteRepository(store)
	dir := directorysvc.NewDirectoryService(sqlite.NewDirectoryRepository(store), nil)
	sink := auditsink.NewMemorySink()
	clk := clock.NewFixed(baseNow)

	return &fixture{
		svc:   NewInviteService(store, repo, dir, sink, clk),
		repo:  repo,
		sink:  sink,
		clock: clk,
	}
}

func (f *fixture) create(t *testing.T, teacherID, studentID int64, at string) invite.Invite {
	t.Helper()
	inv, err := f.svc.CreateInvite(context.Background(), invite.CreateInviteRequest{
		TeacherID: teacherID, StudentID: studentID, ScheduledAt: at,
	})
	require.NoError(t, err)
	return inv
}

func (f *fixture) respond(id int64, status string) (invite.Invite, error) {
	return f.svc.RespondToInvite(context.Background(), invite.RespondRequest{InviteID: id, Status: status})
}

func (f *fixture) status(t *testing.T, id int64) invite.Status {
	t.Helper()
	inv, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return inv.Status
}

func TestCreateInvite(t *testing.T) {
	f := newFixture(t)

	inv := f.create(t, 1, 5, slot)

	assert.Equal(t, int64(1), inv.ID)
	assert.Equal(t, invite.StatusPending, inv.Status)
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), inv.ScheduledAt)
	assert.Equal(t, baseNow, inv.CreatedAt)
	assert.Equal(t, []audit.Kind{audit.KindSent}, f.sink.Kinds())

	sent := f.sink.Events()[0]
	assert.Equal(t, inv.ID, sent.InviteID)
	assert.NotEmpty(t, sent.ID)
}

func TestCreateInvite_NormalizesOffsets(t *testing.T) {
	f := newFixture(t)

	inv := f.create(t, 1, 5, "2025-01-10T12:00:00+02:00")
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), inv.ScheduledAt)

	_, err := f.svc.CreateInvite(context.Background(), invite.CreateInviteRequest{TeacherID: 1, StudentID: 5, ScheduledAt: slot})
	assert.ErrorIs(t, err, invite.ErrInviteAlreadyExists)
}

func TestCreateInvite_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, 1, 5, slot)

	_, err := f.respond(first.ID, "rejected")
	require.NoError(t, err)

	_, err = f.svc.CreateInvite(context.Background(), invite.CreateInviteRequest{TeacherID: 1, StudentID: 5, ScheduledAt: slot})
	require.Error(t, err)
	assert.ErrorIs(t, err, invite.ErrInviteAlreadyExists)
	assert.Equal(t, invite.KindConflict, invite.KindOf(err))

	all, err := f.svc.ListInvites(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateInvite_InvalidArguments(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  invite.CreateInviteRequest
	}{
		{"zero teacher", invite.CreateInviteRequest{TeacherID: 0, StudentID: 5, ScheduledAt: slot}},
		{"negative student", invite.CreateInviteRequest{TeacherID: 1, StudentID: -5, ScheduledAt: slot}},
		{"missing time", invite.CreateInviteRequest{TeacherID: 1, StudentID: 5}},
		{"garbage time", invite.CreateInviteRequest{TeacherID: 1, StudentID: 5, ScheduledAt: "next tuesday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateInvite(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, invite.KindInvalidArgument, invite.KindOf(err))
		})
	}

	assert.Empty(t, f.sink.Events())
}

func TestRespondToInvite_AcceptAutoRejectsSameSlot(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, 1, 5, slot)
	second := f.create(t, 2, 5, slot)
	other := f.create(t, 2, 5, "2025-01-11T10:00:00Z")

	accepted, err := f.respond(first.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, invite.StatusAccepted, accepted.Status)

	assert.Equal(t, invite.StatusRejected, f.status(t, second.ID))
	assert.Equal(t, invite.StatusPending, f.status(t, other.ID))

	assert.Equal(t, []audit.Kind{audit.KindSent, audit.KindSent, audit.KindSent, audit.KindAccepted, audit.KindAutoRejected}, f.sink.Kinds())
	summary := f.sink.Events()[4]
	assert.Equal(t, first.ID, summary.InviteID)
	assert.Equal(t, []int64{second.ID}, summary.RejectedIDs)

	list, err := f.svc.ListInvitesForStudent(context.Background(), 5, "")
	require.NoError(t, err)
	require.Len(t, list, 3)

	// A later accept of the auto-rejected sibling runs into the booked lesson.
	_, err = f.respond(second.ID, "accepted")
	require.Error(t, err)
	assert.Equal(t, invite.KindConflict, invite.KindOf(err))

	var conflict *invite.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, first.ID, conflict.InviteID)
	assert.Equal(t, first.ScheduledAt, conflict.ScheduledAt)
}

func TestRespondToInvite_AcceptWithoutSiblingsStillSummarizes(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1, 5, slot)

	_, err := f.respond(inv.ID, "accepted")
	require.NoError(t, err)

	events := f.sink.Events()
	require.Len(t, events, 3)
	assert.Equal(t, audit.KindAutoRejected, events[2].Kind)
	assert.Empty(t, events[2].RejectedIDs)
}

func TestRespondToInvite_AcceptPastLesson(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1, 5, slot)

	for _, now := range []time.Time{inv.ScheduledAt, inv.ScheduledAt.Add(time.Hour)} {
		f.clock.Set(now)

		_, err := f.respond(inv.ID, "accepted")
		require.Error(t, err)
		assert.ErrorIs(t, err, invite.ErrLessonInPast)
		assert.Equal(t, invite.KindInvalidState, invite.KindOf(err))
		assert.Equal(t, invite.StatusPending, f.status(t, inv.ID))
	}
}

func TestRespondToInvite_SecondFutureAcceptConflicts(t *testing.T) {
	f := newFixture(t)
	monday := f.create(t, 1, 5, slot)
	tuesday := f.create(t, 2, 5, "2025-01-11T10:00:00Z")

	_, err := f.respond(monday.ID, "accepted")
	require.NoError(t, err)

	_, err = f.respond(tuesday.ID, "accepted")
	assert.Equal(t, invite.KindConflict, invite.KindOf(err))
	assert.Equal(t, invite.StatusPending, f.status(t, tuesday.ID))

	// Once the booked lesson is over the student may accept again.
	f.clock.Set(monday.ScheduledAt.Add(time.Minute))
	accepted, err := f.respond(tuesday.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, invite.StatusAccepted, accepted.Status)
}

func TestRespondToInvite_AcceptIsIdempotent(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1, 5, slot)

	_, err := f.respond(inv.ID, "accepted")
	require.NoError(t, err)
	eventsAfterFirst := len(f.sink.Events())

	again, err := f.respond(inv.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, invite.StatusAccepted, again.Status)
	assert.Len(t, f.sink.Events(), eventsAfterFirst)
}

func TestRespondToInvite_AcceptRejected(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1, 5, slot)

	_, err := f.respond(inv.ID, "rejected")
	require.NoError(t, err)

	_, err = f.respond(inv.ID, "accepted")
	assert.ErrorIs(t, err, invite.ErrInviteAlreadyRejected)
	assert.Equal(t, invite.KindInvalidState, invite.KindOf(err))
	assert.Equal(t, invite.StatusRejected, f.status(t, inv.ID))
}

func TestRespondToInvite_Reject(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1, 5, slot)
	sibling := f.create(t, 2, 5, slot)

	rejected, err := f.respond(inv.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, invite.StatusRejected, rejected.Status)
	assert.Equal(t, invite.StatusPending, f.status(t, sibling.ID))

	again, err := f.respond(inv.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, invite.StatusRejected, again.Status)

	assert.Equal(t, []audit.Kind{audit.KindSent, audit.KindSent, audit.KindRejected, audit.KindRejected}, f.sink.Kinds())
}

func TestRespondToInvite_RejectAccepted(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1, 5, slot)

	_, err := f.respond(inv.ID, "accepted")
	require.NoError(t, err)

	_, err = f.respond(inv.ID, "rejected")
	assert.ErrorIs(t, err, invite.ErrInviteAlreadyAccepted)
	assert.Equal(t, invite.KindInvalidState, invite.KindOf(err))
	assert.Equal(t, invite.StatusAccepted, f.status(t, inv.ID))
}

func TestRespondToInvite_Errors(t *testing.T) {
	f := newFixture(t)
	f.create(t, 1, 5, slot)

	_, err := f.respond(42, "accepted")
	assert.Equal(t, invite.KindNotFound, invite.KindOf(err))

	_, err = f.respond(0, "accepted")
	assert.Equal(t, invite.KindInvalidArgument, invite.KindOf(err))

	_, err = f.respond(1, "maybe")
	assert.ErrorIs(t, err, invite.ErrInvalidStatus)

	_, err = f.respond(1, "pending")
	assert.ErrorIs(t, err, invite.ErrInvalidStatus)
}

func TestRespondToInvite_AuditFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.sink.FailWith(errors.New("disk full"))

	inv := f.create(t, 1, 5, slot)
	accepted, err := f.respond(inv.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, invite.StatusAccepted, accepted.Status)
	assert.Empty(t, f.sink.Events())
}

func TestRespondToInvite_ConcurrentAcceptsForOneStudent(t *testing.T) {
	f := newFixture(t)

	const n = 8
	ids := make([]int64, n)
	for i := range ids {
		at := baseNow.Add(time.Duration(i+1) * 24 * time.Hour).Format(time.RFC3339)
		ids[i] = f.create(t, int64(i%2+1), 5, at).ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.respond(id, "accepted")
			mu.Lock()
			defer mu.Unlock()
			switch invite.KindOf(err) {
			case "":
				succeeded++
			case invite.KindConflict:
				conflicts++
			default:
				t.Errorf("unexpected error for invite %d: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, conflicts)

	accepted, err := f.svc.ListInvitesForStudent(context.Background(), 5, "accepted")
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
}

func TestRespondToInvite_ConcurrentAcceptsSameSlot(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, 1, 5, slot)
	b := f.create(t, 2, 5, slot)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = f.respond(id, "accepted")
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.Equal(t, invite.KindConflict, invite.KindOf(err))
		}
	}
	assert.Equal(t, 1, failures)

	statuses := []invite.Status{f.status(t, a.ID), f.status(t, b.ID)}
	assert.ElementsMatch(t, []invite.Status{invite.StatusAccepted, invite.StatusRejected}, statuses)
}

func TestListInvites_FilterAndOrder(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, 1, 5, slot)
	f.clock.Advance(time.Minute)
	second := f.create(t, 2, 5, slot)
	f.clock.Advance(time.Minute)
	third := f.create(t, 1, 6, slot)

	_, err := f.respond(second.ID, "rejected")
	require.NoError(t, err)

	ctx := context.Background()

	all, err := f.svc.ListInvites(ctx, "ALL")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	pending, err := f.svc.ListInvites(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, third.ID, pending[0].ID)

	unknown, err := f.svc.ListInvites(ctx, "archived")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestListInvites_Enrichment(t *testing.T) {
	f := newFixture(t)
	f.create(t, 1, 5, slot)
	f.create(t, 3, 7, slot)

	list, err := f.svc.ListInvites(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	unknown, known := list[0], list[1]
	assert.Nil(t, unknown.Teacher)
	assert.Nil(t, unknown.Student)

	require.NotNil(t, known.Teacher)
	require.NotNil(t, known.Student)
	assert.Equal(t, "Ada Teacher", known.Teacher.Name)
	assert.Equal(t, "cleo@school.test", known.Student.Email)
}

func TestListInvitesForStudent(t *testing.T) {
	f := newFixture(t)
	mine := f.create(t, 1, 5, slot)
	f.create(t, 1, 6, slot)

	_, err := f.respond(mine.ID, "rejected")
	require.NoError(t, err)

	ctx := context.Background()

	all, err := f.svc.ListInvitesForStudent(ctx, 5, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, invite.StatusRejected, all[0].Status)

	pending, err := f.svc.ListInvitesForStudent(ctx, 5, "pending")
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.ListInvitesForStudent(ctx, 0, "")
	assert.Equal(t, invite.KindInvalidArgument, invite.KindOf(err))
}
