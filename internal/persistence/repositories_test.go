package persistence_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/reg4rd/classroom-booking/internal/booking"
	"github.com/reg4rd/classroom-booking/internal/persistence"
	"github.com/reg4rd/classroom-booking/internal/testfixtures"
)

func newPersistenceTeacher(opts ...testfixtures.TeacherOption) persistence.Teacher {
	return testfixtures.NewTeacher(opts...).Persistence()
}

func newPersistenceRoom(opts ...testfixtures.RoomOption) persistence.Room {
	return testfixtures.NewRoom(opts...).Persistence()
}

func newPersistenceReservation(opts ...testfixtures.ReservationOption) persistence.Reservation {
	return testfixtures.NewReservation(opts...).Persistence()
}

func newPersistenceSession(opts ...testfixtures.SessionOption) persistence.Session {
	return testfixtures.NewSession(opts...).Persistence()
}

func TestTeacherRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, updates, and deletes teachers", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		teacher := newPersistenceTeacher(
			testfixtures.WithTeacherID("teacher-crud"),
			testfixtures.WithLogin("nguyen.an"),
			testfixtures.WithFullName("Nguyen Van An"),
			testfixtures.AsAdmin(),
		)

		if err := harness.Teachers.CreateTeacher(ctx, teacher); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}

		fetched, err := harness.Teachers.GetTeacher(ctx, teacher.ID)
		if err != nil {
			t.Fatalf("GetTeacher failed: %v", err)
		}
		if fetched.Login != teacher.Login || !fetched.IsAdmin || fetched.PasswordHash != teacher.PasswordHash {
			t.Fatalf("unexpected teacher data: %#v", fetched)
		}

		teacher.FullName = "Nguyen Van An Updated"
		teacher.IsAdmin = false
		teacher.UpdatedAt = teacher.UpdatedAt.Add(time.Hour)
		if err := harness.Teachers.UpdateTeacher(ctx, teacher); err != nil {
			t.Fatalf("UpdateTeacher failed: %v", err)
		}

		fetched, err = harness.Teachers.GetTeacherByLogin(ctx, "NGUYEN.AN")
		if err != nil {
			t.Fatalf("GetTeacherByLogin failed: %v", err)
		}
		if fetched.FullName != "Nguyen Van An Updated" || fetched.IsAdmin {
			t.Fatalf("unexpected updated teacher: %#v", fetched)
		}

		teachers, err := harness.Teachers.ListTeachers(ctx)
		if err != nil {
			t.Fatalf("ListTeachers failed: %v", err)
		}
		if len(teachers) != 1 || teachers[0].ID != teacher.ID {
			t.Fatalf("expected single teacher, got %#v", teachers)
		}

		if err := harness.Teachers.DeleteTeacher(ctx, teacher.ID); err != nil {
			t.Fatalf("DeleteTeacher failed: %v", err)
		}
		if err := harness.Teachers.DeleteTeacher(ctx, teacher.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
	})

	t.Run("enforces unique logins regardless of case", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		primary := newPersistenceTeacher(testfixtures.WithLogin("tran.binh"))
		if err := harness.Teachers.CreateTeacher(ctx, primary); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}

		conflicting := newPersistenceTeacher(testfixtures.WithLogin("TRAN.BINH"))
		if err := harness.Teachers.CreateTeacher(ctx, conflicting); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}
	})
}

func TestRoomRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, updates, and deletes rooms", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		room := newPersistenceRoom(
			testfixtures.WithRoomID("room-crud"),
			testfixtures.WithRoomName("A101"),
			testfixtures.WithCapacity(45),
		)

		if err := harness.Rooms.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}

		fetched, err := harness.Rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if fetched.Name != "A101" || fetched.Capacity == nil || *fetched.Capacity != 45 {
			t.Fatalf("unexpected room data: %#v", fetched)
		}

		room.Name = "A102"
		room.Capacity = nil
		room.UpdatedAt = room.UpdatedAt.Add(time.Hour)
		if err := harness.Rooms.UpdateRoom(ctx, room); err != nil {
			t.Fatalf("UpdateRoom failed: %v", err)
		}

		fetched, err = harness.Rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if fetched.Name != "A102" || fetched.Capacity != nil {
			t.Fatalf("expected untracked capacity, got %#v", fetched)
		}

		if err := harness.Rooms.DeleteRoom(ctx, room.ID); err != nil {
			t.Fatalf("DeleteRoom failed: %v", err)
		}
		if _, err := harness.Rooms.GetRoom(ctx, room.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects duplicate names and non-positive capacities", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		room := newPersistenceRoom(testfixtures.WithRoomName("B201"))
		if err := harness.Rooms.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}

		duplicate := newPersistenceRoom(testfixtures.WithRoomName("B201"))
		if err := harness.Rooms.CreateRoom(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}

		invalid := newPersistenceRoom(testfixtures.WithRoomName("B202"), testfixtures.WithCapacity(0))
		if err := harness.Rooms.CreateRoom(ctx, invalid); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected persistence.ErrConstraintViolation, got %v", err)
		}
	})
}

func seedTeacherAndRoom(t *testing.T, harness *testfixtures.SQLiteHarness, teacherID, roomID string) {
	t.Helper()
	ctx := context.Background()
	teacher := newPersistenceTeacher(testfixtures.WithTeacherID(teacherID))
	if err := harness.Teachers.CreateTeacher(ctx, teacher); err != nil {
		t.Fatalf("CreateTeacher failed: %v", err)
	}
	room := newPersistenceRoom(testfixtures.WithRoomID(roomID))
	if err := harness.Rooms.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
}

func TestReservationRepository(t *testing.T) {
	t.Parallel()

	t.Run("holds at most one reservation per slot", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		seedTeacherAndRoom(t, harness, "teacher-a", "room-a")
		other := newPersistenceTeacher(testfixtures.WithTeacherID("teacher-b"))
		if err := harness.Teachers.CreateTeacher(ctx, other); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}

		first := newPersistenceReservation(
			testfixtures.WithOwner("teacher-a"),
			testfixtures.WithRoom("room-a"),
			testfixtures.AtPeriod(3),
		)
		if err := harness.Reservations.CreateReservation(ctx, first); err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}

		taken, err := harness.Reservations.SlotTaken(ctx, "room-a", first.Day, 3)
		if err != nil {
			t.Fatalf("SlotTaken failed: %v", err)
		}
		if !taken {
			t.Fatal("expected slot to be taken")
		}

		// Same slot, different teacher.
		second := newPersistenceReservation(
			testfixtures.WithOwner("teacher-b"),
			testfixtures.WithRoom("room-a"),
			testfixtures.AtPeriod(3),
		)
		if err := harness.Reservations.CreateReservation(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}

		// Same slot, same teacher.
		repeat := newPersistenceReservation(
			testfixtures.WithOwner("teacher-a"),
			testfixtures.WithRoom("room-a"),
			testfixtures.AtPeriod(3),
		)
		if err := harness.Reservations.CreateReservation(ctx, repeat); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}

		// Neighbouring period stays free.
		neighbour := newPersistenceReservation(
			testfixtures.WithOwner("teacher-b"),
			testfixtures.WithRoom("room-a"),
			testfixtures.AtPeriod(4),
		)
		if err := harness.Reservations.CreateReservation(ctx, neighbour); err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}
	})

	t.Run("rejects reservations for unknown rooms", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		seedTeacherAndRoom(t, harness, "teacher-fk", "room-fk")

		orphan := newPersistenceReservation(
			testfixtures.WithOwner("teacher-fk"),
			testfixtures.WithRoom("room-ghost"),
		)
		if err := harness.Reservations.CreateReservation(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected persistence.ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("grants exactly one winner under concurrency", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		seedTeacherAndRoom(t, harness, "teacher-race-1", "room-race")
		second := newPersistenceTeacher(testfixtures.WithTeacherID("teacher-race-2"))
		if err := harness.Teachers.CreateTeacher(ctx, second); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}

		day := testfixtures.ReferenceDay()
		owners := []string{"teacher-race-1", "teacher-race-2"}
		results := make([]error, len(owners))

		var start sync.WaitGroup
		var done sync.WaitGroup
		start.Add(1)
		for i, owner := range owners {
			done.Add(1)
			go func(i int, owner string) {
				defer done.Done()
				start.Wait()
				reservation := newPersistenceReservation(
					testfixtures.WithOwner(owner),
					testfixtures.WithRoom("room-race"),
					testfixtures.OnDay(day),
					testfixtures.AtPeriod(7),
				)
				results[i] = harness.Reservations.CreateReservation(ctx, reservation)
			}(i, owner)
		}
		start.Done()
		done.Wait()

		wins := 0
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, persistence.ErrDuplicate):
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if wins != 1 {
			t.Fatalf("expected exactly one winner, got %d", wins)
		}

		listed, err := harness.Reservations.ListReservations(ctx, persistence.ReservationFilter{Day: &day}, persistence.OrderByDayPeriodRoom)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(listed) != 1 {
			t.Fatalf("expected single stored reservation, got %d", len(listed))
		}
	})

	t.Run("filters and orders listed reservations", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		teacher := newPersistenceTeacher(testfixtures.WithTeacherID("teacher-list"))
		if err := harness.Teachers.CreateTeacher(ctx, teacher); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}
		roomB := newPersistenceRoom(testfixtures.WithRoomID("room-list-b"), testfixtures.WithRoomName("B Hall"))
		roomA := newPersistenceRoom(testfixtures.WithRoomID("room-list-a"), testfixtures.WithRoomName("A Hall"))
		for _, room := range []persistence.Room{roomB, roomA} {
			if err := harness.Rooms.CreateRoom(ctx, room); err != nil {
				t.Fatalf("CreateRoom failed: %v", err)
			}
		}

		day := testfixtures.ReferenceDay()
		nextDay := day.AddDate(0, 0, 1)
		seed := []persistence.Reservation{
			newPersistenceReservation(testfixtures.WithOwner("teacher-list"), testfixtures.WithRoom("room-list-b"), testfixtures.OnDay(day), testfixtures.AtPeriod(1)),
			newPersistenceReservation(testfixtures.WithOwner("teacher-list"), testfixtures.WithRoom("room-list-a"), testfixtures.OnDay(day), testfixtures.AtPeriod(2)),
			newPersistenceReservation(testfixtures.WithOwner("teacher-list"), testfixtures.WithRoom("room-list-a"), testfixtures.OnDay(nextDay), testfixtures.AtPeriod(1)),
		}
		for _, reservation := range seed {
			if err := harness.Reservations.CreateReservation(ctx, reservation); err != nil {
				t.Fatalf("CreateReservation failed: %v", err)
			}
		}

		byDay, err := harness.Reservations.ListReservations(ctx, persistence.ReservationFilter{Day: &day}, persistence.OrderByDayPeriodRoom)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(byDay) != 2 || byDay[0].Period != 1 || byDay[1].Period != 2 {
			t.Fatalf("unexpected day filter result: %#v", byDay)
		}

		fromNext, err := harness.Reservations.ListReservations(ctx, persistence.ReservationFilter{DayFrom: &nextDay}, persistence.OrderByDayPeriodRoom)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(fromNext) != 1 || !fromNext[0].Day.Equal(nextDay) {
			t.Fatalf("unexpected day-from filter result: %#v", fromNext)
		}

		byRoomOrder, err := harness.Reservations.ListReservations(ctx, persistence.ReservationFilter{TeacherID: "teacher-list"}, persistence.OrderByDayRoomPeriod)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(byRoomOrder) != 3 {
			t.Fatalf("expected three reservations, got %d", len(byRoomOrder))
		}
		// Same day: A Hall sorts before B Hall.
		if byRoomOrder[0].RoomID != "room-list-a" || byRoomOrder[1].RoomID != "room-list-b" {
			t.Fatalf("unexpected room ordering: %#v", byRoomOrder)
		}
		if !byRoomOrder[2].Day.Equal(nextDay) {
			t.Fatalf("expected later day last: %#v", byRoomOrder)
		}

		periods := []int{int(booking.PeriodMin)}
		byPeriod, err := harness.Reservations.ListReservations(ctx, persistence.ReservationFilter{Periods: periods}, persistence.OrderByDayPeriodRoom)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(byPeriod) != 2 {
			t.Fatalf("unexpected period filter result: %#v", byPeriod)
		}
	})

	t.Run("deletes only reservations owned by the caller", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		seedTeacherAndRoom(t, harness, "teacher-owner", "room-owner")
		intruder := newPersistenceTeacher(testfixtures.WithTeacherID("teacher-intruder"))
		if err := harness.Teachers.CreateTeacher(ctx, intruder); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}

		mine := newPersistenceReservation(
			testfixtures.WithReservationID("res-mine"),
			testfixtures.WithOwner("teacher-owner"),
			testfixtures.WithRoom("room-owner"),
			testfixtures.AtPeriod(1),
		)
		theirs := newPersistenceReservation(
			testfixtures.WithReservationID("res-theirs"),
			testfixtures.WithOwner("teacher-intruder"),
			testfixtures.WithRoom("room-owner"),
			testfixtures.AtPeriod(2),
		)
		for _, reservation := range []persistence.Reservation{mine, theirs} {
			if err := harness.Reservations.CreateReservation(ctx, reservation); err != nil {
				t.Fatalf("CreateReservation failed: %v", err)
			}
		}

		deleted, err := harness.Reservations.DeleteByOwner(ctx, []string{"res-mine", "res-theirs", "res-ghost"}, "teacher-owner")
		if err != nil {
			t.Fatalf("DeleteByOwner failed: %v", err)
		}
		if deleted != 1 {
			t.Fatalf("expected one deletion, got %d", deleted)
		}

		remaining, err := harness.Reservations.ListReservations(ctx, persistence.ReservationFilter{}, persistence.OrderByDayPeriodRoom)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(remaining) != 1 || remaining[0].ID != "res-theirs" {
			t.Fatalf("expected foreign reservation untouched, got %#v", remaining)
		}

		deleted, err = harness.Reservations.DeleteByOwner(ctx, nil, "teacher-owner")
		if err != nil {
			t.Fatalf("DeleteByOwner failed: %v", err)
		}
		if deleted != 0 {
			t.Fatalf("expected zero deletions for empty ids, got %d", deleted)
		}
	})

	t.Run("cascades on teacher and room deletion", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		seedTeacherAndRoom(t, harness, "teacher-cascade", "room-cascade")
		reservation := newPersistenceReservation(
			testfixtures.WithOwner("teacher-cascade"),
			testfixtures.WithRoom("room-cascade"),
		)
		if err := harness.Reservations.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}

		if err := harness.Rooms.DeleteRoom(ctx, "room-cascade"); err != nil {
			t.Fatalf("DeleteRoom failed: %v", err)
		}

		remaining, err := harness.Reservations.ListReservations(ctx, persistence.ReservationFilter{}, persistence.OrderByDayPeriodRoom)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(remaining) != 0 {
			t.Fatalf("expected cascade delete, got %#v", remaining)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, revokes, and sweeps sessions", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		teacher := newPersistenceTeacher(testfixtures.WithTeacherID("teacher-session"))
		if err := harness.Teachers.CreateTeacher(ctx, teacher); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}

		session := newPersistenceSession(
			testfixtures.WithSessionOwner("teacher-session"),
			testfixtures.WithToken("token-alive"),
		)
		created, err := harness.Sessions.CreateSession(ctx, session)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if created.Token != "token-alive" || created.RevokedAt != nil {
			t.Fatalf("unexpected session: %#v", created)
		}

		fetched, err := harness.Sessions.GetSession(ctx, "token-alive")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if fetched.TeacherID != "teacher-session" {
			t.Fatalf("unexpected session owner: %#v", fetched)
		}

		revokedAt := testfixtures.ReferenceTime().Add(time.Hour)
		revoked, err := harness.Sessions.RevokeSession(ctx, "token-alive", revokedAt)
		if err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
			t.Fatalf("expected revocation timestamp, got %#v", revoked)
		}

		if _, err := harness.Sessions.RevokeSession(ctx, "token-ghost", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}

		expired := newPersistenceSession(
			testfixtures.WithSessionOwner("teacher-session"),
			testfixtures.WithToken("token-expired"),
			testfixtures.ExpiresAt(testfixtures.ReferenceTime().Add(-time.Hour)),
		)
		if _, err := harness.Sessions.CreateSession(ctx, expired); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		if err := harness.Sessions.DeleteExpiredSessions(ctx, testfixtures.ReferenceTime()); err != nil {
			t.Fatalf("DeleteExpiredSessions failed: %v", err)
		}
		if _, err := harness.Sessions.GetSession(ctx, "token-expired"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected expired session to be removed, got %v", err)
		}
	})

	t.Run("rejects duplicate tokens", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		teacher := newPersistenceTeacher(testfixtures.WithTeacherID("teacher-token"))
		if err := harness.Teachers.CreateTeacher(ctx, teacher); err != nil {
			t.Fatalf("CreateTeacher failed: %v", err)
		}

		first := newPersistenceSession(testfixtures.WithSessionOwner("teacher-token"), testfixtures.WithToken("token-dup"))
		if _, err := harness.Sessions.CreateSession(ctx, first); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		second := newPersistenceSession(testfixtures.WithSessionOwner("teacher-token"), testfixtures.WithToken("token-dup"))
		if _, err := harness.Sessions.CreateSession(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}
	})
}
