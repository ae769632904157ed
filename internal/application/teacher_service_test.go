package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reg4rd/classroom-booking/internal/persistence"
)

type teacherRepoStub struct {
	teacher     Teacher
	created     Teacher
	createdHash string
	updated     Teacher
	err         error
	deleteErr   error
	list        []Teacher
}

func (r *teacherRepoStub) CreateTeacher(ctx context.Context, teacher Teacher, passwordHash string) (Teacher, error) {
	if r.err != nil {
		return Teacher{}, r.err
	}
	r.created = teacher
	r.createdHash = passwordHash
	return teacher, nil
}

func (r *teacherRepoStub) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	if r.err != nil {
		return Teacher{}, r.err
	}
	if r.teacher.ID != id {
		return Teacher{}, persistence.ErrNotFound
	}
	return r.teacher, nil
}

func (r *teacherRepoStub) UpdateTeacher(ctx context.Context, teacher Teacher) (Teacher, error) {
	if r.err != nil {
		return Teacher{}, r.err
	}
	r.updated = teacher
	return teacher, nil
}

func (r *teacherRepoStub) DeleteTeacher(ctx context.Context, id string) error {
	return r.deleteErr
}

func (r *teacherRepoStub) ListTeachers(ctx context.Context) ([]Teacher, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Teacher, len(r.list))
	copy(out, r.list)
	return out, nil
}

func teacherServiceNow(t *testing.T) func() time.Time {
	t.Helper()
	return func() time.Time { return time.Date(2025, 9, 8, 8, 0, 0, 0, time.UTC) }
}

func TestTeacherService_CreateTeacher_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewTeacherService(&teacherRepoStub{}, nil, teacherServiceNow(t))

	_, err := svc.CreateTeacher(context.Background(), CreateTeacherParams{
		Principal: Principal{TeacherID: "teacher-1"},
		Input:     TeacherInput{Login: "nguyen.an"},
		Password:  "s3cret",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTeacherService_CreateTeacher_ValidatesLoginAndPassword(t *testing.T) {
	t.Parallel()

	svc := NewTeacherService(&teacherRepoStub{}, nil, teacherServiceNow(t))

	_, err := svc.CreateTeacher(context.Background(), CreateTeacherParams{
		Principal: Principal{TeacherID: "admin-1", IsAdmin: true},
		Input:     TeacherInput{Login: "bad login!"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["login"]; !ok {
		t.Fatalf("expected login validation error, got %v", vErr.FieldErrors)
	}
	if _, ok := vErr.FieldErrors["password"]; !ok {
		t.Fatalf("expected password validation error, got %v", vErr.FieldErrors)
	}
}

func TestTeacherService_CreateTeacher_NormalizesAndHashes(t *testing.T) {
	t.Parallel()

	repo := &teacherRepoStub{}
	svc := NewTeacherService(repo, func() string { return "teacher-1" }, teacherServiceNow(t))

	teacher, err := svc.CreateTeacher(context.Background(), CreateTeacherParams{
		Principal: Principal{TeacherID: "admin-1", IsAdmin: true},
		Input:     TeacherInput{Login: "  NGUYEN.An ", FullName: " Nguyen Van An "},
		Password:  "s3cret",
	})
	if err != nil {
		t.Fatalf("CreateTeacher failed: %v", err)
	}

	if teacher.Login != "nguyen.an" || teacher.FullName != "Nguyen Van An" {
		t.Fatalf("unexpected normalization: %#v", teacher)
	}
	if repo.createdHash == "" || repo.createdHash == "s3cret" {
		t.Fatalf("expected hashed password, got %q", repo.createdHash)
	}
	if err := VerifyPassword(repo.createdHash, "s3cret"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestTeacherService_CreateTeacher_MapsDuplicateLogins(t *testing.T) {
	t.Parallel()

	repo := &teacherRepoStub{err: persistence.ErrDuplicate}
	svc := NewTeacherService(repo, nil, teacherServiceNow(t))

	_, err := svc.CreateTeacher(context.Background(), CreateTeacherParams{
		Principal: Principal{TeacherID: "admin-1", IsAdmin: true},
		Input:     TeacherInput{Login: "nguyen.an"},
		Password:  "s3cret",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestTeacherService_UpdateTeacher_UnknownAccount(t *testing.T) {
	t.Parallel()

	svc := NewTeacherService(&teacherRepoStub{}, nil, teacherServiceNow(t))

	_, err := svc.UpdateTeacher(context.Background(), UpdateTeacherParams{
		Principal: Principal{TeacherID: "admin-1", IsAdmin: true},
		TeacherID: "teacher-missing",
		Input:     TeacherInput{Login: "nguyen.an"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTeacherService_UpdateTeacher_PreservesTimestampsAndIdentity(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &teacherRepoStub{teacher: Teacher{ID: "teacher-1", Login: "old.login", CreatedAt: createdAt}}
	svc := NewTeacherService(repo, nil, teacherServiceNow(t))

	teacher, err := svc.UpdateTeacher(context.Background(), UpdateTeacherParams{
		Principal: Principal{TeacherID: "admin-1", IsAdmin: true},
		TeacherID: "teacher-1",
		Input:     TeacherInput{Login: "new.login", FullName: "New Name", IsAdmin: true},
	})
	if err != nil {
		t.Fatalf("UpdateTeacher failed: %v", err)
	}

	if teacher.ID != "teacher-1" || teacher.Login != "new.login" || !teacher.IsAdmin {
		t.Fatalf("unexpected teacher: %#v", teacher)
	}
	if !teacher.CreatedAt.Equal(createdAt) || !teacher.UpdatedAt.After(createdAt) {
		t.Fatalf("unexpected timestamps: %#v", teacher)
	}
}

func TestTeacherService_DeleteTeacher_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewTeacherService(&teacherRepoStub{}, nil, teacherServiceNow(t))

	if err := svc.DeleteTeacher(context.Background(), Principal{TeacherID: "teacher-1"}, "teacher-2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeleteTeacher(context.Background(), Principal{TeacherID: "admin-1", IsAdmin: true}, "teacher-2"); err != nil {
		t.Fatalf("DeleteTeacher failed: %v", err)
	}
}

func TestTeacherService_ListTeachers_AdminOnlySortedByLogin(t *testing.T) {
	t.Parallel()

	repo := &teacherRepoStub{list: []Teacher{
		{ID: "teacher-2", Login: "tran.binh"},
		{ID: "teacher-1", Login: "nguyen.an"},
	}}
	svc := NewTeacherService(repo, nil, teacherServiceNow(t))

	if _, err := svc.ListTeachers(context.Background(), Principal{TeacherID: "teacher-1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	teachers, err := svc.ListTeachers(context.Background(), Principal{TeacherID: "admin-1", IsAdmin: true})
	if err != nil {
		t.Fatalf("ListTeachers failed: %v", err)
	}
	if len(teachers) != 2 || teachers[0].Login != "nguyen.an" || teachers[1].Login != "tran.binh" {
		t.Fatalf("unexpected order: %#v", teachers)
	}
}
