package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestFSSource_Migrations_ParsesAndSorts(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/002_add_sessions.sql":   {Data: []byte("CREATE TABLE sessions (id TEXT);")},
		"sql/001_initial_schema.sql": {Data: []byte("CREATE TABLE teachers (id TEXT);")},
		"sql/README.md":              {Data: []byte("not a migration")},
	}

	source := NewFSSource(fsys, "sql")
	migrations, err := source.Migrations()
	if err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected two migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "001" || migrations[1].Version != "002" {
		t.Fatalf("expected sorted versions, got %s then %s", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Description != "initial schema" {
		t.Fatalf("unexpected description: %q", migrations[0].Description)
	}
	if migrations[0].Name != "001_initial_schema.sql" {
		t.Fatalf("unexpected name: %q", migrations[0].Name)
	}
	if migrations[0].Checksum == "" || migrations[0].Checksum == migrations[1].Checksum {
		t.Fatalf("expected distinct checksums, got %q and %q", migrations[0].Checksum, migrations[1].Checksum)
	}
}

func TestFSSource_Migrations_RejectsMalformedNames(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/schema.sql": {Data: []byte("CREATE TABLE t (id TEXT);")},
	}

	if _, err := NewFSSource(fsys, "sql").Migrations(); !errors.Is(err, ErrInvalidMigrationFile) {
		t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
	}
}

func TestFSSource_Migrations_RejectsEmptyFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/001_empty.sql": {Data: []byte("   \n")},
	}

	if _, err := NewFSSource(fsys, "sql").Migrations(); !errors.Is(err, ErrInvalidMigrationFile) {
		t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
	}
}

func TestFSSource_Migrations_RejectsDuplicateVersions(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/001_first.sql":  {Data: []byte("CREATE TABLE a (id TEXT);")},
		"sql/001_second.sql": {Data: []byte("CREATE TABLE b (id TEXT);")},
	}

	if _, err := NewFSSource(fsys, "sql").Migrations(); !errors.Is(err, ErrDuplicateVersion) {
		t.Fatalf("expected ErrDuplicateVersion, got %v", err)
	}
}

func TestFSSource_Migrations_RejectsGapsInSequence(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/001_first.sql": {Data: []byte("CREATE TABLE a (id TEXT);")},
		"sql/003_third.sql": {Data: []byte("CREATE TABLE c (id TEXT);")},
	}

	if _, err := NewFSSource(fsys, "sql").Migrations(); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestFSSource_Migrations_MissingDirectory(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{}

	_, err := NewFSSource(fsys, "sql").Migrations()
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	var fsErr *FileSystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("expected FileSystemError, got %T: %v", err, err)
	}
}
