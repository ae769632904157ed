package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Pattern matches: {version}_{description}.sql
// Version must be numeric (001, 002, etc.).
var migrationNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// fsSource provides migrations from an fs.FS, typically an embed.FS
// compiled into the binary.
type fsSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource creates a Source reading .sql files from dir inside fsys.
func NewFSSource(fsys fs.FS, dir string) Source {
	return &fsSource{fsys: fsys, dir: dir}
}

// Migrations returns all migrations sorted by version.
func (s *fsSource) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, NewFileSystemError(s.dir, "read directory", err)
	}

	var migrations []Migration
	versionMap := make(map[string]string) // version -> filename for duplicate detection

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		migration, err := s.parse(entry.Name())
		if err != nil {
			return nil, err
		}

		if existing, exists := versionMap[migration.Version]; exists {
			return nil, NewMigrationError(migration.Version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: version %s found in both %s and %s",
					ErrDuplicateVersion, migration.Version, existing, entry.Name()))
		}
		versionMap[migration.Version] = entry.Name()

		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})

	if err := validateSequence(migrations); err != nil {
		return nil, err
	}

	return migrations, nil
}

func (s *fsSource) parse(name string) (Migration, error) {
	matches := migrationNamePattern.FindStringSubmatch(name)
	if matches == nil {
		return Migration{}, NewMigrationError("", name, "validate filename",
			fmt.Errorf("%w: expected {version}_{description}.sql", ErrInvalidMigrationFile))
	}

	content, err := fs.ReadFile(s.fsys, s.dir+"/"+name)
	if err != nil {
		return Migration{}, NewFileSystemError(name, "read file", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return Migration{}, NewMigrationError(matches[1], name, "parse file",
			fmt.Errorf("%w: file is empty", ErrInvalidMigrationFile))
	}

	sum := sha256.Sum256(content)

	return Migration{
		Version:     matches[1],
		Description: strings.ReplaceAll(matches[2], "_", " "),
		SQL:         string(content),
		Name:        name,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// validateSequence ensures there are no gaps in migration version numbers.
func validateSequence(migrations []Migration) error {
	if len(migrations) == 0 {
		return nil
	}

	versionMap := make(map[int]bool)
	min, max := -1, -1
	for _, migration := range migrations {
		version, err := strconv.Atoi(migration.Version)
		if err != nil {
			return NewMigrationError(migration.Version, migration.Name, "validate sequence",
				fmt.Errorf("%w: version '%s' is not numeric", ErrInvalidVersion, migration.Version))
		}
		versionMap[version] = true
		if min == -1 || version < min {
			min = version
		}
		if version > max {
			max = version
		}
	}

	for version := min; version <= max; version++ {
		if !versionMap[version] {
			return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, version)
		}
	}

	return nil
}
