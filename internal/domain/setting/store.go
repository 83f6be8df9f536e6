package setting

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

// ErrNotFound is returned when no record exists for a package.
var ErrNotFound = errors.New("package setting not found")

// Store provides SQLite persistence for install records.
type Store struct {
	db     *sql.DB
	layout paths.Layout
}

// New opens the database at dbPath. Use ":memory:" in tests.
func New(dbPath string, layout paths.Layout) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &Store{db: db, layout: layout}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// AllocateAppID returns the app id for a new package. A non-empty
// sharedUserID reuses the id of a package already using it.
func (s *Store) AllocateAppID(sharedUserID string) (int32, error) {
	if sharedUserID != "" {
		var id int32
		err := s.db.QueryRow(`SELECT app_id FROM packages WHERE shared_user_id = ? LIMIT 1`, sharedUserID).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to look up shared user %s: %w", sharedUserID, err)
		}
	}

	var maxID sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(app_id) FROM packages`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to allocate app id: %w", err)
	}
	if !maxID.Valid || int32(maxID.Int64) < FirstApplicationID {
		return FirstApplicationID, nil
	}
	return int32(maxID.Int64) + 1, nil
}

// Put inserts or replaces an install record.
func (s *Store) Put(ps *PackageSetting) error {
	query := `
		INSERT OR REPLACE INTO packages
		(name, app_id, shared_user_id, run_64bit, not_copied, install_flags, first_install_time, last_update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		ps.PackageName,
		ps.AppID,
		ps.SharedUserID,
		ps.Run64Bit,
		ps.NotCopied,
		ps.InstallFlags,
		ps.FirstInstallTime.UnixMilli(),
		ps.LastUpdateTime.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", ps.PackageName, err)
	}
	return nil
}

const selectSetting = `
	SELECT name, app_id, shared_user_id, run_64bit, not_copied, install_flags, first_install_time, last_update_time
	FROM packages
`

type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanSetting(row scanner) (*PackageSetting, error) {
	var ps PackageSetting
	var first, last int64
	if err := row.Scan(
		&ps.PackageName,
		&ps.AppID,
		&ps.SharedUserID,
		&ps.Run64Bit,
		&ps.NotCopied,
		&ps.InstallFlags,
		&first,
		&last,
	); err != nil {
		return nil, err
	}
	ps.FirstInstallTime = time.UnixMilli(first)
	ps.LastUpdateTime = time.UnixMilli(last)
	return ps.Bind(s.layout), nil
}

// Get returns the install record of name, bound to the store's layout.
func (s *Store) Get(name string) (*PackageSetting, error) {
	ps, err := s.scanSetting(s.db.QueryRow(selectSetting+` WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return ps, nil
}

// List returns every install record ordered by name.
func (s *Store) List() ([]*PackageSetting, error) {
	rows, err := s.db.Query(selectSetting + ` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var out []*PackageSetting
	for rows.Next() {
		ps, err := s.scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// Delete removes an install record and its user states.
func (s *Store) Delete(name string) error {
	if _, err := s.db.Exec(`DELETE FROM packages WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", name, err)
	}
	return nil
}

// SetUserState records the state of a package for a user.
func (s *Store) SetUserState(name string, userID int, state UserState) error {
	query := `
		INSERT OR REPLACE INTO user_state (package, user_id, installed, hidden, launched)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, name, userID, state.Installed, state.Hidden, state.Launched); err != nil {
		return fmt.Errorf("failed to set user state %s/%d: %w", name, userID, err)
	}
	return nil
}

// UserState returns the state of a package for a user. A user without a
// record sees the package as not installed.
func (s *Store) UserState(name string, userID int) (UserState, error) {
	var st UserState
	err := s.db.QueryRow(
		`SELECT installed, hidden, launched FROM user_state WHERE package = ? AND user_id = ?`,
		name, userID,
	).Scan(&st.Installed, &st.Hidden, &st.Launched)
	if errors.Is(err, sql.ErrNoRows) {
		return UserState{}, nil
	}
	if err != nil {
		return UserState{}, fmt.Errorf("failed to get user state %s/%d: %w", name, userID, err)
	}
	return st, nil
}

// UserStates returns every recorded user state of a package.
func (s *Store) UserStates(name string) (map[int]UserState, error) {
	rows, err := s.db.Query(`SELECT user_id, installed, hidden, launched FROM user_state WHERE package = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list user states %s: %w", name, err)
	}
	defer rows.Close()

	out := make(map[int]UserState)
	for rows.Next() {
		var userID int
		var st UserState
		if err := rows.Scan(&userID, &st.Installed, &st.Hidden, &st.Launched); err != nil {
			return nil, fmt.Errorf("failed to scan user state: %w", err)
		}
		out[userID] = st
	}
	return out, rows.Err()
}
