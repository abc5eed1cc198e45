// Package userstore persists application users in SQLite. It is independent
// of the classifier and shares no state with it.
package userstore

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/kenkohealth/kenko/internal/models"
)

var (
	// ErrNotFound reports a missing user.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken reports a unique constraint violation on username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials reports a failed password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidUser reports a NewUser that violates column limits.
	ErrInvalidUser = errors.New("invalid user")
)

// Store owns the SQLite connection and the ent driver built on it.
type Store struct {
	db     *stdsql.DB
	drv    *entsql.Driver
	hasher Hasher
}

// Option configures Open.
type Option func(*Store)

// WithHasher overrides the password hasher.
func WithHasher(h Hasher) Option {
	return func(s *Store) { s.hasher = h }
}

// Open connects to the SQLite database at dsn, applies pragmas and migrates
// the users table.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := stdsql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps pragmas and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("prepare migration: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	s := &Store{db: db, drv: drv, hasher: BcryptHasher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Create hashes the password and inserts the user.
func (s *Store) Create(ctx context.Context, u models.NewUser) (models.User, error) {
	if err := validate(u); err != nil {
		return models.User{}, err
	}
	hashed, err := s.hasher.Hash(u.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(UsersTable.Name).
		Columns(columnUsername, columnHashedPassword, columnFirstName, columnLastName, columnPhoneNo).
		Values(u.Username, hashed, u.FirstName, u.LastName, u.PhoneNo).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("%w: %s: %w", ErrUsernameTaken, u.Username, err)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return models.User{
		ID:             int(id),
		Username:       u.Username,
		HashedPassword: hashed,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PhoneNo:        u.PhoneNo,
	}, nil
}

// GetByUsername loads one user.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(userColumns...).
		From(entsql.Table(UsersTable.Name)).
		Where(entsql.EQ(columnUsername, username)).
		Query()

	var u models.User
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Username, &u.HashedPassword, &u.FirstName, &u.LastName, &u.PhoneNo)
	if errors.Is(err, stdsql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when password matches the stored hash.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !s.hasher.Verify(password, u.HashedPassword) {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Delete removes a user by username.
func (s *Store) Delete(ctx context.Context, username string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(UsersTable.Name).
		Where(entsql.EQ(columnUsername, username)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	return nil
}

// Count returns the number of stored users.
func (s *Store) Count(ctx context.Context) (int, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(UsersTable.Name)).
		Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func validate(u models.NewUser) error {
	switch {
	case u.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	case len(u.Username) > 50:
		return fmt.Errorf("%w: username exceeds 50 characters", ErrInvalidUser)
	case u.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	case len(u.FirstName) > 50 || len(u.LastName) > 50:
		return fmt.Errorf("%w: names exceed 50 characters", ErrInvalidUser)
	case len(u.PhoneNo) > 10:
		return fmt.Errorf("%w: phone number exceeds 10 characters", ErrInvalidUser)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// applyPragmas configures SQLite for a small single-writer store.
func applyPragmas(ctx context.Context, db *stdsql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
