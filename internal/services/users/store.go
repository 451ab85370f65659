package users

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/deepgram/chatdesk/internal/config"
	"github.com/deepgram/chatdesk/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL
);`

type User struct {
	ID       int64
	Username string
}

// IDString is the form stored in session claims.
func (u User) IDString() string {
	return strconv.FormatInt(u.ID, 10)
}

type Store struct {
	db   *sql.DB
	cost int
}

// Open opens (creating if needed) the SQLite database at path and ensures the users table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open user database: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY under concurrent sign-ups
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}

	l := logger.For(logger.STORE)
	l.Info().Str("path", path).Msg("User database ready")

	cost := config.GetBcryptCost()
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Store{db: db, cost: cost}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// passwordKey is what gets bcrypt-hashed. bcrypt rejects input over 72 bytes, so passwords are
// first reduced to a fixed 44-byte SHA-256 digest in base64 (no NUL bytes).
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// Create registers a new user with a bcrypt-hashed password.
func (s *Store) Create(ctx context.Context, username, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?) ON CONFLICT(username) DO NOTHING`,
		username, string(hash))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if affected == 0 {
		return nil, ErrUserExists
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &User{ID: id, Username: username}, nil
}

// Authenticate checks username and password. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var (
		user User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&user.ID, &user.Username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), passwordKey(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
