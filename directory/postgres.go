package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password, first_name, last_name, user_status, created_at, updated_at`

// Open opens a Postgres pool for dsn through the pgx driver and pings it.
// The caller must Close the returned handle.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Postgres reads and writes accounts in the users table.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres returns a directory over db. Apply [Migrate] first.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) FindByID(ctx context.Context, userID string) (*goGate.UserRecord, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func (p *Postgres) FindByEmail(ctx context.Context, email string) (*goGate.UserRecord, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// CreateUser inserts a new account. A unique violation on id or email returns
// an error matching goGate.ErrAccountExists.
func (p *Postgres) CreateUser(ctx context.Context, in goGate.CreateUserInput) (*goGate.UserRecord, error) {
	status := in.Status
	if status == "" {
		status = goGate.AccountActive
	}
	if !status.Valid() {
		return nil, errors.New("invalid account status")
	}

	now := p.now().UTC()
	u := goGate.UserRecord{
		ID:           in.ID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Status), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", goGate.ErrAccountExists, err)
		}
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, p.now().UTC(),
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// SetStatus changes an account's status.
func (p *Postgres) SetStatus(ctx context.Context, userID string, status goGate.AccountStatus) error {
	if !status.Valid() {
		return errors.New("invalid account status")
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET user_status = $2, updated_at = $3 WHERE id = $1`,
		userID, string(status), p.now().UTC(),
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func scanUser(row *sql.Row) (*goGate.UserRecord, error) {
	var (
		u      goGate.UserRecord
		status string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Status = goGate.AccountStatus(status)
	return &u, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
