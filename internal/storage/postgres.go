package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Postgres stores resumes and matches as JSONB documents.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects to dsn and creates the tables if needed.
func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	p := &Postgres{pool: pool, logger: logger}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("postgres storage is ready")

	return p, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS resumes (
	id TEXT PRIMARY KEY,
	document JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS resume_matches (
	resume_id TEXT PRIMARY KEY REFERENCES resumes(id) ON DELETE CASCADE,
	matches JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
	return err
}

func (p *Postgres) SaveResume(ctx context.Context, r *resume.Resume) error {
	if err := r.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding resume %s: %w", r.ID, err)
	}

	_, err = p.pool.Exec(ctx, `
INSERT INTO resumes (id, document)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document
`, r.ID, doc)
	if err != nil {
		return fmt.Errorf("saving resume %s: %w", r.ID, err)
	}
	return nil
}

func (p *Postgres) GetResume(ctx context.Context, id string) (*resume.Resume, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT document FROM resumes WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading resume %s: %w", id, err)
	}

	var r resume.Resume
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("decoding resume %s: %w", id, err)
	}
	return &r, nil
}

func (p *Postgres) SaveMatches(ctx context.Context, resumeID string, matches []matching.JobMatch) error {
	doc, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encoding matches for resume %s: %w", resumeID, err)
	}

	_, err = p.pool.Exec(ctx, `
INSERT INTO resume_matches (resume_id, matches, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (resume_id) DO UPDATE SET matches = EXCLUDED.matches, updated_at = now()
`, resumeID, doc)
	if err != nil {
		return fmt.Errorf("saving matches for resume %s: %w", resumeID, err)
	}
	return nil
}

func (p *Postgres) GetMatches(ctx context.Context, resumeID string) ([]matching.JobMatch, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT matches FROM resume_matches WHERE resume_id = $1`, resumeID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading matches for resume %s: %w", resumeID, err)
	}

	var matches []matching.JobMatch
	if err := json.Unmarshal(doc, &matches); err != nil {
		return nil, fmt.Errorf("decoding matches for resume %s: %w", resumeID, err)
	}
	return matches, nil
}
