package sqlite

import (
	"context"
	"time"

	"github.com/certquest/sessiond/internal/session/domain"
)

type sessionsRepo struct {
	q *queries
}

func (r *sessionsRepo) RecordIssuedSession(ctx context.Context, s domain.IssuedSession) error {
	_, err := r.q.db.ExecContext(ctx, createIssuedSession,
		s.JTI,
		s.Subject,
		s.TokenFingerprint,
		toMillis(s.IssuedAt),
		toMillis(s.ExpiresAt),
		mapStringNull(s.ReplacesJTI),
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetIssuedSession(ctx context.Context, jti string) (domain.IssuedSession, error) {
	row, err := scanIssuedSession(r.q.db.QueryRowContext(ctx, getIssuedSession, jti))
	if err != nil {
		return domain.IssuedSession{}, mapNotFound(err)
	}
	return mapIssuedSession(row), nil
}

func (r *sessionsRepo) ListSessionsBySubject(ctx context.Context, subject string) ([]domain.IssuedSession, error) {
	rows, err := r.q.db.QueryContext(ctx, listIssuedSessionsBySubject, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IssuedSession
	for rows.Next() {
		row, err := scanIssuedSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mapIssuedSession(row))
	}
	return out, rows.Err()
}

func (r *sessionsRepo) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.db.ExecContext(ctx, deleteIssuedSessionsExpiredBefore, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
