package game

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SubmitCoins records a physical coin hand-in for teacher review.
// Amounts are coin counts, not currency.
func (s *Service) SubmitCoins(ctx context.Context, userID string, amount int64, note string) (CoinSubmission, error) {
	var out CoinSubmission
	if amount <= 0 {
		return out, fmt.Errorf("amount must be positive")
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO econ.coin_submissions (user_id, amount, note, status, created_at)
		VALUES ($1, $2, $3, 'pending', now())
		RETURNING id, created_at
	`, userID, amount, note).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return out, err
	}
	out.UserID = userID
	out.Amount = amount
	out.Note = note
	out.Status = "pending"
	return out, nil
}

// ApproveSubmission settles a pending hand-in and adds its coins to the
// class goal. Only a still-pending submission can be approved, so a
// double review never counts coins twice.
func (s *Service) ApproveSubmission(ctx context.Context, adminID string, submissionID int64) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		var amount int64
		err := tx.QueryRow(ctx, `
			SELECT amount FROM econ.coin_submissions
			WHERE id = $1 AND status = 'pending'
			FOR UPDATE
		`, submissionID).Scan(&amount)
		if err == pgx.ErrNoRows {
			var exists bool
			if err2 := tx.QueryRow(ctx, `
				SELECT EXISTS(SELECT 1 FROM econ.coin_submissions WHERE id = $1)
			`, submissionID).Scan(&exists); err2 != nil {
				return err2
			}
			if exists {
				return ErrSubmissionSettled
			}
			return ErrSubmissionNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.coin_submissions
			SET status = 'approved', reviewed_at = now(), reviewed_by = $2
			WHERE id = $1
		`, submissionID, adminID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE econ.class_goal SET current_coins = current_coins + $1
		`, amount)
		return err
	})
}

// RejectSubmission settles a pending hand-in without counting it.
func (s *Service) RejectSubmission(ctx context.Context, adminID string, submissionID int64) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	cmd, err := s.db.Exec(ctx, `
		UPDATE econ.coin_submissions
		SET status = 'rejected', reviewed_at = now(), reviewed_by = $2
		WHERE id = $1 AND status = 'pending'
	`, submissionID, adminID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := s.db.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM econ.coin_submissions WHERE id = $1)
		`, submissionID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrSubmissionSettled
		}
		return ErrSubmissionNotFound
	}
	return nil
}

// Submissions lists hand-ins: admins see everyone's, students see their
// own.
func (s *Service) Submissions(ctx context.Context, userID string) ([]CoinSubmission, error) {
	role, err := s.accountRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT cs.id, cs.user_id, a.nickname, cs.amount, COALESCE(cs.note, ''),
		       cs.status, cs.created_at, cs.reviewed_at
		FROM econ.coin_submissions cs
		JOIN econ.accounts a ON a.user_id = cs.user_id
		WHERE cs.user_id = $1
		ORDER BY cs.created_at DESC`
	args := []any{userID}
	if role == RoleAdmin {
		query = `
		SELECT cs.id, cs.user_id, a.nickname, cs.amount, COALESCE(cs.note, ''),
		       cs.status, cs.created_at, cs.reviewed_at
		FROM econ.coin_submissions cs
		JOIN econ.accounts a ON a.user_id = cs.user_id
		ORDER BY (cs.status = 'pending') DESC, cs.created_at DESC`
		args = nil
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CoinSubmission
	for rows.Next() {
		var cs CoinSubmission
		var reviewedAt *time.Time
		if err := rows.Scan(&cs.ID, &cs.UserID, &cs.Nickname, &cs.Amount, &cs.Note, &cs.Status, &cs.CreatedAt, &reviewedAt); err != nil {
			return nil, err
		}
		if reviewedAt != nil {
			cs.ReviewedAt = *reviewedAt
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *Service) GetClassGoal(ctx context.Context) (ClassGoal, error) {
	var out ClassGoal
	err := s.db.QueryRow(ctx, `
		SELECT target_coins, current_coins FROM econ.class_goal
	`).Scan(&out.TargetCoins, &out.CurrentCoins)
	if err == pgx.ErrNoRows {
		return ClassGoal{TargetCoins: ClassGoalTarget}, nil
	}
	return out, err
}
