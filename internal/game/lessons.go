package game

import (
	"context"
	"encoding/json"

	"coinclass/internal/catalog"
	"coinclass/internal/loot"

	"github.com/jackc/pgx/v5"
)

// gradeQuiz checks every answer against its question. Choice questions
// compare the selected index; order questions compare the full
// sequence. All answers must be correct.
func gradeQuiz(questions []QuizQuestion, answers []QuizAnswer) bool {
	if len(answers) != len(questions) {
		return false
	}
	for i, q := range questions {
		a := answers[i]
		switch q.Type {
		case "choice":
			if a.Choice != q.Answer {
				return false
			}
		case "order":
			if len(a.Sequence) != len(q.Sequence) {
				return false
			}
			for j := range q.Sequence {
				if a.Sequence[j] != q.Sequence[j] {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

func (s *Service) ListLessons(ctx context.Context, userID string) ([]LessonView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT l.id, l.title, l.reward_cents, l.questions,
		       (lc.user_id IS NOT NULL) AS completed
		FROM econ.lessons l
		LEFT JOIN econ.lesson_completions lc
		  ON lc.lesson_id = l.id AND lc.user_id = $1
		ORDER BY l.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LessonView
	for rows.Next() {
		var lv LessonView
		var raw []byte
		if err := rows.Scan(&lv.ID, &lv.Title, &lv.RewardCents, &raw, &lv.Completed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &lv.Questions); err != nil {
			return nil, err
		}
		out = append(out, lv)
	}
	return out, rows.Err()
}

// CompleteLesson grades the submitted quiz and, on a perfect score,
// credits the reward and drops a lesson item. The completion row's
// primary key makes the payout at most once per lesson per account even
// across concurrent submissions.
func (s *Service) CompleteLesson(ctx context.Context, in CompleteLessonInput) (CompleteLessonResult, error) {
	var out CompleteLessonResult

	rolled, ok := s.loot.Generate("", catalog.ChannelLesson)
	var bonus *loot.Item
	if ok {
		bonus = &rolled
	}

	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "lesson"); err != nil {
			return err
		}

		var title string
		var rewardCents int64
		var raw []byte
		err := tx.QueryRow(ctx, `
			SELECT title, reward_cents, questions FROM econ.lessons WHERE id = $1
		`, in.LessonID).Scan(&title, &rewardCents, &raw)
		if err == pgx.ErrNoRows {
			return ErrLessonNotFound
		}
		if err != nil {
			return err
		}
		var questions []QuizQuestion
		if err := json.Unmarshal(raw, &questions); err != nil {
			return err
		}
		if !gradeQuiz(questions, in.Answers) {
			return ErrQuizFailed
		}

		cmd, err := tx.Exec(ctx, `
			INSERT INTO econ.lesson_completions (user_id, lesson_id, completed_at)
			VALUES ($1, $2, now())
			ON CONFLICT (user_id, lesson_id) DO NOTHING
		`, in.UserID, in.LessonID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrLessonAlreadyDone
		}

		balance, err := balanceForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		balance += rewardCents
		if err := setBalance(ctx, tx, in.UserID, balance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, in.UserID, "lesson-reward", rewardCents, 0); err != nil {
			return err
		}
		if bonus != nil {
			if err := insertUniqueItem(ctx, tx, in.UserID, *bonus); err != nil {
				return err
			}
		}
		out = CompleteLessonResult{
			RewardCents:  rewardCents,
			BalanceCents: balance,
			BonusItem:    bonus,
		}
		return nil
	})
	if err != nil {
		return CompleteLessonResult{}, err
	}
	s.log.Info("lesson completed", "user", in.UserID, "lesson", in.LessonID, "reward_cents", out.RewardCents)
	return out, nil
}
