package game

import (
	"context"
	"time"

	"coinclass/internal/catalog"

	"github.com/jackc/pgx/v5"
)

// elapsedDays is the number of whole 24 hour periods between two
// instants. Fractional remainders do not carry over.
func elapsedDays(from, to time.Time) int64 {
	if !to.After(from) {
		return 0
	}
	return int64(to.Sub(from) / (24 * time.Hour))
}

// AccrueIdle settles the passive economy for one account: housing rent
// out, commercial building income in, once per elapsed day. Everything
// runs in a single transaction keyed on last_accrual_at, so concurrent
// logins settle the same window exactly once. The timestamp always
// advances, even when the net is zero.
func (s *Service) AccrueIdle(ctx context.Context, userID string) (AccrualResult, error) {
	var out AccrualResult
	now := time.Now()
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		var balance int64
		var residence *string
		var residenceOwned bool
		var lastAccrual time.Time
		err := tx.QueryRow(ctx, `
			SELECT balance_cents, residence_id, residence_owned, last_accrual_at
			FROM econ.accounts
			WHERE user_id = $1
			FOR UPDATE
		`, userID).Scan(&balance, &residence, &residenceOwned, &lastAccrual)
		if err == pgx.ErrNoRows {
			return ErrUnauthorized
		}
		if err != nil {
			return err
		}

		days := elapsedDays(lastAccrual, now)
		if days == 0 {
			out = AccrualResult{BalanceCents: balance}
			return nil
		}

		var rentPerDay int64
		if residence != nil && !residenceOwned {
			rentPerDay = catalog.HousingRent[*residence]
		}
		incomePerDay, err := dailyCommercialIncome(ctx, tx, userID)
		if err != nil {
			return err
		}

		rent := rentPerDay * days
		income := incomePerDay * days
		net := income - rent
		balance += net

		if err := setBalance(ctx, tx, userID, balance); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.accounts SET last_accrual_at = $2 WHERE user_id = $1
		`, userID, now); err != nil {
			return err
		}
		if net != 0 {
			if err := appendLedgerEntries(ctx, tx, userID, "idle-accrual", net, 0); err != nil {
				return err
			}
		}
		out = AccrualResult{
			Days:         days,
			RentCents:    rent,
			IncomeCents:  income,
			NetCents:     net,
			BalanceCents: balance,
		}
		return nil
	})
	if err != nil {
		return AccrualResult{}, err
	}
	if out.Days > 0 {
		s.log.Info("idle accrual settled",
			"user", userID, "days", out.Days,
			"rent_cents", out.RentCents, "income_cents", out.IncomeCents)
	}
	return out, nil
}

func dailyCommercialIncome(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	rows, err := tx.Query(ctx, `
		SELECT building_id FROM econ.land_plots
		WHERE owner_id = $1 AND building_id IS NOT NULL
	`, userID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var total int64
	for rows.Next() {
		var buildingID string
		if err := rows.Scan(&buildingID); err != nil {
			return 0, err
		}
		if b, ok := catalog.BuildingByID(buildingID); ok && b.Type == catalog.BuildingCommercial {
			total += b.DailyIncome
		}
	}
	return total, rows.Err()
}

// AccrueAll sweeps every account that is at least one day behind. The
// worker calls this on a ticker; a per-account failure is logged and
// skipped so one bad row cannot stall the sweep.
func (s *Service) AccrueAll(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id FROM econ.accounts
		WHERE last_accrual_at < now() - interval '24 hours'
		ORDER BY last_accrual_at
	`)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	settled := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if _, err := s.AccrueIdle(ctx, id); err != nil {
			s.log.Error("idle accrual failed", "user", id, "error", err)
			continue
		}
		settled++
	}
	return settled, nil
}
