package game

import (
	"context"
	"fmt"

	"coinclass/internal/catalog"

	"github.com/jackc/pgx/v5"
)

const mapSize = 20

func validatePlotCoords(x, y int) error {
	if x < 0 || x >= mapSize || y < 0 || y >= mapSize {
		return fmt.Errorf("plot coordinates must be within 0..%d", mapSize-1)
	}
	return nil
}

// BuyLand claims a free plot at the current global price. Each sale
// anywhere on the map raises the next price by a fixed increment, so
// the sold-plot count is read inside the same transaction that inserts
// the claim.
func (s *Service) BuyLand(ctx context.Context, in BuyLandInput) (BuyLandResult, error) {
	var out BuyLandResult
	if err := validatePlotCoords(in.X, in.Y); err != nil {
		return out, err
	}
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "buy-land"); err != nil {
			return err
		}
		var sold int64
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM econ.land_plots`).Scan(&sold); err != nil {
			return err
		}
		price := LandPriceCents(sold)

		balance, err := balanceForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if balance < price {
			return ErrInsufficientFunds
		}

		cmd, err := tx.Exec(ctx, `
			INSERT INTO econ.land_plots (x, y, owner_id, price_paid_cents, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (x, y) DO NOTHING
		`, in.X, in.Y, in.UserID, price)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrPlotTaken
		}

		balance -= price
		if err := setBalance(ctx, tx, in.UserID, balance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, in.UserID, "buy-land", -price, 0); err != nil {
			return err
		}
		if err := refreshEstateValue(ctx, tx, in.UserID); err != nil {
			return err
		}
		out = BuyLandResult{
			Plot:         PlotView{X: in.X, Y: in.Y, OwnerID: in.UserID, PricePaidCents: price},
			PriceCents:   price,
			BalanceCents: balance,
		}
		return nil
	})
	if err != nil {
		return BuyLandResult{}, err
	}
	s.log.Info("land purchased", "user", in.UserID, "x", in.X, "y", in.Y, "price_cents", out.PriceCents)
	return out, nil
}

// Construct places a building on an owned plot, replacing whatever
// stood there. No refund for the replaced building.
func (s *Service) Construct(ctx context.Context, in ConstructInput) error {
	building, ok := catalog.BuildingByID(in.BuildingID)
	if !ok {
		return ErrUnknownBuilding
	}
	if err := validatePlotCoords(in.X, in.Y); err != nil {
		return err
	}
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "construct"); err != nil {
			return err
		}
		var ownerID string
		err := tx.QueryRow(ctx, `
			SELECT owner_id FROM econ.land_plots WHERE x = $1 AND y = $2 FOR UPDATE
		`, in.X, in.Y).Scan(&ownerID)
		if err == pgx.ErrNoRows {
			return ErrPlotNotOwned
		}
		if err != nil {
			return err
		}
		if ownerID != in.UserID {
			return ErrPlotNotOwned
		}

		balance, err := balanceForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if balance < building.CostCents {
			return ErrInsufficientFunds
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.land_plots SET building_id = $3 WHERE x = $1 AND y = $2
		`, in.X, in.Y, building.ID); err != nil {
			return err
		}
		balance -= building.CostCents
		if err := setBalance(ctx, tx, in.UserID, balance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, in.UserID, "construct:"+building.ID, -building.CostCents, 0); err != nil {
			return err
		}
		return refreshEstateValue(ctx, tx, in.UserID)
	})
}

// Visit pays the owner's entry fee for a commercial building. The fee
// moves wallet to wallet; nothing is minted.
func (s *Service) Visit(ctx context.Context, in VisitInput) (VisitResult, error) {
	var out VisitResult
	if err := validatePlotCoords(in.X, in.Y); err != nil {
		return out, err
	}
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "visit"); err != nil {
			return err
		}
		var ownerID string
		var buildingID *string
		err := tx.QueryRow(ctx, `
			SELECT owner_id, building_id FROM econ.land_plots WHERE x = $1 AND y = $2
		`, in.X, in.Y).Scan(&ownerID, &buildingID)
		if err == pgx.ErrNoRows {
			return ErrPlotNotOwned
		}
		if err != nil {
			return err
		}
		if buildingID == nil {
			return ErrNotCommercial
		}
		building, ok := catalog.BuildingByID(*buildingID)
		if !ok || building.Type != catalog.BuildingCommercial || building.VisitFeeCents <= 0 {
			return ErrNotCommercial
		}
		if ownerID == in.UserID {
			return fmt.Errorf("cannot visit your own building")
		}

		balance, err := balanceForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if balance < building.VisitFeeCents {
			return ErrInsufficientFunds
		}
		ownerBalance, err := balanceForUpdate(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		balance -= building.VisitFeeCents
		ownerBalance += building.VisitFeeCents
		if err := setBalance(ctx, tx, in.UserID, balance); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, ownerID, ownerBalance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, in.UserID, "visit-fee", -building.VisitFeeCents, 0); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, ownerID, "visit-income", building.VisitFeeCents, 0); err != nil {
			return err
		}
		out = VisitResult{
			FeeCents:     building.VisitFeeCents,
			OwnerID:      ownerID,
			BalanceCents: balance,
		}
		return nil
	})
	if err != nil {
		return VisitResult{}, err
	}
	return out, nil
}

// refreshEstateValue recomputes the denormalized estate value: land at
// price paid plus construction costs.
func refreshEstateValue(ctx context.Context, tx pgx.Tx, userID string) error {
	rows, err := tx.Query(ctx, `
		SELECT price_paid_cents, building_id FROM econ.land_plots WHERE owner_id = $1
	`, userID)
	if err != nil {
		return err
	}
	defer rows.Close()
	var total int64
	for rows.Next() {
		var paid int64
		var buildingID *string
		if err := rows.Scan(&paid, &buildingID); err != nil {
			return err
		}
		total += paid
		if buildingID != nil {
			if b, ok := catalog.BuildingByID(*buildingID); ok {
				total += b.CostCents
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE econ.accounts SET estate_value_cents = $2, updated_at = now() WHERE user_id = $1
	`, userID, total)
	return err
}

func (s *Service) estateStats(ctx context.Context, userID string) (EstateStats, error) {
	var out EstateStats
	rows, err := s.db.Query(ctx, `
		SELECT price_paid_cents, building_id FROM econ.land_plots
		WHERE owner_id = $1
		ORDER BY x, y
	`, userID)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var paid int64
		var buildingID *string
		if err := rows.Scan(&paid, &buildingID); err != nil {
			return out, err
		}
		out.PlotsCount++
		out.EstValueCents += paid
		if buildingID == nil {
			continue
		}
		out.BuildingIDs = append(out.BuildingIDs, *buildingID)
		if b, ok := catalog.BuildingByID(*buildingID); ok {
			out.EstValueCents += b.CostCents
			if b.Type == catalog.BuildingCommercial {
				out.DailyIncomeCents += b.DailyIncome
			}
		}
	}
	return out, rows.Err()
}

// WorldMap lists every claimed plot with its owner's nickname.
func (s *Service) WorldMap(ctx context.Context) ([]PlotView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.x, p.y, p.owner_id, a.nickname, p.price_paid_cents,
		       COALESCE(p.building_id, ''), p.created_at
		FROM econ.land_plots p
		JOIN econ.accounts a ON a.user_id = p.owner_id
		ORDER BY p.x, p.y
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PlotView
	for rows.Next() {
		var pv PlotView
		if err := rows.Scan(&pv.X, &pv.Y, &pv.OwnerID, &pv.OwnerName, &pv.PricePaidCents, &pv.BuildingID, &pv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, rows.Err()
}
