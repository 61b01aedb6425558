package game

import (
	"context"

	"coinclass/internal/catalog"

	"github.com/jackc/pgx/v5"
)

// HousingCatalog returns the residence tiers students can move into.
func (s *Service) HousingCatalog() []catalog.House {
	return catalog.Houses
}

// RentHouse moves the account into a residence tier. Moving in is free;
// the daily rent is charged by idle accrual until the house is bought
// outright. Moving resets any previous ownership.
func (s *Service) RentHouse(ctx context.Context, userID, houseID string) error {
	house, ok := catalog.HouseByID(houseID)
	if !ok {
		return ErrUnknownHouse
	}
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		if _, err := balanceForUpdate(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE econ.accounts
			SET residence_id = $2, residence_owned = FALSE, updated_at = now()
			WHERE user_id = $1
		`, userID, house.ID)
		if err != nil {
			return err
		}
		s.log.Info("residence rented", "user", userID, "house", house.ID)
		return nil
	})
}

// BuyHouse purchases the residence tier outright, stopping its rent.
func (s *Service) BuyHouse(ctx context.Context, userID, houseID, idemKey string) (int64, error) {
	house, ok := catalog.HouseByID(houseID)
	if !ok {
		return 0, ErrUnknownHouse
	}
	var balance int64
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, userID, idemKey, "buy-house"); err != nil {
			return err
		}
		b, err := balanceForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if b < house.PriceCents {
			return ErrInsufficientFunds
		}
		balance = b - house.PriceCents
		if err := setBalance(ctx, tx, userID, balance); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.accounts
			SET residence_id = $2, residence_owned = TRUE, updated_at = now()
			WHERE user_id = $1
		`, userID, house.ID); err != nil {
			return err
		}
		return appendLedgerEntries(ctx, tx, userID, "buy-house:"+house.ID, -house.PriceCents, 0)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("residence bought", "user", userID, "house", house.ID, "price_cents", house.PriceCents)
	return balance, nil
}
