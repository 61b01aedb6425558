package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListItem moves an inventory item into an open marketplace listing.
// The listing carries a denormalized copy of the item so browsing never
// joins back into inventories.
func (s *Service) ListItem(ctx context.Context, in ListItemInput) (ListingView, error) {
	var out ListingView
	if in.PriceCents <= 0 {
		return out, fmt.Errorf("price must be positive")
	}
	if err := s.requireNonGuest(ctx, in.UserID); err != nil {
		return out, err
	}
	listingID := uuid.NewString()
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "list-item"); err != nil {
			return err
		}
		var e InventoryEntry
		err := tx.QueryRow(ctx, `
			SELECT id, kind, base_id, name, COALESCE(rarity, ''), item_type, icon, value_cents
			FROM econ.inventory_items
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, in.ItemID, in.UserID).Scan(&e.ID, &e.Kind, &e.BaseID, &e.Name, &e.Rarity, &e.Type, &e.Icon, &e.ValueCents)
		if err == pgx.ErrNoRows {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}

		payload, err := entryItem(e)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM econ.inventory_items WHERE id = $1
		`, in.ItemID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.accounts
			SET equipped_background = NULLIF(equipped_background, $2),
			    equipped_title = NULLIF(equipped_title, $2)
			WHERE user_id = $1
		`, in.UserID, e.BaseID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.listings (id, seller_id, price_cents, item, created_at)
			VALUES ($1, $2, $3, $4::jsonb, now())
		`, listingID, in.UserID, in.PriceCents, payload); err != nil {
			return err
		}
		out = ListingView{
			ID:         listingID,
			SellerID:   in.UserID,
			PriceCents: in.PriceCents,
			Item:       e,
		}
		return nil
	})
	if err != nil {
		return ListingView{}, err
	}
	return out, nil
}

// BuyListing settles an open listing: buyer pays, item lands in the
// buyer's inventory, the listing disappears. The seller is credited
// only if their account still exists; a vanished seller forfeits the
// proceeds rather than blocking the sale.
func (s *Service) BuyListing(ctx context.Context, in BuyListingInput) (ListingView, error) {
	var out ListingView
	if err := s.requireNonGuest(ctx, in.UserID); err != nil {
		return out, err
	}
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "buy-listing"); err != nil {
			return err
		}
		var sellerID string
		var priceCents int64
		var raw []byte
		err := tx.QueryRow(ctx, `
			SELECT seller_id, price_cents, item FROM econ.listings
			WHERE id = $1
			FOR UPDATE
		`, in.ListingID).Scan(&sellerID, &priceCents, &raw)
		if err == pgx.ErrNoRows {
			return ErrListingNotFound
		}
		if err != nil {
			return err
		}
		if sellerID == in.UserID {
			return ErrOwnListing
		}
		var item InventoryEntry
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}

		balance, err := balanceForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if balance < priceCents {
			return ErrInsufficientFunds
		}
		balance -= priceCents
		if err := setBalance(ctx, tx, in.UserID, balance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, in.UserID, "market-buy", -priceCents, 0); err != nil {
			return err
		}

		var sellerBalance int64
		err = tx.QueryRow(ctx, `
			SELECT balance_cents FROM econ.accounts WHERE user_id = $1 FOR UPDATE
		`, sellerID).Scan(&sellerBalance)
		switch {
		case err == pgx.ErrNoRows:
			s.log.Warn("listing seller account missing, proceeds dropped", "listing", in.ListingID, "seller", sellerID)
		case err != nil:
			return err
		default:
			if err := setBalance(ctx, tx, sellerID, sellerBalance+priceCents); err != nil {
				return err
			}
			if err := appendLedgerEntries(ctx, tx, sellerID, "market-sale", priceCents, 0); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `
			DELETE FROM econ.listings WHERE id = $1
		`, in.ListingID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.inventory_items
				(id, user_id, kind, base_id, name, rarity, item_type, icon, value_cents, equipped, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, now())
		`, item.ID, in.UserID, item.Kind, item.BaseID, item.Name, item.Rarity, item.Type, item.Icon, item.ValueCents); err != nil {
			return err
		}
		out = ListingView{
			ID:         in.ListingID,
			SellerID:   sellerID,
			PriceCents: priceCents,
			Item:       item,
		}
		return nil
	})
	if err != nil {
		return ListingView{}, err
	}
	s.log.Info("listing sold", "listing", in.ListingID, "buyer", in.UserID, "price_cents", out.PriceCents)
	return out, nil
}

// CancelListing returns the seller's own listing to their inventory.
func (s *Service) CancelListing(ctx context.Context, userID, listingID, idemKey string) error {
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, userID, idemKey, "cancel-listing"); err != nil {
			return err
		}
		var sellerID string
		var raw []byte
		err := tx.QueryRow(ctx, `
			SELECT seller_id, item FROM econ.listings WHERE id = $1 FOR UPDATE
		`, listingID).Scan(&sellerID, &raw)
		if err == pgx.ErrNoRows {
			return ErrListingNotFound
		}
		if err != nil {
			return err
		}
		if sellerID != userID {
			return ErrItemNotOwned
		}
		var item InventoryEntry
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM econ.listings WHERE id = $1
		`, listingID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO econ.inventory_items
				(id, user_id, kind, base_id, name, rarity, item_type, icon, value_cents, equipped, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, now())
		`, item.ID, userID, item.Kind, item.BaseID, item.Name, item.Rarity, item.Type, item.Icon, item.ValueCents)
		return err
	})
}

// BrowseListings returns open listings newest first.
func (s *Service) BrowseListings(ctx context.Context, limit int) ([]ListingView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT l.id, l.seller_id, a.nickname, l.price_cents, l.item, l.created_at
		FROM econ.listings l
		LEFT JOIN econ.accounts a ON a.user_id = l.seller_id
		ORDER BY l.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ListingView
	for rows.Next() {
		var lv ListingView
		var nickname *string
		var raw []byte
		if err := rows.Scan(&lv.ID, &lv.SellerID, &nickname, &lv.PriceCents, &raw, &lv.CreatedAt); err != nil {
			return nil, err
		}
		if nickname != nil {
			lv.SellerName = *nickname
		}
		if err := json.Unmarshal(raw, &lv.Item); err != nil {
			return nil, err
		}
		out = append(out, lv)
	}
	return out, rows.Err()
}
