package game

import (
	"context"

	"coinclass/internal/catalog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BuyShopItem purchases a catalog item. Backgrounds and titles are
// one-per-account; a loot box is opened on the spot and delivers a
// generated item instead of itself.
func (s *Service) BuyShopItem(ctx context.Context, in ShopBuyInput) (ShopBuyResult, error) {
	var out ShopBuyResult
	item, ok := catalog.ItemByID(in.ItemID)
	if !ok {
		return out, ErrUnknownCatalogItem
	}
	// Untagged items are shop-only; tagged items must carry the shop channel.
	inShop := len(item.Channels) == 0
	for _, c := range item.Channels {
		if c == catalog.ChannelShop {
			inShop = true
		}
	}
	if !inShop {
		return out, ErrUnknownCatalogItem
	}

	// Pre-rolled so transaction retries deliver the same item.
	var boxed InventoryEntry
	if item.ID == catalog.LootBoxID {
		rolled, ok := s.loot.Generate("", catalog.ChannelDrop)
		if !ok {
			return out, ErrUnknownCatalogItem
		}
		boxed = InventoryEntry{
			ID:         rolled.UUID,
			Kind:       KindUnique,
			BaseID:     rolled.BaseID,
			Name:       rolled.Name,
			Rarity:     string(rolled.Rarity),
			Type:       string(rolled.Type),
			Icon:       rolled.Icon,
			ValueCents: rolled.ValueCents,
		}
	}

	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "shop:"+item.ID); err != nil {
			return err
		}
		balance, err := balanceForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if balance < item.PriceCents {
			return ErrInsufficientFunds
		}

		entry := boxed
		if item.ID != catalog.LootBoxID {
			if item.Type == catalog.TypeBackground || item.Type == catalog.TypeTitle {
				var n int64
				err := tx.QueryRow(ctx, `
					SELECT count(*) FROM econ.inventory_items
					WHERE user_id = $1 AND base_id = $2
				`, in.UserID, item.ID).Scan(&n)
				if err != nil {
					return err
				}
				if n > 0 {
					return ErrAlreadyOwned
				}
			}
			entry = InventoryEntry{
				ID:         uuid.NewString(),
				Kind:       KindSimple,
				BaseID:     item.ID,
				Name:       item.Name,
				Type:       string(item.Type),
				Icon:       item.Icon,
				ValueCents: item.PriceCents,
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.inventory_items
				(id, user_id, kind, base_id, name, rarity, item_type, icon, value_cents, equipped, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, now())
		`, entry.ID, in.UserID, entry.Kind, entry.BaseID, entry.Name, entry.Rarity, entry.Type, entry.Icon, entry.ValueCents); err != nil {
			return err
		}

		balance -= item.PriceCents
		if err := setBalance(ctx, tx, in.UserID, balance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, in.UserID, "shop:"+item.ID, -item.PriceCents, 0); err != nil {
			return err
		}
		out = ShopBuyResult{Entry: entry, BalanceCents: balance}
		return nil
	})
	if err != nil {
		return ShopBuyResult{}, err
	}
	s.log.Info("shop purchase", "user", in.UserID, "item", item.ID, "price_cents", item.PriceCents)
	return out, nil
}

// SellItem liquidates an inventory item back to the bank at its stored
// value. Equipped items are unequipped by the delete.
func (s *Service) SellItem(ctx context.Context, userID, itemID, idemKey string) (SellItemResult, error) {
	var out SellItemResult
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, userID, idemKey, "sell-item"); err != nil {
			return err
		}
		var value int64
		var baseID string
		err := tx.QueryRow(ctx, `
			SELECT value_cents, base_id FROM econ.inventory_items
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, itemID, userID).Scan(&value, &baseID)
		if err == pgx.ErrNoRows {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM econ.inventory_items WHERE id = $1
		`, itemID); err != nil {
			return err
		}
		// Clear a cosmetic slot that pointed at the sold item.
		if _, err := tx.Exec(ctx, `
			UPDATE econ.accounts
			SET equipped_background = NULLIF(equipped_background, $2),
			    equipped_title = NULLIF(equipped_title, $2)
			WHERE user_id = $1
		`, userID, baseID); err != nil {
			return err
		}

		balance, err := balanceForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		balance += value
		if err := setBalance(ctx, tx, userID, balance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, userID, "sell-item", value, 0); err != nil {
			return err
		}
		out = SellItemResult{ValueCents: value, BalanceCents: balance}
		return nil
	})
	if err != nil {
		return SellItemResult{}, err
	}
	return out, nil
}

// EquipItem flips an item into its display slot. Backgrounds and titles
// occupy one slot each on the account; decorations toggle an equipped
// flag capped at six at a time.
func (s *Service) EquipItem(ctx context.Context, userID, itemID string) error {
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		var baseID, itemType string
		var equipped bool
		err := tx.QueryRow(ctx, `
			SELECT base_id, item_type, equipped FROM econ.inventory_items
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, itemID, userID).Scan(&baseID, &itemType, &equipped)
		if err == pgx.ErrNoRows {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}

		switch catalog.ItemType(itemType) {
		case catalog.TypeBackground:
			_, err = tx.Exec(ctx, `
				UPDATE econ.accounts SET equipped_background = $2 WHERE user_id = $1
			`, userID, baseID)
			return err
		case catalog.TypeTitle:
			_, err = tx.Exec(ctx, `
				UPDATE econ.accounts SET equipped_title = $2 WHERE user_id = $1
			`, userID, baseID)
			return err
		default:
			if equipped {
				return nil
			}
			var worn int64
			if err := tx.QueryRow(ctx, `
				SELECT count(*) FROM econ.inventory_items
				WHERE user_id = $1 AND equipped AND item_type NOT IN ('background', 'title')
			`, userID).Scan(&worn); err != nil {
				return err
			}
			if worn >= MaxEquippedDecorations {
				return ErrEquipSlotsFull
			}
			_, err = tx.Exec(ctx, `
				UPDATE econ.inventory_items SET equipped = TRUE WHERE id = $1
			`, itemID)
			return err
		}
	})
}

func (s *Service) UnequipItem(ctx context.Context, userID, itemID string) error {
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		var baseID, itemType string
		err := tx.QueryRow(ctx, `
			SELECT base_id, item_type FROM econ.inventory_items
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, itemID, userID).Scan(&baseID, &itemType)
		if err == pgx.ErrNoRows {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}
		switch catalog.ItemType(itemType) {
		case catalog.TypeBackground:
			_, err = tx.Exec(ctx, `
				UPDATE econ.accounts SET equipped_background = NULL
				WHERE user_id = $1 AND equipped_background = $2
			`, userID, baseID)
			return err
		case catalog.TypeTitle:
			_, err = tx.Exec(ctx, `
				UPDATE econ.accounts SET equipped_title = NULL
				WHERE user_id = $1 AND equipped_title = $2
			`, userID, baseID)
			return err
		default:
			_, err = tx.Exec(ctx, `
				UPDATE econ.inventory_items SET equipped = FALSE WHERE id = $1
			`, itemID)
			return err
		}
	})
}

// ShopCatalog returns the buyable items in a stable order.
func (s *Service) ShopCatalog() []catalog.ShopItem {
	return catalog.PoolFor(catalog.ChannelShop)
}
