package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coinclass/internal/catalog"
	"coinclass/internal/loot"

	"github.com/jackc/pgx/v5"
)

// Lot is the running open position the cost-basis replay maintains for
// one symbol.
type Lot struct {
	Quantity       int64
	TotalCostCents int64
}

// CostBasis replays an ordered trade log and returns the open lot per
// symbol. Buys add quantity and cost (fee included); sells remove
// quantity at the lot's average cost, so realized gains never distort
// the basis of what remains. A position sold to zero resets entirely.
func CostBasis(log []TradeLogEntry) map[string]Lot {
	out := make(map[string]Lot)
	for _, e := range log {
		lot := out[e.Symbol]
		switch e.Side {
		case "buy":
			lot.Quantity += e.Quantity
			lot.TotalCostCents += e.Quantity*e.PriceCents + e.FeeCents
		case "sell":
			if lot.Quantity <= 0 {
				continue
			}
			avg := lot.TotalCostCents / lot.Quantity
			sold := e.Quantity
			if sold > lot.Quantity {
				sold = lot.Quantity
			}
			lot.Quantity -= sold
			lot.TotalCostCents -= sold * avg
			if lot.Quantity == 0 {
				lot.TotalCostCents = 0
			}
		}
		out[e.Symbol] = lot
	}
	return out
}

func (s *Service) tradeLog(ctx context.Context, userID string) ([]TradeLogEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT symbol, side, quantity, price_cents, fee_cents, created_at
		FROM econ.trade_log
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TradeLogEntry
	for rows.Next() {
		var e TradeLogEntry
		if err := rows.Scan(&e.Symbol, &e.Side, &e.Quantity, &e.PriceCents, &e.FeeCents, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Trade executes a buy or sell at the current quoted price inside one
// serializable transaction: funds or shares check, position update,
// trade log append, double-entry ledger rows, and the occasional bonus
// item, all or nothing.
func (s *Service) Trade(ctx context.Context, in TradeInput) (TradeResult, error) {
	var out TradeResult
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if err := ValidateSymbol(in.Symbol); err != nil {
		return out, err
	}
	if in.Side != "buy" && in.Side != "sell" {
		return out, fmt.Errorf("side must be buy or sell")
	}
	if in.Quantity <= 0 {
		return out, fmt.Errorf("quantity must be positive")
	}

	// The bonus roll happens before the transaction so retries replay
	// the same outcome instead of re-rolling.
	var bonus *loot.Item
	if s.nextFloat() < TradeLootChance {
		if item, ok := s.loot.Generate("", catalog.ChannelDrop); ok {
			bonus = &item
		}
	}

	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "trade:"+in.Side); err != nil {
			return err
		}

		var priceCents int64
		err := tx.QueryRow(ctx, `
			SELECT price_cents FROM econ.stocks WHERE symbol = $1 FOR UPDATE
		`, in.Symbol).Scan(&priceCents)
		if err == pgx.ErrNoRows {
			return ErrStockNotFound
		}
		if err != nil {
			return err
		}

		balance, err := balanceForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}

		delta, notional := tradeDeltas(in.Side, in.Quantity, priceCents)
		switch in.Side {
		case "buy":
			if balance < -delta {
				return ErrInsufficientFunds
			}
			if err := upsertBuyPosition(ctx, tx, in.UserID, in.Symbol, in.Quantity); err != nil {
				return err
			}
		case "sell":
			if delta < 0 {
				return ErrInsufficientFunds
			}
			if err := applySellPosition(ctx, tx, in.UserID, in.Symbol, in.Quantity); err != nil {
				return err
			}
		}

		balance += delta
		if err := setBalance(ctx, tx, in.UserID, balance); err != nil {
			return err
		}
		if err := appendLedgerEntries(ctx, tx, in.UserID, "trade:"+in.Side, notional, TradeFeeCents); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.trade_log (user_id, symbol, side, quantity, price_cents, fee_cents, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
		`, in.UserID, in.Symbol, in.Side, in.Quantity, priceCents, TradeFeeCents); err != nil {
			return err
		}
		if bonus != nil {
			if err := insertUniqueItem(ctx, tx, in.UserID, *bonus); err != nil {
				return err
			}
		}

		out = TradeResult{
			Symbol:       in.Symbol,
			Side:         in.Side,
			Quantity:     in.Quantity,
			PriceCents:   priceCents,
			FeeCents:     TradeFeeCents,
			BalanceCents: balance,
			BonusItem:    bonus,
		}
		if in.Side == "buy" {
			out.TotalCents = -delta
		} else {
			out.TotalCents = delta
		}
		return nil
	})
	if err != nil {
		return TradeResult{}, err
	}
	s.log.Info("trade executed",
		"user", in.UserID, "symbol", in.Symbol, "side", in.Side,
		"quantity", in.Quantity, "total_cents", out.TotalCents,
		"bonus", bonus != nil)
	return out, nil
}

func upsertBuyPosition(ctx context.Context, tx pgx.Tx, userID, symbol string, quantity int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO econ.positions (user_id, symbol, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, symbol)
		DO UPDATE SET quantity = econ.positions.quantity + EXCLUDED.quantity
	`, userID, symbol, quantity)
	return err
}

func applySellPosition(ctx context.Context, tx pgx.Tx, userID, symbol string, quantity int64) error {
	var held int64
	err := tx.QueryRow(ctx, `
		SELECT quantity FROM econ.positions
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`, userID, symbol).Scan(&held)
	if err == pgx.ErrNoRows {
		return ErrInsufficientShares
	}
	if err != nil {
		return err
	}
	if held < quantity {
		return ErrInsufficientShares
	}
	if held == quantity {
		_, err = tx.Exec(ctx, `
			DELETE FROM econ.positions WHERE user_id = $1 AND symbol = $2
		`, userID, symbol)
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE econ.positions SET quantity = quantity - $3
		WHERE user_id = $1 AND symbol = $2
	`, userID, symbol, quantity)
	return err
}

func insertUniqueItem(ctx context.Context, tx pgx.Tx, userID string, item loot.Item) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO econ.inventory_items
			(id, user_id, kind, base_id, name, rarity, item_type, icon, value_cents, equipped, created_at)
		VALUES ($1, $2, 'unique', $3, $4, $5, $6, $7, $8, FALSE, now())
	`, item.UUID, userID, item.BaseID, item.Name, string(item.Rarity), string(item.Type), item.Icon, item.ValueCents)
	return err
}

func (s *Service) ListStocks(ctx context.Context) ([]StockView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT symbol, display_name, price_cents, updated_at
		FROM econ.stocks
		ORDER BY symbol
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StockView
	for rows.Next() {
		var st StockView
		if err := rows.Scan(&st.Symbol, &st.DisplayName, &st.PriceCents, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Service) StockDetail(ctx context.Context, symbol string) (StockView, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var st StockView
	if err := ValidateSymbol(symbol); err != nil {
		return st, err
	}
	err := s.db.QueryRow(ctx, `
		SELECT symbol, display_name, price_cents, updated_at
		FROM econ.stocks
		WHERE symbol = $1
	`, symbol).Scan(&st.Symbol, &st.DisplayName, &st.PriceCents, &st.UpdatedAt)
	if err == pgx.ErrNoRows {
		return st, ErrStockNotFound
	}
	return st, err
}

// entryItem reconstructs a loot item payload from an inventory row so a
// marketplace listing can carry the full item description.
func entryItem(e InventoryEntry) (string, error) {
	raw, err := json.Marshal(e)
	return string(raw), err
}
