package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"coinclass/internal/loot"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Service struct {
	db   *pgxpool.Pool
	log  *slog.Logger
	loot *loot.Generator
	mu   sync.Mutex
	rand *mathrand.Rand
}

func NewService(db *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	seed := time.Now().UnixNano()
	return &Service{
		db:   db,
		log:  logger,
		loot: loot.NewGenerator(mathrand.New(mathrand.NewSource(seed))),
		rand: mathrand.New(mathrand.NewSource(seed + 1)),
	}
}

func (s *Service) nextFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Float64()
}

// runSerializable executes fn inside a serializable transaction,
// retrying on serialization failures with capped backoff. Precondition
// errors abort immediately; only SQLSTATE 40001 retries.
func (s *Service) runSerializable(ctx context.Context, fn func(tx pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func claimIdempotency(ctx context.Context, tx pgx.Tx, userID, key, action string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("idempotency key is required")
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO econ.idempotency_keys (user_id, key, action, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, action)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}

// appendLedgerEntries records a double-entry pair for the user's wallet
// move plus an optional fee row, all under one tx group id.
func appendLedgerEntries(ctx context.Context, tx pgx.Tx, userID, action string, walletDeltaCents, feeCents int64) error {
	txID := uuid.NewString()
	meta, _ := json.Marshal(map[string]any{"action": action})
	_, err := tx.Exec(ctx, `
		INSERT INTO econ.ledger_entries (tx_group_id, user_id, account, delta_cents, metadata)
		VALUES
		($1, $2, 'wallet', $3, $5::jsonb),
		($1, $2, 'counterparty', $4, $5::jsonb)
	`, txID, userID, walletDeltaCents, -walletDeltaCents, string(meta))
	if err != nil {
		return err
	}
	if feeCents > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO econ.ledger_entries (tx_group_id, user_id, account, delta_cents, metadata)
			VALUES ($1, $2, 'fees', $3, $4::jsonb)
		`, txID, userID, -feeCents, `{"action":"fee"}`)
	}
	return err
}

func balanceForUpdate(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `
		SELECT balance_cents
		FROM econ.accounts
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("account %s not found", userID)
	}
	return balance, err
}

func setBalance(ctx context.Context, tx pgx.Tx, userID string, balance int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE econ.accounts
		SET balance_cents = $1, updated_at = now()
		WHERE user_id = $2
	`, balance, userID)
	return err
}

// EnsureAccount creates the account row on first login. New accounts
// start as guests with the starting balance; an admin promotes them.
func (s *Service) EnsureAccount(ctx context.Context, userID, email, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = nicknameFromEmail(email)
	}
	if err := validateNickname(nickname); err != nil {
		nickname = nicknameFromEmail(email)
	}
	nickname = sanitizeNickname(nickname)

	_, err := s.db.Exec(ctx, `
		INSERT INTO econ.accounts (user_id, email, nickname, role, balance_cents, last_accrual_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO NOTHING
	`, userID, email, nickname, RoleGuest, StarterBalanceCents)
	return err
}

func (s *Service) Account(ctx context.Context, userID string) (AccountView, error) {
	var out AccountView
	var residence, background, title *string
	err := s.db.QueryRow(ctx, `
		SELECT user_id, nickname, role, balance_cents,
		       residence_id, residence_owned, equipped_background, equipped_title, last_accrual_at
		FROM econ.accounts
		WHERE user_id = $1
	`, userID).Scan(&out.UserID, &out.Nickname, &out.Role, &out.BalanceCents,
		&residence, &out.ResidenceOwned, &background, &title, &out.LastAccrualAt)
	if err != nil {
		return out, err
	}
	if residence != nil {
		out.ResidenceID = *residence
	}
	if background != nil {
		out.Background = *background
	}
	if title != nil {
		out.Title = *title
	}
	netWorth, err := s.netWorth(ctx, userID, out.BalanceCents)
	if err != nil {
		return out, err
	}
	out.NetWorthCents = netWorth
	return out, nil
}

func (s *Service) accountRole(ctx context.Context, userID string) (Role, error) {
	var role Role
	err := s.db.QueryRow(ctx, `SELECT role FROM econ.accounts WHERE user_id = $1`, userID).Scan(&role)
	if err == pgx.ErrNoRows {
		return "", ErrUnauthorized
	}
	return role, err
}

func (s *Service) requireAdmin(ctx context.Context, userID string) error {
	role, err := s.accountRole(ctx, userID)
	if err != nil {
		return err
	}
	if role != RoleAdmin {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) requireNonGuest(ctx context.Context, userID string) error {
	role, err := s.accountRole(ctx, userID)
	if err != nil {
		return err
	}
	if role == RoleGuest {
		return ErrGuestRestricted
	}
	return nil
}

// SetRole is the admin override that promotes guests to students (or
// admins). It never touches balances.
func (s *Service) SetRole(ctx context.Context, adminID, targetID string, role Role) error {
	if role != RoleGuest && role != RoleStudent && role != RoleAdmin {
		return fmt.Errorf("role must be guest, student or admin")
	}
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	cmd, err := s.db.Exec(ctx, `
		UPDATE econ.accounts SET role = $1, updated_at = now() WHERE user_id = $2
	`, role, targetID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", targetID)
	}
	return nil
}

func (s *Service) netWorth(ctx context.Context, userID string, balanceCents int64) (int64, error) {
	var holdings int64
	if err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.quantity * st.price_cents), 0)
		FROM econ.positions p
		JOIN econ.stocks st ON st.symbol = p.symbol
		WHERE p.user_id = $1
	`, userID).Scan(&holdings); err != nil {
		return 0, err
	}
	var estate int64
	if err := s.db.QueryRow(ctx, `
		SELECT COALESCE(estate_value_cents, 0) FROM econ.accounts WHERE user_id = $1
	`, userID).Scan(&estate); err != nil {
		return 0, err
	}
	return balanceCents + holdings + estate, nil
}

func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	var out Dashboard
	account, err := s.Account(ctx, userID)
	if err != nil {
		return out, err
	}
	out.Account = account

	rows, err := s.db.Query(ctx, `
		SELECT p.symbol, st.display_name, p.quantity, st.price_cents
		FROM econ.positions p
		JOIN econ.stocks st ON st.symbol = p.symbol
		WHERE p.user_id = $1
		ORDER BY p.symbol
	`, userID)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var pos PositionView
		if err := rows.Scan(&pos.Symbol, &pos.DisplayName, &pos.Quantity, &pos.CurrentPriceCents); err != nil {
			return out, err
		}
		pos.MarketValueCents = pos.Quantity * pos.CurrentPriceCents
		out.Positions = append(out.Positions, pos)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	// Average cost per open position is derived by replaying the trade
	// log, never stored.
	if len(out.Positions) > 0 {
		log, err := s.tradeLog(ctx, userID)
		if err != nil {
			return out, err
		}
		basis := CostBasis(log)
		for i := range out.Positions {
			if lot, ok := basis[out.Positions[i].Symbol]; ok && lot.Quantity > 0 {
				out.Positions[i].AvgCostCents = lot.TotalCostCents / lot.Quantity
			}
		}
	}

	inv, err := s.Inventory(ctx, userID)
	if err != nil {
		return out, err
	}
	out.Inventory = inv

	estate, err := s.estateStats(ctx, userID)
	if err != nil {
		return out, err
	}
	out.Estate = estate
	return out, nil
}

func (s *Service) Inventory(ctx context.Context, userID string) ([]InventoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, kind, base_id, name, COALESCE(rarity, ''), item_type, icon, value_cents, equipped, created_at
		FROM econ.inventory_items
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]InventoryEntry, 0)
	for rows.Next() {
		var e InventoryEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.BaseID, &e.Name, &e.Rarity, &e.Type, &e.Icon, &e.ValueCents, &e.Equipped, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		WITH holdings AS (
			SELECT p.user_id, COALESCE(SUM(p.quantity * st.price_cents), 0) AS holdings_cents
			FROM econ.positions p
			JOIN econ.stocks st ON st.symbol = p.symbol
			GROUP BY p.user_id
		)
		SELECT a.nickname,
		       (a.balance_cents + COALESCE(h.holdings_cents, 0) + COALESCE(a.estate_value_cents, 0)) AS net_worth_cents
		FROM econ.accounts a
		LEFT JOIN holdings h ON h.user_id = a.user_id
		WHERE a.role <> 'guest'
		ORDER BY net_worth_cents DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	var rank int64 = 1
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Nickname, &r.NetWorthCents); err != nil {
			return nil, err
		}
		r.Rank = rank
		rank++
		out = append(out, r)
	}
	return out, rows.Err()
}
