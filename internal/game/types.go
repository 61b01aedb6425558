package game

import (
	"time"

	"coinclass/internal/loot"
)

type Role string

const (
	RoleGuest   Role = "guest"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// InventoryEntry is the tagged variant an account holds: either a bare
// catalog reference (backgrounds, titles) or a unique generated item.
type InventoryEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"` // "simple" | "unique"
	BaseID     string    `json:"base_id"`
	Name       string    `json:"name"`
	Rarity     string    `json:"rarity,omitempty"`
	Type       string    `json:"type"`
	Icon       string    `json:"icon"`
	ValueCents int64     `json:"value_cents"`
	Equipped   bool      `json:"equipped"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	KindSimple = "simple"
	KindUnique = "unique"
)

type AccountView struct {
	UserID         string    `json:"user_id"`
	Nickname       string    `json:"nickname"`
	Role           Role      `json:"role"`
	BalanceCents   int64     `json:"balance_cents"`
	NetWorthCents  int64     `json:"net_worth_cents"`
	ResidenceID    string    `json:"residence_id,omitempty"`
	ResidenceOwned bool      `json:"residence_owned"`
	Background     string    `json:"background,omitempty"`
	Title          string    `json:"title,omitempty"`
	LastAccrualAt  time.Time `json:"last_accrual_at"`
}

type Dashboard struct {
	Account   AccountView      `json:"account"`
	Positions []PositionView   `json:"positions"`
	Inventory []InventoryEntry `json:"inventory"`
	Estate    EstateStats      `json:"estate"`
}

type PositionView struct {
	Symbol            string `json:"symbol"`
	DisplayName       string `json:"display_name"`
	Quantity          int64  `json:"quantity"`
	AvgCostCents      int64  `json:"avg_cost_cents"`
	CurrentPriceCents int64  `json:"current_price_cents"`
	MarketValueCents  int64  `json:"market_value_cents"`
}

type EstateStats struct {
	PlotsCount       int64    `json:"plots_count"`
	BuildingIDs      []string `json:"building_ids"`
	EstValueCents    int64    `json:"est_value_cents"`
	DailyIncomeCents int64    `json:"daily_income_cents"`
}

type StockView struct {
	Symbol      string    `json:"symbol"`
	DisplayName string    `json:"display_name"`
	PriceCents  int64     `json:"price_cents"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TradeInput struct {
	UserID         string
	Symbol         string
	Side           string
	Quantity       int64
	IdempotencyKey string
}

type TradeResult struct {
	Symbol       string     `json:"symbol"`
	Side         string     `json:"side"`
	Quantity     int64      `json:"quantity"`
	PriceCents   int64      `json:"price_cents"`
	FeeCents     int64      `json:"fee_cents"`
	TotalCents   int64      `json:"total_cents"`
	BalanceCents int64      `json:"balance_cents"`
	BonusItem    *loot.Item `json:"bonus_item,omitempty"`
}

// TradeLogEntry is one row of the append-only trade log the cost-basis
// replay consumes.
type TradeLogEntry struct {
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Quantity   int64     `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
	FeeCents   int64     `json:"fee_cents"`
	At         time.Time `json:"at"`
}

type QuizQuestion struct {
	Type     string   `json:"type"` // "choice" | "order"
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options,omitempty"`
	Answer   int      `json:"answer,omitempty"`
	Sequence []string `json:"sequence,omitempty"`
}

type QuizAnswer struct {
	Choice   int      `json:"choice,omitempty"`
	Sequence []string `json:"sequence,omitempty"`
}

type LessonView struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	RewardCents int64          `json:"reward_cents"`
	Questions   []QuizQuestion `json:"questions"`
	Completed   bool           `json:"completed"`
}

type CompleteLessonInput struct {
	UserID         string
	LessonID       int64
	Answers        []QuizAnswer
	IdempotencyKey string
}

type CompleteLessonResult struct {
	RewardCents  int64      `json:"reward_cents"`
	BalanceCents int64      `json:"balance_cents"`
	BonusItem    *loot.Item `json:"bonus_item,omitempty"`
}

type ShopBuyInput struct {
	UserID         string
	ItemID         string
	IdempotencyKey string
}

type ShopBuyResult struct {
	Entry        InventoryEntry `json:"entry"`
	BalanceCents int64          `json:"balance_cents"`
}

type SellItemResult struct {
	ValueCents   int64 `json:"value_cents"`
	BalanceCents int64 `json:"balance_cents"`
}

type ListingView struct {
	ID         string         `json:"id"`
	SellerID   string         `json:"seller_id"`
	SellerName string         `json:"seller_name"`
	PriceCents int64          `json:"price_cents"`
	Item       InventoryEntry `json:"item"`
	CreatedAt  time.Time      `json:"created_at"`
}

type ListItemInput struct {
	UserID         string
	ItemID         string
	PriceCents     int64
	IdempotencyKey string
}

type BuyListingInput struct {
	UserID         string
	ListingID      string
	IdempotencyKey string
}

type PlotView struct {
	X              int       `json:"x"`
	Y              int       `json:"y"`
	OwnerID        string    `json:"owner_id"`
	OwnerName      string    `json:"owner_name"`
	PricePaidCents int64     `json:"price_paid_cents"`
	BuildingID     string    `json:"building_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type BuyLandInput struct {
	UserID         string
	X              int
	Y              int
	IdempotencyKey string
}

type BuyLandResult struct {
	Plot         PlotView `json:"plot"`
	PriceCents   int64    `json:"price_cents"`
	BalanceCents int64    `json:"balance_cents"`
}

type ConstructInput struct {
	UserID         string
	X              int
	Y              int
	BuildingID     string
	IdempotencyKey string
}

type VisitInput struct {
	UserID         string
	X              int
	Y              int
	IdempotencyKey string
}

type VisitResult struct {
	FeeCents     int64  `json:"fee_cents"`
	OwnerID      string `json:"owner_id"`
	BalanceCents int64  `json:"balance_cents"`
}

type CoinSubmission struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Nickname   string    `json:"nickname"`
	Amount     int64     `json:"amount"`
	Note       string    `json:"note,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ReviewedAt time.Time `json:"reviewed_at,omitempty"`
}

type ClassGoal struct {
	TargetCoins  int64 `json:"target_coins"`
	CurrentCoins int64 `json:"current_coins"`
}

type AccrualResult struct {
	Days         int64 `json:"days"`
	RentCents    int64 `json:"rent_cents"`
	IncomeCents  int64 `json:"income_cents"`
	NetCents     int64 `json:"net_cents"`
	BalanceCents int64 `json:"balance_cents"`
}

type LeaderboardRow struct {
	Rank          int64  `json:"rank"`
	Nickname      string `json:"nickname"`
	NetWorthCents int64  `json:"net_worth_cents"`
}
