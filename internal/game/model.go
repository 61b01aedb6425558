package game

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	CentsPerDollar = int64(100)

	StarterBalanceCents = int64(1_000) * CentsPerDollar
	TradeFeeCents       = int64(2) * CentsPerDollar

	LandBasePriceCents      = int64(500) * CentsPerDollar
	LandPriceIncrementCents = int64(50) * CentsPerDollar

	// TradeLootChance is the per-trade probability of a bonus item.
	TradeLootChance = 0.05

	// MaxEquippedDecorations caps how many decoration instances an
	// account can display at once.
	MaxEquippedDecorations = 6

	ClassGoalTarget = int64(300)
)

var (
	ErrInvalidSymbol        = errors.New("symbol must be 1-6 uppercase letters")
	ErrStockNotFound        = errors.New("stock not found")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientShares   = errors.New("insufficient shares")
	ErrItemNotFound         = errors.New("item not found in inventory")
	ErrItemNotOwned         = errors.New("item not owned by this account")
	ErrUnknownCatalogItem   = errors.New("unknown catalog item")
	ErrAlreadyOwned         = errors.New("item already owned")
	ErrEquipSlotsFull       = errors.New("all decoration slots are in use")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrLessonAlreadyDone    = errors.New("lesson already completed")
	ErrQuizFailed           = errors.New("quiz answers incorrect")
	ErrListingNotFound      = errors.New("listing already sold")
	ErrOwnListing           = errors.New("cannot buy your own listing")
	ErrPlotTaken            = errors.New("plot already taken")
	ErrPlotNotOwned         = errors.New("plot not owned by this account")
	ErrUnknownBuilding      = errors.New("unknown building")
	ErrUnknownHouse         = errors.New("unknown residence tier")
	ErrNotCommercial        = errors.New("building does not accept visitors")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionSettled    = errors.New("submission already reviewed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrGuestRestricted      = errors.New("guest accounts cannot do this")
	ErrTxConflict           = errors.New("transaction conflict, retry later")
)

var symbolRE = regexp.MustCompile(`^[A-Z]{1,6}$`)

func ValidateSymbol(symbol string) error {
	if !symbolRE.MatchString(strings.TrimSpace(symbol)) {
		return ErrInvalidSymbol
	}
	return nil
}

func DollarsToCents(v float64) int64 {
	return int64(math.Round(v * float64(CentsPerDollar)))
}

func CentsToDollars(v int64) float64 {
	return float64(v) / float64(CentsPerDollar)
}

// LandPriceCents is the global step pricing: base plus one increment
// per plot already sold anywhere on the map.
func LandPriceCents(soldPlots int64) int64 {
	return LandBasePriceCents + soldPlots*LandPriceIncrementCents
}

// BuyTotalCents is shares x price plus the flat trade fee.
func BuyTotalCents(quantity, priceCents int64) int64 {
	return quantity*priceCents + TradeFeeCents
}

// SellProceedsCents is shares x price minus the flat trade fee.
func SellProceedsCents(quantity, priceCents int64) int64 {
	return quantity*priceCents - TradeFeeCents
}

// tradeDeltas returns the wallet balance change and the fee-exclusive
// notional for one trade. The ledger wallet row carries the notional
// and the fees row carries the fee separately, so the user-side rows of
// a trade group always sum to the balance change.
func tradeDeltas(side string, quantity, priceCents int64) (balanceDelta, notionalDelta int64) {
	notional := quantity * priceCents
	if side == "buy" {
		return -BuyTotalCents(quantity, priceCents), -notional
	}
	return SellProceedsCents(quantity, priceCents), notional
}

var blockedNameFragments = []string{
	"admin",
	"teacher",
	"mod",
	"shit",
	"fuck",
	"bitch",
	"nazi",
}

func sanitizeNickname(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "student"
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == ' ' {
			out = append(out, r)
		}
	}
	res := strings.TrimSpace(string(out))
	if len(res) < 2 {
		res = "student"
	}
	if len(res) > 32 {
		res = res[:32]
	}
	return res
}

func validateNickname(name string) error {
	clean := strings.ToLower(strings.TrimSpace(name))
	if clean == "" {
		return fmt.Errorf("nickname is required")
	}
	for _, fragment := range blockedNameFragments {
		if strings.Contains(clean, fragment) {
			return fmt.Errorf("nickname contains blocked content")
		}
	}
	return nil
}

func nicknameFromEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	parts := strings.Split(email, "@")
	if len(parts) == 0 || parts[0] == "" {
		return "student"
	}
	return sanitizeNickname(parts[0])
}
