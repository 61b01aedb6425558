package game

import (
	"testing"
	"time"
)

func TestValidateSymbol(t *testing.T) {
	valid := []string{"A", "ACORN", "SCHOLR"}
	for _, s := range valid {
		if err := ValidateSymbol(s); err != nil {
			t.Fatalf("expected symbol %q to be valid: %v", s, err)
		}
	}

	invalid := []string{"", "acorn", "TOOLONGX", "ABC12", "A B"}
	for _, s := range invalid {
		if err := ValidateSymbol(s); err == nil {
			t.Fatalf("expected symbol %q to fail", s)
		}
	}
}

func TestBuyTotalCents(t *testing.T) {
	// 10 shares at $4.98 plus the $2 flat fee.
	if got := BuyTotalCents(10, 498); got != 5180 {
		t.Fatalf("got %d want 5180", got)
	}
	if got := BuyTotalCents(1, 100); got != 300 {
		t.Fatalf("got %d want 300", got)
	}
}

func TestSellProceedsCents(t *testing.T) {
	if got := SellProceedsCents(10, 5040); got != 50200 {
		t.Fatalf("got %d want 50200", got)
	}
	// Proceeds can dip below zero for tiny sales; callers reject those.
	if got := SellProceedsCents(1, 100); got != -100 {
		t.Fatalf("got %d want -100", got)
	}
}

func TestTradeDeltas(t *testing.T) {
	// Buy 10 shares at $50.00: wallet moves -50200, the ledger splits it
	// into a -50000 notional row plus the -200 fee row.
	balance, notional := tradeDeltas("buy", 10, 5000)
	if balance != -50200 || notional != -50000 {
		t.Fatalf("buy deltas balance=%d notional=%d", balance, notional)
	}
	balance, notional = tradeDeltas("sell", 10, 5000)
	if balance != 49800 || notional != 50000 {
		t.Fatalf("sell deltas balance=%d notional=%d", balance, notional)
	}

	// The wallet and fees rows of a trade group must sum to the balance
	// change on both sides.
	for _, side := range []string{"buy", "sell"} {
		balance, notional := tradeDeltas(side, 7, 1234)
		if notional-TradeFeeCents != balance {
			t.Fatalf("%s ledger rows sum to %d, balance moved %d", side, notional-TradeFeeCents, balance)
		}
	}
}

func TestLandPriceCents(t *testing.T) {
	if got := LandPriceCents(0); got != 50000 {
		t.Fatalf("first plot got %d want 50000", got)
	}
	if got := LandPriceCents(12); got != 110000 {
		t.Fatalf("thirteenth plot got %d want 110000", got)
	}
}

func TestCostBasis(t *testing.T) {
	log := []TradeLogEntry{
		{Symbol: "ACORN", Side: "buy", Quantity: 10, PriceCents: 1000, FeeCents: TradeFeeCents},
		{Symbol: "ACORN", Side: "buy", Quantity: 10, PriceCents: 2000, FeeCents: TradeFeeCents},
		{Symbol: "ACORN", Side: "sell", Quantity: 5, PriceCents: 3000, FeeCents: TradeFeeCents},
		{Symbol: "LUNCH", Side: "buy", Quantity: 3, PriceCents: 4000, FeeCents: TradeFeeCents},
	}
	basis := CostBasis(log)

	acorn := basis["ACORN"]
	if acorn.Quantity != 15 {
		t.Fatalf("acorn quantity %d want 15", acorn.Quantity)
	}
	// 30400 total cost across 20 shares, avg 1520, minus 5 sold at avg.
	if want := int64(30400 - 5*1520); acorn.TotalCostCents != want {
		t.Fatalf("acorn cost %d want %d", acorn.TotalCostCents, want)
	}

	lunch := basis["LUNCH"]
	if lunch.Quantity != 3 || lunch.TotalCostCents != 3*4000+TradeFeeCents {
		t.Fatalf("lunch lot %+v", lunch)
	}
}

func TestCostBasisFullExitResets(t *testing.T) {
	log := []TradeLogEntry{
		{Symbol: "GLOBE", Side: "buy", Quantity: 4, PriceCents: 1000, FeeCents: TradeFeeCents},
		{Symbol: "GLOBE", Side: "sell", Quantity: 4, PriceCents: 5000, FeeCents: TradeFeeCents},
		{Symbol: "GLOBE", Side: "buy", Quantity: 2, PriceCents: 9000, FeeCents: TradeFeeCents},
	}
	basis := CostBasis(log)
	globe := basis["GLOBE"]
	if globe.Quantity != 2 {
		t.Fatalf("quantity %d want 2", globe.Quantity)
	}
	if globe.TotalCostCents != 2*9000+TradeFeeCents {
		t.Fatalf("cost %d: earlier round trip must not leak into the new lot", globe.TotalCostCents)
	}
}

func TestGradeQuiz(t *testing.T) {
	questions := []QuizQuestion{
		{Type: "choice", Prompt: "q1", Options: []string{"a", "b"}, Answer: 1},
		{Type: "order", Prompt: "q2", Sequence: []string{"first", "second", "third"}},
	}

	good := []QuizAnswer{
		{Choice: 1},
		{Sequence: []string{"first", "second", "third"}},
	}
	if !gradeQuiz(questions, good) {
		t.Fatalf("correct answers should pass")
	}

	wrongChoice := []QuizAnswer{
		{Choice: 0},
		{Sequence: []string{"first", "second", "third"}},
	}
	if gradeQuiz(questions, wrongChoice) {
		t.Fatalf("one wrong choice must fail the whole quiz")
	}

	wrongOrder := []QuizAnswer{
		{Choice: 1},
		{Sequence: []string{"second", "first", "third"}},
	}
	if gradeQuiz(questions, wrongOrder) {
		t.Fatalf("scrambled sequence must fail")
	}

	if gradeQuiz(questions, good[:1]) {
		t.Fatalf("missing answers must fail")
	}
}

func TestElapsedDays(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed time.Duration
		want    int64
	}{
		{0, 0},
		{23 * time.Hour, 0},
		{24 * time.Hour, 1},
		{47 * time.Hour, 1},
		{72 * time.Hour, 3},
	}
	for _, tc := range tests {
		if got := elapsedDays(base, base.Add(tc.elapsed)); got != tc.want {
			t.Fatalf("elapsed=%s got=%d want=%d", tc.elapsed, got, tc.want)
		}
	}
	if got := elapsedDays(base, base.Add(-time.Hour)); got != 0 {
		t.Fatalf("clock going backwards must accrue nothing, got %d", got)
	}
}

func TestSanitizeNickname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ada Lovelace  ", "Ada Lovelace"},
		{"x", "student"},
		{"", "student"},
	}
	for _, tc := range tests {
		if got := sanitizeNickname(tc.in); got != tc.want {
			t.Fatalf("sanitize(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
	long := sanitizeNickname("abcdefghijklmnopqrstuvwxyz0123456789")
	if len(long) != 32 {
		t.Fatalf("long nickname not truncated: %q", long)
	}
}

func TestValidateNickname(t *testing.T) {
	if err := validateNickname("Ada"); err != nil {
		t.Fatalf("expected valid nickname: %v", err)
	}
	for _, bad := range []string{"", "the admin", "TeacherPet"} {
		if err := validateNickname(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestNicknameFromEmail(t *testing.T) {
	if got := nicknameFromEmail("Sam.Jones@school.edu"); got != "samjones" {
		t.Fatalf("got %q", got)
	}
	if got := nicknameFromEmail("@school.edu"); got != "student" {
		t.Fatalf("got %q", got)
	}
}

func TestVolatilityParams(t *testing.T) {
	calm := volatilityParams("calm")
	wild := volatilityParams("WILD ")
	normal := volatilityParams("anything")
	if !(calm.NoiseScale < normal.NoiseScale && normal.NoiseScale < wild.NoiseScale) {
		t.Fatalf("noise scales not ordered: %v %v %v", calm.NoiseScale, normal.NoiseScale, wild.NoiseScale)
	}
}

func TestEvolvePriceBoundsDownside(t *testing.T) {
	next := evolvePrice(10000, -50, 1.2)
	if next <= 0 {
		t.Fatalf("price must stay positive, got %d", next)
	}
	floor := evolvePrice(10000, -1.2, 1.2)
	if next != floor {
		t.Fatalf("drop should be capped at the per-tick limit: %d vs %d", next, floor)
	}
}
