package game

import (
	"context"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
)

type marketDynamics struct {
	NoiseScale       float64
	ShockProb        float64
	ShockScale       float64
	MeanReversion    float64
	AnchorNoiseScale float64
	RegimeSwitchProb float64
	MaxDropPerTick   float64
}

func volatilityParams(mode string) marketDynamics {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "calm":
		return marketDynamics{
			NoiseScale:       0.020,
			ShockProb:        0.05,
			ShockScale:       0.09,
			MeanReversion:    0.03,
			AnchorNoiseScale: 0.012,
			RegimeSwitchProb: 0.04,
			MaxDropPerTick:   1.20,
		}
	case "wild":
		return marketDynamics{
			NoiseScale:       0.060,
			ShockProb:        0.18,
			ShockScale:       0.20,
			MeanReversion:    0.010,
			AnchorNoiseScale: 0.038,
			RegimeSwitchProb: 0.11,
			MaxDropPerTick:   2.60,
		}
	default:
		return marketDynamics{
			NoiseScale:       0.038,
			ShockProb:        0.11,
			ShockScale:       0.14,
			MeanReversion:    0.018,
			AnchorNoiseScale: 0.022,
			RegimeSwitchProb: 0.07,
			MaxDropPerTick:   2.00,
		}
	}
}

func randomRegime(seed float64) string {
	switch {
	case seed < 0.33:
		return "bear"
	case seed < 0.66:
		return "neutral"
	default:
		return "bull"
	}
}

func regimeDrift(regime string) float64 {
	switch regime {
	case "bull":
		return 0.0085
	case "bear":
		return -0.0085
	default:
		return 0.0000
	}
}

func meanReversion(price, anchor int64, strength float64) float64 {
	if anchor <= 0 {
		return 0
	}
	return strength * (float64(anchor-price) / float64(anchor))
}

func normalish(seed float64) float64 {
	return (seed + seed - 1)
}

func signedShock(magSeed, signSeed, base float64) float64 {
	mag := base * (0.35 + 2.8*magSeed*magSeed)
	if signSeed < 0.5 {
		return -mag
	}
	return mag
}

func evolvePrice(priceCents int64, ret, maxDropPerTick float64) int64 {
	if priceCents <= 0 {
		return 1
	}
	// Bound only the downside; upside can run.
	if ret < -maxDropPerTick {
		ret = -maxDropPerTick
	}
	next := int64(math.Round(float64(priceCents) * math.Exp(ret)))
	if next < 1 {
		next = 1
	}
	return next
}

// RunMarketRefresh walks one batch of stock prices. The single cursor
// row remembers the last symbol processed and the prevailing regime, so
// a large board spreads its updates over successive ticks and a restart
// picks up where the last tick stopped.
func (s *Service) RunMarketRefresh(ctx context.Context, batchSize int, volatility string) error {
	if batchSize <= 0 {
		batchSize = 10
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	params := volatilityParams(volatility)

	var cursor, regime string
	err = tx.QueryRow(ctx, `
		SELECT last_symbol, regime FROM econ.market_cursor FOR UPDATE
	`).Scan(&cursor, &regime)
	if err == pgx.ErrNoRows {
		cursor, regime = "", "neutral"
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.market_cursor (last_symbol, regime, updated_at)
			VALUES ('', 'neutral', now())
		`); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if s.nextFloat() < params.RegimeSwitchProb {
		regime = randomRegime(s.nextFloat())
	}

	rows, err := tx.Query(ctx, `
		SELECT symbol, price_cents, anchor_price_cents
		FROM econ.stocks
		WHERE symbol > $1
		ORDER BY symbol
		LIMIT $2
		FOR UPDATE
	`, cursor, batchSize)
	if err != nil {
		return err
	}
	type row struct {
		symbol string
		price  int64
		anchor int64
	}
	var batch []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.symbol, &r.price, &r.anchor); err != nil {
			rows.Close()
			return err
		}
		batch = append(batch, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	// Wrap around once the end of the board is reached.
	if len(batch) == 0 && cursor != "" {
		cursor = ""
		rows, err = tx.Query(ctx, `
			SELECT symbol, price_cents, anchor_price_cents
			FROM econ.stocks
			ORDER BY symbol
			LIMIT $1
			FOR UPDATE
		`, batchSize)
		if err != nil {
			return err
		}
		for rows.Next() {
			var r row
			if err := rows.Scan(&r.symbol, &r.price, &r.anchor); err != nil {
				rows.Close()
				return err
			}
			batch = append(batch, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}

	const minPriceCents = int64(1)
	const maxPriceCents = int64(1_000_000_000_00)
	next := cursor
	for _, st := range batch {
		anchorRet := (0.30 * regimeDrift(regime)) + params.AnchorNoiseScale*normalish(s.nextFloat())
		nextAnchor := evolvePrice(st.anchor, anchorRet, params.MaxDropPerTick)
		if nextAnchor < minPriceCents {
			nextAnchor = minPriceCents
		}
		if nextAnchor > maxPriceCents {
			nextAnchor = maxPriceCents
		}

		ret := regimeDrift(regime) + params.NoiseScale*normalish(s.nextFloat()) + meanReversion(st.price, st.anchor, params.MeanReversion)
		if s.nextFloat() < params.ShockProb {
			ret += signedShock(s.nextFloat(), s.nextFloat(), params.ShockScale)
		}
		nextPrice := evolvePrice(st.price, ret, params.MaxDropPerTick)
		if nextPrice < minPriceCents {
			nextPrice = minPriceCents
		}
		if nextPrice > maxPriceCents {
			nextPrice = maxPriceCents
		}

		if _, err := tx.Exec(ctx, `
			UPDATE econ.stocks
			SET price_cents = $1, anchor_price_cents = $2, updated_at = now()
			WHERE symbol = $3
		`, nextPrice, nextAnchor, st.symbol); err != nil {
			return err
		}
		next = st.symbol
	}

	if _, err := tx.Exec(ctx, `
		UPDATE econ.market_cursor
		SET last_symbol = $1, regime = $2, updated_at = now()
	`, next, regime); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SeedDefaults loads the starter stock board on an empty database.
func (s *Service) SeedDefaults(ctx context.Context) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM econ.stocks`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []struct {
		Symbol string
		Name   string
		Price  int64
	}{
		{"ACORN", "Acorn Savings", 45 * CentsPerDollar},
		{"BRICK", "Brickworks Co", 80 * CentsPerDollar},
		{"CHALK", "Chalkboard Media", 32 * CentsPerDollar},
		{"CRAYON", "Crayon Industries", 25 * CentsPerDollar},
		{"DESKCO", "Deskco Furniture", 60 * CentsPerDollar},
		{"ERASER", "Eraser Cleanup", 18 * CentsPerDollar},
		{"GLOBE", "Globe Atlas Group", 95 * CentsPerDollar},
		{"LUNCH", "Lunchbox Foods", 40 * CentsPerDollar},
		{"MARKER", "Marker Labs", 55 * CentsPerDollar},
		{"PENCIL", "Pencil Works", 22 * CentsPerDollar},
		{"RECESS", "Recess Games", 70 * CentsPerDollar},
		{"RULER", "Ruler Precision", 48 * CentsPerDollar},
		{"SCHOLR", "Scholar Press", 110 * CentsPerDollar},
		{"STICKR", "Sticker Mint", 35 * CentsPerDollar},
		{"TUTOR", "Tutor Network", 125 * CentsPerDollar},
	}
	for _, st := range seed {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO econ.stocks (symbol, display_name, price_cents, anchor_price_cents, updated_at)
			VALUES ($1, $2, $3, $3, now())
			ON CONFLICT (symbol) DO NOTHING
		`, st.Symbol, st.Name, st.Price); err != nil {
			return err
		}
	}
	s.log.Info("seeded default stocks", "count", len(seed))
	return nil
}

// SeedLessons loads the starter lesson set on an empty database.
func (s *Service) SeedLessons(ctx context.Context) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM econ.lessons`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, l := range defaultLessons {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO econ.lessons (id, title, reward_cents, questions)
			VALUES ($1, $2, $3, $4::jsonb)
			ON CONFLICT (id) DO NOTHING
		`, l.id, l.title, l.rewardCents, l.questions); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO econ.class_goal (id, target_coins, current_coins)
		VALUES (1, $1, 0)
		ON CONFLICT (id) DO NOTHING
	`, ClassGoalTarget); err != nil {
		return err
	}
	s.log.Info("seeded default lessons", "count", len(defaultLessons))
	return nil
}

var defaultLessons = []struct {
	id          int64
	title       string
	rewardCents int64
	questions   string
}{
	{1, "What Is Money?", 50 * CentsPerDollar, `[
		{"type":"choice","prompt":"Which of these is money mainly used for?","options":["Eating","Trading for goods and services","Building houses","Growing plants"],"answer":1},
		{"type":"choice","prompt":"What did people do before money existed?","options":["Nothing","They bartered goods directly","They used credit cards","They printed paper"],"answer":1}
	]`},
	{2, "Saving and Spending", 75 * CentsPerDollar, `[
		{"type":"choice","prompt":"What is a budget?","options":["A type of bird","A plan for your money","A kind of coin","A bank building"],"answer":1},
		{"type":"order","prompt":"Put these steps of saving up in order","sequence":["Set a goal","Put money aside","Watch it grow","Buy what you saved for"]}
	]`},
	{3, "How Markets Work", 100 * CentsPerDollar, `[
		{"type":"choice","prompt":"When lots of people want something scarce, its price usually...","options":["Goes down","Stays the same","Goes up","Disappears"],"answer":2},
		{"type":"choice","prompt":"What do you pay when you trade shares?","options":["Nothing","A fee","A tax on food","Rent"],"answer":1},
		{"type":"order","prompt":"Order the steps of a trade","sequence":["Pick a stock","Check the price","Place the order","Own the shares"]}
	]`},
	{4, "Owning Property", 100 * CentsPerDollar, `[
		{"type":"choice","prompt":"What do you pay if you live in a home you do not own?","options":["Rent","Interest","Dividends","Wages"],"answer":0},
		{"type":"choice","prompt":"A shop that earns money every day is an example of...","options":["A liability","An expense","An income-producing asset","A debt"],"answer":2}
	]`},
}
