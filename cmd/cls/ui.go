package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"coinclass/internal/game"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	danger  = color.New(color.FgRed)
	neutral = color.New(color.FgWhite)

	stdin = bufio.NewReader(os.Stdin)
)

func printSuccess(msg string) { success.Println(msg) }
func printWarn(msg string)    { warn.Println(msg) }
func printInfo(msg string)    { neutral.Println(msg) }

func promptLine(label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptRequired(label string) (string, error) {
	for {
		v, err := promptLine(label)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		printWarn("Value is required.")
	}
}

func promptOptional(label string) (string, error) {
	return promptLine(label)
}

func promptChoice(label string, options []string, fallback string) (string, error) {
	v, err := promptLine(fmt.Sprintf("%s [%s, default %s]", label, strings.Join(options, "/"), fallback))
	if err != nil {
		return "", err
	}
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return fallback, nil
	}
	for _, opt := range options {
		if v == opt {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid choice %q", v)
}

func promptFloat(label string, min float64) (float64, error) {
	raw, err := promptRequired(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if v <= min {
		return 0, fmt.Errorf("value must be greater than %v", min)
	}
	return v, nil
}

func promptInt64(label string, min int64) (int64, error) {
	raw, err := promptRequired(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if v < min {
		return 0, fmt.Errorf("value must be at least %d", min)
	}
	return v, nil
}

func promptSymbol(label string) (string, error) {
	raw, err := promptRequired(label)
	if err != nil {
		return "", err
	}
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if err := game.ValidateSymbol(symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

// decodeInto round-trips a loosely decoded API payload into a typed view.
func decodeInto[T any](raw any) (T, error) {
	var out T
	body, err := json.Marshal(raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, err
	}
	return out, nil
}

func formatCents(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%s.%02d", sign, comma(v/100), v%100)
}

func signedCents(v int64) string {
	if v > 0 {
		return "+" + formatCents(v)
	}
	return formatCents(v)
}

func colorizeCents(v int64) string {
	switch {
	case v > 0:
		return success.Sprint(signedCents(v))
	case v < 0:
		return danger.Sprint(signedCents(v))
	default:
		return neutral.Sprint(formatCents(v))
	}
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func rarityLabel(rarity string) string {
	switch rarity {
	case "legendary":
		return danger.Sprint(rarity)
	case "epic":
		return accent.Sprint(rarity)
	case "rare":
		return success.Sprint(rarity)
	case "":
		return "-"
	default:
		return neutral.Sprint(rarity)
	}
}

func renderDashboard(raw map[string]any) error {
	dash, err := decodeInto[game.Dashboard](raw)
	if err != nil {
		return err
	}
	accent.Printf("%s", dash.Account.Nickname)
	if dash.Account.Title != "" {
		fmt.Printf("  [%s]", dash.Account.Title)
	}
	fmt.Printf("  (%s)\n", dash.Account.Role)
	fmt.Printf("Balance:   %s\n", formatCents(dash.Account.BalanceCents))
	fmt.Printf("Net worth: %s\n", formatCents(dash.Account.NetWorthCents))
	if dash.Account.ResidenceID != "" {
		owned := "renting"
		if dash.Account.ResidenceOwned {
			owned = "owned"
		}
		fmt.Printf("Home:      %s (%s)\n", dash.Account.ResidenceID, owned)
	}

	if len(dash.Positions) > 0 {
		fmt.Println()
		accent.Println("Positions")
		fmt.Printf("%-8s %8s %12s %12s %14s\n", "SYMBOL", "QTY", "AVG COST", "PRICE", "VALUE")
		for _, p := range dash.Positions {
			fmt.Printf("%-8s %8d %12s %12s %14s\n",
				p.Symbol, p.Quantity,
				formatCents(p.AvgCostCents),
				formatCents(p.CurrentPriceCents),
				formatCents(p.MarketValueCents))
		}
	}

	if len(dash.Inventory) > 0 {
		fmt.Println()
		accent.Println("Inventory")
		renderInventoryRows(dash.Inventory)
	}

	if dash.Estate.PlotsCount > 0 {
		fmt.Println()
		accent.Println("Estate")
		fmt.Printf("Plots: %d  Value: %s  Daily income: %s\n",
			dash.Estate.PlotsCount,
			formatCents(dash.Estate.EstValueCents),
			colorizeCents(dash.Estate.DailyIncomeCents))
	}
	return nil
}

func renderInventoryRows(items []game.InventoryEntry) {
	fmt.Printf("%-38s %-22s %-12s %-10s %10s %s\n", "ID", "NAME", "TYPE", "RARITY", "VALUE", "EQ")
	for _, it := range items {
		eq := ""
		if it.Equipped {
			eq = success.Sprint("*")
		}
		fmt.Printf("%-38s %-22s %-12s %-10s %10s %s\n",
			it.ID, truncate(it.Icon+" "+it.Name, 22), it.Type,
			rarityLabel(it.Rarity), formatCents(it.ValueCents), eq)
	}
}

func renderInventory(raw map[string]any) error {
	items, err := decodeInto[[]game.InventoryEntry](raw["items"])
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printInfo("Inventory is empty.")
		return nil
	}
	renderInventoryRows(items)
	return nil
}

func renderStocksList(raw map[string]any) error {
	stocks, err := decodeInto[[]game.StockView](raw["stocks"])
	if err != nil {
		return err
	}
	if len(stocks) == 0 {
		printInfo("No stocks listed yet.")
		return nil
	}
	fmt.Printf("%-8s %-24s %12s\n", "SYMBOL", "NAME", "PRICE")
	for _, st := range stocks {
		fmt.Printf("%-8s %-24s %12s\n", st.Symbol, truncate(st.DisplayName, 24), formatCents(st.PriceCents))
	}
	return nil
}

func renderStockDetail(raw map[string]any) error {
	st, err := decodeInto[game.StockView](raw)
	if err != nil {
		return err
	}
	accent.Printf("%s  %s\n", st.Symbol, st.DisplayName)
	fmt.Printf("Price:   %s\n", formatCents(st.PriceCents))
	fmt.Printf("Updated: %s\n", st.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func renderTradeResult(raw map[string]any) error {
	out, err := decodeInto[game.TradeResult](raw)
	if err != nil {
		return err
	}
	verb := "Bought"
	if out.Side == "sell" {
		verb = "Sold"
	}
	printSuccess(fmt.Sprintf("%s %d %s @ %s (fee %s, total %s)",
		verb, out.Quantity, out.Symbol,
		formatCents(out.PriceCents), formatCents(out.FeeCents), formatCents(out.TotalCents)))
	fmt.Printf("Balance: %s\n", formatCents(out.BalanceCents))
	if out.BonusItem != nil {
		accent.Printf("Bonus drop: %s %s (%s)\n", out.BonusItem.Icon, out.BonusItem.Name, out.BonusItem.Rarity)
	}
	return nil
}

func renderShopCatalog(raw map[string]any) error {
	type shopItem struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Type       string `json:"type"`
		Icon       string `json:"icon"`
		PriceCents int64  `json:"price_cents"`
	}
	items, err := decodeInto[[]shopItem](raw["items"])
	if err != nil {
		return err
	}
	fmt.Printf("%-20s %-24s %-12s %12s\n", "ID", "NAME", "TYPE", "PRICE")
	for _, it := range items {
		fmt.Printf("%-20s %-24s %-12s %12s\n",
			it.ID, truncate(it.Icon+" "+it.Name, 24), it.Type, formatCents(it.PriceCents))
	}
	return nil
}

func renderShopBuyResult(raw map[string]any) error {
	out, err := decodeInto[game.ShopBuyResult](raw)
	if err != nil {
		return err
	}
	label := out.Entry.Name
	if out.Entry.Rarity != "" {
		label += " (" + out.Entry.Rarity + ")"
	}
	printSuccess(fmt.Sprintf("Purchased %s %s.", out.Entry.Icon, label))
	fmt.Printf("Balance: %s\n", formatCents(out.BalanceCents))
	return nil
}

func renderSellResult(raw map[string]any) error {
	out, err := decodeInto[game.SellItemResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Sold for %s.", formatCents(out.ValueCents)))
	fmt.Printf("Balance: %s\n", formatCents(out.BalanceCents))
	return nil
}

func renderLessonsList(raw map[string]any) error {
	lessons, err := decodeInto[[]game.LessonView](raw["lessons"])
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		printInfo("No lessons available.")
		return nil
	}
	fmt.Printf("%-4s %-36s %12s %s\n", "ID", "TITLE", "REWARD", "STATUS")
	for _, l := range lessons {
		status := neutral.Sprint("open")
		if l.Completed {
			status = success.Sprint("done")
		}
		fmt.Printf("%-4d %-36s %12s %s\n", l.ID, truncate(l.Title, 36), formatCents(l.RewardCents), status)
	}
	return nil
}

// runQuiz walks the chosen lesson's questions interactively and collects
// answers in the shape the API grades.
func runQuiz(listing map[string]any, lessonID int64) ([]map[string]any, error) {
	lessons, err := decodeInto[[]game.LessonView](listing["lessons"])
	if err != nil {
		return nil, err
	}
	var lesson *game.LessonView
	for i := range lessons {
		if lessons[i].ID == lessonID {
			lesson = &lessons[i]
			break
		}
	}
	if lesson == nil {
		return nil, fmt.Errorf("lesson %d not found", lessonID)
	}
	if lesson.Completed {
		return nil, fmt.Errorf("lesson %d already completed", lessonID)
	}

	accent.Printf("%s  (reward %s)\n", lesson.Title, formatCents(lesson.RewardCents))
	answers := make([]map[string]any, 0, len(lesson.Questions))
	for i, q := range lesson.Questions {
		fmt.Println()
		fmt.Printf("Q%d: %s\n", i+1, q.Prompt)
		switch q.Type {
		case "choice":
			for j, opt := range q.Options {
				fmt.Printf("  %d) %s\n", j+1, opt)
			}
			pick, err := promptInt64("Answer number", 1)
			if err != nil {
				return nil, err
			}
			if pick > int64(len(q.Options)) {
				return nil, fmt.Errorf("answer out of range")
			}
			answers = append(answers, map[string]any{"choice": pick - 1})
		case "order":
			shuffled := append([]string(nil), q.Sequence...)
			sort.Strings(shuffled)
			for j, step := range shuffled {
				fmt.Printf("  %d) %s\n", j+1, step)
			}
			raw, err := promptRequired("Order (e.g. 2,1,3)")
			if err != nil {
				return nil, err
			}
			parts := strings.Split(raw, ",")
			if len(parts) != len(shuffled) {
				return nil, fmt.Errorf("expected %d positions", len(shuffled))
			}
			seq := make([]string, 0, len(parts))
			for _, p := range parts {
				idx, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil || idx < 1 || idx > len(shuffled) {
					return nil, fmt.Errorf("invalid position %q", p)
				}
				seq = append(seq, shuffled[idx-1])
			}
			answers = append(answers, map[string]any{"sequence": seq})
		default:
			return nil, fmt.Errorf("unsupported question type %q", q.Type)
		}
	}
	return answers, nil
}

func renderLessonResult(raw map[string]any) error {
	out, err := decodeInto[game.CompleteLessonResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Lesson complete! Reward %s.", formatCents(out.RewardCents)))
	fmt.Printf("Balance: %s\n", formatCents(out.BalanceCents))
	if out.BonusItem != nil {
		accent.Printf("Bonus drop: %s %s (%s)\n", out.BonusItem.Icon, out.BonusItem.Name, out.BonusItem.Rarity)
	}
	return nil
}

func renderWorldMap(raw map[string]any) error {
	plots, err := decodeInto[[]game.PlotView](raw["plots"])
	if err != nil {
		return err
	}
	const size = 20
	grid := make(map[[2]int]game.PlotView, len(plots))
	for _, p := range plots {
		grid[[2]int{p.X, p.Y}] = p
	}
	for y := 0; y < size; y++ {
		var row strings.Builder
		for x := 0; x < size; x++ {
			p, ok := grid[[2]int{x, y}]
			switch {
			case !ok:
				row.WriteString(neutral.Sprint(". "))
			case p.BuildingID != "":
				row.WriteString(accent.Sprint("# "))
			default:
				row.WriteString(success.Sprint("o "))
			}
		}
		fmt.Println(row.String())
	}
	fmt.Println()
	if len(plots) > 0 {
		fmt.Printf("%-6s %-16s %-16s %12s\n", "X,Y", "OWNER", "BUILDING", "PAID")
		for _, p := range plots {
			building := p.BuildingID
			if building == "" {
				building = "-"
			}
			fmt.Printf("%-6s %-16s %-16s %12s\n",
				fmt.Sprintf("%d,%d", p.X, p.Y), truncate(p.OwnerName, 16), building, formatCents(p.PricePaidCents))
		}
	}
	return nil
}

func renderHousing(raw map[string]any) error {
	type house struct {
		ID         string `json:"ID"`
		Name       string `json:"Name"`
		RentCents  int64  `json:"RentCents"`
		PriceCents int64  `json:"PriceCents"`
		Icon       string `json:"Icon"`
		Desc       string `json:"Desc"`
	}
	houses, err := decodeInto[[]house](raw["houses"])
	if err != nil {
		return err
	}
	fmt.Printf("%-12s %-22s %12s %14s %s\n", "ID", "NAME", "RENT/DAY", "BUY PRICE", "NOTES")
	for _, h := range houses {
		fmt.Printf("%-12s %-22s %12s %14s %s\n",
			h.ID, truncate(h.Icon+" "+h.Name, 22),
			formatCents(h.RentCents), formatCents(h.PriceCents), h.Desc)
	}
	return nil
}

func renderLandPurchase(raw map[string]any) error {
	out, err := decodeInto[game.BuyLandResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Bought plot (%d,%d) for %s.", out.Plot.X, out.Plot.Y, formatCents(out.PriceCents)))
	fmt.Printf("Balance: %s\n", formatCents(out.BalanceCents))
	return nil
}

func renderVisitResult(raw map[string]any) error {
	out, err := decodeInto[game.VisitResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Visit paid: %s to the owner.", formatCents(out.FeeCents)))
	fmt.Printf("Balance: %s\n", formatCents(out.BalanceCents))
	return nil
}

func renderListings(raw map[string]any) error {
	listings, err := decodeInto[[]game.ListingView](raw["listings"])
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		printInfo("No open listings.")
		return nil
	}
	fmt.Printf("%-38s %-16s %-22s %-10s %12s\n", "ID", "SELLER", "ITEM", "RARITY", "PRICE")
	for _, l := range listings {
		fmt.Printf("%-38s %-16s %-22s %-10s %12s\n",
			l.ID, truncate(l.SellerName, 16),
			truncate(l.Item.Icon+" "+l.Item.Name, 22),
			rarityLabel(l.Item.Rarity), formatCents(l.PriceCents))
	}
	return nil
}

func renderListingCreated(raw map[string]any) error {
	out, err := decodeInto[game.ListingView](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Listed %s for %s.", out.Item.Name, formatCents(out.PriceCents)))
	fmt.Printf("Listing ID: %s\n", out.ID)
	return nil
}

func renderListingBought(raw map[string]any) error {
	out, err := decodeInto[game.ListingView](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Bought %s %s for %s.", out.Item.Icon, out.Item.Name, formatCents(out.PriceCents)))
	return nil
}

func renderSubmissions(raw map[string]any) error {
	subs, err := decodeInto[[]game.CoinSubmission](raw["submissions"])
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		printInfo("No coin submissions.")
		return nil
	}
	fmt.Printf("%-6s %-16s %8s %-10s %-20s %s\n", "ID", "STUDENT", "COINS", "STATUS", "SUBMITTED", "NOTE")
	for _, sub := range subs {
		status := neutral.Sprint(sub.Status)
		switch sub.Status {
		case "approved":
			status = success.Sprint(sub.Status)
		case "rejected":
			status = danger.Sprint(sub.Status)
		case "pending":
			status = warn.Sprint(sub.Status)
		}
		fmt.Printf("%-6d %-16s %8d %-10s %-20s %s\n",
			sub.ID, truncate(sub.Nickname, 16), sub.Amount, status,
			sub.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(sub.Note, 30))
	}
	return nil
}

func renderClassGoal(raw map[string]any) error {
	goal, err := decodeInto[game.ClassGoal](raw)
	if err != nil {
		return err
	}
	pct := 0.0
	if goal.TargetCoins > 0 {
		pct = float64(goal.CurrentCoins) / float64(goal.TargetCoins) * 100
		if pct > 100 {
			pct = 100
		}
	}
	const width = 30
	filled := int(pct / 100 * width)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
	accent.Println("Class goal")
	fmt.Printf("[%s] %d / %d coins (%.0f%%)\n", bar, goal.CurrentCoins, goal.TargetCoins, pct)
	if goal.CurrentCoins >= goal.TargetCoins {
		printSuccess("Goal reached!")
	}
	return nil
}

func renderLeaderboard(raw map[string]any) error {
	rows, err := decodeInto[[]game.LeaderboardRow](raw["rows"])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		printInfo("Leaderboard is empty.")
		return nil
	}
	fmt.Printf("%-5s %-20s %14s\n", "RANK", "STUDENT", "NET WORTH")
	for _, row := range rows {
		fmt.Printf("%-5d %-20s %14s\n", row.Rank, truncate(row.Nickname, 20), formatCents(row.NetWorthCents))
	}
	return nil
}

// renderSyncResults prints per-command outcomes and returns how many
// queue entries settled (applied or skipped as duplicates). A failed
// command stops replay server-side, so everything before it settled.
func renderSyncResults(raw map[string]any) int {
	results, err := decodeInto[[]game.ReplayResult](raw["results"])
	if err != nil {
		printWarn("Could not decode sync results: " + err.Error())
		return 0
	}
	settled := 0
	for _, res := range results {
		switch {
		case res.Skipped:
			printInfo(fmt.Sprintf("%s: already applied, skipped", res.Type))
			settled++
		case res.OK:
			printSuccess(fmt.Sprintf("%s: replayed", res.Type))
			settled++
		default:
			printWarn(fmt.Sprintf("%s: failed (%s), kept in queue", res.Type, res.Error))
			return settled
		}
	}
	return settled
}
