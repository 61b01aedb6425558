package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ReplayResult reports the outcome of one queued offline command.
type ReplayResult struct {
	Type    string `json:"type"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// ReplaySync applies queued offline commands in order. Each command
// carries the idempotency key minted when it was queued, so a command
// that already reached the server is skipped rather than doubled.
// Failures stop the replay; the client keeps the unapplied tail queued.
func (s *Service) ReplaySync(ctx context.Context, userID string, commands []map[string]any) ([]ReplayResult, error) {
	results := make([]ReplayResult, 0, len(commands))
	for _, cmd := range commands {
		typ, _ := cmd["type"].(string)
		key, _ := cmd["idempotency_key"].(string)
		if strings.TrimSpace(key) == "" {
			return results, fmt.Errorf("command %q is missing its idempotency key", typ)
		}
		err := s.replayOne(ctx, userID, typ, key, cmd)
		if errors.Is(err, ErrDuplicateIdempotency) {
			results = append(results, ReplayResult{Type: typ, OK: true, Skipped: true})
			continue
		}
		if err != nil {
			results = append(results, ReplayResult{Type: typ, Error: err.Error()})
			return results, nil
		}
		results = append(results, ReplayResult{Type: typ, OK: true})
	}
	return results, nil
}

func (s *Service) replayOne(ctx context.Context, userID, typ, key string, cmd map[string]any) error {
	switch typ {
	case "trade":
		_, err := s.Trade(ctx, TradeInput{
			UserID:         userID,
			Symbol:         stringField(cmd, "symbol"),
			Side:           stringField(cmd, "side"),
			Quantity:       intField(cmd, "quantity"),
			IdempotencyKey: key,
		})
		return err
	case "shop_buy":
		_, err := s.BuyShopItem(ctx, ShopBuyInput{
			UserID:         userID,
			ItemID:         stringField(cmd, "item_id"),
			IdempotencyKey: key,
		})
		return err
	case "sell_item":
		_, err := s.SellItem(ctx, userID, stringField(cmd, "item_id"), key)
		return err
	case "lesson":
		raw, err := json.Marshal(cmd["answers"])
		if err != nil {
			return err
		}
		var answers []QuizAnswer
		if err := json.Unmarshal(raw, &answers); err != nil {
			return err
		}
		_, err = s.CompleteLesson(ctx, CompleteLessonInput{
			UserID:         userID,
			LessonID:       intField(cmd, "lesson_id"),
			Answers:        answers,
			IdempotencyKey: key,
		})
		return err
	case "coins_submit":
		_, err := s.SubmitCoins(ctx, userID, intField(cmd, "amount"), stringField(cmd, "note"))
		return err
	default:
		return fmt.Errorf("unknown command type %q", typ)
	}
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func intField(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}
