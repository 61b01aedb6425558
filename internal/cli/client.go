package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coinclass/internal/auth"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Signup(ctx context.Context, email, password, nickname string) (auth.Session, error) {
	var out auth.Session
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":    email,
		"password": password,
		"nickname": nickname,
	}, &out, "")
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (auth.Session, error) {
	var out auth.Session
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, &out, "")
	return out, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (auth.Session, error) {
	var out auth.Session
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/refresh", "", map[string]any{
		"refresh_token": refreshToken,
	}, &out, "")
	return out, err
}

func (c *Client) Dashboard(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/dashboard", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) Leaderboard(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/leaderboard", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) ListStocks(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stocks", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) StockDetail(ctx context.Context, accessToken, symbol string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stocks/"+url.PathEscape(symbol), accessToken, nil, &out, "")
	return out, err
}

func (c *Client) Trade(ctx context.Context, accessToken, symbol, side, idem string, quantity int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/trades", accessToken, map[string]any{
		"symbol":   symbol,
		"side":     side,
		"quantity": quantity,
	}, &out, idem)
	return out, err
}

func (c *Client) ShopCatalog(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/shop", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) ShopBuy(ctx context.Context, accessToken, itemID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/shop/buy", accessToken, map[string]any{
		"item_id": itemID,
	}, &out, idem)
	return out, err
}

func (c *Client) Inventory(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/inventory", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) EquipItem(ctx context.Context, accessToken, itemID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/inventory/"+url.PathEscape(itemID)+"/equip", accessToken, map[string]any{}, &out, "")
	return out, err
}

func (c *Client) UnequipItem(ctx context.Context, accessToken, itemID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/inventory/"+url.PathEscape(itemID)+"/unequip", accessToken, map[string]any{}, &out, "")
	return out, err
}

func (c *Client) SellItem(ctx context.Context, accessToken, itemID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/inventory/"+url.PathEscape(itemID)+"/sell", accessToken, map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) ListLessons(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/lessons", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) CompleteLesson(ctx context.Context, accessToken string, lessonID int64, answers []map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/lessons/%d/complete", lessonID), accessToken, map[string]any{
		"answers": answers,
	}, &out, idem)
	return out, err
}

func (c *Client) HousingCatalog(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/housing", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) HousingRent(ctx context.Context, accessToken, houseID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/housing/rent", accessToken, map[string]any{
		"house_id": houseID,
	}, &out, "")
	return out, err
}

func (c *Client) HousingBuy(ctx context.Context, accessToken, houseID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/housing/buy", accessToken, map[string]any{
		"house_id": houseID,
	}, &out, idem)
	return out, err
}

func (c *Client) WorldMap(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/land", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) BuyLand(ctx context.Context, accessToken string, x, y int, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/land/buy", accessToken, map[string]any{
		"x": x,
		"y": y,
	}, &out, idem)
	return out, err
}

func (c *Client) Construct(ctx context.Context, accessToken string, x, y int, buildingID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/land/construct", accessToken, map[string]any{
		"x":           x,
		"y":           y,
		"building_id": buildingID,
	}, &out, idem)
	return out, err
}

func (c *Client) Visit(ctx context.Context, accessToken string, x, y int, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/land/visit", accessToken, map[string]any{
		"x": x,
		"y": y,
	}, &out, idem)
	return out, err
}

func (c *Client) MarketBrowse(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) MarketList(ctx context.Context, accessToken, itemID string, priceCents int64, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/market", accessToken, map[string]any{
		"item_id":     itemID,
		"price_cents": priceCents,
	}, &out, idem)
	return out, err
}

func (c *Client) MarketBuy(ctx context.Context, accessToken, listingID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/market/"+url.PathEscape(listingID)+"/buy", accessToken, map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) MarketCancel(ctx context.Context, accessToken, listingID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodDelete, "/v1/market/"+url.PathEscape(listingID), accessToken, nil, &out, "")
	return out, err
}

func (c *Client) CoinsList(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/coins", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) CoinsSubmit(ctx context.Context, accessToken string, amount int64, note string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/coins", accessToken, map[string]any{
		"amount": amount,
		"note":   note,
	}, &out, "")
	return out, err
}

func (c *Client) CoinsApprove(ctx context.Context, accessToken string, submissionID int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/coins/%d/approve", submissionID), accessToken, map[string]any{}, &out, "")
	return out, err
}

func (c *Client) CoinsReject(ctx context.Context, accessToken string, submissionID int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/coins/%d/reject", submissionID), accessToken, map[string]any{}, &out, "")
	return out, err
}

func (c *Client) ClassGoal(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/class-goal", accessToken, nil, &out, "")
	return out, err
}

func (c *Client) SetRole(ctx context.Context, accessToken, userID, role string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/admin/role", accessToken, map[string]any{
		"user_id": userID,
		"role":    role,
	}, &out, "")
	return out, err
}

func (c *Client) SyncReplay(ctx context.Context, accessToken string, commands []map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sync/replay", accessToken, map[string]any{
		"commands": commands,
	}, &out, "")
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, accessToken string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
