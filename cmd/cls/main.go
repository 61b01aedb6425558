package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "coinclass/internal/cli"
	"coinclass/internal/config"
	"coinclass/internal/game"
	"coinclass/internal/syncq"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "cls",
		Short:        "Classroom economy CLI client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newSignupCmd(&apiBase),
		newLoginCmd(&apiBase),
		newLogoutCmd(),
		newDashCmd(&apiBase),
		newSyncCmd(&apiBase),
		newStocksCmd(&apiBase),
		newShopCmd(&apiBase),
		newInvCmd(&apiBase),
		newLessonsCmd(&apiBase),
		newLandCmd(&apiBase),
		newHomeCmd(&apiBase),
		newMarketCmd(&apiBase),
		newCoinsCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
		newAdminCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requireSession() (cl.Session, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return cl.Session{}, fmt.Errorf("login required: %w", err)
	}
	return sess, nil
}

func newSignupCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a classroom account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptRequired("Password")
			if err != nil {
				return err
			}
			nickname, err := promptOptional("Nickname (optional)")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Signup(ctx, email, password, nickname)
			if err != nil {
				return err
			}
			if strings.TrimSpace(session.AccessToken) == "" {
				printWarn("Signup created. Verify email, then run `cls login`.")
				return nil
			}
			if err := cl.SaveSession(cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			}); err != nil {
				return err
			}
			printSuccess("Signup complete. Session saved.")
			return nil
		},
	}
}

func newLoginCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login to the classroom economy",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptRequired("Password")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			}); err != nil {
				return err
			}
			printSuccess("Login successful.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear local session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newDashCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Show your dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Dashboard(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderDashboard(out)
		},
	}
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay locally queued offline writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			commands := make([]map[string]any, 0, len(queue))
			for _, q := range queue {
				commands = append(commands, q.Payload())
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SyncReplay(ctx, sess.AccessToken, commands)
			if err != nil {
				return err
			}
			applied := renderSyncResults(out)
			if err := syncq.Save(queue[applied:]); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d remaining=%d", applied, len(queue)-applied))
			return nil
		},
	}
}

func newStocksCmd(apiBase *string) *cobra.Command {
	stocks := &cobra.Command{
		Use:     "stocks",
		Short:   "Stock market commands",
		Aliases: []string{"stock"},
	}
	stocks.AddCommand(&cobra.Command{
		Use:   "list [SYMBOL]",
		Short: "List stocks or inspect one stock",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			if len(args) == 0 {
				out, err := client.ListStocks(ctx, sess.AccessToken)
				if err != nil {
					return err
				}
				return renderStocksList(out)
			}
			out, err := client.StockDetail(ctx, sess.AccessToken, strings.ToUpper(strings.TrimSpace(args[0])))
			if err != nil {
				return err
			}
			return renderStockDetail(out)
		},
	})
	stocks.AddCommand(newTradeCmd(apiBase, "buy", "Buy shares"))
	stocks.AddCommand(newTradeCmd(apiBase, "sell", "Sell shares"))
	return stocks
}

func newTradeCmd(apiBase *string, side, short string) *cobra.Command {
	return &cobra.Command{
		Use:   side + " [symbol]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			symbol, err := symbolFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			qty, err := promptInt64("Shares to "+side, 1)
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Trade(ctx, sess.AccessToken, symbol, side, idem, qty)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Type: "trade",
					Fields: map[string]any{
						"symbol":   symbol,
						"side":     side,
						"quantity": qty,
					},
					IdempotencyKey: idem,
				})
			}
			return renderTradeResult(out)
		},
	}
}

func newShopCmd(apiBase *string) *cobra.Command {
	shop := &cobra.Command{
		Use:   "shop",
		Short: "Shop commands",
	}
	shop.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Browse the shop catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).ShopCatalog(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderShopCatalog(out)
		},
	})
	shop.AddCommand(&cobra.Command{
		Use:   "buy [item_id]",
		Short: "Buy a shop item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			itemID, err := stringFromArgsOrPrompt(args, "Item ID")
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).ShopBuy(ctx, sess.AccessToken, itemID, idem)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Type:           "shop_buy",
					Fields:         map[string]any{"item_id": itemID},
					IdempotencyKey: idem,
				})
			}
			return renderShopBuyResult(out)
		},
	})
	return shop
}

func newInvCmd(apiBase *string) *cobra.Command {
	inv := &cobra.Command{
		Use:     "inv",
		Short:   "Inventory commands",
		Aliases: []string{"inventory"},
	}
	inv.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your items",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Inventory(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderInventory(out)
		},
	})
	inv.AddCommand(&cobra.Command{
		Use:   "equip [item_id]",
		Short: "Equip an item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			itemID, err := stringFromArgsOrPrompt(args, "Item ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).EquipItem(ctx, sess.AccessToken, itemID); err != nil {
				return err
			}
			printSuccess("Equipped.")
			return nil
		},
	})
	inv.AddCommand(&cobra.Command{
		Use:   "unequip [item_id]",
		Short: "Unequip an item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			itemID, err := stringFromArgsOrPrompt(args, "Item ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).UnequipItem(ctx, sess.AccessToken, itemID); err != nil {
				return err
			}
			printSuccess("Unequipped.")
			return nil
		},
	})
	inv.AddCommand(&cobra.Command{
		Use:   "sell [item_id]",
		Short: "Sell an item back to the bank",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			itemID, err := stringFromArgsOrPrompt(args, "Item ID")
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SellItem(ctx, sess.AccessToken, itemID, idem)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Type:           "sell_item",
					Fields:         map[string]any{"item_id": itemID},
					IdempotencyKey: idem,
				})
			}
			return renderSellResult(out)
		},
	})
	return inv
}

func newLessonsCmd(apiBase *string) *cobra.Command {
	lessons := &cobra.Command{
		Use:   "lessons",
		Short: "Lesson commands",
	}
	lessons.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List lessons and completion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).ListLessons(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderLessonsList(out)
		},
	})
	lessons.AddCommand(&cobra.Command{
		Use:   "take [lesson_id]",
		Short: "Take a lesson quiz",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			lessonID, err := int64FromArgOrPrompt(args, 0, "Lesson ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
			defer cancel()
			client := newClient(apiBase)
			listing, err := client.ListLessons(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			answers, err := runQuiz(listing, lessonID)
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			out, err := client.CompleteLesson(ctx, sess.AccessToken, lessonID, answers, idem)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Type: "lesson",
					Fields: map[string]any{
						"lesson_id": lessonID,
						"answers":   answers,
					},
					IdempotencyKey: idem,
				})
			}
			return renderLessonResult(out)
		},
	})
	return lessons
}

func newLandCmd(apiBase *string) *cobra.Command {
	land := &cobra.Command{
		Use:   "land",
		Short: "Land and construction commands",
	}
	land.AddCommand(&cobra.Command{
		Use:   "map",
		Short: "Show the world map",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).WorldMap(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderWorldMap(out)
		},
	})
	land.AddCommand(&cobra.Command{
		Use:   "buy",
		Short: "Buy a free plot",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			x, y, err := promptCoords()
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).BuyLand(ctx, sess.AccessToken, x, y, idem)
			if err != nil {
				return err
			}
			return renderLandPurchase(out)
		},
	})
	land.AddCommand(&cobra.Command{
		Use:   "build [building_id]",
		Short: "Construct a building on your plot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			buildingID, err := stringFromArgsOrPrompt(args, "Building ID")
			if err != nil {
				return err
			}
			x, y, err := promptCoords()
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).Construct(ctx, sess.AccessToken, x, y, buildingID, idem); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Built %s at (%d,%d).", buildingID, x, y))
			return nil
		},
	})
	land.AddCommand(&cobra.Command{
		Use:   "visit",
		Short: "Visit a commercial building",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			x, y, err := promptCoords()
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Visit(ctx, sess.AccessToken, x, y, idem)
			if err != nil {
				return err
			}
			return renderVisitResult(out)
		},
	})
	return land
}

func newHomeCmd(apiBase *string) *cobra.Command {
	home := &cobra.Command{
		Use:   "home",
		Short: "Residence commands",
	}
	home.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List residence tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).HousingCatalog(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderHousing(out)
		},
	})
	home.AddCommand(&cobra.Command{
		Use:   "rent [house_id]",
		Short: "Move into a residence (daily rent applies)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			houseID, err := stringFromArgsOrPrompt(args, "House ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).HousingRent(ctx, sess.AccessToken, houseID); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Moved into %s.", houseID))
			return nil
		},
	})
	home.AddCommand(&cobra.Command{
		Use:   "buy [house_id]",
		Short: "Buy your residence outright (no more rent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			houseID, err := stringFromArgsOrPrompt(args, "House ID")
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).HousingBuy(ctx, sess.AccessToken, houseID, idem)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Bought %s. Rent stops now.", houseID))
			if balance, ok := out["balance_cents"].(float64); ok {
				fmt.Printf("Balance: %s\n", formatCents(int64(balance)))
			}
			return nil
		},
	})
	return home
}

func newMarketCmd(apiBase *string) *cobra.Command {
	market := &cobra.Command{
		Use:   "market",
		Short: "Player marketplace commands",
	}
	market.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Browse open listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).MarketBrowse(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderListings(out)
		},
	})
	market.AddCommand(&cobra.Command{
		Use:   "sell [item_id]",
		Short: "List one of your items for sale",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			itemID, err := stringFromArgsOrPrompt(args, "Item ID")
			if err != nil {
				return err
			}
			price, err := promptFloat("Asking price (dollars)", 0)
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).MarketList(ctx, sess.AccessToken, itemID, game.DollarsToCents(price), idem)
			if err != nil {
				return err
			}
			return renderListingCreated(out)
		},
	})
	market.AddCommand(&cobra.Command{
		Use:   "buy [listing_id]",
		Short: "Buy a listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			listingID, err := stringFromArgsOrPrompt(args, "Listing ID")
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).MarketBuy(ctx, sess.AccessToken, listingID, idem)
			if err != nil {
				return err
			}
			return renderListingBought(out)
		},
	})
	market.AddCommand(&cobra.Command{
		Use:   "cancel [listing_id]",
		Short: "Cancel your own listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			listingID, err := stringFromArgsOrPrompt(args, "Listing ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).MarketCancel(ctx, sess.AccessToken, listingID); err != nil {
				return err
			}
			printSuccess("Listing cancelled, item returned to your inventory.")
			return nil
		},
	})
	return market
}

func newCoinsCmd(apiBase *string) *cobra.Command {
	coins := &cobra.Command{
		Use:   "coins",
		Short: "Physical coin hand-in commands",
	}
	coins.AddCommand(&cobra.Command{
		Use:   "submit [amount]",
		Short: "Record coins handed to the teacher",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			amount, err := int64FromArgOrPrompt(args, 0, "Coin count")
			if err != nil {
				return err
			}
			note, err := promptOptional("Note (optional)")
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).CoinsSubmit(ctx, sess.AccessToken, amount, note); err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Type: "coins_submit",
					Fields: map[string]any{
						"amount": amount,
						"note":   note,
					},
					IdempotencyKey: idem,
				})
			}
			printSuccess(fmt.Sprintf("Submitted %d coins for review.", amount))
			return nil
		},
	})
	coins.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List coin submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).CoinsList(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderSubmissions(out)
		},
	})
	coins.AddCommand(&cobra.Command{
		Use:   "approve [submission_id]",
		Short: "Approve a pending submission (admin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reviewSubmission(cmd, apiBase, args, "approve")
		},
	})
	coins.AddCommand(&cobra.Command{
		Use:   "reject [submission_id]",
		Short: "Reject a pending submission (admin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reviewSubmission(cmd, apiBase, args, "reject")
		},
	})
	coins.AddCommand(&cobra.Command{
		Use:   "goal",
		Short: "Show class goal progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).ClassGoal(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderClassGoal(out)
		},
	})
	return coins
}

func reviewSubmission(cmd *cobra.Command, apiBase *string, args []string, action string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	id, err := int64FromArgOrPrompt(args, 0, "Submission ID")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	client := newClient(apiBase)
	if action == "approve" {
		_, err = client.CoinsApprove(ctx, sess.AccessToken, id)
	} else {
		_, err = client.CoinsReject(ctx, sess.AccessToken, id)
	}
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Submission %d %sd.", id, action))
	return nil
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Class leaderboard by net worth",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Leaderboard(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderLeaderboard(out)
		},
	}
}

func newAdminCmd(apiBase *string) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Teacher administration commands",
	}
	admin.AddCommand(&cobra.Command{
		Use:   "role [user_id] [guest|student|admin]",
		Short: "Set an account's role",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			userID, err := stringFromArgsOrPrompt(args, "User ID")
			if err != nil {
				return err
			}
			var role string
			if len(args) >= 2 {
				role = strings.ToLower(strings.TrimSpace(args[1]))
			} else {
				role, err = promptChoice("Role", []string{"guest", "student", "admin"}, "student")
				if err != nil {
					return err
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).SetRole(ctx, sess.AccessToken, userID, role); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Role for %s set to %s.", userID, role))
			return nil
		},
	})
	return admin
}

// queueOnNetworkError stores the command locally when the API was
// unreachable. Structured API rejections are real failures and are
// never queued.
func queueOnNetworkError(err error, cmd syncq.Command) error {
	if err == nil {
		return nil
	}
	if isAPIStructuredError(err) {
		return err
	}
	if qErr := syncq.Push(cmd); qErr != nil {
		return fmt.Errorf("request failed and could not be queued: %v (queue error: %v)", err, qErr)
	}
	printWarn("API unreachable. Command queued; run `cls sync` when back online.")
	return nil
}

func isAPIStructuredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "api status")
}

func symbolFromArgsOrPrompt(args []string) (string, error) {
	if len(args) > 0 {
		symbol := strings.ToUpper(strings.TrimSpace(args[0]))
		if err := game.ValidateSymbol(symbol); err != nil {
			return "", err
		}
		return symbol, nil
	}
	return promptSymbol("Symbol")
}

func stringFromArgsOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	return promptRequired(label)
}

func int64FromArgOrPrompt(args []string, idx int, label string) (int64, error) {
	if len(args) > idx {
		v, err := strconv.ParseInt(strings.TrimSpace(args[idx]), 10, 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	return promptInt64(label, 1)
}

func promptCoords() (int, int, error) {
	x, err := promptInt64("Plot X", 0)
	if err != nil {
		return 0, 0, err
	}
	y, err := promptInt64("Plot Y", 0)
	if err != nil {
		return 0, 0, err
	}
	return int(x), int(y), nil
}
