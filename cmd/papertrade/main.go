package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/calebmorris/papertrade/internal/app"
	"github.com/calebmorris/papertrade/internal/common"
	"github.com/calebmorris/papertrade/internal/models"
	"github.com/calebmorris/papertrade/internal/report"
	"github.com/calebmorris/papertrade/internal/search"
	"github.com/calebmorris/papertrade/internal/session"
	"github.com/calebmorris/papertrade/internal/trade"
)

const usage = `papertrade - simulated crypto trading client

Usage: papertrade <command> [flags]

Account:
  register              Create an account
  login                 Sign in (add -google for OAuth)
  logout                Sign out
  whoami                Show the signed-in user
  profile [user-id]     Show or update a profile
  onboarding            Complete account onboarding

Market:
  market                List market prices
  coin <id>             Show coin details
  search                Interactive coin search (-users for accounts)

Trading:
  trade <coin-id>       Buy or sell a coin
  orders                List standing orders
  cancel <order-id>     Cancel a standing order
  close <coin-id>       Close all or part of a position
  portfolio             Show the portfolio (add -chart to render PNGs)
  history               Show trade history

Social:
  friends               List friends and pending requests
  friends request|accept|reject|remove <user-id>
                        Manage friendships
  follow <user-id>      Follow a user
  unfollow <user-id>    Unfollow a user
  followers             List accounts following you
  following             List accounts you follow
  feed                  Show the activity feed
  leaderboard           Show rankings

Other:
  version               Show version information
`

func main() {
	common.LoadVersionFromFile()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a, err := app.NewApp(os.Getenv("PAPERTRADE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(ctx, a, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	switch cmd {
	case "version":
		common.PrintBanner(a.Config, a.Logger)
		fmt.Println(common.GetFullVersion())
		return nil
	case "register":
		return cmdRegister(ctx, a)
	case "login":
		return cmdLogin(ctx, a, args)
	case "logout":
		a.Session.Teardown(ctx)
		fmt.Println("Signed out.")
		return nil
	}

	// Everything below needs a bootstrapped session; public market data
	// tolerates an unauthenticated one.
	state := a.Session.Init(ctx)

	switch cmd {
	case "whoami":
		return cmdWhoami(a, state)
	case "market":
		return cmdMarket(ctx, a, args)
	case "coin":
		return cmdCoin(ctx, a, args)
	case "search":
		return cmdSearch(ctx, a, args)
	}

	// Onboarding has its own gate: it must stay reachable for a signed-in
	// user who has not completed it yet.
	if cmd == "onboarding" {
		switch d := session.GateOnboarding(a.Session); d.Target {
		case session.RouteLogin:
			return fmt.Errorf("not signed in, run: papertrade login")
		case session.RouteDashboard:
			fmt.Println("Onboarding already complete.")
			return nil
		}
		return cmdOnboarding(ctx, a)
	}

	if d := session.GateProtected(a.Session); d.Verdict != session.Render {
		return fmt.Errorf("not signed in, run: papertrade login")
	}

	switch cmd {
	case "profile":
		return cmdProfile(ctx, a, args)
	case "trade":
		return cmdTrade(ctx, a, args)
	case "orders":
		return cmdOrders(ctx, a)
	case "cancel":
		return cmdCancel(ctx, a, args)
	case "close":
		return cmdClose(ctx, a, args)
	case "portfolio":
		return cmdPortfolio(ctx, a, args)
	case "history":
		return cmdHistory(ctx, a)
	case "friends":
		return cmdFriends(ctx, a, args)
	case "follow":
		return cmdFollow(ctx, a, args, true)
	case "unfollow":
		return cmdFollow(ctx, a, args, false)
	case "followers":
		return cmdFollowers(ctx, a, true)
	case "following":
		return cmdFollowers(ctx, a, false)
	case "feed":
		return cmdFeed(ctx, a)
	case "leaderboard":
		return cmdLeaderboard(ctx, a, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Printf("%s: ", label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func cmdRegister(ctx context.Context, a *app.App) error {
	name, err := prompt("Name")
	if err != nil {
		return err
	}
	email, err := prompt("Email")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}

	resp, err := a.Client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	if err := a.Session.Establish(resp.Token, resp.User); err != nil {
		return err
	}

	fmt.Printf("Welcome, %s. Run: papertrade onboarding\n", resp.User.Name)
	return nil
}

func cmdLogin(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	google := fs.Bool("google", false, "sign in with Google")
	fs.Parse(args)

	if *google {
		return googleLogin(ctx, a)
	}

	email, err := prompt("Email")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}

	resp, err := a.Client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.Session.Establish(resp.Token, resp.User); err != nil {
		return err
	}

	fmt.Printf("Signed in as %s.\n", resp.User.Name)
	return nil
}

// googleLogin walks the OAuth handoff: the user opens the URL in a
// browser and pastes the callback URL the provider redirects to.
func googleLogin(ctx context.Context, a *app.App) error {
	fmt.Printf("Open this URL in your browser:\n\n  %s\n\n", a.Client.GoogleAuthURL())

	raw, err := prompt("Paste the callback URL you were redirected to")
	if err != nil {
		return err
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid callback URL: %w", err)
	}

	res := a.Session.HandleCallback(ctx, parsed.Query())
	if res.Err != nil {
		return res.Err
	}

	fmt.Printf("Signed in as %s.\n", a.Session.User().Name)
	if res.Target == session.RouteOnboarding {
		fmt.Println("Run: papertrade onboarding")
	}
	return nil
}

func cmdWhoami(a *app.App, state session.State) error {
	if state != session.StateAuthenticated {
		return fmt.Errorf("not signed in (%s)", state)
	}

	u := a.Session.User()
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	fmt.Printf("Experience: %s\n", u.Experience)
	fmt.Printf("Onboarded:  %v\n", u.OnboardingComplete)

	if exp, ok := a.Session.TokenExpiresAt(); ok {
		fmt.Printf("Session expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	if err := a.Session.LastError(); err != nil {
		fmt.Printf("Warning: using cached identity (%v)\n", err)
	}
	return nil
}

func cmdMarket(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("market", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 25, "rows per page")
	fs.Parse(args)

	coins, err := a.Client.MarketData(ctx, *page, *limit)
	if err != nil {
		return err
	}

	for _, c := range coins {
		fmt.Printf("%-12s %-24s $%-14.2f %+.2f%%\n", strings.ToUpper(c.Symbol), c.Name, c.CurrentPrice, c.PriceChange24h)
	}
	return nil
}

func cmdCoin(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: papertrade coin <coin-id>")
	}

	d, err := a.Client.CoinDetails(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)  rank #%d\n", d.Name, strings.ToUpper(d.Symbol), d.MarketCapRank)
	fmt.Printf("Price:      $%.2f\n", d.MarketData.CurrentPrice.USD)
	fmt.Printf("24h range:  $%.2f - $%.2f\n", d.MarketData.Low24h.USD, d.MarketData.High24h.USD)
	fmt.Printf("Market cap: $%.0f\n", d.MarketData.MarketCap.USD)
	fmt.Printf("ATH:        $%.2f\n", d.MarketData.ATH.USD)
	if d.Description.EN != "" {
		fmt.Printf("\n%s\n", d.Description.EN)
	}
	return nil
}

// cmdSearch reads queries line by line and prints debounced results, the
// terminal equivalent of search-as-you-type. -users searches accounts
// instead of the market.
func cmdSearch(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	users := fs.Bool("users", false, "search user accounts instead of coins")
	fs.Parse(args)

	if *users {
		return runSearchLoop(ctx, a.NewUserSearchDebouncer(), func(hits []models.SocialUser) {
			for _, u := range hits {
				fmt.Printf("  %-26s %s\n", u.ID, u.Name)
			}
		})
	}

	return runSearchLoop(ctx, a.NewSearchDebouncer(), func(hits []models.Coin) {
		for _, c := range hits {
			fmt.Printf("  %-12s %-24s $%.2f\n", c.ID, c.Name, c.CurrentPrice)
		}
	})
}

func runSearchLoop[T any](ctx context.Context, d *search.Debouncer[[]T], print func([]T)) error {
	defer d.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range d.Results() {
			if r.Err != nil {
				fmt.Printf("search failed: %v\n", r.Err)
				continue
			}
			if r.Value == nil {
				// Cleared result for a short query.
				continue
			}
			if len(r.Value) == 0 {
				fmt.Printf("No matches for %q.\n", r.Query)
				continue
			}
			print(r.Value)
		}
	}()

	fmt.Println("Type to search, empty line to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		d.Update(ctx, line)
	}

	d.Close()
	<-done
	return scanner.Err()
}

func cmdTrade(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("trade", flag.ExitOnError)
	side := fs.String("side", "buy", "buy or sell")
	orderType := fs.String("type", "market", "market, limit, or stop")
	quantity := fs.String("qty", "", "quantity to trade (empty for max)")
	limitPrice := fs.String("limit-price", "", "limit price")
	stopPrice := fs.String("stop-price", "", "stop price")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: papertrade trade <coin-id> [flags]")
	}
	coinID := fs.Arg(0)

	detail, err := a.Client.CoinDetails(ctx, coinID)
	if err != nil {
		return err
	}
	coin := detail.Snapshot()

	portfolio, err := a.Trades.LoadPortfolio(ctx)
	if err != nil {
		return err
	}

	ticket := trade.NewTicket(&coin)
	ticket.Side = models.OrderSide(*side)
	ticket.OrderType = models.OrderType(*orderType)
	ticket.Quantity = *quantity
	ticket.LimitPrice = *limitPrice
	ticket.StopPrice = *stopPrice

	if ticket.Quantity == "" {
		max := ticket.MaxQuantity(portfolio)
		ticket.Quantity = fmt.Sprintf("%g", max)
		fmt.Printf("No quantity given, using max %g\n", max)
	}

	fmt.Printf("%s %s %s @ $%.2f = $%.2f\n",
		strings.ToUpper(string(ticket.Side)), ticket.Quantity,
		strings.ToUpper(coin.Symbol), ticket.EffectivePrice(), ticket.Total())

	confirm, err := prompt("Confirm (y/N)")
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		fmt.Println("Cancelled.")
		return nil
	}

	a.Trades.SetTicket(ticket)
	result, err := a.Trades.Submit(ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	if p := a.Trades.Portfolio(); p != nil {
		fmt.Printf("Cash balance: $%.2f\n", p.Balance)
	}
	return nil
}

func cmdOrders(ctx context.Context, a *app.App) error {
	orders, err := a.Client.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No standing orders.")
		return nil
	}

	for _, o := range orders {
		price := o.LimitPrice
		if o.OrderType == models.OrderTypeStop {
			price = o.StopPrice
		}
		fmt.Printf("%-26s %-5s %-6s %g %s @ $%.2f (%s)\n",
			o.ID, o.Side, o.OrderType, o.Quantity, strings.ToUpper(o.CoinSymbol), price, o.Status)
	}
	return nil
}

func cmdCancel(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: papertrade cancel <order-id>")
	}
	if err := a.Client.CancelOrder(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Order cancelled.")
	return nil
}

func cmdClose(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	pct := fs.Int("pct", 100, "percentage of the position to close (1-100)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: papertrade close <coin-id> [-pct N]")
	}
	coinID := fs.Arg(0)

	portfolio, err := a.Trades.LoadPortfolio(ctx)
	if err != nil {
		return err
	}

	holding, ok := portfolio.FindHolding(coinID)
	if !ok {
		return fmt.Errorf("no open position in %s", coinID)
	}

	est := trade.EstimateClose(holding, *pct)
	direction := "profit"
	if !est.Profitable {
		direction = "loss"
	}
	fmt.Printf("Closing %d%% of %s: ~$%.2f proceeds, ~$%.2f %s\n",
		est.Percentage, strings.ToUpper(holding.CoinSymbol), est.Value, est.ProfitLoss, direction)

	confirm, err := prompt("Confirm (y/N)")
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		fmt.Println("Cancelled.")
		return nil
	}

	result, err := a.Trades.ClosePosition(ctx, coinID, est.Percentage)
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	return nil
}

func cmdPortfolio(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("portfolio", flag.ExitOnError)
	chartDir := fs.String("chart", "", "directory to write allocation and P/L charts")
	fs.Parse(args)

	portfolio, err := a.Trades.LoadPortfolio(ctx)
	if err != nil {
		return err
	}

	fmt.Print(report.WriteSummary(portfolio))

	if *chartDir == "" {
		return nil
	}

	charts := []struct {
		name   string
		render func(*models.Portfolio) ([]byte, error)
	}{
		{"allocation.png", report.RenderAllocationChart},
		{"profit-loss.png", report.RenderProfitLossChart},
	}
	for _, c := range charts {
		png, err := c.render(portfolio)
		if err != nil {
			a.Logger.Warn().Err(err).Str("chart", c.name).Msg("Chart skipped")
			continue
		}
		path := *chartDir + "/" + c.name
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

func cmdHistory(ctx context.Context, a *app.App) error {
	trades, err := a.Client.TradeHistory(ctx)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Println("No trades yet.")
		return nil
	}

	for _, tr := range trades {
		fmt.Printf("%s  %-4s %g %s @ $%.2f = $%.2f\n",
			tr.Timestamp.Local().Format("2006-01-02 15:04"),
			tr.Side, tr.Quantity, strings.ToUpper(tr.CoinSymbol), tr.Price, tr.Total)
	}
	return nil
}

func cmdProfile(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	name := fs.String("name", "", "update display name")
	avatar := fs.String("avatar", "", "update avatar URL")
	fs.Parse(args)

	if fs.NArg() > 0 {
		return showUserProfile(ctx, a, fs.Arg(0))
	}

	if *name != "" || *avatar != "" {
		update := &models.ProfileUpdate{Name: *name, Avatar: *avatar}
		if _, err := a.Client.UpdateProfile(ctx, update); err != nil {
			return err
		}
		if err := a.Session.Refresh(ctx); err != nil {
			return err
		}
		fmt.Println("Profile updated.")
	}

	u, err := a.Client.Profile(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	fmt.Printf("Experience: %s\n", u.Experience)
	if len(u.Interests) > 0 {
		fmt.Printf("Interests:  %s\n", strings.Join(u.Interests, ", "))
	}
	return nil
}

// showUserProfile prints another account's public profile, the social
// relationship to it, and its visible trades.
func showUserProfile(ctx context.Context, a *app.App, userID string) error {
	u, err := a.Client.ProfileByID(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", u.Name)
	fmt.Printf("Experience: %s\n", u.Experience)

	status, err := a.Client.SocialStatus(ctx, userID)
	if err != nil {
		return err
	}
	var relation []string
	if status.IsFriend {
		relation = append(relation, "friend")
	}
	if status.RequestPending {
		relation = append(relation, "request pending")
	}
	if status.IsFollowing {
		relation = append(relation, "following")
	}
	if status.IsFollower {
		relation = append(relation, "follows you")
	}
	if len(relation) > 0 {
		fmt.Printf("Relation:   %s\n", strings.Join(relation, ", "))
	}

	trades, err := a.Client.UserTrades(ctx, userID)
	if err != nil {
		return err
	}
	if len(trades) > 0 {
		fmt.Println("\nRecent trades:")
		for _, tr := range trades {
			fmt.Printf("  %s  %-4s %g %s @ $%.2f\n",
				tr.Timestamp.Local().Format("2006-01-02"),
				tr.Side, tr.Quantity, strings.ToUpper(tr.CoinSymbol), tr.Price)
		}
	}
	return nil
}

func cmdOnboarding(ctx context.Context, a *app.App) error {
	experience, err := prompt("Experience (beginner/intermediate/advanced)")
	if err != nil {
		return err
	}
	interests, err := prompt("Interests (comma separated)")
	if err != nil {
		return err
	}

	details := &models.OnboardingDetails{
		Experience: experience,
	}
	for _, i := range strings.Split(interests, ",") {
		if i = strings.TrimSpace(i); i != "" {
			details.Interests = append(details.Interests, i)
		}
	}

	user, err := a.Client.CompleteOnboarding(ctx, details)
	if err != nil {
		return err
	}
	if err := a.Session.Establish(a.Session.Token(), user); err != nil {
		return err
	}

	fmt.Println("Onboarding complete. Happy trading!")
	return nil
}

func cmdFriends(ctx context.Context, a *app.App, args []string) error {
	if len(args) > 0 {
		return friendAction(ctx, a, args)
	}

	friends, err := a.Client.Friends(ctx)
	if err != nil {
		return err
	}
	requests, err := a.Client.FriendRequests(ctx)
	if err != nil {
		return err
	}

	if len(friends) == 0 {
		fmt.Println("No friends yet.")
	}
	for _, f := range friends {
		fmt.Printf("  %-26s %s\n", f.ID, f.Name)
	}

	if len(requests) > 0 {
		fmt.Println("\nPending requests:")
		for _, r := range requests {
			fmt.Printf("  %-26s %s\n", r.From.ID, r.From.Name)
		}
	}
	return nil
}

func friendAction(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: papertrade friends request|accept|reject|remove <user-id>")
	}
	action, userID := args[0], args[1]

	switch action {
	case "request":
		if err := a.Client.SendFriendRequest(ctx, userID); err != nil {
			return err
		}
		fmt.Println("Friend request sent.")
	case "accept":
		if err := a.Client.AcceptFriendRequest(ctx, userID); err != nil {
			return err
		}
		fmt.Println("Friend request accepted.")
	case "reject":
		if err := a.Client.RejectFriendRequest(ctx, userID); err != nil {
			return err
		}
		fmt.Println("Friend request rejected.")
	case "remove":
		if err := a.Client.RemoveFriend(ctx, userID); err != nil {
			return err
		}
		fmt.Println("Friend removed.")
	default:
		return fmt.Errorf("unknown friends action %q", action)
	}
	return nil
}

func cmdFollowers(ctx context.Context, a *app.App, followers bool) error {
	var (
		users []models.SocialUser
		err   error
		empty string
	)
	if followers {
		users, err = a.Client.Followers(ctx)
		empty = "No followers yet."
	} else {
		users, err = a.Client.Following(ctx)
		empty = "Not following anyone."
	}
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println(empty)
		return nil
	}
	for _, u := range users {
		fmt.Printf("  %-26s %s\n", u.ID, u.Name)
	}
	return nil
}

func cmdFollow(ctx context.Context, a *app.App, args []string, follow bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: papertrade follow|unfollow <user-id>")
	}

	if follow {
		if err := a.Client.FollowUser(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Following.")
		return nil
	}

	if err := a.Client.UnfollowUser(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Unfollowed.")
	return nil
}

func cmdFeed(ctx context.Context, a *app.App) error {
	feed, err := a.Client.ActivityFeed(ctx)
	if err != nil {
		return err
	}
	if len(feed) == 0 {
		fmt.Println("Nothing in the feed.")
		return nil
	}

	for _, item := range feed {
		fmt.Printf("%s  %s %s\n", item.CreatedAt.Local().Format("2006-01-02 15:04"), item.UserName, item.Message)
	}
	return nil
}

func cmdLeaderboard(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	board := fs.String("by", "value", "ranking: value or profit")
	fs.Parse(args)

	entries, err := a.Client.Leaderboard(ctx, *board)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if *board == "profit" {
			fmt.Printf("%3d. %-24s %+.2f%%\n", e.Rank, e.Name, e.ProfitLossPercentage)
			continue
		}
		fmt.Printf("%3d. %-24s $%.2f\n", e.Rank, e.Name, e.PortfolioValue)
	}
	return nil
}
