package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"StockSentry/internal/chart"
	"StockSentry/internal/collector"
	"StockSentry/internal/model"
	"StockSentry/internal/notifier"
	"StockSentry/internal/scanner"
	"StockSentry/internal/store"
	"StockSentry/internal/strategy"

	"github.com/robfig/cron/v3"
)

const helpText = `Commands:
• /watch SYMBOL — add a symbol to the watchlist
• /unwatch SYMBOL [SYMBOL...] — request removal (needs /confirm)
• /confirm ID — confirm a pending removal
• /list — show the watchlist
• /scan — run the signal scan now
• /graph SYMBOL — chart one symbol`

// Scheduler manages the daily scan cron and the chat command surface.
// The on-demand /scan command and the cron run the same engine.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *scanner.Engine
	Store    *store.Store
	Fetcher  collector.Fetcher
	Charts   *chart.Pool
	Notifier *notifier.TelegramNotifier
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, engine *scanner.Engine, st *store.Store, fetcher collector.Fetcher, charts *chart.Pool, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   engine,
		Store:    st,
		Fetcher:  fetcher,
		Charts:   charts,
		Notifier: tn,
		Ctx:      ctx,
	}
}

// Register registers the daily scan task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyScan); err != nil {
		return fmt.Errorf("register daily scan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.dailyScan()
}

func (s *Scheduler) dailyScan() {
	log.Println("[INFO] running watchlist scan")
	sum, err := s.Engine.Scan(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] scan: %v", err)
		s.trySend(fmt.Sprintf("❌ Scan failed: %v", err))
		return
	}
	log.Printf("[INFO] scan done: submitted=%d hits=%d failures=%d", sum.Submitted, sum.Hits, sum.Failures)

	if err := s.Store.RecordScan(sum); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(userID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}

	switch fields[0] {
	case "/watch":
		if len(fields) != 2 {
			return "Usage: /watch SYMBOL"
		}
		symbol := store.Normalize(fields[1])
		added, err := s.Store.Add(symbol)
		if err != nil {
			log.Printf("[ERROR] watch %s: %v", symbol, err)
			return fmt.Sprintf("❌ Could not add %s.", symbol)
		}
		if !added {
			return fmt.Sprintf("%s is already on the watchlist.", symbol)
		}
		return fmt.Sprintf("Now watching %s.", symbol)

	case "/unwatch":
		if len(fields) < 2 {
			return "Usage: /unwatch SYMBOL [SYMBOL...]"
		}
		symbols := fields[1:]
		id, err := s.Store.CreateSession(userID, symbols)
		if err != nil {
			log.Printf("[ERROR] create session for %d: %v", userID, err)
			return "❌ Could not start the removal request."
		}
		return fmt.Sprintf("About to remove: %s\nSend /confirm %s within 5 minutes.",
			strings.Join(normalizeAll(symbols), ", "), id)

	case "/confirm":
		if len(fields) != 2 {
			return "Usage: /confirm ID"
		}
		symbols, err := s.Store.TakeSession(fields[1], userID)
		if errors.Is(err, store.ErrNotOwner) {
			log.Printf("[WARN] user %d tried to confirm someone else's removal", userID)
			return "❌ You can't confirm someone else's removal."
		}
		if errors.Is(err, store.ErrSessionNotFound) {
			return "❌ Session expired or not found. Run /unwatch again."
		}
		if err != nil {
			log.Printf("[ERROR] take session: %v", err)
			return "❌ Could not confirm the removal."
		}
		for _, sym := range symbols {
			if _, err := s.Store.Remove(sym); err != nil {
				log.Printf("[ERROR] remove %s: %v", sym, err)
			}
		}
		return fmt.Sprintf("Removed: %s", strings.Join(symbols, ", "))

	case "/list":
		symbols, err := s.Store.List()
		if err != nil {
			log.Printf("[ERROR] list watchlist: %v", err)
			return "❌ Could not read the watchlist."
		}
		if len(symbols) == 0 {
			return "Watchlist is empty."
		}
		return "Watching:\n• " + strings.Join(symbols, "\n• ")

	case "/scan":
		s.dailyScan()
		return "" // results arrive via the scan sink

	case "/graph":
		if len(fields) != 2 {
			return "Usage: /graph SYMBOL"
		}
		return s.graph(store.Normalize(fields[1]))

	default:
		return helpText
	}
}

// graph fetches, evaluates, and charts a single symbol on demand.
func (s *Scheduler) graph(symbol string) string {
	bars, err := s.Fetcher.FetchBars(symbol, s.Engine.Lookback, s.Engine.Interval, s.Engine.MaxBars)
	if err != nil {
		log.Printf("[ERROR] graph fetch %s: %v", symbol, err)
		return fmt.Sprintf("❌ Fetching %s failed.", symbol)
	}
	if len(bars) == 0 {
		return fmt.Sprintf("No price data for %s.", symbol)
	}

	sig, fast, slow := strategy.Evaluate(model.Closes(bars))
	png, err := s.Charts.Render(s.Ctx, chart.Request{
		Symbol: symbol,
		Closes: model.Closes(bars),
		Fast:   fast,
		Slow:   slow,
		Dates:  model.Dates(bars),
	})
	if err != nil {
		log.Printf("[ERROR] graph render %s: %v", symbol, err)
		return fmt.Sprintf("❌ Rendering %s failed.", symbol)
	}

	caption := fmt.Sprintf("<b>%s</b> — %s", symbol, sig)
	if err := s.Notifier.SendPhoto(s.Ctx, caption, png); err != nil {
		log.Printf("[ERROR] graph send %s: %v", symbol, err)
		return fmt.Sprintf("❌ Sending the %s chart failed.", symbol)
	}
	return ""
}

func normalizeAll(symbols []string) []string {
	out := make([]string, len(symbols))
	for i, sym := range symbols {
		out[i] = store.Normalize(sym)
	}
	return out
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
