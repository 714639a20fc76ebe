package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/NgigiN/walletwatcher/internal/config"
	"github.com/NgigiN/walletwatcher/internal/expense"
	"github.com/NgigiN/walletwatcher/internal/log"
	"github.com/NgigiN/walletwatcher/internal/parse"
	"github.com/NgigiN/walletwatcher/internal/storage"
	"github.com/NgigiN/walletwatcher/internal/wallet"
)

const (
	commandTimeout = 10 * time.Second
	listLimit      = 10
)

type Bot struct {
	session   *discordgo.Session
	service   *wallet.Service
	logger    *log.Logger
	channelID string
	currency  string
	health    *http.Server
	startTime time.Time
}

func NewBot(cfg config.Config, service *wallet.Service, logger *log.Logger) (*Bot, error) {
	if err := cfg.ValidateDiscord(); err != nil {
		return nil, err
	}
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := newBot(service, cfg.UI.Currency, logger)
	bot.session = session
	bot.channelID = cfg.Discord.ChannelID
	if cfg.Discord.HealthAddr != "" {
		bot.health = &http.Server{
			Addr:              cfg.Discord.HealthAddr,
			Handler:           bot.healthHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	return bot, nil
}

func newBot(service *wallet.Service, currency string, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.Nop()
	}
	return &Bot{
		service:   service,
		logger:    logger.WithComponent(log.ComponentDiscord),
		currency:  currency,
		startTime: time.Now(),
	}
}

func (b *Bot) Start() error {
	if b.health != nil {
		go b.startHealthServer()
	}

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.logger.Info("bot connected", log.FieldChannelID, b.channelID)
	return nil
}

func (b *Bot) Stop() {
	if b.health != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.health.Shutdown(ctx); err != nil {
			b.logger.Warn("failed to stop health server", log.FieldError, err)
		}
	}
	if err := b.session.Close(); err != nil {
		b.logger.Warn("failed to close Discord session", log.FieldError, err)
	}
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	if m.ChannelID != b.channelID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	response := b.reply(ctx, m.Content)
	if response == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, response); err != nil {
		b.logger.Error("failed to send reply",
			log.FieldChannelID, m.ChannelID,
			log.FieldAuthor, m.Author.Username,
			log.FieldError, err,
		)
	}
}

// reply answers one chat message. Messages that are not commands get an empty
// reply.
func (b *Bot) reply(ctx context.Context, content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "!") {
		return ""
	}
	first, _, _ := strings.Cut(content, "\n")
	args := strings.Fields(first)

	switch strings.ToLower(args[0]) {
	case "!add":
		if isBatchMessage(content) {
			return b.handleBatch(ctx, content)
		}
		return b.handleAdd(ctx, content)
	case "!list":
		return b.handleList(ctx, args[1:])
	case "!summary":
		return b.handleSummary(ctx, args[1:])
	case "!delete":
		return b.handleDelete(ctx, args[1:])
	case "!undo":
		return b.handleUndo(ctx)
	case "!help":
		return helpText
	}
	return ""
}

const helpText = "**Commands**\n" +
	"`!add AMOUNT` record an expense, optionally followed by lines `c: category`, `r: reason`, `d: YYYY-MM-DD`\n" +
	"`!list [category...]` show the latest expenses\n" +
	"`!summary [category]` totals per category\n" +
	"`!delete ID...` delete expenses by id\n" +
	"`!undo` revert the last change (a batch of `!add` lines is one change)"

// entry is one `!add` line and the metadata lines under it.
type entry struct {
	Command  string
	Metadata []string
}

type metadata struct {
	category string
	reason   string
	date     string
}

func parseMetadata(lines []string) metadata {
	var md metadata
	for _, line := range lines {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "c", "category":
			md.category = value
		case "r", "reason", "s":
			md.reason = value
		case "d", "date":
			md.date = value
		}
	}
	return md
}

func isBatchMessage(content string) bool {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if isAddLine(line) {
			count++
		}
	}
	return count > 1
}

func isAddLine(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && strings.EqualFold(fields[0], "!add")
}

func splitIntoEntries(content string) []entry {
	var entries []entry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isAddLine(line) {
			entries = append(entries, entry{Command: line})
			continue
		}
		if len(entries) > 0 {
			entries[len(entries)-1].Metadata = append(entries[len(entries)-1].Metadata, line)
		}
	}
	return entries
}

func (b *Bot) draft(e entry) (expense.Draft, error) {
	fields := strings.Fields(e.Command)
	if len(fields) != 2 {
		return expense.Draft{}, fmt.Errorf("%w: usage is !add AMOUNT", expense.ErrInvalidArgument)
	}
	amount, err := parse.Amount(fields[1])
	if err != nil {
		return expense.Draft{}, err
	}
	md := parseMetadata(e.Metadata)
	d := expense.Draft{Amount: amount}
	if md.date != "" {
		if d.Date, err = parse.Date(md.date); err != nil {
			return expense.Draft{}, err
		}
	}
	if d.Category, err = parse.Category(md.category); err != nil {
		return expense.Draft{}, err
	}
	if d.Description, err = parse.Description(md.reason); err != nil {
		return expense.Draft{}, err
	}
	return d, nil
}

func (b *Bot) handleAdd(ctx context.Context, content string) string {
	entries := splitIntoEntries(content)
	d, err := b.draft(entries[0])
	if err != nil {
		return fmt.Sprintf("Invalid expense: %v", err)
	}
	e, err := b.service.Add(ctx, d)
	if err != nil {
		return b.failure("add", err)
	}
	return fmt.Sprintf("Tracked #%d: %s in %s (%s) on %s", e.ID, b.money(e.Amount), e.Category, e.Description, e.Date)
}

func (b *Bot) handleBatch(ctx context.Context, content string) string {
	entries := splitIntoEntries(content)
	failures := make([]error, len(entries))
	var (
		drafts  []expense.Draft
		indexes []int
	)
	for i, e := range entries {
		d, err := b.draft(e)
		if err != nil {
			failures[i] = err
			continue
		}
		drafts = append(drafts, d)
		indexes = append(indexes, i)
	}

	added, errs, err := b.service.AddBatch(ctx, drafts)
	if err != nil {
		return b.failure("add", err)
	}
	for i, addErr := range errs {
		failures[indexes[i]] = addErr
	}
	var problems []string
	for i, f := range failures {
		if f != nil {
			problems = append(problems, fmt.Sprintf("Expense %d: %v", i+1, f))
		}
	}
	saved := len(added)

	var sb strings.Builder
	sb.WriteString("📊 **Batch Processing Complete**\n")
	fmt.Fprintf(&sb, "✅ **Saved**: %d expenses\n", saved)
	if len(problems) > 0 {
		fmt.Fprintf(&sb, "❌ **Failed**: %d expenses\n", len(problems))
		sb.WriteString("**Errors:**\n")
		for _, p := range problems {
			fmt.Fprintf(&sb, "• %s\n", p)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) handleList(ctx context.Context, categories []string) string {
	q := wallet.Query{Categories: categories}
	res, err := b.service.List(ctx, q, expense.SortKey{Field: expense.FieldDate, Desc: true})
	if err != nil {
		return b.failure("list", err)
	}
	if len(res.Matched) == 0 {
		return b.noMatches(ctx, categories)
	}

	var sb strings.Builder
	sb.WriteString("📊 **Latest Expenses**\n\n")
	shown := min(len(res.Matched), listLimit)
	for _, e := range res.Matched[:shown] {
		fmt.Fprintf(&sb, "• **#%d** %s in %s\n  %s - %s\n", e.ID, b.money(e.Amount), e.Category, e.Date, e.Description)
	}
	if len(res.Matched) > shown {
		fmt.Fprintf(&sb, "... and %d more expenses\n", len(res.Matched)-shown)
	}
	fmt.Fprintf(&sb, "\n**Total**: %s (%d expenses)", b.money(res.Total), len(res.Matched))
	return sb.String()
}

func (b *Bot) handleSummary(ctx context.Context, args []string) string {
	if len(args) > 1 {
		return "Usage: !summary [category]\nExamples:\n!summary - show all categories\n!summary Food - show the Food total"
	}
	totals, err := b.service.Summary(ctx, wallet.Query{Categories: args})
	if err != nil {
		return b.failure("summary", err)
	}
	if totals.Count == 0 {
		return b.noMatches(ctx, args)
	}

	var sb strings.Builder
	sb.WriteString("📊 **Expense Summary**\n\n")
	for _, c := range totals.Categories() {
		fmt.Fprintf(&sb, "**%s**: %s\n", c.Category, b.money(c.Amount))
	}
	fmt.Fprintf(&sb, "\n**Total**: %s (%d expenses)", b.money(totals.Overall), totals.Count)
	return sb.String()
}

func (b *Bot) handleDelete(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: !delete ID..."
	}
	ids, err := parse.Each(args, parse.ID)
	if err != nil {
		return fmt.Sprintf("Invalid id: %v", err)
	}
	res, err := b.service.Delete(ctx, wallet.Query{IDs: ids})
	if err != nil {
		return b.failure("delete", err)
	}
	if len(res.Removed) == 0 {
		return "Nothing was deleted."
	}
	return fmt.Sprintf("🗑️ Deleted %d expenses totalling %s", len(res.Removed), b.money(res.Total))
}

func (b *Bot) handleUndo(ctx context.Context) string {
	n, err := b.service.Undo(ctx)
	if errors.Is(err, storage.ErrNoHistory) {
		return "Nothing to undo."
	}
	if err != nil {
		return b.failure("undo", err)
	}
	return fmt.Sprintf("↩️ Restored %d expenses", n)
}

func (b *Bot) noMatches(ctx context.Context, categories []string) string {
	msg := "No expenses found."
	if len(categories) == 0 {
		return msg
	}
	suggestions, err := b.service.SuggestCategories(ctx, categories)
	if err != nil || len(suggestions) == 0 {
		return msg
	}
	return msg + " Did you mean: " + strings.Join(suggestions, ", ") + "?"
}

func (b *Bot) failure(op string, err error) string {
	if errors.Is(err, expense.ErrInvalidAmount) ||
		errors.Is(err, expense.ErrInvalidArgument) ||
		errors.Is(err, expense.ErrNotFound) {
		return fmt.Sprintf("Failed to %s: %v", op, err)
	}
	b.logger.Error("command failed", log.FieldOperation, op, log.FieldError, err)
	return fmt.Sprintf("Failed to %s expenses, check the bot logs.", op)
}

func (b *Bot) money(d decimal.Decimal) string {
	return b.currency + d.StringFixed(2)
}

type healthStatus struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	DiscordConnected bool   `json:"discord_connected"`
	Timestamp        string `json:"timestamp"`
}

func (b *Bot) healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		connected := b.session != nil && b.session.State != nil && b.session.DataReady
		status := healthStatus{
			Status:           "healthy",
			Uptime:           time.Since(b.startTime).Round(time.Second).String(),
			DiscordConnected: connected,
			Timestamp:        time.Now().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		if !connected {
			status.Status = "unhealthy"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	return mux
}

func (b *Bot) startHealthServer() {
	b.logger.Info("health server listening", log.FieldHealthAddr, b.health.Addr)
	if err := b.health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		b.logger.Error("health server stopped", log.FieldError, err)
	}
}
