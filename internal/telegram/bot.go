package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cloo-solutions/litbot/internal/config"
	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/ingest"
	"github.com/cloo-solutions/litbot/internal/service"
)

const (
	accessDenied = "Access Denied: You are not the configured admin."
	relatedLimit = 3

	helpText = "<b>Legal Tech Article Bot</b>\n\n" +
		"/search &lt;topic&gt; - search published articles\n" +
		"/ask &lt;question&gt; - answer from indexed articles\n" +
		"/summarise &lt;url&gt; - summarize a link and offer to share it\n" +
		"/share &lt;url&gt; - publish a link to the channel\n" +
		"/status - bot health\n" +
		"/force_fetch - run a sweep now\n" +
		"/list_keywords, /add_keyword &lt;word&gt;, /remove_keyword &lt;word&gt;\n\n" +
		"Send a link in a private chat for a quick summary."
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Pipeline is the ingest side the bot drives.
type Pipeline interface {
	RunManual(ctx context.Context) (*domain.SweepResult, error)
	LastResult() *domain.SweepResult
	Prepare(ctx context.Context, item *domain.Item) domain.Processed
	Share(ctx context.Context, item *domain.Item, via ingest.ShareVia) (domain.Processed, error)
	PublishDraft(ctx context.Context, draft *domain.ShareDraft) error
}

type ArticleScraper interface {
	Scrape(ctx context.Context, rawURL string) (*domain.Item, error)
}

type KeywordManager interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, keyword string) (string, error)
	Remove(ctx context.Context, keyword string) error
}

type HistorySearcher interface {
	Search(ctx context.Context, query string) ([]*domain.HistoryRecord, error)
	Count(ctx context.Context) (int, error)
}

type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type DraftStore interface {
	Put(item domain.Item, processed domain.Processed) *domain.ShareDraft
	Take(token string) (*domain.ShareDraft, error)
}

type Reporter interface {
	Report(ctx context.Context, err error)
}

type Deps struct {
	Messenger   Messenger
	Pipeline    Pipeline
	Scraper     ArticleScraper
	Keywords    KeywordManager
	History     HistorySearcher
	Answerer    Answerer
	Drafts      DraftStore
	Reporter    Reporter
	SourceCount int
}

// Bot handles Telegram updates. Commands that call providers or the network
// run on their own goroutine so the update loop keeps moving.
type Bot struct {
	Deps
	cfg     *config.Config
	started time.Time
	wg      sync.WaitGroup
}

func New(deps Deps, cfg *config.Config) *Bot {
	return &Bot{Deps: deps, cfg: cfg, started: time.Now()}
}

// Start long-polls the Bot API until ctx is cancelled.
func (b *Bot) Start(ctx context.Context, api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	log.Printf("telegram: authorized as @%s", api.Self.UserName)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	b.Run(ctx, updates)
}

// Run dispatches updates until the channel closes or ctx is cancelled, then
// waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// Wait blocks until background handlers finish.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer b.recoverPanic(ctx)

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) async(ctx context.Context, fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.recoverPanic(ctx)
		fn()
	}()
}

func (b *Bot) recoverPanic(ctx context.Context) {
	if r := recover(); r != nil {
		b.report(ctx, fmt.Errorf("panic while handling update: %v", r))
	}
}

func (b *Bot) report(ctx context.Context, err error) {
	if b.Reporter != nil {
		b.Reporter.Report(ctx, err)
		return
	}
	log.Printf("telegram: %v", err)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if !msg.IsCommand() {
		if msg.Chat.IsPrivate() {
			b.handlePrivateLink(ctx, chatID, msg.Text)
		}
		return
	}

	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	switch command {
	case "start", "help":
		b.replyHTML(chatID, helpText)
		return
	case "search":
		b.handleSearch(ctx, chatID, args)
		return
	case "ask":
		b.handleAsk(ctx, chatID, args)
		return
	}

	if !b.isAdmin(msg.From) {
		log.Printf("telegram: unauthorized /%s from user %d", command, userID(msg.From))
		b.reply(chatID, accessDenied)
		return
	}

	switch command {
	case "status":
		b.handleStatus(ctx, chatID)
	case "force_fetch":
		b.handleForceFetch(ctx, chatID)
	case "add_keyword":
		b.handleAddKeyword(ctx, chatID, args)
	case "remove_keyword":
		b.handleRemoveKeyword(ctx, chatID, args)
	case "list_keywords":
		b.handleListKeywords(ctx, chatID)
	case "share":
		b.handleShare(ctx, chatID, args)
	case "summarise", "summarize":
		b.handleSummarise(ctx, chatID, args)
	default:
		b.reply(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) isAdmin(u *tgbotapi.User) bool {
	return b.cfg.IsAdmin(userID(u))
}

func userID(u *tgbotapi.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.Messenger.SendText(chatID, text); err != nil {
		log.Printf("telegram: failed to reply to %d: %v", chatID, err)
	}
}

func (b *Bot) replyHTML(chatID int64, text string) {
	if _, err := b.Messenger.SendHTML(chatID, text, nil); err != nil {
		log.Printf("telegram: failed to reply to %d: %v", chatID, err)
	}
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	keywords, err := b.Keywords.List(ctx)
	if err != nil {
		b.report(ctx, fmt.Errorf("status: %w", err))
		return
	}
	count, err := b.History.Count(ctx)
	if err != nil {
		b.report(ctx, fmt.Errorf("status: %w", err))
		return
	}

	var s strings.Builder
	s.WriteString("✅ <b>Bot Status: Online</b>\n")
	fmt.Fprintf(&s, "⏱ Uptime: %s\n", time.Since(b.started).Truncate(time.Second))
	fmt.Fprintf(&s, "📡 Sources: %d\n", b.SourceCount)
	fmt.Fprintf(&s, "🔑 Active Keywords: %d\n", len(keywords))
	fmt.Fprintf(&s, "📚 History Size: %d\n", count)
	fmt.Fprintf(&s, "📅 Check Interval: %d mins", int(b.cfg.CheckInterval.Minutes()))
	if last := b.Pipeline.LastResult(); last != nil {
		fmt.Fprintf(&s, "\n🕑 Last sweep (%s): %s, published %d of %d",
			last.Trigger, last.FinishedAt.Format(time.RFC3339), last.Published, last.Fetched)
	}
	b.replyHTML(chatID, s.String())
}

func (b *Bot) handleForceFetch(ctx context.Context, chatID int64) {
	b.reply(chatID, "🔄 Force fetching articles...")
	b.async(ctx, func() {
		res, err := b.Pipeline.RunManual(ctx)
		if err != nil {
			b.report(ctx, fmt.Errorf("manual sweep: %w", err))
			b.reply(chatID, "❌ Fetch failed.")
			return
		}
		b.reply(chatID, fmt.Sprintf("Fetch complete. Published %d of %d fetched.", res.Published, res.Fetched))
	})
}

func (b *Bot) handleAddKeyword(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /add_keyword <word>")
		return
	}
	kw, err := b.Keywords.Add(ctx, args)
	switch {
	case errors.Is(err, domain.ErrKeywordAlreadyExists):
		b.replyHTML(chatID, fmt.Sprintf("Keyword <b>%s</b> already exists.", service.EscapeHTML(kw)))
	case errors.Is(err, domain.ErrEmptyKeyword):
		b.reply(chatID, "Usage: /add_keyword <word>")
	case err != nil:
		b.report(ctx, fmt.Errorf("add keyword: %w", err))
	default:
		log.Printf("telegram: keyword added: %s", kw)
		b.replyHTML(chatID, fmt.Sprintf("Added keyword: <b>%s</b>", service.EscapeHTML(kw)))
	}
}

func (b *Bot) handleRemoveKeyword(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /remove_keyword <word>")
		return
	}
	err := b.Keywords.Remove(ctx, args)
	switch {
	case errors.Is(err, domain.ErrKeywordNotFound):
		b.replyHTML(chatID, fmt.Sprintf("Keyword <b>%s</b> not found.", service.EscapeHTML(args)))
	case err != nil:
		b.report(ctx, fmt.Errorf("remove keyword: %w", err))
	default:
		log.Printf("telegram: keyword removed: %s", args)
		b.replyHTML(chatID, fmt.Sprintf("🗑 Removed keyword: <b>%s</b>", service.EscapeHTML(args)))
	}
}

func (b *Bot) handleListKeywords(ctx context.Context, chatID int64) {
	keywords, err := b.Keywords.List(ctx)
	if err != nil {
		b.report(ctx, fmt.Errorf("list keywords: %w", err))
		return
	}
	if len(keywords) == 0 {
		b.reply(chatID, "No keywords set.")
		return
	}
	b.replyHTML(chatID, "<b>Active Keywords:</b>\n"+service.EscapeHTML(strings.Join(keywords, ", ")))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /search <topic>")
		return
	}
	results, err := b.History.Search(ctx, args)
	if err != nil {
		b.report(ctx, fmt.Errorf("search: %w", err))
		return
	}
	if len(results) == 0 {
		b.replyHTML(chatID, fmt.Sprintf("No articles found for '<b>%s</b>'.", service.EscapeHTML(args)))
		return
	}
	b.replyHTML(chatID, FormatSearchResults(args, results))
}

// FormatSearchResults renders history matches as an HTML list.
func FormatSearchResults(query string, results []*domain.HistoryRecord) string {
	var s strings.Builder
	fmt.Fprintf(&s, "🔍 <b>Search Results for '%s':</b>\n\n", service.EscapeHTML(query))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = r.Link
		}
		fmt.Fprintf(&s, "• <a href='%s'>%s</a>\n  <i>%s", service.EscapeHTML(r.Link), service.EscapeHTML(title), r.CreatedAt.Format("2006-01-02"))
		if r.Category != "" {
			fmt.Fprintf(&s, " [%s]", service.EscapeHTML(r.Category))
		}
		s.WriteString("</i>\n")
	}
	return s.String()
}

func (b *Bot) handleAsk(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /ask <question>")
		return
	}
	b.reply(chatID, fmt.Sprintf("🤔 Thinking about: '%s'...", args))
	b.async(ctx, func() {
		answer, err := b.Answerer.Answer(ctx, args)
		if errors.Is(err, domain.ErrAnswersDisabled) {
			b.reply(chatID, "Answers are not enabled on this bot.")
			return
		}
		if err != nil {
			b.report(ctx, fmt.Errorf("ask: %w", err))
		}
		if answer == "" {
			answer = "❌ An error occurred while generating the answer."
		}
		b.reply(chatID, answer)
	})
}

func (b *Bot) handleShare(ctx context.Context, chatID int64, args string) {
	link := firstField(args)
	if link == "" {
		b.reply(chatID, "Usage: /share <url>")
		return
	}
	b.reply(chatID, "🔄 Scraping and processing article...")
	b.async(ctx, func() {
		item, err := b.Scraper.Scrape(ctx, link)
		if err != nil {
			b.reply(chatID, "❌ Error sharing article: "+err.Error())
			return
		}
		if _, err := b.Pipeline.Share(ctx, item, ingest.ShareViaCommand); err != nil {
			b.report(ctx, fmt.Errorf("share %s: %w", link, err))
			b.reply(chatID, "❌ Failed to share article.")
			return
		}
		b.reply(chatID, "✅ Article shared successfully.")
	})
}

func (b *Bot) handleSummarise(ctx context.Context, chatID int64, args string) {
	link := firstField(args)
	if link == "" {
		b.reply(chatID, "Usage: /summarise <url>")
		return
	}
	b.reply(chatID, "🤔 Reading and summarizing...")
	b.async(ctx, func() {
		item, err := b.Scraper.Scrape(ctx, link)
		if err != nil {
			b.reply(chatID, "❌ Could not extract article content.")
			return
		}
		processed := b.Pipeline.Prepare(ctx, item)
		draft := b.Drafts.Put(*item, processed)
		if _, err := b.Messenger.SendHTML(chatID, ingest.FormatPreview(item, processed), ShareKeyboard(draft.Token)); err != nil {
			log.Printf("telegram: failed to send preview: %v", err)
		}
	})
}

// handlePrivateLink summarizes the first link in a private message and lists
// related history. Nothing is recorded.
func (b *Bot) handlePrivateLink(ctx context.Context, chatID int64, text string) {
	link := urlPattern.FindString(text)
	if link == "" {
		return
	}
	b.reply(chatID, "🤔 Reading and summarizing...")
	b.async(ctx, func() {
		item, err := b.Scraper.Scrape(ctx, link)
		if err != nil {
			b.reply(chatID, "❌ Could not extract article content.")
			return
		}
		processed := b.Pipeline.Prepare(ctx, item)
		response := ingest.FormatPreview(item, processed) + b.related(ctx, processed.Category, item.Link)
		b.replyHTML(chatID, response)
	})
}

func (b *Bot) related(ctx context.Context, category, link string) string {
	if category == "" {
		return ""
	}
	results, err := b.History.Search(ctx, category)
	if err != nil {
		log.Printf("telegram: related search failed: %v", err)
		return ""
	}

	var s strings.Builder
	n := 0
	for _, r := range results {
		if r.Link == link {
			continue
		}
		if n == 0 {
			s.WriteString("\n\n📚 <b>Related from History:</b>\n")
		}
		title := r.Title
		if title == "" {
			title = r.Link
		}
		fmt.Fprintf(&s, "• <a href='%s'>%s</a>\n", service.EscapeHTML(r.Link), service.EscapeHTML(title))
		n++
		if n == relatedLimit {
			break
		}
	}
	return s.String()
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if err := b.Messenger.AnswerCallback(cq.ID, ""); err != nil {
		log.Printf("telegram: failed to answer callback: %v", err)
	}
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch {
	case cq.Data == CallbackRemove:
		if err := b.Messenger.Delete(chatID, messageID); err != nil {
			log.Printf("telegram: failed to delete message %d: %v", messageID, err)
			return
		}
		log.Printf("telegram: message %d removed by user %d", messageID, userID(cq.From))

	case strings.HasPrefix(cq.Data, CallbackSharePrefix):
		if !b.isAdmin(cq.From) {
			b.reply(chatID, accessDenied)
			return
		}
		token := strings.TrimPrefix(cq.Data, CallbackSharePrefix)
		draft, err := b.Drafts.Take(token)
		if err != nil {
			b.reply(chatID, "❌ Error: Article data expired or not found.")
			return
		}
		b.async(ctx, func() {
			if err := b.Pipeline.PublishDraft(ctx, draft); err != nil {
				b.report(ctx, fmt.Errorf("publish draft: %w", err))
				b.reply(chatID, "❌ Failed to share article to channel.")
				return
			}
			if err := b.Messenger.ClearMarkup(chatID, messageID); err != nil {
				log.Printf("telegram: failed to clear share button: %v", err)
			}
			b.replyHTML(chatID, fmt.Sprintf("✅ Shared <b>%s</b> to channel!", service.EscapeHTML(draft.Item.Title)))
		})
	}
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
