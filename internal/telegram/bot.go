package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/daily"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/feedback"
	"ai-diet-planner/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const requestTimeout = 2 * time.Minute

// Assistant is the part of daily.Assistant the bot drives.
type Assistant interface {
	Handle(ctx context.Context, userID, message string, date time.Time) (daily.Result, error)
	NewPlan(ctx context.Context, userID string, date time.Time) (daily.Result, error)
	Confirm(ctx context.Context, userID, pendingID string) (daily.Result, error)
	DailyStatus(ctx context.Context, userID string, date time.Time) (daily.StatusReport, error)
	SubmitFeedback(ctx context.Context, userID, text string, date time.Time) (daily.Result, error)
	FeedbackSummary(ctx context.Context, userID string, days int, today time.Time) (feedback.Summary, error)
	Today() time.Time
}

// sender is the part of tgbotapi.BotAPI used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the diet assistant.
type Bot struct {
	api          *tgbotapi.BotAPI
	out          sender
	assistant    Assistant
	metricsStore *metrics.Store
	cfg          *config.Config
	logger       zerolog.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook. metricsStore
// may be nil, in which case /metrics only reports system health.
func NewBot(cfg *config.Config, assistant Assistant, metricsStore *metrics.Store, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger = logger.With().Str("component", "telegram").Logger()
	logger.Info().Str("account", api.Self.UserName).Msg("authorized")

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info().Str("description", resp.Description).Msg("webhook set")

	return &Bot{
		api:          api,
		out:          api,
		assistant:    assistant,
		metricsStore: metricsStore,
		cfg:          cfg,
		logger:       logger,
	}, nil
}

// WebhookHandler handles updates pushed by Telegram. Each update is
// processed before the response is written so Telegram redelivers it if
// the process dies midway.
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			b.logger.Warn().Err(err).Msg("error parsing update")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		b.handleUpdate(ctx, update)
		w.WriteHeader(http.StatusOK)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if b.allowed(update.CallbackQuery.From) {
			b.handleCallbackQuery(ctx, update.CallbackQuery)
		}
	case update.Message != nil:
		if b.allowed(update.Message.From) {
			b.processMessage(ctx, update.Message)
		}
	}
}

// allowed reports whether from may use the bot. An empty allow-list
// admits everyone.
func (b *Bot) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if from.ID == id {
			return true
		}
	}
	b.logger.Warn().Int64("telegram_id", from.ID).Str("username", from.UserName).Msg("unauthorized access attempt")
	return false
}

func userID(from *tgbotapi.User) string {
	return strconv.FormatInt(from.ID, 10)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	uid := userID(msg.From)
	today := b.assistant.Today()

	switch msg.Command() {
	case "start":
		report, err := b.assistant.DailyStatus(ctx, uid, today)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.send(msg.Chat.ID, "👋 "+escapeMarkdown(report.Greeting)+"\n\nTell me about yourself or ask for today's diet plan.", nil)
		return
	case "status":
		report, err := b.assistant.DailyStatus(ctx, uid, today)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.send(msg.Chat.ID, formatStatusMarkdown(report), nil)
		return
	case "feedback":
		text := strings.TrimSpace(msg.CommandArguments())
		if text == "" {
			b.send(msg.Chat.ID, "Usage: `/feedback how today's plan went`", nil)
			return
		}
		res, err := b.assistant.SubmitFeedback(ctx, uid, text, today)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.sendResult(msg.Chat.ID, res)
		return
	case "summary":
		days, _ := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
		s, err := b.assistant.FeedbackSummary(ctx, uid, days, today)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.send(msg.Chat.ID, formatSummaryMarkdown(s), nil)
		return
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.send(msg.Chat.ID, "⛔ *Access Denied*: Admin only.", nil)
			return
		}
		b.handleMetricsCommand(ctx, msg.Chat.ID)
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	b.logger.Debug().Str("user_id", uid).Msg("handling message")
	res, err := b.assistant.Handle(ctx, uid, msg.Text, today)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	b.sendResult(msg.Chat.ID, res)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.out.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("failed to answer callback")
	}
	if query.Message == nil {
		return
	}

	action, arg, ok := strings.Cut(query.Data, "|")
	if !ok {
		return
	}
	uid := userID(query.From)
	chatID := query.Message.Chat.ID

	var res daily.Result
	var err error
	switch action {
	case "confirm":
		res, err = b.assistant.Confirm(ctx, uid, arg)
		if errors.Is(err, domain.ErrNotFound) {
			b.send(chatID, "⌛ That plan has expired. Ask me for a new one.", nil)
			return
		}
	case "regen":
		date, perr := domain.ParseDate(arg)
		if perr != nil {
			return
		}
		res, err = b.assistant.NewPlan(ctx, uid, date)
	default:
		return
	}
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	// Drop the buttons from the message that was answered.
	strip := tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.out.Request(strip); err != nil {
		b.logger.Debug().Err(err).Msg("failed to clear keyboard")
	}
	b.sendResult(chatID, res)
}

func (b *Bot) sendResult(chatID int64, res daily.Result) {
	var markup any
	if res.RequiresConfirmation && res.PendingID != "" {
		markup = confirmKeyboard(res)
	}
	b.send(chatID, formatResultMarkdown(res), markup)
}

func confirmKeyboard(res daily.Result) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "confirm|"+res.PendingID),
			tgbotapi.NewInlineKeyboardButtonData("🔄 New plan", "regen|"+res.Date),
		),
	)
}

func (b *Bot) send(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

func (b *Bot) replyError(chatID int64, err error) {
	b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("request failed")
	b.send(chatID, "❌ Something went wrong on my side. Please try again later.", nil)
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	var usage []metrics.DailyUsage
	if b.metricsStore != nil {
		var err error
		if usage, err = b.metricsStore.GetDailyUsage(ctx, 7); err != nil {
			b.send(chatID, "❌ Error fetching metrics.", nil)
			return
		}
	}

	health := metrics.ReadHealth(b.cfg.DataDir())

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs, %d failed)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataSize())

	b.send(chatID, sb.String(), nil)
}
