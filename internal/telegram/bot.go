package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cantine-planner/internal/app"
	"cantine-planner/internal/config"
	"cantine-planner/internal/planner"
)

// contextBloatTokens triggers an admin alert when one prompt grows past it.
const contextBloatTokens = 4000

// Bot wraps the Telegram API around the kitchen application.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{api: bot, app: a, cfg: cfg}, nil
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", b.app.Collector().Handler())
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if b.isAllowed(update.CallbackQuery.From.ID) {
			go b.handleCallbackQuery(update.CallbackQuery)
		}
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return userID != 0 && userID == b.cfg.AdminTelegramID
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	// URLs go to the clipper.
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClipperRequest(msg, text)
		return
	}

	cmd, arg := parseCommand(text)
	switch cmd {
	case "plan":
		b.handlePlanRequest(msg, arg)
	case "week":
		b.handleWeekRequest(msg.Chat.ID, arg)
	case "waste":
		b.handleWasteRequest(msg.Chat.ID, arg)
	case "needs":
		b.handleNeedsRequest(msg.Chat.ID, arg)
	case "alerts":
		b.handleAlertsRequest(msg.Chat.ID)
	case "metrics":
		b.handleMetricsRequest(msg)
	default:
		b.sendMarkdown(msg.Chat.ID, helpText)
	}
}

func (b *Bot) handleClipperRequest(msg *tgbotapi.Message, url string) {
	sentMsg, err := b.sendMarkdown(msg.Chat.ID, "✂️ *Clipping recipe...*\n(Extracting it into the catalogue)")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := b.app.ClipRecipe(ctx, url)
	var finalText string
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		finalText = formatError("Error clipping recipe", err)
	} else {
		r := res.Recipe
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Name:* %s\n*Course:* %s\n*ID:* `%s`", r.Name, r.Course.Label(), r.ID)
		b.checkContextBloat(res.Meta.AgentName, res.Meta.Usage.Model, res.Meta.Usage.PromptTokens)
	}
	b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, finalText)
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message, arg string) {
	weekID, err := b.app.ResolveWeek(defaultWeek(arg))
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("Invalid week", err))
		return
	}

	sentMsg, err := b.sendMarkdown(msg.Chat.ID, "🧑‍🍳 *Planning...*\n(Matching recipes against stock)")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()

	// Ask before replacing an existing week.
	if _, err := b.app.Plan(ctx, weekID); err == nil {
		following, _ := planner.ShiftWeek(weekID, 1)
		promptText := fmt.Sprintf("🗓️ A plan already exists for *%s*.\nWhat would you like to do?", weekID)
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Replace "+weekID, "replace|"+weekID),
				tgbotapi.NewInlineKeyboardButtonData("⏭️ Plan "+following, "replace|"+following),
			),
		)
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, promptText)
		edit.ParseMode = tgbotapi.ModeMarkdown
		edit.ReplyMarkup = &keyboard
		b.api.Send(edit)
		return
	}

	b.autoFillAndSend(ctx, msg.Chat.ID, sentMsg.MessageID, weekID)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	action, weekID, ok := strings.Cut(query.Data, "|")
	if !ok || action != "replace" || query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	b.editMarkdown(chatID, query.Message.MessageID, "🧑‍🍳 *Planning...*")
	b.autoFillAndSend(context.Background(), chatID, query.Message.MessageID, weekID)
}

func (b *Bot) autoFillAndSend(ctx context.Context, chatID int64, messageID int, weekID string) {
	log.Printf("Auto-filling week %s from Telegram", weekID)

	plan, report, err := b.app.AutoFill(ctx, weekID)
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		b.editMarkdown(chatID, messageID, formatError("Error generating plan", err))
		return
	}

	cat, err := b.app.Catalogue(ctx)
	if err != nil {
		b.editMarkdown(chatID, messageID, formatError("Error loading catalogue", err))
		return
	}
	comp := planner.ComputeMetrics(plan, cat)

	b.editMarkdown(chatID, messageID, formatPlanMarkdown(plan, cat, comp))
	if len(report.EmptySlots) > 0 {
		b.sendMarkdown(chatID, formatEmptySlotsMarkdown(report.EmptySlots))
	}
}

func (b *Bot) handleWeekRequest(chatID int64, arg string) {
	ctx := context.Background()
	weekID, err := b.app.ResolveWeek(arg)
	if err != nil {
		b.sendMarkdown(chatID, formatError("Invalid week", err))
		return
	}
	plan, err := b.app.Plan(ctx, weekID)
	if err != nil {
		b.sendMarkdown(chatID, planError(weekID, err))
		return
	}
	cat, err := b.app.Catalogue(ctx)
	if err != nil {
		b.sendMarkdown(chatID, formatError("Error loading catalogue", err))
		return
	}
	b.sendMarkdown(chatID, formatPlanMarkdown(plan, cat, planner.ComputeMetrics(plan, cat)))
}

func (b *Bot) handleWasteRequest(chatID int64, arg string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	weekID, err := b.app.ResolveWeek(arg)
	if err != nil {
		b.sendMarkdown(chatID, formatError("Invalid week", err))
		return
	}
	summary, err := b.app.Summary(ctx, weekID)
	if err != nil {
		b.sendMarkdown(chatID, planError(weekID, err))
		return
	}
	res, err := b.app.Advice(ctx, weekID)
	if err != nil {
		b.sendMarkdown(chatID, planError(weekID, err))
		return
	}
	b.checkContextBloat(res.Meta.AgentName, res.Meta.Usage.Model, res.Meta.Usage.PromptTokens)
	b.sendMarkdown(chatID, formatWasteMarkdown(summary, res.Advice))
}

func (b *Bot) handleNeedsRequest(chatID int64, arg string) {
	ctx := context.Background()
	weekID, err := b.app.ResolveWeek(arg)
	if err != nil {
		b.sendMarkdown(chatID, formatError("Invalid week", err))
		return
	}
	list, err := b.app.Needs(ctx, weekID, 0)
	if err != nil {
		b.sendMarkdown(chatID, planError(weekID, err))
		return
	}
	b.sendMarkdown(chatID, formatNeedsMarkdown(list))
}

func (b *Bot) handleAlertsRequest(chatID int64) {
	alerts, err := b.app.Alerts(context.Background())
	if err != nil {
		b.sendMarkdown(chatID, formatError("Error reading stock", err))
		return
	}
	b.sendMarkdown(chatID, formatAlertsMarkdown(alerts))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.app.DailyUsage(context.Background(), 7)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatMetricsMarkdown(usage, b.app.Health()))
}

// checkContextBloat alerts the admin about oversized prompts.
func (b *Bot) checkContextBloat(agent, model string, promptTokens int) {
	if promptTokens <= contextBloatTokens {
		return
	}
	b.sendAdminAlert(fmt.Sprintf("⚠️ *Context Bloat Alert*\nAgent: %s\nModel: %s\nPrompt Tokens: %d", agent, model, promptTokens))
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.sendMarkdown(b.cfg.AdminTelegramID, text)
}

func (b *Bot) sendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.api.Send(msg)
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d: %v", messageID, err)
	}
}

// defaultWeek makes /plan target next week unless told otherwise.
func defaultWeek(arg string) string {
	if arg == "" {
		return "next"
	}
	return arg
}

func planError(weekID string, err error) string {
	if errors.Is(err, planner.ErrPlanNotFound) {
		return fmt.Sprintf("🤷 No plan for *%s* yet. Send `/plan %s` to create one.", weekID, weekID)
	}
	return formatError("Error", err)
}
