package bot

import (
	"errors"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/services"
	log "github.com/sirupsen/logrus"
)

var commands = map[string]command{
	"start":       startCommand,
	"help":        helpCommand,
	"search":      searchCommand,
	"random":      randomCommand,
	"filters":     filtersCommand,
	"favorites":   favoritesCommand,
	"stats":       statsCommand,
	"update_jobs": updateJobsCommand,
}

func startCommand(b *Bot, msg *botApi.Message, _ string) {
	b.services.Search.SetAwaiting(msg.From.ID, models.AwaitingNothing)
	b.showMainMenu(target{chatID: msg.Chat.ID})
}

func helpCommand(b *Bot, msg *botApi.Message, _ string) {
	_, _ = sendWithLogError(b.api, htmlMessage(msg.Chat.ID, helpText, backToMenuKeyboard()))
}

func searchCommand(b *Bot, msg *botApi.Message, args string) {
	if args == "" {
		b.showSearchPrompt(target{chatID: msg.Chat.ID}, msg.From.ID)
		return
	}
	b.runSearch(target{chatID: msg.Chat.ID}, msg.From.ID, args)
}

func randomCommand(b *Bot, msg *botApi.Message, _ string) {
	b.runSearch(target{chatID: msg.Chat.ID}, msg.From.ID, "")
}

func filtersCommand(b *Bot, msg *botApi.Message, _ string) {
	b.showFilters(target{chatID: msg.Chat.ID}, msg.From.ID, "")
}

func favoritesCommand(b *Bot, msg *botApi.Message, _ string) {
	b.showFavorites(target{chatID: msg.Chat.ID}, msg.From.ID)
}

func statsCommand(b *Bot, msg *botApi.Message, _ string) {
	b.showStats(target{chatID: msg.Chat.ID})
}

func updateJobsCommand(b *Bot, msg *botApi.Message, _ string) {

	userID := msg.From.ID
	if !b.options.Config.IsAdmin(userID) {
		log.Warnf("user %d tried to trigger ingest without admin rights", userID)
		_, _ = sendWithLogError(b.api, botApi.NewMessage(msg.Chat.ID, "⛔ Команда доступна лише адміністраторам."))
		return
	}

	if b.services.Ingest == nil {
		_, _ = sendWithLogError(b.api, botApi.NewMessage(msg.Chat.ID, "❌ Збір вакансій вимкнено в конфігурації."))
		return
	}

	if !b.services.Ingest.TriggerAsync(userID) {
		_, _ = sendWithLogError(b.api, botApi.NewMessage(msg.Chat.ID, "⏳ Оновлення вже виконується, дочекайтеся звіту."))
		return
	}

	log.Infof("ingest triggered by admin %d", userID)
	_, _ = sendWithLogError(b.api, botApi.NewMessage(msg.Chat.ID, "🔄 Оновлення вакансій запущено. Звіт прийде після завершення."))
}

func (b *Bot) showMainMenu(to target) {
	b.render(to, startText, mainMenuKeyboard())
}

func (b *Bot) showSearchPrompt(to target, userID int64) {
	b.services.Search.SetAwaiting(userID, models.AwaitingNothing)
	b.render(to, searchPromptText, backToMenuKeyboard())
}

func (b *Bot) showFilters(to target, userID int64, notice string) {
	text := formatFilters(b.services.Search.Filters(userID))
	if notice != "" {
		text = notice + "\n\n" + text
	}
	b.render(to, text, filtersKeyboard())
}

func (b *Bot) showFavorites(to target, userID int64) {

	ctx, cancel := b.requestContext()
	defer cancel()

	page, err := b.services.Favorites.List(ctx, userID)
	if errors.Is(err, services.ErrNoResults) || errors.Is(err, services.ErrUserNotFound) {
		b.render(to, noFavoritesText, backToMenuKeyboard())
		return
	}
	if err != nil {
		b.reportError(to.chatID, err)
		return
	}
	b.renderPage(to, favoritesPagePrefix, page)
}

func (b *Bot) showStats(to target) {

	ctx, cancel := b.requestContext()
	defer cancel()

	stats, err := b.services.Stats.Get(ctx)
	if err != nil {
		b.reportError(to.chatID, err)
		return
	}
	b.render(to, formatStats(stats), backToMenuKeyboard())
}
