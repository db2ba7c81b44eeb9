package bot

import (
	"context"
	"errors"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/services"
	"html"
	"strconv"
	"strings"
)

type prefixHandler struct {
	prefix  string
	handler callbackHandler
}

var exactCallbacks = map[string]callbackHandler{
	mainMenuData: func(b *Bot, query *botApi.CallbackQuery, _ string) {
		b.services.Search.SetAwaiting(query.From.ID, models.AwaitingNothing)
		b.showMainMenu(callbackTarget(query))
	},
	searchData: func(b *Bot, query *botApi.CallbackQuery, _ string) {
		b.showSearchPrompt(callbackTarget(query), query.From.ID)
	},
	randomData: func(b *Bot, query *botApi.CallbackQuery, _ string) {
		b.runSearch(callbackTarget(query), query.From.ID, "")
	},
	filtersData: func(b *Bot, query *botApi.CallbackQuery, _ string) {
		b.services.Search.SetAwaiting(query.From.ID, models.AwaitingNothing)
		b.showFilters(callbackTarget(query), query.From.ID, "")
	},
	favoritesData: func(b *Bot, query *botApi.CallbackQuery, _ string) {
		b.showFavorites(callbackTarget(query), query.From.ID)
	},
	statsData: func(b *Bot, query *botApi.CallbackQuery, _ string) {
		b.showStats(callbackTarget(query))
	},
}

// fav_page_ goes before page_ so the longer prefix wins.
var prefixCallbacks = []prefixHandler{
	{prefix: favoritesPagePrefix, handler: favoritesPageCallback},
	{prefix: pagePrefix, handler: pageCallback},
	{prefix: favoriteAddPrefix, handler: favoriteAddCallback},
	{prefix: favoriteRemovePrefix, handler: favoriteRemoveCallback},
	{prefix: filterPrefix, handler: filterCallback},
	{prefix: cityPrefix, handler: cityCallback},
	{prefix: categoryPrefix, handler: categoryCallback},
	{prefix: employmentPrefix, handler: employmentCallback},
}

func (b *Bot) handleCallback(query *botApi.CallbackQuery) {

	if query.Message == nil {
		b.answer(query, "")
		return
	}

	if handler, ok := exactCallbacks[query.Data]; ok {
		b.answer(query, "")
		handler(b, query, "")
		return
	}

	for _, ph := range prefixCallbacks {
		if value, ok := strings.CutPrefix(query.Data, ph.prefix); ok {
			ph.handler(b, query, value)
			return
		}
	}

	b.answer(query, "Невідома дія")
}

func callbackTarget(query *botApi.CallbackQuery) target {
	return target{chatID: query.Message.Chat.ID, messageID: query.Message.MessageID}
}

func (b *Bot) answer(query *botApi.CallbackQuery, text string) {
	requestWithLogError(b.api, botApi.NewCallback(query.ID, text))
}

// answerError turns state errors into a short notice; anything else is an internal error.
func (b *Bot) answerError(query *botApi.CallbackQuery, err error) {
	if text, ok := softMessage(err); ok {
		b.answer(query, text)
		return
	}
	b.answer(query, "")
	b.reportError(query.Message.Chat.ID, err)
}

func softMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrNoResults):
		return "Немає результатів", true
	case errors.Is(err, services.ErrInvalidPage):
		return "Невірна сторінка", true
	case errors.Is(err, services.ErrJobNotFound):
		return "Вакансія не знайдена", true
	case errors.Is(err, services.ErrAlreadyFavorite):
		return "Вже в улюблених", true
	case errors.Is(err, services.ErrNotFavorite):
		return "Вакансії немає в улюблених", true
	case errors.Is(err, services.ErrUserNotFound):
		return "Користувача не знайдено, надішліть /start", true
	case errors.Is(err, services.ErrInvalidInput):
		return "Невірне значення", true
	}
	return "", false
}

func pageCallback(b *Bot, query *botApi.CallbackQuery, value string) {
	b.turnPage(query, value, pagePrefix, b.services.Search.Page)
}

func favoritesPageCallback(b *Bot, query *botApi.CallbackQuery, value string) {
	b.turnPage(query, value, favoritesPagePrefix, b.services.Favorites.Page)
}

type pager func(ctx context.Context, telegramID int64, n int) (services.Page, error)

func (b *Bot) turnPage(query *botApi.CallbackQuery, value string, prefix string, load pager) {

	n, err := strconv.Atoi(value)
	if err != nil {
		b.answer(query, "Невірна сторінка")
		return
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	page, err := load(ctx, query.From.ID, n)
	if err != nil {
		b.answerError(query, err)
		return
	}
	b.answer(query, "")
	b.renderPage(callbackTarget(query), prefix, page)
}

func favoriteAddCallback(b *Bot, query *botApi.CallbackQuery, value string) {
	b.toggleFavorite(query, value, true)
}

func favoriteRemoveCallback(b *Bot, query *botApi.CallbackQuery, value string) {
	b.toggleFavorite(query, value, false)
}

func (b *Bot) toggleFavorite(query *botApi.CallbackQuery, value string, add bool) {

	jobID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		b.answer(query, "Вакансія не знайдена")
		return
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	var notice string
	if add {
		err = b.services.Favorites.Add(ctx, query.From.ID, uint(jobID))
		notice = "✅ Додано в улюблені"
	} else {
		err = b.services.Favorites.Remove(ctx, query.From.ID, uint(jobID))
		notice = "➖ Видалено з улюблених"
	}

	// A duplicate or missing favorite means the keyboard is stale; fix it anyway.
	switch {
	case err == nil:
		b.answer(query, notice)
	case errors.Is(err, services.ErrAlreadyFavorite), errors.Is(err, services.ErrNotFavorite):
		b.answerError(query, err)
	default:
		b.answerError(query, err)
		return
	}

	markup := withFavoriteButton(query.Message.ReplyMarkup, uint(jobID), add)
	edit := botApi.NewEditMessageReplyMarkup(query.Message.Chat.ID, query.Message.MessageID, markup)
	_, _ = sendWithLogError(b.api, edit)
}

func filterCallback(b *Bot, query *botApi.CallbackQuery, value string) {

	userID := query.From.ID
	to := callbackTarget(query)
	filters := b.services.Search.Filters(userID)
	b.answer(query, "")

	switch value {
	case "city":
		b.render(to, "🏙️ Оберіть місто:", cityKeyboard(b.options.Cities, filters.City))
	case "category":
		b.render(to, "📋 Оберіть категорію:", categoryKeyboard(b.options.Categories, filters.Category))
	case "employment":
		b.render(to, "⏰ Оберіть тип зайнятості:", employmentKeyboard(filters.EmploymentType))
	case "salary":
		b.services.Search.SetAwaiting(userID, models.AwaitingSalary)
		b.render(to, salaryPromptText, backToMenuKeyboard())
	case "keywords":
		b.services.Search.SetAwaiting(userID, models.AwaitingKeywords)
		b.render(to, keywordsPromptText, backToMenuKeyboard())
	case "reset":
		b.services.Search.ResetFilters(userID)
		b.showFilters(to, userID, "✅ Фільтри скинуто")
	default:
		b.showFilters(to, userID, "")
	}
}

func cityCallback(b *Bot, query *botApi.CallbackQuery, value string) {
	b.answer(query, "")
	b.services.Search.SetCity(query.From.ID, value)
	b.showFilters(callbackTarget(query), query.From.ID, "✅ Місто встановлено: "+choiceLabel(value, value, "Всі міста"))
}

func categoryCallback(b *Bot, query *botApi.CallbackQuery, value string) {
	b.answer(query, "")
	b.services.Search.SetCategory(query.From.ID, value)
	b.showFilters(callbackTarget(query), query.From.ID, "✅ Категорія встановлена: "+choiceLabel(value, value, "Всі категорії"))
}

func employmentCallback(b *Bot, query *botApi.CallbackQuery, value string) {
	if err := b.services.Search.SetEmploymentType(query.From.ID, value); err != nil {
		b.answerError(query, err)
		return
	}
	b.answer(query, "")
	label := choiceLabel(value, models.EmploymentTypeLabel(value), "Всі типи")
	b.showFilters(callbackTarget(query), query.From.ID, "✅ Тип зайнятості встановлено: "+label)
}

func choiceLabel(value string, label string, allLabel string) string {
	if value == allValue {
		return allLabel
	}
	return html.EscapeString(label)
}
