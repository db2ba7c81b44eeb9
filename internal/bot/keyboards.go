package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/samber/lo"
	"strconv"
)

const (
	mainMenuData         = "main_menu"
	searchData           = "search"
	randomData           = "random"
	favoritesData        = "favorites"
	statsData            = "stats"
	filtersData          = "filters"
	pagePrefix           = "page_"
	favoritesPagePrefix  = "fav_page_"
	favoriteAddPrefix    = "favorite_add_"
	favoriteRemovePrefix = "favorite_remove_"
	filterPrefix         = "filter_"
	cityPrefix           = "city_"
	categoryPrefix       = "category_"
	employmentPrefix     = "employment_"
	allValue             = "all"

	cityButtonsLimit = 12
)

func mainMenuKeyboard() botApi.InlineKeyboardMarkup {
	return botApi.NewInlineKeyboardMarkup(
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("🔍 Пошук вакансій", searchData),
			botApi.NewInlineKeyboardButtonData("🎲 Випадкові", randomData),
		),
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("⚙️ Фільтри", filtersData),
			botApi.NewInlineKeyboardButtonData("⭐ Улюблені", favoritesData),
		),
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("📊 Статистика", statsData),
		),
	)
}

func backToMenuKeyboard() botApi.InlineKeyboardMarkup {
	return botApi.NewInlineKeyboardMarkup(backToMenuRow())
}

func backToMenuRow() []botApi.InlineKeyboardButton {
	return botApi.NewInlineKeyboardRow(botApi.NewInlineKeyboardButtonData("◀️ Головне меню", mainMenuData))
}

func filtersKeyboard() botApi.InlineKeyboardMarkup {
	return botApi.NewInlineKeyboardMarkup(
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("🏙️ Місто", filterPrefix+"city"),
			botApi.NewInlineKeyboardButtonData("💰 Зарплата", filterPrefix+"salary"),
		),
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("📋 Категорія", filterPrefix+"category"),
			botApi.NewInlineKeyboardButtonData("⏰ Тип роботи", filterPrefix+"employment"),
		),
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("🔑 Ключові слова", filterPrefix+"keywords"),
			botApi.NewInlineKeyboardButtonData("❌ Скинути фільтри", filterPrefix+"reset"),
		),
		backToMenuRow(),
	)
}

type choice struct {
	label string
	value string
}

// choiceKeyboard lays options out two per row and marks the selected one.
func choiceKeyboard(prefix string, choices []choice, selected string, allLabel string) botApi.InlineKeyboardMarkup {
	rows := lo.Map(lo.Chunk(choices, 2), func(chunk []choice, _ int) []botApi.InlineKeyboardButton {
		return lo.Map(chunk, func(c choice, _ int) botApi.InlineKeyboardButton {
			label := lo.Ternary(c.value == selected, "✅ "+c.label, c.label)
			return botApi.NewInlineKeyboardButtonData(label, prefix+c.value)
		})
	})
	rows = append(rows, botApi.NewInlineKeyboardRow(
		botApi.NewInlineKeyboardButtonData(allLabel, prefix+allValue),
		botApi.NewInlineKeyboardButtonData("◀️ Назад", filtersData),
	))
	return botApi.NewInlineKeyboardMarkup(rows...)
}

func cityKeyboard(cities []string, selected string) botApi.InlineKeyboardMarkup {
	choices := lo.Map(lo.Slice(cities, 0, cityButtonsLimit), func(city string, _ int) choice {
		return choice{label: city, value: city}
	})
	return choiceKeyboard(cityPrefix, choices, selected, "Всі міста")
}

func categoryKeyboard(categories []string, selected string) botApi.InlineKeyboardMarkup {
	choices := lo.Map(categories, func(category string, _ int) choice {
		return choice{label: category, value: category}
	})
	return choiceKeyboard(categoryPrefix, choices, selected, "Всі категорії")
}

func employmentKeyboard(selected string) botApi.InlineKeyboardMarkup {
	choices := lo.Map(models.EmploymentTypes, func(t models.EmploymentType, _ int) choice {
		return choice{label: t.Label, value: t.Key}
	})
	return choiceKeyboard(employmentPrefix, choices, selected, "Всі типи")
}

// paginationKeyboard shows cyclic navigation, the favorite toggle and the menu button.
func paginationKeyboard(prefix string, page int, total int, jobID uint, isFavorite bool) botApi.InlineKeyboardMarkup {

	var rows [][]botApi.InlineKeyboardButton

	if total > 1 {
		rows = append(rows, botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("◀️ Попередня", prefix+strconv.Itoa(page-1)),
			botApi.NewInlineKeyboardButtonData(fmt.Sprintf("%d / %d", page, total), prefix+strconv.Itoa(page)),
			botApi.NewInlineKeyboardButtonData("Наступна ▶️", prefix+strconv.Itoa(page+1)),
		))
	}

	rows = append(rows, botApi.NewInlineKeyboardRow(favoriteButton(jobID, isFavorite)))
	rows = append(rows, backToMenuRow())
	return botApi.NewInlineKeyboardMarkup(rows...)
}

func favoriteButton(jobID uint, isFavorite bool) botApi.InlineKeyboardButton {
	id := strconv.FormatUint(uint64(jobID), 10)
	if isFavorite {
		return botApi.NewInlineKeyboardButtonData("➖ Видалити з улюблених", favoriteRemovePrefix+id)
	}
	return botApi.NewInlineKeyboardButtonData("➕ Додати в улюблені", favoriteAddPrefix+id)
}

// withFavoriteButton returns a copy of markup with the toggle for jobID flipped.
func withFavoriteButton(markup *botApi.InlineKeyboardMarkup, jobID uint, isFavorite bool) botApi.InlineKeyboardMarkup {
	if markup == nil {
		return botApi.NewInlineKeyboardMarkup(botApi.NewInlineKeyboardRow(favoriteButton(jobID, isFavorite)))
	}

	current := []string{
		favoriteAddPrefix + strconv.FormatUint(uint64(jobID), 10),
		favoriteRemovePrefix + strconv.FormatUint(uint64(jobID), 10),
	}
	rows := lo.Map(markup.InlineKeyboard, func(row []botApi.InlineKeyboardButton, _ int) []botApi.InlineKeyboardButton {
		return lo.Map(row, func(button botApi.InlineKeyboardButton, _ int) botApi.InlineKeyboardButton {
			if button.CallbackData != nil && lo.Contains(current, *button.CallbackData) {
				return favoriteButton(jobID, isFavorite)
			}
			return button
		})
	})
	return botApi.NewInlineKeyboardMarkup(rows...)
}
