package bot

import "github.com/maxaizer/worksearch-bot/internal/domain/models"

// textInput is a free-text answer the bot asked for through a filter button.
type textInput struct {
	apply          func(b *Bot, userID int64, input string) error
	successMessage string
	errorMessage   string
}

var textInputs = map[models.AwaitingInput]textInput{
	models.AwaitingSalary: {
		apply: func(b *Bot, userID int64, input string) error {
			return b.services.Search.SetSalaryMin(userID, input)
		},
		successMessage: "✅ Мінімальну зарплату встановлено",
		errorMessage:   "❌ Введіть число від 0 до 1 000 000, наприклад: 5000",
	},
	models.AwaitingKeywords: {
		apply: func(b *Bot, userID int64, input string) error {
			return b.services.Search.SetKeywords(userID, input)
		},
		successMessage: "✅ Ключові слова встановлено",
		errorMessage:   "❌ Не більше 10 ключових слів через кому, кожне до 50 символів",
	},
}
