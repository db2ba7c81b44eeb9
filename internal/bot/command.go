package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	log "github.com/sirupsen/logrus"
)

type apiInterface interface {
	Send(chattable botApi.Chattable) (botApi.Message, error)
	Request(chattable botApi.Chattable) (*botApi.APIResponse, error)
}

// command handles one slash command. args is the text after the command name.
type command func(b *Bot, msg *botApi.Message, args string)

// callbackHandler handles one callback prefix. value is the data after the prefix.
type callbackHandler func(b *Bot, query *botApi.CallbackQuery, value string)

func sendWithLogError(api apiInterface, chattable botApi.Chattable) (botApi.Message, error) {
	msg, err := api.Send(chattable)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("error occured while sending message: %v", err)
	}
	return msg, err
}

func requestWithLogError(api apiInterface, chattable botApi.Chattable) {
	if _, err := api.Request(chattable); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("error occured while sending request: %v", err)
	}
}

func htmlMessage(chatID int64, text string, markup any) botApi.MessageConfig {
	msg := botApi.NewMessage(chatID, text)
	msg.ParseMode = botApi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return msg
}

func htmlEdit(chatID int64, messageID int, text string, markup *botApi.InlineKeyboardMarkup) botApi.EditMessageTextConfig {
	edit := botApi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = botApi.ModeHTML
	edit.ReplyMarkup = markup
	return edit
}
