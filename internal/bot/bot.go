package bot

import (
	"context"
	"errors"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/worksearch-bot/internal/config"
	"github.com/maxaizer/worksearch-bot/internal/domain/events"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/maxaizer/worksearch-bot/internal/services"
	log "github.com/sirupsen/logrus"
	"strings"
	"sync"
	"time"
)

type searchEngine interface {
	Search(ctx context.Context, telegramID int64, query string) (services.Page, error)
	Page(ctx context.Context, telegramID int64, n int) (services.Page, error)
	Filters(telegramID int64) models.Filters
	Awaiting(telegramID int64) models.AwaitingInput
	SetAwaiting(telegramID int64, mode models.AwaitingInput)
	SetCity(telegramID int64, city string)
	SetCategory(telegramID int64, category string)
	SetEmploymentType(telegramID int64, employmentType string) error
	SetSalaryMin(telegramID int64, input string) error
	SetKeywords(telegramID int64, input string) error
	ResetFilters(telegramID int64)
}

type favoritesService interface {
	Add(ctx context.Context, telegramID int64, jobID uint) error
	Remove(ctx context.Context, telegramID int64, jobID uint) error
	List(ctx context.Context, telegramID int64) (services.Page, error)
	Page(ctx context.Context, telegramID int64, n int) (services.Page, error)
}

type statsProvider interface {
	Get(ctx context.Context) (services.Stats, error)
}

type ingestTrigger interface {
	TriggerAsync(requestedBy int64) bool
}

type userRegistry interface {
	Register(ctx context.Context, user models.User) (*models.User, error)
}

type Services struct {
	Search    searchEngine
	Favorites favoritesService
	Stats     statsProvider
	Users     userRegistry
	// Ingest is nil when scraping is disabled.
	Ingest ingestTrigger
}

type Options struct {
	Config     config.BotConfig
	Cities     []string
	Categories []string
}

type Bot struct {
	client     *botApi.BotAPI
	api        apiInterface
	bus        EventBus.Bus
	services   Services
	options    Options
	commands   map[string]command
	registered sync.Map
	waitGroup  sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	now        func() time.Time
}

const requestTimeout = 30 * time.Second

func NewBot(bus EventBus.Bus, services Services, options Options) (*Bot, error) {

	client, err := botApi.NewBotAPI(options.Config.Token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", client.Self.UserName)

	if err = botApi.SetLogger(log.StandardLogger()); err != nil {
		return nil, err
	}

	createdBot, err := newBot(client, bus, services, options)
	if err != nil {
		return nil, err
	}
	createdBot.client = client
	return createdBot, nil
}

func newBot(api apiInterface, bus EventBus.Bus, services Services, options Options) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if services.Search == nil {
		return nil, errors.New("search engine is nil")
	}
	if services.Favorites == nil {
		return nil, errors.New("favorites service is nil")
	}
	if services.Stats == nil {
		return nil, errors.New("stats service is nil")
	}
	if services.Users == nil {
		return nil, errors.New("users repository is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	createdBot := &Bot{
		api:      api,
		bus:      bus,
		services: services,
		options:  options,
		commands: commands,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}

	if err := bus.Subscribe(events.IngestCompletedTopic, createdBot.onIngestCompleted); err != nil {
		cancel()
		return nil, err
	}
	return createdBot, nil
}

// Run long-polls updates until Stop is called.
func (b *Bot) Run() {

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.client.GetUpdatesChan(updateConfig)

	for update := range updates {
		b.waitGroup.Add(1)
		go func(update botApi.Update) {
			defer b.waitGroup.Done()
			b.handleUpdate(update)
		}(update)
	}
}

func (b *Bot) Stop() {
	if b.client != nil {
		b.client.StopReceivingUpdates()
	}
	_ = b.bus.Unsubscribe(events.IngestCompletedTopic, b.onIngestCompleted)
	b.cancel()
	b.waitGroup.Wait()
}

func (b *Bot) handleUpdate(update botApi.Update) {

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic while handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.Message != nil:
		if !update.Message.Chat.IsPrivate() {
			return
		}
		b.registerUser(update.Message.From)
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		b.registerUser(update.CallbackQuery.From)
		b.handleCallback(update.CallbackQuery)
	}
}

// registerUser stores the sender once per process; later profile changes are
// picked up after a restart.
func (b *Bot) registerUser(user *botApi.User) {
	if user == nil {
		return
	}
	if _, loaded := b.registered.LoadOrStore(user.ID, struct{}{}); loaded {
		return
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	_, err := b.services.Users.Register(ctx, models.User{
		TelegramID:   user.ID,
		Username:     user.UserName,
		FirstName:    user.FirstName,
		LanguageCode: user.LanguageCode,
	})
	if err != nil {
		b.registered.Delete(user.ID)
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to register user %d: %v", user.ID, err)
	}
}

func (b *Bot) handleMessage(message *botApi.Message) {

	if name := message.Command(); name != "" {
		cmd, ok := b.commands[name]
		if !ok {
			_, _ = sendWithLogError(b.api, botApi.NewMessage(message.Chat.ID, unknownCommandText))
			return
		}
		cmd(b, message, strings.TrimSpace(message.CommandArguments()))
		return
	}

	b.handleText(message)
}

func (b *Bot) handleText(message *botApi.Message) {

	userID, chatID := message.From.ID, message.Chat.ID
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	if input, ok := textInputs[b.services.Search.Awaiting(userID)]; ok {
		if err := input.apply(b, userID, text); err != nil {
			if !errors.Is(err, services.ErrInvalidInput) {
				b.reportError(chatID, err)
				return
			}
			_, _ = sendWithLogError(b.api, htmlMessage(chatID, input.errorMessage, backToMenuKeyboard()))
			return
		}
		filters := b.services.Search.Filters(userID)
		_, _ = sendWithLogError(b.api, htmlMessage(chatID, input.successMessage+"\n\n"+formatFilters(filters), filtersKeyboard()))
		return
	}

	b.runSearch(target{chatID: chatID}, userID, text)
}

// target is where a response goes: a new message, or an edit when messageID is set.
type target struct {
	chatID    int64
	messageID int
}

func (b *Bot) render(to target, text string, markup botApi.InlineKeyboardMarkup) {
	if to.messageID == 0 {
		_, _ = sendWithLogError(b.api, htmlMessage(to.chatID, text, markup))
		return
	}
	_, _ = sendWithLogError(b.api, htmlEdit(to.chatID, to.messageID, text, &markup))
}

func (b *Bot) runSearch(to target, userID int64, query string) {

	ctx, cancel := b.requestContext()
	defer cancel()

	page, err := b.services.Search.Search(ctx, userID, query)
	if errors.Is(err, services.ErrNoResults) {
		b.render(to, noResultsText, backToMenuKeyboard())
		return
	}
	if err != nil {
		b.reportError(to.chatID, err)
		return
	}
	b.renderPage(to, pagePrefix, page)
}

func (b *Bot) renderPage(to target, prefix string, page services.Page) {
	markup := paginationKeyboard(prefix, page.Number, page.Total, page.Job.ID, page.IsFavorite)
	b.render(to, formatJob(page.Job, b.now()), markup)
}

func (b *Bot) reportError(chatID int64, err error) {
	log.Errorf("error while handling request from chat %d: %v", chatID, err)
	_, _ = sendWithLogError(b.api, botApi.NewMessage(chatID, internalErrorText))
}

func (b *Bot) onIngestCompleted(event events.IngestCompleted) {
	if event.RequestedBy == 0 {
		return
	}
	_, _ = sendWithLogError(b.api, htmlMessage(event.RequestedBy, formatReport(event.Report), nil))
}

func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, requestTimeout)
}
