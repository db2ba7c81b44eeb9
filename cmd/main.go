package main

import (
	"context"
	"errors"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/worksearch-bot/internal/bot"
	"github.com/maxaizer/worksearch-bot/internal/clients/gemini"
	"github.com/maxaizer/worksearch-bot/internal/clients/web"
	"github.com/maxaizer/worksearch-bot/internal/config"
	"github.com/maxaizer/worksearch-bot/internal/domain/events"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/maxaizer/worksearch-bot/internal/metrics"
	"github.com/maxaizer/worksearch-bot/internal/repositories"
	"github.com/maxaizer/worksearch-bot/internal/services"
	"github.com/maxaizer/worksearch-bot/internal/sources"
	log "github.com/sirupsen/logrus"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const statsCacheTTL = time.Minute

func newCategorizer(ctx context.Context, cfg *config.Config, categories []string) (*services.Categorizer, func()) {

	if !cfg.AI.Enabled() {
		log.Info("AI key is not set, categories come from keyword rules only")
		return services.NewCategorizer(categories, nil), func() {}
	}

	aiClient, err := gemini.NewClient(ctx, cfg.AI.Key, gemini.Model(cfg.AI.Model))
	if err != nil {
		log.Fatalf("can't create AI client: %v", err)
	}
	aiClient.SetMinuteRateLimit(cfg.AI.MaxRequestsPerMinute)

	return services.NewCategorizer(categories, aiClient), func() { _ = aiClient.Close() }
}

func newScheduler(ctx context.Context, cfg *config.Config, jobs *repositories.Jobs, data *repositories.Data,
	bus EventBus.Bus, cities []string, categories []string) (*services.Scheduler, func()) {

	fetcher := web.NewFetcher(cfg.Scraper.UserAgent, cfg.Scraper.RequestTimeout,
		web.NewRetryPolicy(cfg.Scraper.MaxRetries),
		web.NewPolitenessPolicy(cfg.Scraper.MinDelay, cfg.Scraper.MaxDelay, cfg.Scraper.RequestsPerSecond))

	extractors, err := sources.Build(cfg.Scraper, fetcher)
	if err != nil {
		log.Fatalf("can't create extractors: %v", err)
	}

	categorizer, closeCategorizer := newCategorizer(ctx, cfg, categories)
	normalizer := services.NewNormalizer(cities, categorizer)
	coordinator := services.NewIngestCoordinator(jobs, normalizer, cfg.Scraper.MaxPages)

	return services.NewScheduler(coordinator, extractors, bus, data), closeCategorizer
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metricsServer := metrics.StartMetricsServer(cfg.Metrics.Address)

	dbContext, err := repositories.NewDbContext(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	cities := cfg.Scraper.Cities
	if len(cities) == 0 {
		cities = models.DefaultCities
	}
	categories := cfg.Scraper.Categories
	if len(categories) == 0 {
		categories = models.DefaultCategories
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	users := repositories.NewUsersRepository(dbContext.DB)
	favorites := repositories.NewFavoritesRepository(dbContext.DB)
	history := repositories.NewSearchHistoryRepository(dbContext.DB)
	data := repositories.NewDataRepository(dbContext.DB)
	sessions := repositories.NewSessions(cfg.Search.SessionTTL)

	bus := EventBus.New()

	scheduler, closeCategorizer := newScheduler(ctx, cfg, jobs, data, bus, cities, categories)
	defer closeCategorizer()

	stats := services.NewCachedStats(services.NewStatsService(jobs, users, scheduler), statsCacheTTL)
	if err = bus.Subscribe(events.IngestCompletedTopic, func(events.IngestCompleted) { stats.Invalidate() }); err != nil {
		log.Fatalf("can't subscribe stats cache: %v", err)
	}

	botServices := bot.Services{
		Search: services.NewSearchEngine(jobs, sessions, history, users, favorites,
			cfg.Search.MaxResults, cfg.Search.RandomSample),
		Favorites: services.NewFavorites(users, favorites, jobs, sessions, cfg.Search.MaxResults),
		Stats:     stats,
		Users:     users,
	}
	if cfg.Scraper.Enabled {
		botServices.Ingest = scheduler
	}

	tgbot, err := bot.NewBot(bus, botServices, bot.Options{Config: cfg.Bot, Cities: cities, Categories: categories})
	if err != nil {
		log.Fatalf("can't create bot: %v", err)
	}
	go tgbot.Run()

	if cfg.Scraper.Enabled {
		if err = scheduler.Start(cfg.Scraper.IntervalMinutes); err != nil {
			log.Fatalf("can't start scheduler: %v", err)
		}
	} else {
		log.Info("scraping is disabled, serving stored jobs only")
	}

	cleaner, err := services.NewJobsCleaner(jobs, cfg.Scraper.ExpirationDays)
	if err != nil {
		log.Fatalf("can't create cleaner: %v", err)
	}
	if err = cleaner.Start(); err != nil {
		log.Fatalf("can't start cleaner: %v", err)
	}

	<-ctx.Done()

	log.Info("Shutting down services...")
	tgbot.Stop()
	scheduler.Stop()
	cleaner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("metrics server shutdown: %v", err)
	}
	log.Info("Services stopped.")
}
