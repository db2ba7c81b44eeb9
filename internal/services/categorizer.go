package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

type categoryRule struct {
	category string
	tokens   []string
}

var categoryRules = []categoryRule{
	{category: "IT", tokens: []string{"programist", "developer", "devops", "tester", "frontend", "backend", "software", "informaty"}},
	{category: "Obsługa klienta", tokens: []string{"obsługa klienta", "obsługi klienta", "konsultant", "call center", "recepcj"}},
	{category: "Sprzedaż", tokens: []string{"sprzedaw", "handlow", "sales", "kasjer"}},
	{category: "Logistyka", tokens: []string{"magazyn", "logisty", "kierowca", "kurier", "spedyt", "wózk"}},
	{category: "Produkcja", tokens: []string{"produkc", "operator maszyn", "monter", "pracownik fizyczny"}},
	{category: "Budownictwo", tokens: []string{"budow", "murarz", "elektryk", "hydraulik", "cieśl"}},
	{category: "Gastronomia", tokens: []string{"kucharz", "kelner", "barista", "gastronom", "pizzer"}},
	{category: "Finanse", tokens: []string{"księgow", "finans", "kontroler"}},
	{category: "Marketing", tokens: []string{"marketing", "social media", "copywriter"}},
	{category: "Medycyna", tokens: []string{"pielęgniar", "lekarz", "ratownik", "medyczn", "farmaceut", "fizjoterapeut"}},
	{category: "Edukacja", tokens: []string{"nauczyciel", "lektor", "wychowaw", "korepetyt"}},
}

// Categorizer assigns one of the configured categories to a job: keyword rules
// on the title first, then the AI model if one is configured.
type Categorizer struct {
	categories []string
	rules      []categoryRule
	aiClient   aiClient
	cache      *gocache.Cache
}

func NewCategorizer(categories []string, aiClient aiClient) *Categorizer {
	rules := lo.Filter(categoryRules, func(rule categoryRule, _ int) bool {
		return lo.Contains(categories, rule.category)
	})
	return &Categorizer{
		categories: categories,
		rules:      rules,
		aiClient:   aiClient,
		cache:      gocache.New(24*time.Hour, time.Hour),
	}
}

func (c *Categorizer) Categorize(ctx context.Context, title string, description string) *string {

	if category, ok := c.byKeywords(title); ok {
		return &category
	}
	if c.aiClient == nil || title == "" {
		return nil
	}

	cacheID := categoryCacheID(title)
	if cached, found := c.cache.Get(cacheID); found {
		return cached.(*string)
	}

	category := c.byModel(ctx, title, description)
	c.cache.Set(cacheID, category, gocache.DefaultExpiration)
	return category
}

func (c *Categorizer) byKeywords(title string) (string, bool) {
	lowered := strings.ToLower(title)
	rule, found := lo.Find(c.rules, func(rule categoryRule) bool {
		return lo.SomeBy(rule.tokens, func(token string) bool { return strings.Contains(lowered, token) })
	})
	return rule.category, found
}

func (c *Categorizer) byModel(ctx context.Context, title string, description string) *string {

	response, err := c.aiClient.GenerateResponse(ctx, c.categoryRequest(title, description))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).Errorf("failed to categorize %q: %v", title, err)
		return nil
	}

	answer := strings.Trim(strings.TrimSpace(strings.ReplaceAll(response, "*", "")), ".\"'")
	category, found := lo.Find(c.categories, func(category string) bool {
		return strings.EqualFold(category, answer)
	})
	if !found {
		log.Infof("model answered %q for %q, not a known category", response, title)
		return nil
	}
	return &category
}

func (c *Categorizer) categoryRequest(title string, description string) string {
	const maxDescription = 1000
	if runes := []rune(description); len(runes) > maxDescription {
		description = string(runes[:maxDescription])
	}

	request := "Stanowisko: " + title
	if description != "" {
		request += " Opis: " + description
	}
	request += " Przypisz ogłoszenie do dokładnie jednej kategorii z listy: " + strings.Join(c.categories, ", ") +
		". Odpowiedz tylko nazwą kategorii, bez komentarza."
	return request
}

func categoryCacheID(title string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(title)))
	return hex.EncodeToString(hash[:])
}
