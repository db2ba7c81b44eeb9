package bot

import (
	"fmt"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/services"
	"github.com/samber/lo"
	"html"
	"strings"
	"time"
	"unicode/utf8"
)

const descriptionPreviewLength = 300

const (
	startText = "👋 <b>Вітаю!</b>\n\nЯ допоможу знайти роботу в Польщі. Вакансії збираються з OLX та Pracuj.pl.\n\n" +
		"Надішліть ключові слова, щоб почати пошук, або скористайтеся меню."
	helpText = "<b>Команди</b>\n\n" +
		"/search [запит] - пошук вакансій\n" +
		"/random - випадкові вакансії\n" +
		"/filters - налаштування фільтрів\n" +
		"/favorites - улюблені вакансії\n" +
		"/stats - статистика\n" +
		"/help - ця довідка\n\n" +
		"Будь-який текст без команди також запускає пошук з поточними фільтрами."
	searchPromptText   = "🔍 <b>Пошук вакансій</b>\n\nВведіть ключові слова для пошуку або використайте фільтри."
	filtersMenuText    = "⚙️ <b>Налаштування фільтрів</b>\n\n"
	salaryPromptText   = "💰 Введіть мінімальну зарплату (PLN):\n\nНаприклад: 5000"
	keywordsPromptText = "🔑 Введіть ключові слова через кому:\n\nНаприклад: Python, Developer, Remote"
	noFavoritesText    = "⭐ У вас поки немає улюблених вакансій.\n\nДодайте вакансії в улюблені під час пошуку."
	noResultsText      = "😔 Нічого не знайдено. Спробуйте змінити запит або фільтри."
	internalErrorText  = "❌ Внутрішня помилка. Спробуйте пізніше."
	unknownCommandText = "Невідома команда. Скористайтеся /help."
)

func formatJob(job models.JobRecord, now time.Time) string {

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💼 <b>%s</b>\n\n", html.EscapeString(job.Title)))

	if job.Company != "" {
		sb.WriteString(fmt.Sprintf("🏢 Компанія: %s\n", html.EscapeString(job.Company)))
	}
	if location := job.CityOrLocation(); location != "" {
		sb.WriteString(fmt.Sprintf("📍 Місто: %s\n", html.EscapeString(location)))
	}
	if salary := formatSalary(job); salary != "" {
		sb.WriteString(fmt.Sprintf("💰 Зарплата: %s\n", salary))
	}
	if job.EmploymentType != nil && *job.EmploymentType != "" {
		sb.WriteString(fmt.Sprintf("⏰ Тип: %s\n", html.EscapeString(models.EmploymentTypeLabel(*job.EmploymentType))))
	}
	if job.PublishedDate != nil {
		sb.WriteString(fmt.Sprintf("📅 Опубліковано: %s\n", relativeDate(*job.PublishedDate, now)))
	}
	if job.Description != "" {
		sb.WriteString(fmt.Sprintf("\n📝 Опис:\n%s\n", html.EscapeString(truncate(job.Description, descriptionPreviewLength))))
	}

	sb.WriteString(fmt.Sprintf("\n🔗 <a href=\"%s\">Детальніше</a>", html.EscapeString(job.URL)))
	return sb.String()
}

func formatSalary(job models.JobRecord) string {
	currency := lo.Ternary(job.SalaryCurrency != "", job.SalaryCurrency, "PLN")
	switch {
	case job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin != *job.SalaryMax:
		return fmt.Sprintf("%.0f - %.0f %s", *job.SalaryMin, *job.SalaryMax, currency)
	case job.SalaryMin != nil:
		return fmt.Sprintf("від %.0f %s", *job.SalaryMin, currency)
	case job.SalaryMax != nil:
		return fmt.Sprintf("до %.0f %s", *job.SalaryMax, currency)
	}
	return ""
}

func relativeDate(published time.Time, now time.Time) string {
	days := int(now.Sub(published).Hours() / 24)
	switch {
	case days <= 0:
		return "сьогодні"
	case days == 1:
		return "вчора"
	}
	return fmt.Sprintf("%d %s тому", days, pluralDays(days))
}

// pluralDays picks the Ukrainian form of "day" for n.
func pluralDays(n int) string {
	if n%100 >= 11 && n%100 <= 14 {
		return "днів"
	}
	switch n % 10 {
	case 1:
		return "день"
	case 2, 3, 4:
		return "дні"
	}
	return "днів"
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

func formatFilters(filters models.Filters) string {
	if filters.IsEmpty() {
		return filtersMenuText + "Фільтри не встановлено.\n\nОберіть параметр для налаштування:"
	}

	var lines []string
	if filters.City != "" {
		lines = append(lines, "🏙️ Місто: "+html.EscapeString(filters.City))
	}
	if filters.Category != "" {
		lines = append(lines, "📋 Категорія: "+html.EscapeString(filters.Category))
	}
	if filters.EmploymentType != "" {
		lines = append(lines, "⏰ Тип: "+html.EscapeString(models.EmploymentTypeLabel(filters.EmploymentType)))
	}
	if filters.SalaryMin != nil {
		lines = append(lines, fmt.Sprintf("💰 Зарплата від: %.0f PLN", *filters.SalaryMin))
	}
	if len(filters.Keywords) > 0 {
		lines = append(lines, "🔑 Ключові слова: "+html.EscapeString(strings.Join(filters.Keywords, ", ")))
	}
	return filtersMenuText + strings.Join(lines, "\n") + "\n\nОберіть параметр для налаштування:"
}

func formatStats(stats services.Stats) string {

	var sb strings.Builder
	sb.WriteString("📊 <b>Статистика</b>\n\n")
	sb.WriteString(fmt.Sprintf("Активних вакансій: %d\n", stats.ActiveJobs))
	sb.WriteString(fmt.Sprintf("Користувачів: %d\n", stats.ActiveUsers))

	if len(stats.Sources) > 0 {
		sb.WriteString("\nДжерела:\n")
		for _, source := range stats.Sources {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", html.EscapeString(source.Source), source.Count))
		}
	}
	if len(stats.TopCities) > 0 {
		sb.WriteString("\nВакансії по містах:\n")
		for _, city := range stats.TopCities {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", html.EscapeString(city.City), city.Count))
		}
	}
	if stats.LastIngest != nil {
		sb.WriteString(fmt.Sprintf("\nОстаннє оновлення: %s UTC", stats.LastIngest.StartedAt.UTC().Format("2006-01-02 15:04")))
	}
	return sb.String()
}

func formatReport(report models.IngestReport) string {

	var sb strings.Builder
	sb.WriteString("🔄 <b>Оновлення вакансій завершено</b>\n\n")
	sb.WriteString(fmt.Sprintf("Додано: %d, оновлено: %d, пропущено: %d\n", report.Added, report.Updated, report.Skipped))
	sb.WriteString(fmt.Sprintf("Тривалість: %s\n", report.Duration.Round(time.Second)))

	for _, name := range report.SourceNames() {
		source := report.PerSource[name]
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>: отримано %d, додано %d, оновлено %d",
			html.EscapeString(name), source.Fetched, source.Added, source.Updated))
		if source.Error != "" {
			sb.WriteString(fmt.Sprintf("\n⚠️ %s", html.EscapeString(source.Error)))
		}
	}
	return sb.String()
}
