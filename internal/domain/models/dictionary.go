package models

import (
	"github.com/samber/lo"
	"strings"
)

var DefaultCities = []string{
	"Warszawa", "Kraków", "Wrocław", "Poznań", "Gdańsk", "Łódź", "Szczecin", "Bydgoszcz", "Lublin", "Białystok",
	"Katowice", "Gdynia", "Częstochowa", "Radom", "Toruń", "Sosnowiec", "Rzeszów", "Kielce", "Gliwice", "Olsztyn",
}

var DefaultCategories = []string{
	"IT", "Sprzedaż", "Obsługa klienta", "Logistyka", "Produkcja", "Budownictwo",
	"Gastronomia", "Finanse", "Marketing", "Medycyna", "Edukacja", "Inne",
}

type EmploymentType struct {
	Key   string
	Label string
}

var EmploymentTypes = []EmploymentType{
	{Key: "full-time", Label: "Повна зайнятість"},
	{Key: "part-time", Label: "Часткова зайнятість"},
	{Key: "contract", Label: "Договір"},
	{Key: "b2b", Label: "B2B"},
	{Key: "internship", Label: "Стажування"},
}

func EmploymentTypeLabel(key string) string {
	for _, t := range EmploymentTypes {
		if t.Key == key {
			return t.Label
		}
	}
	return key
}

var polishLetters = strings.NewReplacer(
	"ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n", "ó", "o", "ś", "s", "ź", "z", "ż", "z",
)

// CitySlug turns "Wrocław" into "wroclaw", the form job boards use in paths.
func CitySlug(city string) string {
	slug := polishLetters.Replace(strings.ToLower(strings.TrimSpace(city)))
	return strings.Join(strings.Fields(slug), "-")
}

// CityBySlug finds the display name for a slug among cities, or returns false.
func CityBySlug(cities []string, slug string) (string, bool) {
	return lo.Find(cities, func(city string) bool {
		return CitySlug(city) == slug
	})
}
