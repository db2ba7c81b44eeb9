package sources

import (
	"fmt"
	"github.com/maxaizer/worksearch-bot/internal/config"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
)

const (
	SourceOLX    = "olx"
	SourcePracuj = "pracuj"
)

// Build creates the extractors named in cfg.Sources, preserving their order.
func Build(cfg config.ScraperConfig, fetcher pageFetcher) ([]Extractor, error) {

	extractors := make([]Extractor, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case SourceOLX:
			extractors = append(extractors, NewOLX(fetcher, cfg.MaxRetries))
		case SourcePracuj:
			cityLabel, ok := models.CityBySlug(cfg.Cities, cfg.PracujCity)
			if !ok {
				cityLabel = cfg.PracujCity
			}
			extractors = append(extractors, NewPracuj(fetcher, cfg.MaxRetries, cfg.PracujCity, cityLabel))
		default:
			return nil, fmt.Errorf("unknown source: %s", name)
		}
	}
	return extractors, nil
}
