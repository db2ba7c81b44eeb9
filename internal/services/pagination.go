package services

import "github.com/maxaizer/worksearch-bot/internal/domain/models"

// Page is one job of a paginated view with its position.
type Page struct {
	Job        models.JobRecord
	Number     int
	Total      int
	IsFavorite bool
}

// resolvePage applies the cyclic policy shared by every paginated view:
// 0 is the last page, total+1 is the first, anything else outside 1..total is invalid.
func resolvePage(n int, total int) (int, error) {
	if total == 0 {
		return 0, ErrNoResults
	}
	switch {
	case n == 0:
		return total, nil
	case n == total+1:
		return 1, nil
	case n < 1 || n > total:
		return 0, ErrInvalidPage
	}
	return n, nil
}
