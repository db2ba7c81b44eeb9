package models

type AwaitingInput string

const (
	AwaitingNothing  AwaitingInput = ""
	AwaitingSalary   AwaitingInput = "salary"
	AwaitingKeywords AwaitingInput = "keywords"
)

type Filters struct {
	City           string   `json:"city,omitempty"`
	Category       string   `json:"category,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	SalaryMin      *float64 `json:"salary_min,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

func (f Filters) IsEmpty() bool {
	return f.City == "" && f.Category == "" && f.EmploymentType == "" && f.SalaryMin == nil && len(f.Keywords) == 0
}

// Cursor is an ordered list of job ids with a 1-based current page.
type Cursor struct {
	IDs  []uint
	Page int
}

func (c Cursor) Total() int {
	return len(c.IDs)
}

func (c Cursor) IsEmpty() bool {
	return len(c.IDs) == 0
}

// Session is the per-user search state. It lives only as long as the process.
type Session struct {
	Filters   Filters
	Results   Cursor
	Favorites Cursor
	Awaiting  AwaitingInput
}

// Clone copies the slices so callers can mutate the result freely.
func (s Session) Clone() Session {
	s.Filters.Keywords = append([]string(nil), s.Filters.Keywords...)
	s.Results.IDs = append([]uint(nil), s.Results.IDs...)
	s.Favorites.IDs = append([]uint(nil), s.Favorites.IDs...)
	if s.Filters.SalaryMin != nil {
		salary := *s.Filters.SalaryMin
		s.Filters.SalaryMin = &salary
	}
	return s
}
