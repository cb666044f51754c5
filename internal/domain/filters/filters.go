package filters

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"moviecatalog/proj/internal/domain/models"
)

const (
	AscSort  = "ASC"
	DescSort = "DESC"
)

// Sort keys accepted from clients.
const (
	SortTitle       = "title"
	SortRating      = "rating"
	SortReleaseDate = "releasedate"
)

var SortSafelist = []string{SortTitle, SortRating, SortReleaseDate}

type Filters struct {
	Page     int
	PageSize int
	Sort     string
	Order    string
}

// Defaults bound the values Normalize is allowed to produce.
type Defaults struct {
	PageSize    int
	MaxPageSize int
}

// Normalize coerces the filters into a valid state: unknown sort keys fall
// back to title, any order other than desc is ascending, page < 1 becomes 1
// and the page size is bounded by d.
func (f Filters) Normalize(d Defaults) Filters {
	f.Sort = strings.ToLower(strings.TrimSpace(f.Sort))
	if !isSafe(f.Sort) {
		f.Sort = SortTitle
	}
	if strings.EqualFold(strings.TrimSpace(f.Order), "desc") {
		f.Order = DescSort
	} else {
		f.Order = AscSort
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = d.PageSize
	}
	if d.MaxPageSize > 0 && f.PageSize > d.MaxPageSize {
		f.PageSize = d.MaxPageSize
	}
	return f
}

func isSafe(key string) bool {
	for _, safe := range SortSafelist {
		if key == safe {
			return true
		}
	}
	return false
}

// SortColumn returns the SQL expression ordered on. Rating orders by the
// computed review average, not the stored rating column.
func (f *Filters) SortColumn() string {
	switch f.Sort {
	case SortTitle:
		return "lower(title)"
	case SortRating:
		return "COALESCE(average_rating, 0)"
	case SortReleaseDate:
		return "release_date"
	}
	panic(fmt.Errorf("unknown sort column: %s", f.Sort))
}

func (f *Filters) SortDirection() string {
	if f.Order == DescSort {
		return DescSort
	}
	return AscSort
}

func (f *Filters) Limit() int {
	return f.PageSize
}

func (f *Filters) Offset() int64 {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	if int64(f.Page-1) > math.MaxInt64/int64(f.PageSize) {
		return math.MaxInt64
	}
	return int64(f.Page-1) * int64(f.PageSize)
}

// MovieQuery is a complete catalog query: filters plus ordering and paging.
type MovieQuery struct {
	Title string
	Genre string
	Filters
}

// Normalize drops whitespace-only filters. Other filter values are matched
// as given, surrounding spaces included.
func (q MovieQuery) Normalize(d Defaults) MovieQuery {
	if strings.TrimSpace(q.Title) == "" {
		q.Title = ""
	}
	if strings.TrimSpace(q.Genre) == "" {
		q.Genre = ""
	}
	q.Filters = q.Filters.Normalize(d)
	return q
}

// TopRated builds the query used for the top rated view.
func TopRated(count int) MovieQuery {
	return MovieQuery{Filters: Filters{Page: 1, PageSize: count, Sort: SortRating, Order: DescSort}}
}

// Latest builds the query used for the latest releases view.
func Latest(count int) MovieQuery {
	return MovieQuery{Filters: Filters{Page: 1, PageSize: count, Sort: SortReleaseDate, Order: DescSort}}
}

// Where renders the filter conditions. Placeholders are numbered from
// firstArg so the caller can append its own arguments afterwards.
func (q *MovieQuery) Where(firstArg int) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	argID := firstArg
	if q.Title != "" {
		conditions = append(conditions, fmt.Sprintf("strpos(lower(title), lower($%d)) > 0", argID))
		args = append(args, q.Title)
		argID++
	}
	if q.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("lower(genre) = lower($%d)", argID))
		args = append(args, q.Genre)
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// OrderBy renders the ORDER BY clause. id is always appended so that equal
// keys keep the same relative order across pages.
func (q *MovieQuery) OrderBy() string {
	return fmt.Sprintf("ORDER BY %s %s, id ASC", q.SortColumn(), q.SortDirection())
}

// Matches reports whether m passes the title and genre filters.
func (q *MovieQuery) Matches(m *models.Movie) bool {
	if q.Title != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(q.Title)) {
		return false
	}
	if q.Genre != "" && !strings.EqualFold(m.Genre, q.Genre) {
		return false
	}
	return true
}

// Less orders two movies the same way OrderBy does.
func (q *MovieQuery) Less(a, b *models.Movie) bool {
	var cmp int
	switch q.Sort {
	case SortRating:
		cmp = compareFloat(a.SortRating(), b.SortRating())
	case SortReleaseDate:
		cmp = a.ReleaseDate.Compare(b.ReleaseDate.Time)
	default:
		cmp = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	}
	if q.SortDirection() == DescSort {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	return a.ID < b.ID
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Apply evaluates the query against an in-memory collection and returns the
// requested page. The input slice is not modified.
func (q *MovieQuery) Apply(movies []models.Movie) []models.Movie {
	matched := make([]models.Movie, 0, len(movies))
	for i := range movies {
		if q.Matches(&movies[i]) {
			matched = append(matched, movies[i])
		}
	}
	sort.Slice(matched, func(i, j int) bool { return q.Less(&matched[i], &matched[j]) })
	offset := q.Offset()
	if offset >= int64(len(matched)) {
		return []models.Movie{}
	}
	end := offset + int64(q.Limit())
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}
	return matched[offset:end]
}
