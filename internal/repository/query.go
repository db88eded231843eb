package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/pkg/database"
)

// likeEscape is the LIKE escape character. '!' avoids backslash handling
// differences between MySQL and the other drivers.
const likeEscape = "!"

// containsPattern builds a lower-cased LIKE pattern matching term anywhere,
// with the user's wildcards escaped.
func containsPattern(term string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// likeClause ORs "LOWER(col) LIKE ? ESCAPE '!'" over the columns.
func likeClause(columns ...string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, "LOWER("+c+") LIKE ? ESCAPE '"+likeEscape+"'")
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func repeat(v string, n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// paginate counts the rows the scope selects, lets the pager pick the window
// and loads it. The count and the fetch run as separate statements.
func paginate[M any](db *gorm.DB, scope func(*gorm.DB) *gorm.DB, order string, pager domain.Pager, preload ...string) ([]M, int64, domain.Window, error) {
	var model M
	var total int64
	if err := scope(db.Model(&model)).Count(&total).Error; err != nil {
		return nil, 0, domain.Window{}, err
	}

	w := pager.Window(total)
	var rows []M
	if total == 0 || int64(w.Offset) >= total {
		return rows, total, w, nil
	}

	q := scope(db.Model(&model))
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.Order(order).Offset(w.Offset).Limit(w.Limit).Find(&rows).Error; err != nil {
		return nil, 0, domain.Window{}, err
	}
	return rows, total, w, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	return database.IsUniqueViolation(err)
}
