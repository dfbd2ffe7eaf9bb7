// Package query holds request-to-query helpers shared by handlers:
// partial update maps, pagination scopes, search patterns and id parsing.
package query

import (
	"reflect"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// UpdateColumns builds a column map from the non-nil pointer fields of a
// request struct. Only fields carrying a `column` tag are considered, so a
// request type is also the whitelist of what a client may change.
func UpdateColumns(data interface{}) map[string]interface{} {
	updates := map[string]interface{}{}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return updates
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		column := t.Field(i).Tag.Get("column")
		if column == "" {
			continue
		}
		field := v.Field(i)
		if field.Kind() != reflect.Ptr || field.IsNil() {
			continue
		}
		updates[column] = field.Elem().Interface()
	}

	return updates
}

// Page normalizes page and limit query values
func Page(pageStr, limitStr string) (page, limit int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Paginate is a GORM scope applying offset and limit
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// likeEscaper escapes LIKE metacharacters. Queries using its output must
// declare ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns a lowercase LIKE pattern matching s literally
// anywhere in a value.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// ParseID parses a positive numeric path parameter
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
