package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DraftKind - какая форма сохранена.
type DraftKind string

const (
	DraftListProperty DraftKind = "listProperty"
	DraftEditProperty DraftKind = "editProperty"
)

// ListingDraft - незавершённая форма создания или редактирования объявления.
type ListingDraft struct {
	Category   PropertyCategory  `json:"category"`
	PropertyID string            `json:"propertyID,omitempty"`
	Step       int               `json:"step"`
	Fields     map[string]string `json:"fields"`
	ImageURLs  []string          `json:"imageURLs,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// SubmittedListing - ответ сервера на публикацию или правку объявления.
type SubmittedListing struct {
	Message    string
	PropertyID string
}

// OwnerContactResult - контакты владельца и остаток connect-кредитов
// после их списания.
type OwnerContactResult struct {
	Owner      OwnerContact `json:"owner"`
	ConnectBal int          `json:"connectBal"`
}

// Validate проверяет, что черновик можно отправить на сервер.
// Правка требует идентификатор объявления.
func (d ListingDraft) Validate(kind DraftKind) error {
	if _, err := ParsePropertyCategory(string(d.Category)); err != nil {
		return fmt.Errorf("%w: %v", ErrDraftInvalid, err)
	}
	if kind == DraftEditProperty && strings.TrimSpace(d.PropertyID) == "" {
		return fmt.Errorf("%w: property id is required for an update", ErrDraftInvalid)
	}
	if len(d.Fields) == 0 && kind == DraftListProperty {
		return fmt.Errorf("%w: no fields filled in", ErrDraftInvalid)
	}
	return nil
}

// Payload собирает тело запроса из полей формы. Числа и true/false
// уходят типизированными, остальное строками.
func (d ListingDraft) Payload() map[string]any {
	body := make(map[string]any, len(d.Fields)+3)
	for k, v := range d.Fields {
		body[k] = fieldValue(v)
	}
	body["propertyCategory"] = d.Category
	if d.PropertyID != "" {
		body["propertyID"] = d.PropertyID
	}
	if len(d.ImageURLs) > 0 {
		body["images"] = d.ImageURLs
	}
	return body
}

func fieldValue(raw string) any {
	v := strings.TrimSpace(raw)
	switch v {
	case "true":
		return true
	case "false":
		return false
	case "":
		return raw
	}
	// ведущий ноль - это код или номер, а не число
	if len(v) > 1 && v[0] == '0' && v[1] != '.' {
		return v
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return v
}

// SearchSelection - последние выбранные пользователем локация, категория и фильтры.
type SearchSelection struct {
	Location Location         `json:"location"`
	Category PropertyCategory `json:"category"`
	Filters  SearchFilters    `json:"filters"`
}

// WithLocation меняет локацию. Переход в другую geohash-ячейку сбрасывает
// фильтры, категория сохраняется.
func (s SearchSelection) WithLocation(loc Location) SearchSelection {
	if !s.Location.IsZero() && !s.Location.SameArea(loc) {
		s.Filters = SearchFilters{}
	}
	s.Location = loc
	return s
}

// Query собирает запрос первой страницы из выбора пользователя.
func (s SearchSelection) Query(size int) SearchQuery {
	return SearchQuery{
		Latitude:         s.Location.Latitude,
		Longitude:        s.Location.Longitude,
		PropertyCategory: s.Category,
		Size:             size,
		Filters:          s.Filters,
	}
}
