package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultSearchPageSize - размер страницы выдачи по умолчанию.
const DefaultSearchPageSize = 16

// SearchFilters - необязательные фильтры поиска. Пустое значение поля
// означает, что фильтр не отправляется.
type SearchFilters struct {
	MinPrice         *int64   `json:"minPrice,omitempty"`
	MaxPrice         int64    `json:"maxPrice,omitempty"`
	PropertyType     string   `json:"propertyType,omitempty"`
	BHKType          string   `json:"bhkType,omitempty"`
	TenantType       string   `json:"tenantType,omitempty"`
	NonVegAllowed    *bool    `json:"nonVegAllowed,omitempty"`
	RoomType         string   `json:"roomType,omitempty"`
	BathroomType     string   `json:"bathroomType,omitempty"`
	BalconyType      string   `json:"balconyType,omitempty"`
	PreferredTenants string   `json:"preferredTenants,omitempty"`
	Furnishing       string   `json:"furnishing,omitempty"`
	Parking          string   `json:"parking,omitempty"`
	Amenities        []string `json:"amenities,omitempty"`
	Availability     string   `json:"availability,omitempty"`
	Exclusive        bool     `json:"exclusive,omitempty"`
	SortFields       string   `json:"sortFields,omitempty"`
	SortOrder        string   `json:"sortOrder,omitempty"`
}

// encode добавляет фильтры в параметры запроса.
func (f SearchFilters) encode(v url.Values) {
	// minPrice = 0 - осмысленное значение, поэтому проверяем на nil
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatInt(*f.MinPrice, 10))
	}
	if f.MaxPrice > 0 {
		v.Set("maxPrice", strconv.FormatInt(f.MaxPrice, 10))
	}
	setIfNotEmpty(v, "propertyType", f.PropertyType)
	setIfNotEmpty(v, "bhkType", f.BHKType)
	setIfNotEmpty(v, "tenantType", f.TenantType)
	if f.NonVegAllowed != nil {
		v.Set("nonVegAllowed", strconv.FormatBool(*f.NonVegAllowed))
	}
	setIfNotEmpty(v, "roomType", f.RoomType)
	setIfNotEmpty(v, "bathroomType", f.BathroomType)
	setIfNotEmpty(v, "balconyType", f.BalconyType)
	setIfNotEmpty(v, "preferredTenants", f.PreferredTenants)
	setIfNotEmpty(v, "furnishing", f.Furnishing)
	setIfNotEmpty(v, "parking", f.Parking)
	if len(f.Amenities) > 0 {
		v.Set("amenities", strings.Join(f.Amenities, ","))
	}
	setIfNotEmpty(v, "propertyAvailability", f.Availability)
	if f.Exclusive {
		v.Set("exclusive", "true")
	}
	setIfNotEmpty(v, "sortFields", f.SortFields)
	setIfNotEmpty(v, "sortOrder", f.SortOrder)
}

func setIfNotEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// SearchQuery - запрос поиска по локации.
type SearchQuery struct {
	Latitude         float64
	Longitude        float64
	PropertyCategory PropertyCategory
	Page             int
	Size             int
	Filters          SearchFilters
}

// Values кодирует запрос в параметры /property/search.
func (q SearchQuery) Values() url.Values {
	size := q.Size
	if size <= 0 {
		size = DefaultSearchPageSize
	}
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	v.Set("propertyCategory", string(q.PropertyCategory))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(size))
	q.Filters.encode(v)
	return v
}

// Identity - ключ кеша запроса: все параметры, кроме номера страницы.
// Encode сортирует ключи, так что строка канонична.
func (q SearchQuery) Identity() string {
	v := q.Values()
	v.Del("page")
	return v.Encode()
}

// WithPage возвращает копию запроса с другой страницей.
func (q SearchQuery) WithPage(page int) SearchQuery {
	q.Page = page
	return q
}

// SearchResultPage - накопленная выдача для одного запроса.
type SearchResultPage struct {
	Items         []PropertyListing `json:"items"`
	HasNext       bool              `json:"hasNext"`
	Page          int               `json:"page"`
	TotalElements int               `json:"totalElements"`
}

// Replace возвращает первую страницу без дубликатов.
func (p SearchResultPage) Replace() SearchResultPage {
	p.Items = appendUnique(make([]PropertyListing, 0, len(p.Items)), nil, p.Items)
	return p
}

// Append дописывает следующую страницу. Если объект уже был в выдаче,
// он остаётся на прежней позиции, но с данными из новой страницы.
// Метаданные берутся из next.
func (p SearchResultPage) Append(next SearchResultPage) SearchResultPage {
	index := make(map[string]int, len(p.Items)+len(next.Items))
	items := make([]PropertyListing, 0, len(p.Items)+len(next.Items))
	items = appendUnique(items, index, p.Items)
	items = appendUnique(items, index, next.Items)
	return SearchResultPage{
		Items:         items,
		HasNext:       next.HasNext,
		Page:          next.Page,
		TotalElements: next.TotalElements,
	}
}

func appendUnique(dst []PropertyListing, index map[string]int, src []PropertyListing) []PropertyListing {
	if index == nil {
		index = make(map[string]int, len(src))
	}
	for _, item := range src {
		if pos, ok := index[item.PropertyID]; ok {
			dst[pos] = item
			continue
		}
		index[item.PropertyID] = len(dst)
		dst = append(dst, item)
	}
	return dst
}
