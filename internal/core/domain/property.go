package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// PropertyCategory - тип объявления.
type PropertyCategory string

const (
	CategoryRent     PropertyCategory = "RENT"
	CategoryResale   PropertyCategory = "RESALE"
	CategoryFlatmate PropertyCategory = "FLATMATE"
)

// ParsePropertyCategory принимает значение в любом регистре.
func ParsePropertyCategory(s string) (PropertyCategory, error) {
	switch c := PropertyCategory(strings.ToUpper(strings.TrimSpace(s))); c {
	case CategoryRent, CategoryResale, CategoryFlatmate:
		return c, nil
	default:
		return "", fmt.Errorf("unknown property category %q", s)
	}
}

// PropertyListing - карточка объявления. Клиент её не изменяет,
// признак "в избранном" хранится отдельно в ShortlistSet.
type PropertyListing struct {
	PropertyID            string           `json:"propertyID"`
	PropertyCategory      PropertyCategory `json:"propertyCategory"`
	PropertyState         string           `json:"propertyState,omitempty"`
	PropertyType          string           `json:"propertyType"`
	BuiltUpArea           float64          `json:"builtUpArea"`
	BHKType               string           `json:"bhkType"`
	Bathrooms             *int             `json:"bathrooms"`
	TenantType            *string          `json:"tenantType"`
	RoomType              *string          `json:"roomType"`
	BathroomType          *string          `json:"bathroomType"`
	BalconyType           *string          `json:"balconyType"`
	Rent                  *float64         `json:"rent"`
	Furnishing            string           `json:"furnishing"`
	Price                 *float64         `json:"price"`
	City                  string           `json:"city"`
	LocationOrSocietyName string           `json:"locationOrSocietyName"`
	Landmark              string           `json:"landmark"`
	Latitude              float64          `json:"latitude"`
	Longitude             float64          `json:"longitude"`
	Image                 string           `json:"image,omitempty"`
	Images                []string         `json:"images"`
	Badges                *string          `json:"badges"`
}

// Amount возвращает аренду для RENT/FLATMATE и цену для RESALE.
func (p PropertyListing) Amount() float64 {
	if p.PropertyCategory == CategoryResale && p.Price != nil {
		return *p.Price
	}
	if p.Rent != nil {
		return *p.Rent
	}
	if p.Price != nil {
		return *p.Price
	}
	return 0
}

// OwnerContact - контакты владельца, доступные авторизованному пользователю.
type OwnerContact struct {
	Name    string `json:"name"`
	PhoneNo string `json:"phoneNo"`
	EmailID string `json:"emailID"`
}

// PropertyDetail - подробная карточка объекта. Raw хранит полный ответ,
// потому что набор полей зависит от категории.
type PropertyDetail struct {
	Listing            PropertyListing
	Owner              *OwnerContact
	Reported           bool
	PropertyOwner      bool
	ViewUserCount      int
	ShortlistUserCount int
	Raw                json.RawMessage
}

// Location - выбранная точка поиска.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

const locationCellPrecision = 7

// Cell возвращает geohash-ячейку (~150м) для логов и сравнения локаций.
func (l Location) Cell() string {
	return geohash.EncodeWithPrecision(l.Latitude, l.Longitude, locationCellPrecision)
}

// IsZero - локация ещё не выбрана.
func (l Location) IsZero() bool {
	return l.Name == "" && l.Latitude == 0 && l.Longitude == 0
}

// SameArea сообщает, что обе точки попадают в одну ячейку. Уточнение
// адреса в пределах квартала не считается сменой локации.
func (l Location) SameArea(other Location) bool {
	return l.Cell() == other.Cell()
}

// Valid проверяет, что координаты лежат в допустимых границах.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// PlaceSuggestion - подсказка сервиса адресов.
type PlaceSuggestion struct {
	PlaceID     string
	Description string
}
