package port

import (
	"context"

	"houseclay-client/internal/core/domain"
)

// AuthAPIPort - эндпоинты входа по телефону.
type AuthAPIPort interface {
	// CheckUser возвращает false, если номер неизвестен (сервер ответил 404).
	CheckUser(ctx context.Context, phoneNo string) (bool, error)
	GenerateOTP(ctx context.Context, phoneNo string) error
	Login(ctx context.Context, phoneNo, otpCode string) (*domain.UserProfile, error)
	Register(ctx context.Context, phoneNo, name, emailID, otpCode string) (*domain.UserProfile, error)
	Logout(ctx context.Context) error
}

// SearchOptions управляет кешем запроса поиска.
type SearchOptions struct {
	// Force - идти в сеть, даже если в кеше есть свежие данные.
	Force bool
}

// PropertySearchPort - поиск по локации с накоплением страниц.
type PropertySearchPort interface {
	SearchProperties(ctx context.Context, q domain.SearchQuery, opts SearchOptions) (domain.SearchResultPage, error)
	// CachedSearch возвращает накопленную выдачу для запроса без обращения к сети.
	CachedSearch(q domain.SearchQuery) (domain.SearchResultPage, bool)
	// RetainSearch помечает запись кеша как используемую, пока не вызван release.
	RetainSearch(q domain.SearchQuery) (release func())
}

// ShortlistAPIPort - избранное на сервере.
type ShortlistAPIPort interface {
	AddToShortlist(ctx context.Context, propertyID string) error
	RemoveFromShortlist(ctx context.Context, propertyID string) error
	ListShortlisted(ctx context.Context) ([]domain.PropertyListing, error)
}

// PropertyAPIPort - карточки объектов и управление своими объявлениями.
type PropertyAPIPort interface {
	GetPublicProperty(ctx context.Context, propertyID string) (*domain.PropertyDetail, error)
	GetMyProperty(ctx context.Context, propertyID string) (*domain.PropertyDetail, error)
	DeactivateProperty(ctx context.Context, propertyID string) error
	ReportProperty(ctx context.Context, propertyID, reportType, comment string) error
	// ContactOwner раскрывает контакты владельца за один connect-кредит.
	ContactOwner(ctx context.Context, propertyID string) (*domain.OwnerContactResult, error)
}

// ListingAPIPort - публикация и правка своих объявлений.
type ListingAPIPort interface {
	AddProperty(ctx context.Context, draft domain.ListingDraft) (domain.SubmittedListing, error)
	UpdateProperty(ctx context.Context, draft domain.ListingDraft) (domain.SubmittedListing, error)
}

// UserAPIPort - профиль пользователя.
type UserAPIPort interface {
	GetUserDetail(ctx context.Context) (*domain.UserDetail, error)
	UpdateUser(ctx context.Context, update domain.ProfileUpdate) error
}

// PlacesPort - сторонний сервис подсказок адресов.
type PlacesPort interface {
	Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error)
	Resolve(ctx context.Context, placeID string) (domain.Location, error)
}
