package port

// Screen - экран, на который может перейти клиент.
type Screen string

const (
	ScreenHome        Screen = "Home"
	ScreenAuth        Screen = "Auth"
	ScreenAddProperty Screen = "AddProperty"
)

// NavigatorPort - навигация, которой управляет слой данных.
type NavigatorPort interface {
	Navigate(screen Screen)
	Replace(screen Screen)
	Back()
	// HardRedirect сбрасывает стек экранов и открывает location.
	HardRedirect(location string)
	// CurrentLocation - путь и query текущего экрана, например "/property/42?tab=info".
	CurrentLocation() string
}

// NotifierPort показывает короткие уведомления (тосты).
type NotifierPort interface {
	Success(title, message string)
	Error(title, message string)
}
