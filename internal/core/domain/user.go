package domain

// UserProfile - краткий профиль пользователя, сохраняемый локально.
type UserProfile struct {
	Name          string `json:"name"`
	EmailID       string `json:"emailID"`
	PhoneNo       string `json:"phoneNo"`
	ConnectBal    int    `json:"connectBal"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	OnWhatsApp    bool   `json:"onWhatsApp,omitempty"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
}

// OwnedProperty - объявление, размещённое пользователем.
type OwnedProperty struct {
	PropertyID            string           `json:"propertyID"`
	PropertyCategory      PropertyCategory `json:"propertyCategory"`
	PropertyType          string           `json:"propertyType"`
	BHKType               string           `json:"bhkType"`
	Rent                  *float64         `json:"rent"`
	Price                 *float64         `json:"price"`
	LocationOrSocietyName string           `json:"locationOrSocietyName"`
	PropertyState         string           `json:"propertyState"`
	AvailableFrom         string           `json:"availableFrom"`
}

// UserDetail - полный профиль из /user/detail.
type UserDetail struct {
	Profile               UserProfile
	OwnedProperties       []OwnedProperty
	ShortlistedProperties []PropertyListing
	ContactedProperties   []PropertyListing
}

// ProfileUpdate - изменяемые поля профиля.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
