package api_client

import (
	"bytes"
	"encoding/json"
	"strings"

	"houseclay-client/internal/core/domain"
)

type loginRequest struct {
	PhoneNo string `json:"phoneNo"`
	OTPCode string `json:"otpCode"`
}

type registerRequest struct {
	PhoneNo string `json:"phoneNo"`
	Name    string `json:"name"`
	EmailID string `json:"emailID"`
	OTPCode string `json:"otpCode"`
}

type checkUserResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

type authUserDetailDTO struct {
	Name       string  `json:"name"`
	EmailID    string  `json:"emailID"`
	PhoneNo    string  `json:"phoneNo"`
	ConnectBal int     `json:"connectBal"`
	AvatarURL  *string `json:"avatarUrl"`
}

func (d authUserDetailDTO) toDomain() *domain.UserProfile {
	p := &domain.UserProfile{
		Name:       d.Name,
		EmailID:    d.EmailID,
		PhoneNo:    d.PhoneNo,
		ConnectBal: d.ConnectBal,
	}
	if d.AvatarURL != nil {
		p.AvatarURL = *d.AvatarURL
	}
	return p
}

type shortlistedResponse struct {
	ShortlistedProperties []domain.PropertyListing `json:"shortlistedProperties"`
}

type userDetailResponse struct {
	User struct {
		Name                  string                   `json:"name"`
		PhoneNo               string                   `json:"phoneNo"`
		Email                 string                   `json:"email"`
		OnWhatsApp            bool                     `json:"onWhatsApp"`
		EmailVerified         bool                     `json:"emailVerified"`
		ConnectBal            int                      `json:"connectBal"`
		OwnedProperties       []domain.OwnedProperty   `json:"ownedProperties"`
		ShortlistedProperties []domain.PropertyListing `json:"shortlistedProperties"`
		ContactedProperties   []domain.PropertyListing `json:"contactedProperties"`
	} `json:"user"`
}

func (r userDetailResponse) toDomain() *domain.UserDetail {
	u := r.User
	return &domain.UserDetail{
		Profile: domain.UserProfile{
			Name:          u.Name,
			EmailID:       u.Email,
			PhoneNo:       u.PhoneNo,
			ConnectBal:    u.ConnectBal,
			OnWhatsApp:    u.OnWhatsApp,
			EmailVerified: u.EmailVerified,
		},
		OwnedProperties:       u.OwnedProperties,
		ShortlistedProperties: u.ShortlistedProperties,
		ContactedProperties:   u.ContactedProperties,
	}
}

type reportRequest struct {
	ReportType string `json:"reportType"`
	Comment    string `json:"comment"`
}

// propertyEnvelope покрывает обе формы карточки: плоский объект и
// {property: {property, счётчики}, owner, reported, propertyOwner}.
type propertyEnvelope struct {
	Property      json.RawMessage      `json:"property"`
	Owner         *domain.OwnerContact `json:"owner"`
	Reported      bool                 `json:"reported"`
	PropertyOwner bool                 `json:"propertyOwner"`
}

type propertyStats struct {
	Property           json.RawMessage `json:"property"`
	ViewUserCount      int             `json:"viewUserCount"`
	ShortlistUserCount int             `json:"shortlistUserCount"`
}

func decodePropertyDetail(resp *Response) (*domain.PropertyDetail, error) {
	raw, err := decodeJSON[json.RawMessage](resp)
	if err != nil {
		return nil, err
	}
	detail := &domain.PropertyDetail{Raw: raw}

	var env propertyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Property) == 0 || env.Property[0] != '{' {
		// Плоская карточка
		return detail, unmarshalListing(resp, raw, &detail.Listing)
	}
	detail.Owner = env.Owner
	detail.Reported = env.Reported
	detail.PropertyOwner = env.PropertyOwner

	listingRaw := env.Property
	var stats propertyStats
	if err := json.Unmarshal(env.Property, &stats); err == nil && len(stats.Property) > 0 && stats.Property[0] == '{' {
		listingRaw = stats.Property
		detail.ViewUserCount = stats.ViewUserCount
		detail.ShortlistUserCount = stats.ShortlistUserCount
	}
	return detail, unmarshalListing(resp, listingRaw, &detail.Listing)
}

func unmarshalListing(resp *Response, raw json.RawMessage, out *domain.PropertyListing) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.RequestError{Kind: domain.KindParsing, Status: resp.Status, RawBody: string(raw), Cause: err}
	}
	return nil
}

// submitListingResponse - ответ на публикацию: propertyID приходит числом.
type submitListingResponse struct {
	Message    string          `json:"message"`
	PropertyID json.RawMessage `json:"propertyID"`
}

func decodeSubmittedListing(resp *Response) (domain.SubmittedListing, error) {
	dto, err := decodeJSON[submitListingResponse](resp)
	if err != nil {
		return domain.SubmittedListing{}, err
	}
	id := strings.Trim(string(bytes.TrimSpace(dto.PropertyID)), `"`)
	if id == "null" {
		id = ""
	}
	return domain.SubmittedListing{Message: dto.Message, PropertyID: id}, nil
}
