package api_client

import (
	"fmt"
	"net/http"
	"net/url"
)

// EndpointID - идентификатор эндпоинта, назначаемый при его объявлении.
// Пайплайн сравнивает именно его, а не путь запроса.
type EndpointID int

const (
	EndpointUnknown EndpointID = iota
	EndpointCheckUser
	EndpointGenerateOTP
	EndpointLogin
	EndpointRegister
	EndpointLogout
	EndpointUserDetail
	EndpointUpdateUser
	EndpointSearchByLocation
	EndpointPublicProperty
	EndpointMyProperty
	EndpointShortlistAdd
	EndpointShortlistRemove
	EndpointShortlisted
	EndpointDeactivateProperty
	EndpointReportProperty
	EndpointAddProperty
	EndpointUpdateProperty
	EndpointContactOwner
)

var endpointNames = map[EndpointID]string{
	EndpointCheckUser:          "checkUser",
	EndpointGenerateOTP:        "generateOtp",
	EndpointLogin:              "login",
	EndpointRegister:           "register",
	EndpointLogout:             "logout",
	EndpointUserDetail:         "getUserDetail",
	EndpointUpdateUser:         "updateUser",
	EndpointSearchByLocation:   "getPropertiesByLocation",
	EndpointPublicProperty:     "getPublicPropertyById",
	EndpointMyProperty:         "getMyPropertyById",
	EndpointShortlistAdd:       "shortlistProperty",
	EndpointShortlistRemove:    "removeShortlistedProperty",
	EndpointShortlisted:        "getShortlistedProperties",
	EndpointDeactivateProperty: "deactivateProperty",
	EndpointReportProperty:     "reportProperty",
	EndpointAddProperty:        "propertyAdd",
	EndpointUpdateProperty:     "propertyUpdate",
	EndpointContactOwner:       "contactOwner",
}

func (e EndpointID) String() string {
	if name, ok := endpointNames[e]; ok {
		return name
	}
	return fmt.Sprintf("endpoint(%d)", int(e))
}

// Tag - метка кеша, связывающая запросы и мутации.
type Tag string

const (
	TagUser      Tag = "User"
	TagShortlist Tag = "Shortlist"
)

const logoutPath = "/user/logout"

// Request - описание запроса к API.
type Request struct {
	Endpoint EndpointID
	Method   string
	Path     string
	Query    url.Values
	// Body сериализуется в JSON, если не nil.
	Body any
}

// Response - ответ сервера с уже прочитанным телом.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// ContentType возвращает заголовок Content-Type ответа.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}
