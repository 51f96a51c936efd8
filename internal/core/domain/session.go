package domain

// AuthStep - шаг сценария входа по телефону.
type AuthStep string

const (
	AuthStepNone       AuthStep = "NONE"
	AuthStepPhone      AuthStep = "PHONE"
	AuthStepOTP        AuthStep = "OTP"
	AuthStepCreateUser AuthStep = "CREATE_USER"
	AuthStepLoggedIn   AuthStep = "LOGGED_IN"
)

// RedirectIntent - куда вернуть пользователя после успешного входа.
// В сессии хранится не больше одного намерения.
type RedirectIntent string

const (
	RedirectNone            RedirectIntent = "NONE"
	RedirectFromLoginPage   RedirectIntent = "FROM_LOGIN_PAGE"
	RedirectFromAddProperty RedirectIntent = "FROM_ADD_PROPERTY"
)

// Session - состояние аутентификации, которое переживает перезапуск.
type Session struct {
	IsAuthenticated bool           `json:"isAuthenticated"`
	AuthStep        AuthStep       `json:"authStep"`
	RedirectIntent  RedirectIntent `json:"redirectIntent"`
}

// NewSession возвращает стартовую, неаутентифицированную сессию.
func NewSession() Session {
	return Session{AuthStep: AuthStepNone, RedirectIntent: RedirectNone}
}
