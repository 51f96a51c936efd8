package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

const (
	// OTPLength - число цифр в коде.
	OTPLength = 4
	// DefaultResendSeconds - через сколько секунд можно запросить код повторно.
	DefaultResendSeconds = 30

	phoneCountryCode = "91"
	phoneDigits      = 12
)

var phonePattern = regexp.MustCompile(`^\+91\d{10}$`)

// NormalizePhone приводит ввод к виду +91XXXXXXXXXX: убирает всё,
// кроме цифр (широкие цифры тоже понимает), дописывает код страны и
// обрезает лишнее.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range width.Narrow.String(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, phoneCountryCode) {
		digits = phoneCountryCode + digits
	}
	if len(digits) > phoneDigits {
		digits = digits[:phoneDigits]
	}
	return "+" + digits
}

// ValidPhone проверяет формат +91 и 10 цифр.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// AuthFlowForm - данные формы входа. Живёт только пока открыт сценарий.
type AuthFlowForm struct {
	PhoneNumber            string
	DisplayName            string
	Email                  string
	OTPDigits              [OTPLength]string
	Focus                  int
	IsNewUser              bool
	ResendSecondsRemaining int
}

// ParseDigit принимает одну цифру, в том числе широкую.
func ParseDigit(s string) (string, bool) {
	s = width.Narrow.String(strings.TrimSpace(s))
	if len(s) != 1 || !unicode.IsDigit(rune(s[0])) {
		return "", false
	}
	return s, true
}

// SetDigit записывает цифру в слот и переводит фокус на следующий.
// Пустая строка очищает слот.
func (f *AuthFlowForm) SetDigit(slot int, value string) bool {
	if slot < 0 || slot >= OTPLength {
		return false
	}
	if value == "" {
		f.OTPDigits[slot] = ""
		f.Focus = slot
		return true
	}
	digit, ok := ParseDigit(value)
	if !ok {
		return false
	}
	f.OTPDigits[slot] = digit
	f.Focus = slot
	if slot < OTPLength-1 {
		f.Focus = slot + 1
	}
	return true
}

// Backspace на пустом слоте возвращает фокус на предыдущий,
// на заполненном - очищает его.
func (f *AuthFlowForm) Backspace(slot int) {
	if slot < 0 || slot >= OTPLength {
		return
	}
	if f.OTPDigits[slot] != "" {
		f.OTPDigits[slot] = ""
		f.Focus = slot
		return
	}
	if slot > 0 {
		f.Focus = slot - 1
	}
}

// ResetOTP очищает все слоты и ставит фокус на первый.
func (f *AuthFlowForm) ResetOTP() {
	f.OTPDigits = [OTPLength]string{}
	f.Focus = 0
}

// OTPComplete - все ли слоты заполнены.
func (f AuthFlowForm) OTPComplete() bool {
	for _, d := range f.OTPDigits {
		if d == "" {
			return false
		}
	}
	return true
}

// OTPCode склеивает введённые цифры.
func (f AuthFlowForm) OTPCode() string {
	return strings.Join(f.OTPDigits[:], "")
}
