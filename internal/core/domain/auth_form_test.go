package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+919876543210", NormalizePhone("98765 43210"))
	assert.Equal(t, "+919876543210", NormalizePhone("+91 98765-43210"))
	assert.Equal(t, "+919876543210", NormalizePhone("９８７６５４３２１０"))
	assert.Equal(t, "+919876543210", NormalizePhone("+91987654321099"))
	assert.Equal(t, "", NormalizePhone("abc"))

	assert.True(t, ValidPhone("+919876543210"))
	assert.False(t, ValidPhone("+91987654321"))
	assert.False(t, ValidPhone("+449876543210"))
}

func TestOTPDigitEntry(t *testing.T) {
	var f AuthFlowForm

	assert.True(t, f.SetDigit(0, "1"))
	assert.Equal(t, 1, f.Focus)
	assert.True(t, f.SetDigit(1, "２"))
	assert.Equal(t, "2", f.OTPDigits[1])
	assert.False(t, f.SetDigit(2, "x"))
	assert.False(t, f.OTPComplete())

	f.SetDigit(2, "3")
	f.SetDigit(3, "4")
	assert.Equal(t, OTPLength-1, f.Focus, "focus does not move past the last slot")
	assert.True(t, f.OTPComplete())
	assert.Equal(t, "1234", f.OTPCode())

	f.Backspace(3)
	assert.Equal(t, "", f.OTPDigits[3])
	assert.Equal(t, 3, f.Focus)
	f.Backspace(3)
	assert.Equal(t, 2, f.Focus, "backspace on empty slot moves focus back")

	f.ResetOTP()
	f.Backspace(0)
	assert.Equal(t, 0, f.Focus)
}
