package console_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"houseclay-client/internal/adapters/console"
	"houseclay-client/internal/core/port"
)

func TestNavigatorStack(t *testing.T) {
	nav := console.NewNavigator()
	assert.Equal(t, "/", nav.CurrentLocation())

	nav.Open("/property/42?tab=info")
	nav.Navigate(port.ScreenAuth)
	assert.Equal(t, "/auth", nav.CurrentLocation())

	nav.Back()
	assert.Equal(t, "/property/42?tab=info", nav.CurrentLocation())

	nav.Replace(port.ScreenHome)
	nav.Back()
	nav.Back()
	assert.Equal(t, "/", nav.CurrentLocation())

	nav.HardRedirect("/login?from=%2F")
	nav.Back()
	assert.Equal(t, "/login?from=%2F", nav.CurrentLocation())
}

func TestNotifierWritesToasts(t *testing.T) {
	var buf bytes.Buffer
	n := console.NewNotifier(&buf)

	n.Success("Added to shortlist", "")
	n.Error("Failed to update shortlist", "HTTP error 500")

	out := buf.String()
	assert.Contains(t, out, "Added to shortlist")
	assert.Contains(t, out, "Failed to update shortlist")
	assert.Contains(t, out, "HTTP error 500")
}
