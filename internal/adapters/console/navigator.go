package console

import (
	"sync"

	"houseclay-client/internal/core/port"
)

var screenPaths = map[port.Screen]string{
	port.ScreenHome:        "/",
	port.ScreenAuth:        "/auth",
	port.ScreenAddProperty: "/property/add",
}

// Navigator хранит стек экранов консольного клиента.
type Navigator struct {
	mu    sync.Mutex
	stack []string
}

func NewNavigator() *Navigator {
	return &Navigator{stack: []string{screenPaths[port.ScreenHome]}}
}

// Open кладёт произвольный путь на стек, например "/property/42".
func (n *Navigator) Open(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, location)
}

func (n *Navigator) Navigate(screen port.Screen) {
	n.Open(screenPaths[screen])
}

func (n *Navigator) Replace(screen port.Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack[len(n.stack)-1] = screenPaths[screen]
}

func (n *Navigator) Back() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) > 1 {
		n.stack = n.stack[:len(n.stack)-1]
	}
}

func (n *Navigator) HardRedirect(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = []string{location}
}

func (n *Navigator) CurrentLocation() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}
