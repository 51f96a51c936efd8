package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/store"
)

type navigation struct {
	Kind   string
	Screen port.Screen
}

type fakeNavigator struct {
	mu    sync.Mutex
	calls []navigation
}

func (n *fakeNavigator) record(kind string, screen port.Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navigation{Kind: kind, Screen: screen})
}

func (n *fakeNavigator) Navigate(screen port.Screen) { n.record("navigate", screen) }
func (n *fakeNavigator) Replace(screen port.Screen)  { n.record("replace", screen) }
func (n *fakeNavigator) Back()                       { n.record("back", "") }
func (n *fakeNavigator) HardRedirect(string)         { n.record("hard", "") }
func (n *fakeNavigator) CurrentLocation() string     { return "/" }

func (n *fakeNavigator) Calls() []navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]navigation(nil), n.calls...)
}

type toast struct {
	Level string
	Title string
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (n *fakeNotifier) Success(title, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{Level: "success", Title: title})
}

func (n *fakeNotifier) Error(title, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{Level: "error", Title: title})
}

func (n *fakeNotifier) Toasts() []toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]toast(nil), n.toasts...)
}

type fakeAuthAPI struct {
	mu          sync.Mutex
	known       bool
	checkErr    error
	otpErr      error
	loginErr    error
	profile     *domain.UserProfile
	otpSent     int
	logins      []string
	registered  []string
	logoutCalls int
	logoutErr   error
}

func (f *fakeAuthAPI) CheckUser(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.known, f.checkErr
}

func (f *fakeAuthAPI) GenerateOTP(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.otpErr != nil {
		return f.otpErr
	}
	f.otpSent++
	return nil
}

func (f *fakeAuthAPI) Login(_ context.Context, phoneNo, otp string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, phoneNo+":"+otp)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.profile, nil
}

func (f *fakeAuthAPI) Register(_ context.Context, phoneNo, name, email, otp string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, phoneNo+":"+name+":"+email+":"+otp)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.profile, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func httpError(status int, message string) error {
	return &domain.RequestError{
		Kind:   domain.KindHTTP,
		Status: status,
		Data:   map[string]any{"message": message},
	}
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(nil)
	require.NoError(t, err)
	return s
}

func loggedIn(t *testing.T, s *store.Store) {
	t.Helper()
	require.NoError(t, s.Dispatch(context.Background(), store.SetAuthStep{Step: domain.AuthStepLoggedIn}))
}

// brokenPersister отказывает в любой записи.
type brokenPersister struct{}

func (brokenPersister) Load(context.Context) (map[string][]byte, error) {
	return map[string][]byte{}, nil
}
func (brokenPersister) Save(context.Context, string, []byte) error { return errors.New("disk full") }
func (brokenPersister) Delete(context.Context, string) error      { return errors.New("disk full") }
func (brokenPersister) Close() error                              { return nil }

func newBrokenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(brokenPersister{})
	require.NoError(t, err)
	return s
}

type logEntry struct {
	Level string
	Msg   string
}

// recordingLogger запоминает сообщения всех производных логгеров.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{Level: level, Msg: msg})
}

func (l recordingLogger) Info(msg string, _ port.Fields)           { l.add("info", msg) }
func (l recordingLogger) Warn(msg string, _ port.Fields)           { l.add("warn", msg) }
func (l recordingLogger) Error(msg string, _ error, _ port.Fields) { l.add("error", msg) }
func (l recordingLogger) Debug(msg string, _ port.Fields)          { l.add("debug", msg) }
func (l recordingLogger) WithFields(port.Fields) port.LoggerPort   { return l }

func (l recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range *l.entries {
		if e.Level == "warn" {
			out = append(out, e.Msg)
		}
	}
	return out
}
