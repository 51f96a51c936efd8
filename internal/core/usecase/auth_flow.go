package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/core/port/usecases_port"
	"houseclay-client/internal/store"
	"houseclay-client/pkg/clock"
)

const countdownTick = time.Second

// AuthFlowController ведёт сценарий PHONE -> (CREATE_USER | OTP) -> LOGGED_IN.
// Шаг хранится в сессии, форма живёт только в контроллере.
type AuthFlowController struct {
	api           port.AuthAPIPort
	store         AppStore
	nav           port.NavigatorPort
	clock         clock.Clock
	resendSeconds int

	mu       sync.Mutex
	form     domain.AuthFlowForm
	errMsg   string
	loading  bool
	closed   bool
	timer    *clock.Timer
	timerGen uint64
	onTick   func(usecases_port.AuthFlowView)

	unsubscribe func()
}

func NewAuthFlowController(api port.AuthAPIPort, st AppStore, nav port.NavigatorPort, clk clock.Clock, resendSeconds int) *AuthFlowController {
	if resendSeconds <= 0 {
		resendSeconds = domain.DefaultResendSeconds
	}
	c := &AuthFlowController{
		api:           api,
		store:         st,
		nav:           nav,
		clock:         clk,
		resendSeconds: resendSeconds,
	}
	c.unsubscribe = st.Subscribe(c.onStoreChange)
	return c
}

// onStoreChange гасит таймер, если шаг OTP покинут не через контроллер,
// например принудительным выходом при истёкшей сессии.
func (c *AuthFlowController) onStoreChange(prev, next store.State) {
	if prev.Session.AuthStep != domain.AuthStepOTP || next.Session.AuthStep == domain.AuthStepOTP {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCountdownLocked()
	c.form.ResendSecondsRemaining = 0
}

// OnTick задаёт колбэк, который вызывается после каждого шага таймера.
func (c *AuthFlowController) OnTick(fn func(usecases_port.AuthFlowView)) {
	c.mu.Lock()
	c.onTick = fn
	c.mu.Unlock()
}

// Start открывает сценарий с чистой формой на шаге PHONE.
func (c *AuthFlowController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrFlowClosed
	}
	c.stopCountdownLocked()
	c.form = domain.AuthFlowForm{}
	c.errMsg = ""
	c.mu.Unlock()

	return c.store.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepPhone})
}

func (c *AuthFlowController) SetPhone(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.PhoneNumber = domain.NormalizePhone(raw)
}

func (c *AuthFlowController) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.DisplayName = name
}

func (c *AuthFlowController) SetEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Email = strings.TrimSpace(email)
}

// SubmitPhone проверяет номер на сервере: неизвестный номер ведёт на
// регистрацию, известный получает код.
func (c *AuthFlowController) SubmitPhone(ctx context.Context) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "AuthFlow", "method": "SubmitPhone"})

	phone, err := c.begin(domain.AuthStepPhone, func(f domain.AuthFlowForm) error {
		if !domain.ValidPhone(f.PhoneNumber) {
			return domain.ErrInvalidPhone
		}
		return nil
	})
	if err != nil {
		return err
	}
	ucLogger.Info("Use case started", nil)

	exists, err := c.api.CheckUser(ctx, phone)
	if err != nil {
		ucLogger.Warn("Check user failed", port.Fields{"error": err.Error()})
		return c.fail(err)
	}

	if !exists {
		if err := c.finish(func(f *domain.AuthFlowForm) { f.IsNewUser = true }); err != nil {
			return err
		}
		ucLogger.Info("Unknown phone number, registration required", nil)
		return c.store.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepCreateUser})
	}

	if err := c.api.GenerateOTP(ctx, phone); err != nil {
		ucLogger.Warn("OTP dispatch failed", port.Fields{"error": err.Error()})
		return c.fail(err)
	}
	if err := c.enterOTP(ctx, false); err != nil {
		return err
	}
	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

// SubmitRegistration отправляет код новому пользователю.
func (c *AuthFlowController) SubmitRegistration(ctx context.Context) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "AuthFlow", "method": "SubmitRegistration"})

	phone, err := c.begin(domain.AuthStepCreateUser, func(f domain.AuthFlowForm) error {
		if strings.TrimSpace(f.DisplayName) == "" || f.Email == "" {
			return domain.ErrMissingProfile
		}
		if !domain.ValidPhone(f.PhoneNumber) {
			return domain.ErrInvalidPhone
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := c.api.GenerateOTP(ctx, phone); err != nil {
		ucLogger.Warn("OTP dispatch failed", port.Fields{"error": err.Error()})
		return c.fail(err)
	}
	return c.enterOTP(ctx, true)
}

func (c *AuthFlowController) EnterDigit(slot int, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.SetDigit(slot, value)
}

func (c *AuthFlowController) Backspace(slot int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Backspace(slot)
}

// SubmitOTP подтверждает код. При ошибке слоты очищаются, шаг не меняется.
func (c *AuthFlowController) SubmitOTP(ctx context.Context) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "AuthFlow", "method": "SubmitOTP"})

	var form domain.AuthFlowForm
	_, err := c.begin(domain.AuthStepOTP, func(f domain.AuthFlowForm) error {
		if !f.OTPComplete() {
			return domain.ErrIncompleteOTP
		}
		form = f
		return nil
	})
	if err != nil {
		return err
	}
	ucLogger.Info("Use case started", port.Fields{"new_user": form.IsNewUser})

	var profile *domain.UserProfile
	if form.IsNewUser {
		profile, err = c.api.Register(ctx, form.PhoneNumber, strings.TrimSpace(form.DisplayName), form.Email, form.OTPCode())
	} else {
		profile, err = c.api.Login(ctx, form.PhoneNumber, form.OTPCode())
	}
	if err != nil {
		ucLogger.Warn("OTP verification failed", port.Fields{"error": err.Error()})
		c.mu.Lock()
		c.form.ResetOTP()
		c.mu.Unlock()
		return c.fail(err)
	}

	c.mu.Lock()
	if c.closed {
		c.loading = false
		c.mu.Unlock()
		return domain.ErrFlowClosed
	}
	c.stopCountdownLocked()
	c.loading = false
	c.errMsg = ""
	c.form = domain.AuthFlowForm{}
	c.mu.Unlock()

	if profile != nil {
		if err := c.store.Dispatch(ctx, store.SetUserProfile{Profile: *profile}); err != nil {
			ucLogger.Warn("Failed to persist user profile", port.Fields{"error": err.Error()})
		}
	}
	if err := c.store.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepLoggedIn}); err != nil {
		ucLogger.Warn("Failed to persist session", port.Fields{"error": err.Error()})
	}
	c.consumeRedirectIntent(ctx)

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

// Resend повторно отправляет код, когда таймер дошёл до нуля.
func (c *AuthFlowController) Resend(ctx context.Context) error {
	phone, err := c.begin(domain.AuthStepOTP, func(f domain.AuthFlowForm) error {
		if f.ResendSecondsRemaining > 0 {
			return domain.ErrResendNotReady
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := c.api.GenerateOTP(ctx, phone); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.closed {
		return domain.ErrFlowClosed
	}
	c.errMsg = ""
	c.form.ResetOTP()
	c.startCountdownLocked()
	return nil
}

// Cancel закрывает сценарий без входа: шаг NONE, намерение сбрасывается.
func (c *AuthFlowController) Cancel(ctx context.Context) error {
	c.mu.Lock()
	c.stopCountdownLocked()
	c.form = domain.AuthFlowForm{}
	c.errMsg = ""
	c.mu.Unlock()

	if err := c.store.Dispatch(ctx, store.ClearRedirectIntent{}); err != nil {
		return err
	}
	if !c.store.State().Session.IsAuthenticated {
		if err := c.store.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepNone}); err != nil {
			return err
		}
	}
	c.nav.Back()
	return nil
}

// Close останавливает таймер. После Close контроллер не принимает действий.
func (c *AuthFlowController) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopCountdownLocked()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *AuthFlowController) View() usecases_port.AuthFlowView {
	step := c.store.State().Session.AuthStep
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked(step)
}

func (c *AuthFlowController) viewLocked(step domain.AuthStep) usecases_port.AuthFlowView {
	return usecases_port.AuthFlowView{
		Step:      step,
		Form:      c.form,
		Loading:   c.loading,
		Error:     c.errMsg,
		CanResend: step == domain.AuthStepOTP && c.form.ResendSecondsRemaining == 0 && !c.loading,
	}
}

// begin проверяет шаг и форму и помечает контроллер занятым.
func (c *AuthFlowController) begin(step domain.AuthStep, check func(domain.AuthFlowForm) error) (string, error) {
	current := c.store.State().Session.AuthStep

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", domain.ErrFlowClosed
	}
	if current != step {
		return "", domain.ErrWrongStep
	}
	if c.loading {
		return "", domain.ErrInFlight
	}
	if err := check(c.form); err != nil {
		c.errMsg = err.Error()
		return "", err
	}
	c.errMsg = ""
	c.loading = true
	return c.form.PhoneNumber, nil
}

func (c *AuthFlowController) finish(update func(*domain.AuthFlowForm)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.closed {
		return domain.ErrFlowClosed
	}
	update(&c.form)
	return nil
}

func (c *AuthFlowController) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.errMsg = domain.NormalizeError(err)
	return err
}

func (c *AuthFlowController) enterOTP(ctx context.Context, newUser bool) error {
	c.mu.Lock()
	c.loading = false
	if c.closed {
		c.mu.Unlock()
		return domain.ErrFlowClosed
	}
	c.form.IsNewUser = newUser
	c.form.ResetOTP()
	c.startCountdownLocked()
	c.mu.Unlock()

	return c.store.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepOTP})
}

func (c *AuthFlowController) startCountdownLocked() {
	c.stopCountdownLocked()
	c.form.ResendSecondsRemaining = c.resendSeconds
	c.scheduleTickLocked()
}

func (c *AuthFlowController) scheduleTickLocked() {
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(countdownTick, func() { c.tick(gen) })
}

func (c *AuthFlowController) stopCountdownLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *AuthFlowController) tick(gen uint64) {
	step := c.store.State().Session.AuthStep

	c.mu.Lock()
	if gen != c.timerGen || c.closed {
		c.mu.Unlock()
		return
	}
	if step != domain.AuthStepOTP {
		c.stopCountdownLocked()
		c.mu.Unlock()
		return
	}
	if c.form.ResendSecondsRemaining > 0 {
		c.form.ResendSecondsRemaining--
	}
	if c.form.ResendSecondsRemaining > 0 {
		c.scheduleTickLocked()
	} else {
		c.timer = nil
	}
	onTick := c.onTick
	view := c.viewLocked(step)
	c.mu.Unlock()

	if onTick != nil {
		onTick(view)
	}
}

// consumeRedirectIntent выполняет и сбрасывает ровно одно намерение.
func (c *AuthFlowController) consumeRedirectIntent(ctx context.Context) {
	intent := c.store.State().Session.RedirectIntent
	if intent != domain.RedirectNone {
		if err := c.store.Dispatch(ctx, store.ClearRedirectIntent{}); err != nil {
			contextkeys.LoggerFromContext(ctx).Warn("Failed to persist cleared redirect intent", port.Fields{"error": err.Error()})
		}
	}

	switch intent {
	case domain.RedirectFromLoginPage:
		c.nav.Replace(port.ScreenHome)
	case domain.RedirectFromAddProperty:
		c.nav.Navigate(port.ScreenAddProperty)
	default:
		c.nav.Back()
	}
}
