package clock

import "time"

// Clock абстрагирует работу со временем, чтобы таймеры можно было
// детерминированно проверять в тестах. В рабочем коде передаётся Real(),
// в тестах Fake().
type Clock interface {
	// Now возвращает текущее время.
	Now() time.Time

	// AfterFunc вызывает f через d. Возвращённый Timer позволяет отменить вызов.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer - запланированный вызов, созданный через AfterFunc.
type Timer struct {
	stopFunc func() bool
}

// Stop отменяет вызов. Возвращает true, если таймер был активен.
func (t *Timer) Stop() bool { return t.stopFunc() }
