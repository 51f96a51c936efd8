package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит настройки отправки логов в Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или "fluent-bit"
	Port      int    // обычно 24224
	TagPrefix string // префикс тегов, обычно имя приложения
	// Async не блокирует CLI, если Fluent Bit недоступен.
	Async bool
}

// NewClient создаёт клиента Fluent Bit. Соединение устанавливается лениво,
// ошибки появятся при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}

	logger, err := fluent.New(fluent.Config{
		FluentHost:   cfg.Host,
		FluentPort:   cfg.Port,
		TagPrefix:    cfg.TagPrefix,
		Async:        cfg.Async,
		Timeout:      3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}

	return logger, nil
}
