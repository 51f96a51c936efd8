package port

// Fields - структурированные данные для записи в лог.
type Fields map[string]interface{}

// LoggerPort определяет контракт для системы логирования.
// Ядро не знает, куда именно уходят записи.
type LoggerPort interface {
	// Info записывает информационное сообщение.
	Info(msg string, fields Fields)

	// Warn записывает предупреждение.
	Warn(msg string, fields Fields)

	// Error записывает ошибку вместе с объектом error.
	Error(msg string, err error, fields Fields)

	Debug(msg string, fields Fields)

	// WithFields создаёт логгер с уже добавленными полями.
	WithFields(fields Fields) LoggerPort
}
