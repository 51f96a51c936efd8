package port

import "context"

// StatePersisterPort хранит срезы состояния клиента между запусками.
// Ключ - имя среза, значение - JSON.
type StatePersisterPort interface {
	Load(ctx context.Context) (map[string][]byte, error)
	Save(ctx context.Context, slice string, payload []byte) error
	Delete(ctx context.Context, slice string) error
	Close() error
}
