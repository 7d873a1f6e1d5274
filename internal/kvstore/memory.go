package kvstore

// memoryStore is a map-backed engine. It keeps critical sections short,
// which makes runs against it measure lock behavior rather than storage
// cost.
type memoryStore struct {
	data map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() Store {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Insert(key string, value []byte) error {
	if _, ok := m.data[key]; ok {
		return ErrDuplicateKey
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryStore) Find(key string) ([]byte, error) {
	value, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

func (m *memoryStore) Update(key string, value []byte) error {
	if _, ok := m.data[key]; !ok {
		return ErrKeyNotFound
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryStore) Len() (int, error) {
	return len(m.data), nil
}

func (m *memoryStore) Close() error {
	m.data = nil
	return nil
}
