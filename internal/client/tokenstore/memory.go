package tokenstore

// Memory is an in-memory Store used by tests in place of the durable
// file-backed one.
type Memory struct {
	token string
	set   bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() (string, bool) {
	return m.token, m.set
}

func (m *Memory) Set(token string) error {
	m.token = token
	m.set = true
	return nil
}

func (m *Memory) Clear() error {
	m.token = ""
	m.set = false
	return nil
}
