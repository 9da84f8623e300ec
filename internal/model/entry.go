package model

// Entry представляет структуру записи ключ-значение в файле хранилища.
// Deleted помечает удалённый ключ, при загрузке побеждает последняя запись.
type Entry struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}
