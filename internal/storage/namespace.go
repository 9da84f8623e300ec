package storage

import "context"

// namespaced изолирует ключи одного клиента внутри общего хранилища.
type namespaced struct {
	kv     KV
	prefix string
}

// Namespace возвращает представление kv, в котором все ключи
// получают префикс клиента. Close у представления ничего не закрывает.
func Namespace(kv KV, clientID string) KV {
	return &namespaced{kv: kv, prefix: "client:" + clientID + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.kv.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Ping(ctx context.Context) error { return n.kv.Ping(ctx) }

func (n *namespaced) Close() error { return nil }
