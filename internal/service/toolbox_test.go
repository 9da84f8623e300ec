package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/theme"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(store storage.KV) *ToolboxService {
	pipeline := imageconv.NewPipeline(imageconv.NewConverter(), 0, nil)
	return NewToolboxService(store, &http.Client{}, pipeline, imageconv.PolicyAllOrNothing, "/api/images", nil)
}

func TestWorkspace_ReusedPerClient(t *testing.T) {
	s := newService(storage.NewMemoryStore())

	a1 := s.Workspace(context.Background(), "a")
	a2 := s.Workspace(context.Background(), "a")
	b := s.Workspace(context.Background(), "b")

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
}

// slowKV держит чтение ключей одного клиента до закрытия release.
type slowKV struct {
	storage.KV
	prefix  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *slowKV) Get(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, s.prefix) {
		s.once.Do(func() { close(s.entered) })
		<-s.release
	}
	return s.KV.Get(ctx, key)
}

func TestWorkspace_SlowStorageBlocksOnlyItsClient(t *testing.T) {
	kv := &slowKV{
		KV:      storage.NewMemoryStore(),
		prefix:  "client:slow:",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newService(kv)

	done := make(chan *Workspace)
	go func() { done <- s.Workspace(context.Background(), "slow") }()
	<-kv.entered

	fast := make(chan *Workspace)
	go func() { fast <- s.Workspace(context.Background(), "fast") }()
	select {
	case ws := <-fast:
		assert.NotNil(t, ws)
	case <-time.After(2 * time.Second):
		t.Fatal("workspace of another client waited for slow storage")
	}

	close(kv.release)
	slow := <-done
	assert.Same(t, slow, s.Workspace(context.Background(), "slow"))
}

func TestWorkspace_ConcurrentFirstAccessSharesOne(t *testing.T) {
	s := newService(storage.NewMemoryStore())

	const n = 8
	results := make([]*Workspace, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.Workspace(context.Background(), "a")
		}()
	}
	wg.Wait()

	for _, ws := range results {
		assert.Same(t, results[0], ws)
	}
}

func TestWorkspace_ThemeIsolatedAndPersisted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := newService(store)

	require.NoError(t, s.Workspace(ctx, "a").Theme.Set(ctx, theme.Light))
	assert.Equal(t, theme.Dark, s.Workspace(ctx, "b").Theme.Current())

	// новый процесс видит сохранённую тему
	restarted := newService(store)
	assert.Equal(t, theme.Light, restarted.Workspace(ctx, "a").Theme.Current())
}

func TestSweep_ReleasesIdleWorkspaces(t *testing.T) {
	s := newService(storage.NewMemoryStore())
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	old := s.Workspace(context.Background(), "old")
	now = now.Add(time.Hour)
	s.Workspace(context.Background(), "fresh")

	assert.Equal(t, 1, s.Sweep(30*time.Minute))
	assert.NotSame(t, old, s.Workspace(context.Background(), "old"))
}

func TestDecodeJWTAndSearch(t *testing.T) {
	s := newService(storage.NewMemoryStore())

	got := s.DecodeJWT("a.b")
	assert.False(t, got.Valid)
	assert.NotEmpty(t, got.Error)

	assert.Len(t, s.SearchTools("webp"), 1)

	html, err := s.RenderMarkdown("**x**")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>x</strong>")

	assert.NoError(t, s.Ping(context.Background()))
}
