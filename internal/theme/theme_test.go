package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewStore_DefaultsToDark(t *testing.T) {
	s := NewStore(context.Background(), storage.NewMemoryStore(), nil)
	assert.Equal(t, Dark, s.Current())
}

func TestNewStore_LoadsSavedTheme(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, "light"))

	s := NewStore(context.Background(), kv, nil)
	assert.Equal(t, Light, s.Current())
}

func TestNewStore_UnknownValueFallsBack(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, "solarized"))

	s := NewStore(context.Background(), kv, nil)
	assert.Equal(t, Dark, s.Current())
}

func TestSet_WritesThroughAndNotifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mocks.NewMockKV(ctrl)
	kv.EXPECT().Get(gomock.Any(), StorageKey).Return("", storage.ErrNotFound)
	kv.EXPECT().Set(gomock.Any(), StorageKey, "light").Return(nil)

	s := NewStore(context.Background(), kv, nil)

	var applied []Theme
	s.Subscribe(func(t Theme) { applied = append(applied, t) })

	require.NoError(t, s.Set(context.Background(), Light))
	assert.Equal(t, Light, s.Current())
	assert.Equal(t, []Theme{Light}, applied)
}

func TestSet_RejectsUnknownTheme(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mocks.NewMockKV(ctrl)
	kv.EXPECT().Get(gomock.Any(), StorageKey).Return("dark", nil)

	s := NewStore(context.Background(), kv, nil)
	assert.ErrorIs(t, s.Set(context.Background(), Theme("blue")), ErrUnknownTheme)
	assert.Equal(t, Dark, s.Current())
}

func TestSet_StorageFailureKeepsCurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mocks.NewMockKV(ctrl)
	kv.EXPECT().Get(gomock.Any(), StorageKey).Return("", storage.ErrNotFound)
	kv.EXPECT().Set(gomock.Any(), StorageKey, "light").Return(errors.New("disk full"))

	s := NewStore(context.Background(), kv, nil)
	assert.Error(t, s.Set(context.Background(), Light))
	assert.Equal(t, Dark, s.Current())
}

func TestToggle(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := NewStore(context.Background(), kv, nil)

	next, err := s.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Light, next)

	saved, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "light", saved)

	next, err = s.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Dark, next)
}
