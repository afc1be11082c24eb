package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/stokai/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	st, err := storage.New(t.TempDir())
	require.NoError(t, err)

	_, ok := st.GetItem("missing")
	require.False(t, ok)

	require.NoError(t, st.SetItem("greeting", "hello"))
	value, ok := st.GetItem("greeting")
	require.True(t, ok)
	require.Equal(t, "hello", value)

	require.NoError(t, st.RemoveItem("greeting"))
	_, ok = st.GetItem("greeting")
	require.False(t, ok)

	// Removing an absent key is fine.
	require.NoError(t, st.RemoveItem("greeting"))
}

func TestStoreToken(t *testing.T) {
	t.Parallel()

	st, err := storage.New(t.TempDir())
	require.NoError(t, err)

	_, ok := st.Token()
	require.False(t, ok)

	require.NoError(t, st.SetToken("bearer-token"))
	token, ok := st.Token()
	require.True(t, ok)
	require.Equal(t, "bearer-token", token)

	require.NoError(t, st.ClearToken())
	_, ok = st.Token()
	require.False(t, ok)
}

func TestStoreJSONSlices(t *testing.T) {
	t.Parallel()

	st, err := storage.New(t.TempDir())
	require.NoError(t, err)

	type slice struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}

	var out slice
	require.False(t, st.LoadJSON("session", &out))

	require.NoError(t, st.SaveJSON("session", slice{Status: "authenticated", Count: 3}))
	require.True(t, st.LoadJSON("session", &out))
	require.Equal(t, "authenticated", out.Status)
	require.Equal(t, 3, out.Count)
}

func TestStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	st, err := storage.New(dir)
	require.NoError(t, err)
	require.NoError(t, st.SetToken("persisted"))

	reopened, err := storage.New(dir)
	require.NoError(t, err)
	token, ok := reopened.Token()
	require.True(t, ok)
	require.Equal(t, "persisted", token)
}
