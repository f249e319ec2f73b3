package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessorGetFetchesOnce(t *testing.T) {
	calls := 0
	acc := NewAccessor(func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	})

	out, err := acc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, out)

	out, err = acc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, out)
	require.Equal(t, 1, calls)
}

func TestRefreshReplacesSnapshotOnSuccess(t *testing.T) {
	values := [][]string{{"v1"}, {"v1", "v2"}}
	calls := 0
	acc := NewAccessor(func(context.Context) ([]string, error) {
		out := values[calls]
		calls++
		return out, nil
	})

	out, err := acc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"v1"}, out)

	out, err = acc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"v1", "v2"}, out)

	snap, ok := acc.Snapshot()
	require.True(t, ok)
	require.Equal(t, []string{"v1", "v2"}, snap)
}

func TestRefreshKeepsSnapshotOnFailure(t *testing.T) {
	fail := false
	acc := NewAccessor(func(context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return []string{"stable"}, nil
	})

	_, err := acc.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	out, err := acc.Refresh(context.Background())
	require.Error(t, err)
	// the previous snapshot survives the failed refresh
	require.Equal(t, []string{"stable"}, out)

	snap, ok := acc.Snapshot()
	require.True(t, ok)
	require.Equal(t, []string{"stable"}, snap)
}

func TestSnapshotBeforeFirstFetch(t *testing.T) {
	acc := NewAccessor(func(context.Context) (int, error) { return 42, nil })
	_, ok := acc.Snapshot()
	require.False(t, ok)
}
