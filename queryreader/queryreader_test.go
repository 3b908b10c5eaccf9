package queryreader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tddhit/blockidx/query"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReaderSniffsColonFormat(t *testing.T) {
	path := writeTempFile(t, "q1:hello world\nq2:another query\n")
	r, err := FromFile(path)
	require.NoError(t, err)
	defer r.Close()

	q1, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	id, _ := q1.ID()
	require.Equal(t, "q1", id)

	q2, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	id2, _ := q2.ID()
	require.Equal(t, "q2", id2)

	_, ok, err = r.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReaderSniffsJSONFormat(t *testing.T) {
	path := writeTempFile(t, `{"query":"hello"}`+"\n"+`{"query":"world"}`+"\n")
	r, err := FromFile(path)
	require.NoError(t, err)
	defer r.Close()

	q1, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	raw, _ := q1.String()
	require.Equal(t, "hello", raw)
}

func TestFilterDropsContainer(t *testing.T) {
	path := writeTempFile(t, "q1:keep\nq2:drop\nq3:keep\n")
	r, err := FromFile(path)
	require.NoError(t, err)
	defer r.Close()

	r.Filter(func(q query.QueryContainer) bool {
		raw, _ := q.String()
		return raw != "drop"
	})

	var ids []string
	for {
		q, ok, err := r.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		id, _ := q.ID()
		ids = append(ids, id)
	}
	require.Equal(t, []string{"q1", "q3"}, ids)
}

func TestMapTransformsInRegistrationOrder(t *testing.T) {
	path := writeTempFile(t, "q1:hello\n")
	r, err := FromFile(path)
	require.NoError(t, err)
	defer r.Close()

	r.Map(func(q query.QueryContainer) query.QueryContainer {
		return query.FromColonFormat("mapped1:x")
	}).Map(func(q query.QueryContainer) query.QueryContainer {
		id, _ := q.ID()
		require.Equal(t, "mapped1", id)
		return query.FromColonFormat("mapped2:y")
	})

	q, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	id, _ := q.ID()
	require.Equal(t, "mapped2", id)
}

func TestFromFileMissingReturnsError(t *testing.T) {
	_, err := FromFile("/nonexistent/path/to/queries.txt")
	require.Error(t, err)
}
