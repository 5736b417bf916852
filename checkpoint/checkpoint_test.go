package checkpoint_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DomainAI/checkpoint"
	"DomainAI/domain"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "checkpoint.csv")
}

func TestFileStorePutAndReload(t *testing.T) {
	path := tempPath(t)

	s, err := checkpoint.Open(path, "run-1", false)
	require.NoError(t, err)

	rec := domain.Result{Word: "arwenbelle", Domain: "arwenbelle.ai", Status: domain.StatusTaken, Reason: "Domain Name: match"}
	require.NoError(t, s.Put("arwenbelle", rec))
	require.NoError(t, s.Close())

	// 模拟进程被杀后续跑：重新打开必须看到已落盘的记录。
	s2, err := checkpoint.Open(path, "run-2", true)
	require.NoError(t, err)
	defer s2.Close()

	assert.True(t, s2.Has("arwenbelle"))
	got, ok := s2.Get("arwenbelle")
	require.True(t, ok)
	assert.Equal(t, rec, got)
	assert.False(t, s2.Has("zyxqplm"))
}

func TestFileStoreHeaderLine(t *testing.T) {
	path := tempPath(t)
	s, err := checkpoint.Open(path, "run-abc", false)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# domainai checkpoint run=run-abc\n"))
}

func TestFileStorePutIsIdempotent(t *testing.T) {
	path := tempPath(t)
	s, err := checkpoint.Open(path, "run-1", false)
	require.NoError(t, err)
	defer s.Close()

	first := domain.Result{Word: "foo", Domain: "foo.ai", Status: domain.StatusAvailable, Reason: "NOT FOUND"}
	require.NoError(t, s.Put("foo", first))
	// 同一个词再写不覆盖、不追加。
	require.NoError(t, s.Put("foo", domain.Result{Word: "foo", Domain: "foo.ai", Status: domain.StatusError, Reason: "late"}))

	got, ok := s.Get("foo")
	require.True(t, ok)
	assert.Equal(t, first, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "foo.ai"))
}

func TestFileStoreRejectsThrottled(t *testing.T) {
	s, err := checkpoint.Open(tempPath(t), "run-1", false)
	require.NoError(t, err)
	defer s.Close()

	err = s.Put("foo", domain.Result{Word: "foo", Domain: "foo.ai", Status: domain.StatusThrottled, Reason: "x"})
	assert.Error(t, err)
	assert.False(t, s.Has("foo"))
}

func TestFileStoreSkipsMalformedLines(t *testing.T) {
	path := tempPath(t)
	content := "# domainai checkpoint run=old\n" +
		"foo,foo.ai,taken,Domain Name: match\n" +
		"broken line without fields\n" +
		"bar,bar.ai,throttled,should be ignored\n" +
		"baz,baz.ai,available,NOT FOUND\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := checkpoint.Open(path, "run-2", true)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Has("foo"))
	assert.True(t, s.Has("baz"))
	assert.False(t, s.Has("bar"), "非最终状态的行应被丢弃")
	assert.False(t, s.Has("broken line without fields"))
}

func TestFileStoreFirstWriteWinsOnLoad(t *testing.T) {
	path := tempPath(t)
	content := "foo,foo.ai,taken,first\nfoo,foo.ai,available,second\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := checkpoint.Open(path, "run-1", true)
	require.NoError(t, err)
	defer s.Close()

	got, ok := s.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "first", got.Reason)
}

func TestFileStoreTruncatesWithoutResume(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte("foo,foo.ai,taken,stale\n"), 0o644))

	s, err := checkpoint.Open(path, "run-1", false)
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Has("foo"), "非续跑模式从头开始")
}

func TestFileStoreAppendsAcrossRuns(t *testing.T) {
	path := tempPath(t)

	s1, err := checkpoint.Open(path, "run-1", false)
	require.NoError(t, err)
	require.NoError(t, s1.Put("foo", domain.Result{Word: "foo", Domain: "foo.ai", Status: domain.StatusTaken, Reason: "r"}))
	require.NoError(t, s1.Close())

	s2, err := checkpoint.Open(path, "run-2", true)
	require.NoError(t, err)
	require.NoError(t, s2.Put("bar", domain.Result{Word: "bar", Domain: "bar.ai", Status: domain.StatusAvailable, Reason: "NOT FOUND"}))
	require.NoError(t, s2.Close())

	s3, err := checkpoint.Open(path, "run-3", true)
	require.NoError(t, err)
	defer s3.Close()
	assert.True(t, s3.Has("foo"))
	assert.True(t, s3.Has("bar"))
}

func TestMemoryStore(t *testing.T) {
	m := checkpoint.NewMemoryStore()
	assert.False(t, m.Has("foo"))

	rec := domain.Result{Word: "foo", Domain: "foo.ai", Status: domain.StatusAvailable, Reason: "NOT FOUND"}
	require.NoError(t, m.Put("foo", rec))
	got, ok := m.Get("foo")
	require.True(t, ok)
	assert.Equal(t, rec, got)

	assert.Error(t, m.Put("bar", domain.Result{Status: domain.StatusThrottled, Reason: "x"}))
	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())
}
