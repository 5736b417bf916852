package wordlist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DomainAI/wordlist"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCollectFirstColumnSkipsHeader(t *testing.T) {
	path := writeCSV(t, "word\nfoo\nbar\n\nbaz\n")
	words, err := wordlist.CSVSource{Path: path}.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar", "baz"}, words)
}

func TestCollectNoHeaderKeepsFirstRow(t *testing.T) {
	path := writeCSV(t, "word\nfoo\n")
	words, err := wordlist.CSVSource{Path: path, NoHeader: true}.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"word", "foo"}, words)
}

func TestCollectFirstRowNotHeaderLike(t *testing.T) {
	// 首行不像表头时按数据处理。
	path := writeCSV(t, "alpha\nbeta\n")
	words, err := wordlist.CSVSource{Path: path}.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, words)
}

func TestCollectByColumnIndex(t *testing.T) {
	path := writeCSV(t, "1,foo\n2,bar\n3\n")
	words, err := wordlist.CSVSource{Path: path, Column: "1"}.Collect(context.Background())
	require.NoError(t, err)
	// 第三行没有列号 1，跳过并继续。
	assert.Equal(t, []string{"foo", "bar"}, words)
}

func TestCollectByColumnName(t *testing.T) {
	path := writeCSV(t, "id,word\n1,foo\n2, bar \n3,\n")
	words, err := wordlist.CSVSource{Path: path, Column: "word"}.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, words)
}

func TestCollectUnknownColumn(t *testing.T) {
	path := writeCSV(t, "id,word\n1,foo\n")
	_, err := wordlist.CSVSource{Path: path, Column: "missing"}.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCollectMissingFile(t *testing.T) {
	_, err := wordlist.CSVSource{Path: filepath.Join(t.TempDir(), "absent.csv")}.Collect(context.Background())
	assert.Error(t, err)
}
