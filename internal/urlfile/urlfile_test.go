package urlfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "banks_urls.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
# main banks
https://example-bank.uz/deposits

https://other-bank.uz/en/deposits?currency=usd
# disabled for now
# https://disabled-bank.uz/
`)

	urls, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example-bank.uz/deposits",
		"https://other-bank.uz/en/deposits?currency=usd",
	}, urls)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := Load(writeFile(t, ""))
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLoadOnlyComments(t *testing.T) {
	_, err := Load(writeFile(t, "# nothing enabled\n\n"))
	require.ErrorIs(t, err, ErrEmpty)
}
