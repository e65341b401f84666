package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Surname   string `json:"surname"`
	StudentId string `json:"student_id"`
	Timeout   int    `json:"timeout_seconds"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "bsu.json5", expected: "bsu.local.json5"},
		{input: "config/bsu.json5", expected: filepath.Join("config", "bsu.local.json5")},
		{input: "bsu", expected: "bsu.local"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, LocalPath(row.input))
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bsu.json5")

	_, err := ReadConfig[testConfig](path)
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, path, `{
		// comments are allowed
		surname: "Иванов",
		student_id: "1234567",
		timeout_seconds: 30,
	}`)

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Surname: "Иванов", StudentId: "1234567", Timeout: 30}, cfg)

	writeFile(t, filepath.Join(dir, "bsu.local.json5"), `{student_id: "7654321"}`)

	cfg, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Surname: "Иванов", StudentId: "7654321", Timeout: 30}, cfg)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	err := os.MkdirAll(nested, 0777)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "bsu.json5"), `{surname: "Петров"}`)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	err = os.Chdir(nested)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadRecursively[testConfig]("bsu.json5")
	require.NoError(t, err)
	require.Equal(t, "Петров", cfg.Surname)
}
