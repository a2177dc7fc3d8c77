package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/dexview/internal/session"
	"github.com/Sternrassler/dexview/internal/testutil"
)

func setupMockCatalog(t *testing.T) *testutil.MockCatalog {
	t.Helper()

	mock := testutil.NewMockCatalog()
	t.Cleanup(mock.Close)

	mock.AddPokemon(
		testutil.Pokemon{ID: 1, Name: "bulbasaur", Height: 7, Weight: 69, BaseExperience: 64, Types: []string{"grass", "poison"}},
		testutil.Pokemon{ID: 2, Name: "ivysaur", Height: 10, Weight: 130, BaseExperience: 142, Types: []string{"grass", "poison"}},
		testutil.Pokemon{ID: 3, Name: "venusaur", Height: 20, Weight: 1000, BaseExperience: 263, Types: []string{"grass", "poison"}},
		testutil.Pokemon{ID: 4, Name: "charmander", Height: 6, Weight: 85, BaseExperience: 62, Types: []string{"fire"}},
		testutil.Pokemon{ID: 5, Name: "charmeleon", Height: 11, Weight: 190, BaseExperience: 142, Types: []string{"fire"}},
	)
	mock.SetTypes("normal", "fire", "water", "grass", "poison")

	t.Setenv("DEXVIEW_CATALOG_URL", mock.URL())
	return mock
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--env-file", ""))

	err := cmd.Execute()
	return out.String(), err
}

func TestFetchCommand(t *testing.T) {
	mock := setupMockCatalog(t)

	out, err := execute(t, "fetch", "--start", "1", "--end", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "NO."))
	assert.True(t, strings.HasPrefix(lines[1], "#001"))
	assert.Contains(t, lines[1], "Bulbasaur")
	assert.Contains(t, lines[1], "grass, poison")
	assert.True(t, strings.HasPrefix(lines[3], "#003"))
	assert.Contains(t, out, "3 of 3 shown")
	assert.Equal(t, 3, mock.RequestCount())
}

func TestFetchCommand_SortAndFilter(t *testing.T) {
	setupMockCatalog(t)

	out, err := execute(t, "fetch", "--start", "1", "--end", "5", "--sort", "weight", "--order", "desc", "--type", "fire")
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "Charmeleon"), strings.Index(out, "Charmander"))
	assert.NotContains(t, out, "Bulbasaur")
	assert.Contains(t, out, "2 of 5 shown")
	assert.Contains(t, out, "Types in range: grass, poison, fire")
}

func TestFetchCommand_NoMatches(t *testing.T) {
	setupMockCatalog(t)

	out, err := execute(t, "fetch", "--start", "4", "--end", "5", "--type", "water")
	require.NoError(t, err)
	assert.Contains(t, out, "No Pokémon found")
}

func TestFetchCommand_Errors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantNetwork bool
	}{
		{name: "inverted range", args: []string{"--start", "5", "--end", "1"}},
		{name: "not numeric", args: []string{"--start", "one", "--end", "3"}},
		{name: "too large", args: []string{"--start", "1", "--end", "152"}},
		{name: "unknown sort", args: []string{"--start", "1", "--end", "3", "--sort", "speed"}},
		{name: "missing record", args: []string{"--start", "4", "--end", "6"}, wantNetwork: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := setupMockCatalog(t)

			_, err := execute(t, append([]string{"fetch"}, tt.args...)...)
			require.Error(t, err)
			if tt.wantNetwork {
				// siblings may be cancelled before they reach the server
				assert.Positive(t, mock.RequestCount())
			} else {
				assert.Zero(t, mock.RequestCount())
			}
		})
	}
}

func TestTypesCommand(t *testing.T) {
	mock := setupMockCatalog(t)

	out, err := execute(t, "types")
	require.NoError(t, err)
	assert.Equal(t, "normal\nfire\nwater\ngrass\npoison\n", out)

	mock.SetResponse("/type", testutil.MockResponse{StatusCode: http.StatusInternalServerError})
	_, err = execute(t, "types")
	require.Error(t, err)
}

func TestRootCommand_ConfigFile(t *testing.T) {
	setupMockCatalog(t)

	path := filepath.Join(t.TempDir(), "dexview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewer:\n  default_start: 4\n  default_end: 5\n"), 0o644))

	out, err := execute(t, "fetch", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Charmander")
	assert.Contains(t, out, "2 of 2 shown")
}

func TestRootCommand_InvalidFlags(t *testing.T) {
	setupMockCatalog(t)

	_, err := execute(t, "types", "--log-level", "loud")
	require.Error(t, err)

	_, err = execute(t, "types", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	setupMockCatalog(t)

	root := newRootCmd()
	root.SetErr(io.Discard)

	opts := &rootOptions{}
	require.NoError(t, opts.setup(root, nil))
	client, err := opts.catalogClient()
	require.NoError(t, err)

	vocab := &session.Vocabulary{}
	loadVocabulary(context.Background(), vocab, client, time.Second)

	assert.True(t, vocab.Done())
	assert.True(t, vocab.Ready())
	assert.Len(t, vocab.Tags(), 5)
}
