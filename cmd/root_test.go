package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saulfrancisco-ruizacevedo/go-proteograph"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "proteograph "+Version+"\n", out)
}

func TestSearchRejectsUnknownTypeBeforeConnecting(t *testing.T) {
	_, err := runCmd(t, "search", "--type", "Foo", "--value", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, proteograph.ErrUnknownSearchType)
}

func TestSearchRequiresFlags(t *testing.T) {
	_, err := runCmd(t, "search", "--type", "Gene Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value")
}

func TestConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proteograph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
neo4j:
  uri: neo4j://graph.internal:7687
  query_timeout: 5s
http:
  addr: ":9100"
`), 0o644))
	t.Setenv("PROTEOGRAPH_NEO4J_PASSWORD", "s3cret")
	t.Setenv("PROTEOGRAPH_HTTP_GZIP_MIN_SIZE", "2048")

	_, err := runCmd(t, "--config", path, "search", "--type", "Gene Name", "--value", " ")
	require.Error(t, err)
	assert.ErrorIs(t, err, proteograph.ErrInvalidRequest)

	cfg := config.Get()
	assert.Equal(t, "neo4j://graph.internal:7687", cfg.Neo4j.URI)
	assert.Equal(t, "s3cret", cfg.Neo4j.Password)
	assert.Equal(t, 5*time.Second, cfg.Neo4j.QueryTimeout)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, 2048, cfg.HTTP.Gzip.MinSize)
	assert.Equal(t, 50, cfg.Neo4j.MaxPoolSize)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("PROTEOGRAPH_NEO4J_MAX_POOL_SIZE", "0")

	_, err := runCmd(t, "search", "--type", "Gene Name", "--value", "BRCA1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neo4j.max_pool_size")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runCmd(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	require.NoError(t, err)

	_, err = runCmd(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "search", "--type", "Gene Name", "--value", "BRCA1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")
}
