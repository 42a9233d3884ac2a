package risk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// objectStoreStub serves fixed bodies per object key, S3 path-style. Keys
// absent from the map get a NoSuchKey error.
func objectStoreStub(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for key, body := range objects {
			if strings.HasSuffix(r.URL.Path, key) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code></Error>`))
	}))
}

func testFetcher(t *testing.T, endpoint string) *ArtifactFetcher {
	t.Helper()

	fetcher, err := NewArtifactFetcher(context.Background(), StoreOptions{
		Bucket:    "artifacts",
		Prefix:    "models",
		Endpoint:  endpoint,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
	}, zerolog.Nop())
	require.NoError(t, err)
	return fetcher
}

func TestFetchModelArtifacts(t *testing.T) {
	srv := objectStoreStub(t, map[string][]byte{
		"model.bin":    []byte("model-bytes"),
		"columns.json": []byte(`{"columns":["age"]}`),
	})
	defer srv.Close()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.bin")
	columnsPath := filepath.Join(dir, "columns.json")

	fetcher := testFetcher(t, srv.URL)
	require.NoError(t, fetcher.FetchModelArtifacts(context.Background(), modelPath, columnsPath))

	model, err := os.ReadFile(modelPath)
	require.NoError(t, err)
	assert.Equal(t, "model-bytes", string(model))

	columns, err := os.ReadFile(columnsPath)
	require.NoError(t, err)
	assert.Equal(t, `{"columns":["age"]}`, string(columns))
}

func TestFetchModelArtifacts_PartialFailureLeavesFilesUntouched(t *testing.T) {
	// model.bin downloads fine but columns.json is missing upstream
	srv := objectStoreStub(t, map[string][]byte{
		"model.bin": []byte("new-model"),
	})
	defer srv.Close()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.bin")
	columnsPath := filepath.Join(dir, "columns.json")
	require.NoError(t, os.WriteFile(modelPath, []byte("old-model"), 0o644))
	require.NoError(t, os.WriteFile(columnsPath, []byte("old-columns"), 0o644))

	fetcher := testFetcher(t, srv.URL)
	err := fetcher.FetchModelArtifacts(context.Background(), modelPath, columnsPath)
	require.Error(t, err)

	// Neither artifact was replaced, and the pair is still consistent
	model, err := os.ReadFile(modelPath)
	require.NoError(t, err)
	assert.Equal(t, "old-model", string(model))

	columns, err := os.ReadFile(columnsPath)
	require.NoError(t, err)
	assert.Equal(t, "old-columns", string(columns))

	// No staging files left behind
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.download-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
