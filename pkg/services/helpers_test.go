package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/dataset"
	"retail-insight-api/pkg/models"
	"retail-insight-api/pkg/store"
)

func newTable(t *testing.T, rows ...[]string) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable(rows)
	require.NoError(t, err)
	return table
}

func testPrompts(t *testing.T) *config.PromptConfig {
	t.Helper()
	prompts, err := config.LoadPrompts("")
	require.NoError(t, err)
	return prompts
}

// testEnv wires the storage side of the services against an in-memory
// store and a temporary upload directory.
type testEnv struct {
	store   *store.Store
	files   *FileService
	prompts *config.PromptConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tables := dataset.NewTableCache(time.Minute)
	return &testEnv{
		store:   st,
		files:   NewFileService(st, tables, t.TempDir(), zap.NewNop()),
		prompts: testPrompts(t),
	}
}

func (e *testEnv) upload(t *testing.T, kind models.FileKind, filename, content string) *models.UploadedFile {
	t.Helper()
	rec, err := e.files.Upload(kind, filename, strings.NewReader(content))
	require.NoError(t, err)
	return rec
}

const salesCSV = `City,Category,Sales,Units
Chennai,Clothing,100,1
chennai,Electronics,200,2
Madurai,Clothing,50,1
Coimbatore,Grocery,75.5,3
`
