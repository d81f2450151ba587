package testutil

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every internal package's tests import testutil, so it may depend on model
// alone without creating an import cycle.
func TestImportsOnlyModel(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}

		f, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		require.NoError(t, err)

		for _, spec := range f.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			require.NoError(t, err)
			if strings.Contains(path, "/tally/internal/") {
				assert.Equal(t, "github.com/Veraticus/tally/internal/model", path, "%s imports %s", file, path)
			}
		}
	}
}

func TestMemoryWriterRecordsLedgers(t *testing.T) {
	w := &MemoryWriter{}
	txns := []model.Transaction{DebitTxn(t, "1", "2024-01-02", "STARBUCKS", "4.50")}

	require.NoError(t, w.WriteTransactions(t.Context(), txns))
	assert.Equal(t, 1, w.Calls())
	assert.Equal(t, []string{"1"}, IDs(w.Last(t)))
}
