package check

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/logifact/errors"
	qtesting "github.com/teranos/logifact/internal/testing"
	"github.com/teranos/logifact/term"
	"github.com/teranos/logifact/writer"
)

func sampleFact() *term.Compound {
	return term.NewCompound("class",
		term.Atom("Box"), term.Atom("com.acme"), term.EmptyList(), term.EmptyList(), term.Null(),
		term.EmptyList(), term.EmptyList(),
		term.NewList(term.NewCompound("field", term.Atom("value"), term.EmptyList())),
		term.EmptyList(), term.Atom(""))
}

func TestCompareDirectories(t *testing.T) {
	generated := t.TempDir()
	existing := t.TempDir()

	fact := sampleFact()
	qtesting.WriteFile(t, generated, "com/acme/Box.pl", writer.Compact(fact))
	qtesting.WriteFile(t, existing, "com/acme/Box.pl", writer.Pretty("    ")(fact))

	qtesting.WriteFile(t, generated, "com/acme/package.pl", "package_declaration('com.acme', [type_declaration('Box', 'CLASS')]).\n")
	qtesting.WriteFile(t, existing, "com/acme/package.pl", "package_declaration('com.acme', []).\n")

	qtesting.WriteFile(t, generated, "package_index.pl", "package_index(['com.acme']).\n")
	qtesting.WriteFile(t, existing, "com/acme/Old.pl", "class('Old').\n")
	qtesting.WriteFile(t, existing, "LLM_context.md", "# notes\n")
	qtesting.WriteFile(t, existing, "java_metastructure.pl", "% fact shapes\n")

	res, err := CompareDirectories(generated, existing)
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	assert.Equal(t, 3, res.Compared)
	assert.Equal(t, []Difference{
		{Path: "com/acme/Old.pl", Kind: Extra},
		{Path: "com/acme/package.pl", Kind: Changed},
		{Path: "package_index.pl", Kind: Missing},
	}, res.Differences)
}

func TestCompareDirectoriesUpToDate(t *testing.T) {
	generated := t.TempDir()
	existing := t.TempDir()
	qtesting.WriteFile(t, generated, "a/B.pl", "b(x).\n")
	qtesting.WriteFile(t, existing, "a/B.pl", "b( x )\n")

	res, err := CompareDirectories(generated, existing)
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
	assert.Empty(t, res.Differences)
}

func TestCompareDirectoriesUnparseableFallsBackToText(t *testing.T) {
	generated := t.TempDir()
	existing := t.TempDir()
	qtesting.WriteFile(t, generated, "x.pl", "not a fact (\n")
	qtesting.WriteFile(t, existing, "x.pl", "not a fact (")

	res, err := CompareDirectories(generated, existing)
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
}

func TestCompareDirectoriesMissingRoot(t *testing.T) {
	generated := t.TempDir()
	qtesting.WriteFile(t, generated, "package_index.pl", "package_index([]).\n")

	res, err := CompareDirectories(generated, filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, []Difference{{Path: "package_index.pl", Kind: Missing}}, res.Differences)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	qtesting.WriteFile(t, root, "package_index.pl", "package_index(['com.acme']).\n")

	var generatedInto string
	gen := func(ctx context.Context, dir string) error {
		generatedInto = dir
		w := writer.NewFileWriter(dir)
		return w.WriteIndex(ctx, "package_index",
			term.NewCompound("package_index", term.NewList(term.Atom("com.acme"))))
	}

	res, err := Run(context.Background(), root, gen, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
	assert.Equal(t, 1, res.Compared)

	_, statErr := os.Stat(generatedInto)
	assert.True(t, os.IsNotExist(statErr), "temp tree should be removed")
}

func TestRunGeneratorFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), t.TempDir(),
		func(context.Context, string) error { return boom }, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}
