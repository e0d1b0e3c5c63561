package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dura2d/navgen/internal/doctree"
	"github.com/dura2d/navgen/internal/graph"
	"github.com/dura2d/navgen/internal/languages"
	"github.com/dura2d/navgen/internal/navjs"
	"github.com/dura2d/navgen/internal/navtree"
	"github.com/dura2d/navgen/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func BenchmarkParseAndGraph_MediumProject(b *testing.B) {
	root := b.TempDir()
	createSyntheticHeaders(b, root, 250)

	registry := languages.NewDefaultRegistry(languages.Options{StripMacros: []string{"SYN_API"}})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := registry.ParseDirectory(root, nil)
		if err != nil {
			b.Fatalf("parse failed: %v", err)
		}
		g := graph.BuildFromParseResult(result)
		if len(g.Nodes) == 0 {
			b.Fatalf("expected graph nodes")
		}
	}
}

func BenchmarkBuildAndEncode_MediumProject(b *testing.B) {
	root := b.TempDir()
	createSyntheticHeaders(b, root, 250)
	code := parseSynthetic(b, root)
	readme := syntheticReadme(40)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := doctree.Build(doctree.Sources{
			MainPage: &doctree.Page{Path: "README.md", Source: readme},
			Code:     code,
		}, doctree.Options{ProjectName: "Synthetic"})
		if err != nil {
			b.Fatalf("build failed: %v", err)
		}
		if len(navjs.EncodeData(result.Tree)) == 0 {
			b.Fatalf("expected encoded data")
		}
		for _, shard := range result.Shards {
			_ = navjs.EncodeShard(shard)
		}
	}
}

func TestSyntheticProjectProducesWellFormedIndex(t *testing.T) {
	root := t.TempDir()
	createSyntheticHeaders(t, root, 120)
	code := parseSynthetic(t, root)
	require.Len(t, code.Files, 120)

	result, err := doctree.Build(doctree.Sources{
		MainPage: &doctree.Page{Path: "README.md", Source: syntheticReadme(10)},
		Code:     code,
	}, doctree.Options{ProjectName: "Synthetic", ShardSize: 100})
	require.NoError(t, err)

	issues := navtree.Validate(result.Tree, navtree.ValidateOptions{ShardSize: 100})
	assert.Empty(t, issues)
	assert.Greater(t, len(result.Shards), 1)
	assert.Equal(t, 10, navtree.LeadingAnchors(result.Tree.Root))

	// 120 classes with three members each exceed the per-letter threshold.
	var letterPages int
	_ = navtree.Walk(result.Tree.Root, func(n *navtree.Node, _ []int) error {
		if n.Script == "functions_dup" || n.Script == "functions_func" {
			letterPages += len(n.Children)
		}
		return nil
	})
	assert.Positive(t, letterPages)

	again, err := doctree.Build(doctree.Sources{
		MainPage: &doctree.Page{Path: "README.md", Source: syntheticReadme(10)},
		Code:     code,
	}, doctree.Options{ProjectName: "Synthetic", ShardSize: 100})
	require.NoError(t, err)
	assert.Equal(t, string(navjs.EncodeData(result.Tree)), string(navjs.EncodeData(again.Tree)))
}

func parseSynthetic(tb testing.TB, root string) *parser.ParseResult {
	tb.Helper()
	registry := languages.NewDefaultRegistry(languages.Options{StripMacros: []string{"SYN_API"}})
	result, err := registry.ParseDirectory(root, nil)
	if err != nil {
		tb.Fatalf("parse failed: %v", err)
	}
	return result
}

func syntheticReadme(sections int) []byte {
	src := "# Synthetic\n\n"
	for i := 0; i < sections; i++ {
		src += fmt.Sprintf("## Section %d\n\nText.\n\n", i)
	}
	return []byte(src)
}

func createSyntheticHeaders(tb testing.TB, root string, files int) {
	tb.Helper()

	for i := 0; i < files; i++ {
		dir := filepath.Join(root, "include", fmt.Sprintf("mod%d", i%10))
		if err := os.MkdirAll(dir, 0755); err != nil {
			tb.Fatalf("mkdir failed: %v", err)
		}

		base := ""
		if i%10 != 0 {
			base = fmt.Sprintf(" : public Shape%d", i-i%10)
		}
		filePath := filepath.Join(dir, fmt.Sprintf("shape_%03d.h", i))
		src := fmt.Sprintf(`#ifndef SHAPE_%03d_H
#define SHAPE_%03d_H

#define SHAPE_%03d_SIDES %d

class SYN_API Shape%d%s
{
public:
    float Area%d() const;
    void Scale%d(float factor);

protected:
    int m_sides%d;
};

float area_of_%03d(const Shape%d& shape);

#endif
`, i, i, i, i%7+3, i, base, i, i, i, i, i)

		if err := os.WriteFile(filePath, []byte(src), 0644); err != nil {
			tb.Fatalf("write failed: %v", err)
		}
	}
}
