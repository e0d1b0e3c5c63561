package doctree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dura2d/navgen/internal/languages"
	"github.com/dura2d/navgen/internal/navjs"
	"github.com/dura2d/navgen/internal/navtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectDir = "testdata/dura2d"

func labels(nodes []*navtree.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func child(t *testing.T, n *navtree.Node, label string) *navtree.Node {
	t.Helper()
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	require.Failf(t, "missing child", "%q has no child %q (have %v)", n.Label, label, labels(n.Children))
	return nil
}

func buildDura2D(t *testing.T) *Result {
	t.Helper()
	readme, err := os.ReadFile(filepath.Join(projectDir, "README.md"))
	require.NoError(t, err)

	registry := languages.NewDefaultRegistry(languages.Options{StripMacros: []string{"D2_API"}})
	code, err := registry.ParsePaths(projectDir, []string{"include"}, nil)
	require.NoError(t, err)
	require.Empty(t, code.Issues)

	result, err := Build(Sources{
		MainPage: &Page{Path: "README.md", Source: readme},
		Code:     code,
	}, Options{
		ProjectName:   "Dura2D",
		StripFromPath: []string{"include"},
		ShardSize:     navtree.DefaultShardSize,
	})
	require.NoError(t, err)
	return result
}

func TestBuildDura2DTree(t *testing.T) {
	result := buildDura2D(t)
	tree := result.Tree
	root := tree.Root

	assert.Equal(t, "Dura2D", root.Label)
	assert.Equal(t, MainPage, root.Link)
	assert.Equal(t, []string{
		"🚀 Introduction", "🌟 Features", "📦 Installation", "🎮 Usage", "⚒️ Building",
		"🛣️ Roadmap", "🤝 Contributing", "🙏 Acknowledgements", "Classes", "Files",
	}, labels(root.Children))
	assert.Equal(t, "index.html#autotoc_md1", root.Children[0].Link)

	assert.Equal(t, 21, navtree.LeadingAnchors(root))
	assert.Len(t, navtree.Anchors(root), 21)
	assert.Equal(t, "annotated.html", tree.Index[0])
	assert.Equal(t, navtree.DefaultSyncOnMessage, tree.Messages.SyncOn)
	assert.Empty(t, navtree.Validate(tree, navtree.ValidateOptions{ShardSize: navtree.DefaultShardSize}))

	classes := child(t, root, "Classes")
	assert.Equal(t, []string{"Class List", "Class Index", "Class Hierarchy", "Class Members"}, labels(classes.Children))

	list := child(t, classes, "Class List")
	assert.Equal(t, "annotated_dup", list.Script)
	assert.Equal(t, []string{"d2Body", "d2BoxShape", "d2CircleShape", "d2PolygonShape", "d2Shape", "d2Vec2"}, labels(list.Children))

	body := list.Children[0]
	assert.Equal(t, "classd2_body.html", body.Link)
	assert.Equal(t, "classd2_body", body.Script)
	assert.Equal(t, []string{"d2Body", "~d2Body", "ComputeAABB", "AddForce", "GetMass", "d2World"}, labels(body.Children))
	assert.Equal(t, "classd2_body.html#"+navtree.MemberAnchor("d2Body", "AddForce", "(const d2Vec2 &force)"), body.Children[3].Link)

	hierarchy := child(t, classes, "Class Hierarchy")
	assert.Equal(t, "hierarchy", hierarchy.Script)
	assert.Equal(t, []string{"d2Body", "d2Shape", "d2Vec2"}, labels(hierarchy.Children))
	shape := hierarchy.Children[1]
	assert.Equal(t, "structd2_shape.html", shape.Link)
	assert.Equal(t, []string{"d2CircleShape", "d2PolygonShape"}, labels(shape.Children))
	assert.Equal(t, []string{"d2BoxShape"}, labels(shape.Children[1].Children))
	assert.Empty(t, shape.Children[1].Script)

	members := child(t, classes, "Class Members")
	assert.Equal(t, "functions.html", members.Link)
	assert.Equal(t, []string{"All", "Functions", "Variables", "Related Symbols"}, labels(members.Children))
	for _, c := range members.Children {
		assert.True(t, c.IsLeaf(), c.Label)
	}

	files := child(t, root, "Files")
	fileList := child(t, files, "File List")
	assert.Equal(t, "files_dup", fileList.Script)
	require.Len(t, fileList.Children, 1)
	dir := fileList.Children[0]
	assert.Equal(t, "dura2d", dir.Label)
	assert.Equal(t, navtree.Naming{}.DirPage("dura2d"), dir.Link)
	assert.Equal(t, []string{"d2Body.h", "d2Math.h", "d2Shape.h"}, labels(dir.Children))

	bodyHeader := dir.Children[0]
	assert.Equal(t, "d2_body_8h.html", bodyHeader.Link)
	assert.Equal(t, "d2_body_8h", bodyHeader.Script)
	assert.Equal(t, []string{"d2BodyType", "d2_staticBody", "d2_dynamicBody", "d2Body"}, labels(bodyHeader.Children))

	fileMembers := child(t, files, "File Members")
	assert.Equal(t, "globals.html", fileMembers.Link)
	assert.Equal(t, []string{"All", "Functions", "Enumerations", "Enumerator", "Macros"}, labels(fileMembers.Children))
}

func TestBuildIsDeterministic(t *testing.T) {
	first := buildDura2D(t)
	second := buildDura2D(t)

	a := navjs.EncodeData(first.Tree)
	b := navjs.EncodeData(second.Tree)
	assert.Equal(t, string(a), string(b))

	require.Len(t, first.Shards, len(second.Shards))
	for i := range first.Shards {
		assert.Equal(t, first.Shards[i], second.Shards[i])
	}
}

func TestBuildSplitsLargeCategories(t *testing.T) {
	dir := t.TempDir()
	header := "#ifndef WIDE_H\n#define WIDE_H\nclass Wide\n{\npublic:\n" +
		"    void Alpha();\n    void Apply();\n    void Beta();\n    void Step();\n    ~Wide();\n};\n#endif\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wide.h"), []byte(header), 0644))

	code, err := languages.NewDefaultRegistry(languages.Options{}).ParseDirectory(dir, nil)
	require.NoError(t, err)

	result, err := Build(Sources{
		MainPage: &Page{Path: "README.md", Source: []byte("# Wide\n\n## Intro\n")},
		Pages:    []Page{{Path: "docs/Guide.md", Source: []byte("Some text.\n\n## Setup\n")}},
		Code:     code,
	}, Options{MultipageThreshold: 3, ShardSize: 4})
	require.NoError(t, err)

	root := result.Tree.Root
	assert.Equal(t, "Wide", root.Label)
	guide := child(t, root, "Guide")
	assert.Equal(t, "md_docs_2_guide.html", guide.Link)
	assert.Equal(t, []string{"Setup"}, labels(guide.Children))
	assert.Equal(t, "md_docs_2_guide.html#autotoc_md2", guide.Children[0].Link)

	members := child(t, child(t, root, "Classes"), "Class Members")
	functions := child(t, members, "Functions")
	assert.Equal(t, "functions_func", functions.Script)
	assert.Equal(t, []string{"a", "b", "s", "~"}, labels(functions.Children))
	assert.Equal(t, "functions_func_0x7e.html", functions.Children[3].Link)

	all := child(t, members, "All")
	assert.Equal(t, "functions_dup", all.Script)

	assert.Greater(t, len(result.Shards), 1)
	assert.Equal(t, navtree.ShardIndex(result.Shards), result.Tree.Index)
	assert.False(t, navtree.HasErrors(navtree.Validate(result.Tree, navtree.ValidateOptions{ShardSize: 4})))
}

func TestBuildHyphenatedHeaderValidates(t *testing.T) {
	dir := t.TempDir()
	header := "#ifndef MY_MATH_H\n#define MY_MATH_H\nint d2Clamp(int v);\n#endif\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my-math.h"), []byte(header), 0644))

	code, err := languages.NewDefaultRegistry(languages.Options{}).ParseDirectory(dir, nil)
	require.NoError(t, err)

	result, err := Build(Sources{
		MainPage: &Page{Path: "README.md", Source: []byte("# Math\n")},
		Code:     code,
	}, Options{ShardSize: navtree.DefaultShardSize})
	require.NoError(t, err)

	var scripts []string
	for _, n := range result.Tree.Scripts() {
		scripts = append(scripts, n.Script)
	}
	assert.Contains(t, scripts, "my-math_8h")
	assert.False(t, navtree.HasErrors(navtree.Validate(result.Tree, navtree.ValidateOptions{ShardSize: navtree.DefaultShardSize})))

	out := t.TempDir()
	_, err = navjs.Write(out, result.Tree, result.Shards)
	require.NoError(t, err)
	loaded, err := navjs.Load(filepath.Join(out, navjs.DataFile))
	require.NoError(t, err)
	assert.True(t, loaded.Resolved())
	assert.Equal(t, navtree.Count(result.Tree.Root), navtree.Count(loaded.Root))
}
