package navtree

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkVisitsPreOrderWithPaths(t *testing.T) {
	root := Group("root", "index.html",
		Group("a", "index.html#autotoc_md1", Leaf("a1", "index.html#autotoc_md2")),
		Leaf("b", "index.html#autotoc_md3"),
	)

	var labels []string
	var paths [][]int
	require.NoError(t, Walk(root, func(n *Node, path []int) error {
		labels = append(labels, n.Label)
		paths = append(paths, path)
		return nil
	}))

	assert.Equal(t, []string{"root", "a", "a1", "b"}, labels)
	assert.Equal(t, [][]int{nil, {0}, {0, 0}, {1}}, paths)
	assert.Equal(t, 4, Count(root))
}

func TestWalkSkipChildren(t *testing.T) {
	root := Group("root", "index.html",
		Group("skip", "a.html", Leaf("hidden", "b.html")),
		Leaf("kept", "c.html"),
	)

	var labels []string
	require.NoError(t, Walk(root, func(n *Node, _ []int) error {
		labels = append(labels, n.Label)
		if n.Label == "skip" {
			return SkipChildren
		}
		return nil
	}))
	assert.Equal(t, []string{"root", "skip", "kept"}, labels)
}

func TestSampleTreeAnchors(t *testing.T) {
	tree := sampleTree()

	anchors := Anchors(tree.Root)
	require.Len(t, anchors, 21)
	for i, ref := range anchors {
		assert.Equal(t, i+1, ref.Number)
	}
	assert.Equal(t, "🙏 Acknowledgements", anchors[20].Label)
	assert.Equal(t, 21, LeadingAnchors(tree.Root))
}

func TestSampleTreeValidatesWithoutErrors(t *testing.T) {
	issues := Validate(sampleTree(), ValidateOptions{ShardSize: DefaultShardSize})

	assert.False(t, HasErrors(issues), "unexpected errors: %v", issues)
	// the deferred scripts are not loaded, which is reported but not fatal
	warnings := 0
	for _, issue := range issues {
		if issue.Severity == SeverityWarning {
			warnings++
		}
	}
	assert.Equal(t, 5, warnings)
}

func TestParseAutoTOC(t *testing.T) {
	cases := []struct {
		link string
		num  int
		ok   bool
	}{
		{link: "index.html#autotoc_md0", num: 0, ok: true},
		{link: "index.html#autotoc_md21", num: 21, ok: true},
		{link: "md_docs_2guide.html#autotoc_md40", num: 40, ok: true},
		{link: "index.html#autotoc_md", ok: false},
		{link: "index.html#autotoc_md01", ok: false},
		{link: "index.html#installation", ok: false},
		{link: "annotated.html", ok: false},
	}
	for _, tc := range cases {
		num, ok := ParseAutoTOC(tc.link)
		assert.Equal(t, tc.ok, ok, tc.link)
		if tc.ok {
			assert.Equal(t, tc.num, num, tc.link)
		}
	}
}

func TestValidateDetectsStructuralDefects(t *testing.T) {
	cases := []struct {
		name    string
		tree    *Tree
		message string
	}{
		{
			name: "empty children",
			tree: &Tree{
				Root:  &Node{Label: "root", Link: "index.html", Children: []*Node{}},
				Index: []string{"index.html"},
			},
			message: "children sequence is present but empty",
		},
		{
			name: "empty script",
			tree: &Tree{
				Root:  Group("root", "index.html", &Node{Label: "list", Link: "annotated.html", Script: "annotated_dup", Children: []*Node{}}),
				Index: []string{"annotated.html"},
			},
			message: `script "annotated_dup" has no entries`,
		},
		{
			name: "duplicate anchor",
			tree: &Tree{
				Root: Group("root", "index.html",
					Leaf("a", "index.html#autotoc_md1"),
					Leaf("b", "index.html#autotoc_md1"),
				),
				Index: []string{"index.html"},
			},
			message: "duplicate anchor autotoc_md1",
		},
		{
			name: "anchor order",
			tree: &Tree{
				Root: Group("root", "index.html",
					Leaf("a", "index.html#autotoc_md2"),
					Leaf("b", "index.html#autotoc_md1"),
				),
				Index: []string{"index.html"},
			},
			message: "anchor autotoc_md1 follows autotoc_md2",
		},
		{
			name: "unsorted shards",
			tree: &Tree{
				Root:  Group("root", "index.html", Leaf("a", "annotated.html"), Leaf("f", "files.html")),
				Index: []string{"annotated.html", "annotated.html"},
			},
			message: "does not sort after",
		},
		{
			name: "wrong first shard",
			tree: &Tree{
				Root:  Group("root", "index.html", Leaf("a", "annotated.html")),
				Index: []string{"index.html"},
			},
			message: `first shard starts at "index.html" but the lowest link is "annotated.html"`,
		},
		{
			name: "bad link",
			tree: &Tree{
				Root:  Group("root", "index.html", Leaf("a", "annotated")),
				Index: []string{"annotated"},
			},
			message: "link is not of the form",
		},
		{
			name:    "empty index",
			tree:    &Tree{Root: Leaf("root", "index.html")},
			message: "shard index is empty",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues := Validate(tc.tree, ValidateOptions{})
			require.True(t, HasErrors(issues))
			found := false
			for _, issue := range issues {
				if issue.Severity == SeverityError && strings.Contains(issue.Message, tc.message) {
					found = true
				}
			}
			assert.True(t, found, "expected %q in %v", tc.message, issues)
		})
	}
}

func TestValidateComparesRecomputedShards(t *testing.T) {
	root := Group("root", "index.html")
	for i := 0; i < 5; i++ {
		root.Append(Leaf(fmt.Sprintf("p%d", i), fmt.Sprintf("page%d.html", i)))
	}
	tree := &Tree{Root: root, Index: []string{"index.html"}}

	issues := Validate(tree, ValidateOptions{ShardSize: 2})
	require.True(t, HasErrors(issues))

	tree.Index = ShardIndex(BuildShards(root, 2))
	assert.Equal(t, []string{"index.html", "page1.html", "page3.html"}, tree.Index)
	assert.Empty(t, Validate(tree, ValidateOptions{ShardSize: 2}))
}

func TestBuildShardsKeepsFirstOccurrence(t *testing.T) {
	root := Group("Dura2D", "index.html",
		Group("Classes", "annotated.html",
			Leaf("Class List", "annotated.html"),
			Leaf("Class Index", "classes.html"),
		),
	)

	shards := BuildShards(root, 0)
	require.Len(t, shards, 1)
	assert.Equal(t, "navtreeindex0", shards[0].Name)
	assert.Equal(t, []IndexEntry{
		{Link: "annotated.html", Path: []int{0}},
		{Link: "classes.html", Path: []int{0, 1}},
		{Link: "index.html", Path: nil},
	}, shards[0].Entries)
}

func TestBuildShardsSplitsAtThreshold(t *testing.T) {
	root := Group("root", "annotated.html")
	for i := 0; i < 300; i++ {
		root.Append(Leaf("m", fmt.Sprintf("functions_func_%03d.html", i)))
	}

	shards := BuildShards(root, DefaultShardSize)
	require.Len(t, shards, 2)
	assert.Len(t, shards[0].Entries, 250)
	assert.Len(t, shards[1].Entries, 51)
	assert.Equal(t, []string{"annotated.html", "functions_func_249.html"}, ShardIndex(shards))
}

func TestEscapeName(t *testing.T) {
	cases := map[string]string{
		"d2Body.h":           "d2_body_8h",
		"d2AABB":             "d2_a_a_b_b",
		"docs/build_guide":   "docs_2build__guide",
		"operator+=":         "operator_09_0a",
		"d2BlockAllocator.h": "d2_block_allocator_8h",
	}
	for in, want := range cases {
		assert.Equal(t, want, EscapeName(in, false), in)
	}
	assert.Equal(t, "d2Body_8h", EscapeName("d2Body.h", true))
}

func TestNaming(t *testing.T) {
	n := Naming{}
	assert.Equal(t, "classd2_body.html", n.ClassPage("class", "d2Body"))
	assert.Equal(t, "structd2_vec2.html", n.ClassPage("struct", "d2Vec2"))
	assert.Equal(t, "d2_world_8h.html", n.FilePage("include/dura2d/d2World.h"))
	assert.Equal(t, "md_docs_2_building.html", n.MarkdownPage("docs/Building.md"))
	assert.Regexp(t, `^dir_[0-9a-f]{32}\.html$`, n.DirPage("include/dura2d"))

	assert.NotEqual(t, MemberAnchor("d2Body", "AddForce", "(const d2Vec2 &)"), MemberAnchor("d2Body", "AddTorque", "(float)"))
	assert.Regexp(t, `^a[0-9a-f]{32}$`, MemberAnchor("", "d2Clamp", "(float)"))
}

func TestScriptNameAndLetterSuffix(t *testing.T) {
	assert.Equal(t, "annotated_dup", ScriptName("annotated.html", "annotated.html"))
	assert.Equal(t, "functions_func", ScriptName("functions_func.html", "functions.html"))
	assert.Equal(t, "hierarchy", ScriptName("hierarchy.html", "annotated.html"))

	assert.Equal(t, "my_math_8h", ScriptVar("my-math_8h"))
	assert.Equal(t, "annotated_dup", ScriptVar("annotated_dup"))

	assert.Equal(t, "n", LetterSuffix("n"))
	assert.Equal(t, "0x7e", LetterSuffix("~"))
}
