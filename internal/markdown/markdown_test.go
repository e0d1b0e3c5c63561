package markdown

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(sections []*Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

func TestParseDura2DReadme(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "README.md"))
	require.NoError(t, err)

	counter := &Counter{}
	page, err := NewParser(counter, Options{}).Parse("README.md", src)
	require.NoError(t, err)

	assert.Equal(t, "Dura2D", page.Title)
	assert.Equal(t, "autotoc_md0", page.TitleAnchor)
	assert.Equal(t, 22, counter.Peek())

	require.Len(t, page.Sections, 8)
	assert.Equal(t, []string{
		"🚀 Introduction", "🌟 Features", "📦 Installation", "🎮 Usage",
		"⚒️ Building", "🛣️ Roadmap", "🤝 Contributing", "🙏 Acknowledgements",
	}, titles(page.Sections))

	install := page.Sections[2]
	assert.Equal(t, "autotoc_md3", install.Anchor)
	require.Len(t, install.Children, 2)
	assert.Equal(t, "CPM.cmake (Recommended)", install.Children[0].Title)
	assert.Equal(t, []string{"Git Submodule", "Git Subtree"}, titles(install.Children[1].Children))
	assert.Equal(t, "autotoc_md7", install.Children[1].Children[1].Anchor)

	building := page.Sections[4]
	assert.Len(t, building.Children, 7)
	assert.Equal(t, "autotoc_md18", building.Children[6].Anchor)
	assert.Equal(t, "autotoc_md21", page.Sections[7].Anchor)
}

func TestCounterIsSharedAcrossPages(t *testing.T) {
	counter := &Counter{}
	p := NewParser(counter, Options{})

	first, err := p.Parse("a.md", []byte("# A\n\n## One\n"))
	require.NoError(t, err)
	second, err := p.Parse("b.md", []byte("## Two\n\n## Three\n"))
	require.NoError(t, err)

	assert.Equal(t, "autotoc_md1", first.Sections[0].Anchor)
	assert.Empty(t, second.Title)
	assert.Equal(t, []string{"autotoc_md2", "autotoc_md3"},
		[]string{second.Sections[0].Anchor, second.Sections[1].Anchor})
}

func TestExplicitIDDoesNotConsumeCounter(t *testing.T) {
	counter := &Counter{}
	page, err := NewParser(counter, Options{}).Parse("a.md", []byte("# Title {#intro}\n\n## Setup {#setup}\n\n## Next\n"))
	require.NoError(t, err)

	assert.Equal(t, "Title", page.Title)
	assert.Equal(t, "intro", page.TitleAnchor)
	assert.Equal(t, "setup", page.Sections[0].Anchor)
	assert.Equal(t, "Setup", page.Sections[0].Title)
	assert.Equal(t, "autotoc_md0", page.Sections[1].Anchor)
}

func TestDeepHeadingsConsumeButAreDropped(t *testing.T) {
	counter := &Counter{}
	src := "## A\n\n### B\n\n#### C\n\n## D\n"
	page, err := NewParser(counter, Options{MaxLevel: 2}).Parse("a.md", []byte(src))
	require.NoError(t, err)

	require.Len(t, page.Sections, 2)
	assert.Nil(t, page.Sections[0].Children)
	assert.Equal(t, "autotoc_md3", page.Sections[1].Anchor)
}

func TestHeadingLabelsDropInlineMarkup(t *testing.T) {
	counter := &Counter{}
	src := "## Using `d2World` with <em>care</em> & *style*\n"
	page, err := NewParser(counter, Options{}).Parse("a.md", []byte(src))
	require.NoError(t, err)

	require.Len(t, page.Sections, 1)
	assert.Equal(t, "Using d2World with care & style", page.Sections[0].Title)
	assert.Equal(t, 1, page.Sections[0].Line)
}

func TestSkippedLevelsNestUnderNearestOpenSection(t *testing.T) {
	counter := &Counter{}
	page, err := NewParser(counter, Options{}).Parse("a.md", []byte("## A\n\n#### Deep\n\n### Mid\n"))
	require.NoError(t, err)

	require.Len(t, page.Sections, 1)
	assert.Equal(t, []string{"Deep", "Mid"}, titles(page.Sections[0].Children))
}
