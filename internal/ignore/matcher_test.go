package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"third_party/**",
		"!third_party/keep/d2Extra.h",
		"*.tmp",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: "html/navtreedata.js", isDir: false, ignored: true},
		{path: "html", isDir: true, ignored: true},
		{path: "cmake-build-debug/_deps/x.h", isDir: false, ignored: true},
		{path: "third_party/lib/a.h", isDir: false, ignored: true},
		{path: "third_party/keep/d2Extra.h", isDir: false, ignored: false},
		{path: "nested/cache.tmp", isDir: false, ignored: true},
		{path: "include/dura2d/d2Body.h", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ignored, m.ShouldIgnore(tc.path, tc.isDir), "path %s", tc.path)
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"build/",
		"!build/include/",
	})

	assert.True(t, m.ShouldIgnore("build/out/file.h", false))
	assert.False(t, m.ShouldIgnore("build/include/file.h", false))
}

func TestMatcher_AnchoredRule(t *testing.T) {
	m := NewMatcher([]string{"/testbed"})

	assert.True(t, m.ShouldIgnore("testbed", true))
	assert.False(t, m.ShouldIgnore("src/testbed", true))
}

func TestMatcher_PathRuleCoversDescendants(t *testing.T) {
	m := NewMatcher([]string{"docs/generated", "d2*_test.h"})

	assert.True(t, m.ShouldIgnore("docs/generated/index.h", false))
	assert.True(t, m.ShouldIgnore("vendor/docs/generated/a/b.h", false))
	assert.True(t, m.ShouldIgnore("include/d2body_test.h", false))
	assert.False(t, m.ShouldIgnore("docs/generated.h", false))
	assert.False(t, m.ShouldIgnore("include/d2Body.h", false))
}

func TestLoadRules(t *testing.T) {
	root := t.TempDir()

	rules, err := LoadRules(root)
	require.NoError(t, err)
	assert.Nil(t, rules)

	content := "# generated pages\nhtml/\n\n  unit-test/  \n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	rules, err = LoadRules(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"html/", "unit-test/"}, rules)
}
