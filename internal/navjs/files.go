package navjs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dura2d/navgen/internal/errors"
	"github.com/dura2d/navgen/internal/fileutil"
	"github.com/dura2d/navgen/internal/navtree"
)

// Load reads a navtreedata.js file and resolves the deferred scripts found
// next to it. Missing scripts are left unresolved.
func Load(dataPath string) (*navtree.Tree, error) {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound("navigation data", dataPath)
		}
		return nil, fmt.Errorf("failed to read %s: %w", dataPath, err)
	}
	tree, err := ParseData(data)
	if err != nil {
		return nil, errors.MalformedIndex(dataPath, err.Error())
	}
	if err := resolveScripts(filepath.Dir(dataPath), tree.Root, make(map[string]bool)); err != nil {
		return nil, err
	}
	return tree, nil
}

func resolveScripts(dir string, n *navtree.Node, loaded map[string]bool) error {
	if n.Script != "" && n.Children == nil && !loaded[n.Script] {
		loaded[n.Script] = true
		path := filepath.Join(dir, n.Script+ScriptSuffix)
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return fmt.Errorf("failed to read %s: %w", path, err)
		default:
			name, children, err := ParseScript(data)
			if err != nil {
				return errors.MalformedIndex(path, err.Error())
			}
			if want := navtree.ScriptVar(n.Script); name != want {
				return errors.MalformedIndex(path, fmt.Sprintf("declares %q instead of %q", name, want))
			}
			n.Children = children
		}
	}
	for _, child := range n.Children {
		if err := resolveScripts(dir, child, loaded); err != nil {
			return err
		}
	}
	return nil
}

// LoadShards reads navtreeindex0.js .. navtreeindex<count-1>.js from dir.
func LoadShards(dir string, count int) ([]navtree.Shard, error) {
	shards := make([]navtree.Shard, 0, count)
	for i := 0; i < count; i++ {
		path := filepath.Join(dir, navtree.ShardName(i)+ScriptSuffix)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.InputNotFound("navigation index shard", path)
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		shard, err := ParseShard(data)
		if err != nil {
			return nil, errors.MalformedIndex(path, err.Error())
		}
		shards = append(shards, shard)
	}
	return shards, nil
}

// CheckShards compares the shard scripts on disk with the NAVTREEINDEX list.
func CheckShards(dir string, tree *navtree.Tree) []navtree.Issue {
	shards, err := LoadShards(dir, len(tree.Index))
	if err != nil {
		return []navtree.Issue{{Severity: navtree.SeverityError, Message: err.Error()}}
	}

	var issues []navtree.Issue
	for i, shard := range shards {
		if shard.Name != navtree.ShardName(i) {
			issues = append(issues, navtree.Issue{
				Severity: navtree.SeverityError,
				Message:  fmt.Sprintf("%s declares %s", navtree.ShardName(i), shard.Name),
			})
		}
		if shard.First() != tree.Index[i] {
			issues = append(issues, navtree.Issue{
				Severity: navtree.SeverityError,
				Link:     tree.Index[i],
				Message:  fmt.Sprintf("%s starts at %q but NAVTREEINDEX lists %q", shard.Name, shard.First(), tree.Index[i]),
			})
		}
	}
	return issues
}

// WriteResult lists the scripts produced by Write, relative to the output dir.
type WriteResult struct {
	Files     []string
	Rewritten []string
	Hashes    map[string]string
}

// Write emits navtreedata.js, every loaded deferred script and the shards.
// Files whose content is unchanged are left untouched.
func Write(dir string, tree *navtree.Tree, shards []navtree.Shard) (*WriteResult, error) {
	outputs := map[string][]byte{
		DataFile: EncodeData(tree),
	}
	for _, n := range tree.Scripts() {
		if n.Unresolved() {
			continue
		}
		name := n.Script + ScriptSuffix
		if _, dup := outputs[name]; dup {
			return nil, fmt.Errorf("script %s is referenced more than once", n.Script)
		}
		outputs[name] = EncodeScript(n.Script, n.Children)
	}
	for _, shard := range shards {
		outputs[shard.Name+ScriptSuffix] = EncodeShard(shard)
	}

	result := &WriteResult{Hashes: make(map[string]string, len(outputs))}
	for name := range outputs {
		result.Files = append(result.Files, name)
	}
	sort.Strings(result.Files)

	for _, name := range result.Files {
		data := outputs[name]
		path := filepath.Join(dir, name)
		written, err := fileutil.WriteIfChangedTracked(path, data)
		if err != nil {
			return nil, errors.WriteFailed(path, err)
		}
		if written {
			result.Rewritten = append(result.Rewritten, name)
		}
		result.Hashes[name] = fileutil.HashBytes(data)
	}
	return result, nil
}
