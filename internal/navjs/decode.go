package navjs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dura2d/navgen/internal/navtree"
)

// declaration is one top-level `var NAME = value;` statement.
type declaration struct {
	Name  string
	Value interface{}
}

// ParseData decodes navtreedata.js. Deferred scripts stay unresolved.
func ParseData(data []byte) (*navtree.Tree, error) {
	decls, err := parseDeclarations(data)
	if err != nil {
		return nil, err
	}

	tree := &navtree.Tree{}
	var sawTree, sawIndex bool
	for _, decl := range decls {
		switch decl.Name {
		case "NAVTREE":
			items, ok := decl.Value.([]interface{})
			if !ok || len(items) != 1 {
				return nil, fmt.Errorf("NAVTREE must be an array holding exactly one root node")
			}
			root, err := toNode(items[0])
			if err != nil {
				return nil, fmt.Errorf("NAVTREE: %w", err)
			}
			tree.Root = root
			sawTree = true
		case "NAVTREEINDEX":
			index, err := toStrings(decl.Value)
			if err != nil {
				return nil, fmt.Errorf("NAVTREEINDEX: %w", err)
			}
			tree.Index = index
			sawIndex = true
		case "SYNCONMSG":
			msg, ok := decl.Value.(string)
			if !ok {
				return nil, fmt.Errorf("SYNCONMSG must be a string")
			}
			tree.Messages.SyncOn = msg
		case "SYNCOFFMSG":
			msg, ok := decl.Value.(string)
			if !ok {
				return nil, fmt.Errorf("SYNCOFFMSG must be a string")
			}
			tree.Messages.SyncOff = msg
		}
	}
	if !sawTree {
		return nil, fmt.Errorf("missing NAVTREE declaration")
	}
	if !sawIndex {
		return nil, fmt.Errorf("missing NAVTREEINDEX declaration")
	}
	return tree, nil
}

// ParseScript decodes a deferred child script.
func ParseScript(data []byte) (string, []*navtree.Node, error) {
	decls, err := parseDeclarations(data)
	if err != nil {
		return "", nil, err
	}
	if len(decls) != 1 {
		return "", nil, fmt.Errorf("expected one declaration, found %d", len(decls))
	}
	items, ok := decls[0].Value.([]interface{})
	if !ok {
		return "", nil, fmt.Errorf("%s must be an array", decls[0].Name)
	}
	children := make([]*navtree.Node, 0, len(items))
	for i, item := range items {
		child, err := toNode(item)
		if err != nil {
			return "", nil, fmt.Errorf("%s[%d]: %w", decls[0].Name, i, err)
		}
		children = append(children, child)
	}
	return decls[0].Name, children, nil
}

// ParseShard decodes a navtreeindex script.
func ParseShard(data []byte) (navtree.Shard, error) {
	decls, err := parseDeclarations(data)
	if err != nil {
		return navtree.Shard{}, err
	}
	if len(decls) != 1 {
		return navtree.Shard{}, fmt.Errorf("expected one declaration, found %d", len(decls))
	}
	object, ok := decls[0].Value.(map[string]interface{})
	if !ok {
		return navtree.Shard{}, fmt.Errorf("%s must be an object", decls[0].Name)
	}

	shard := navtree.Shard{Name: strings.ToLower(decls[0].Name)}
	for link, raw := range object {
		items, ok := raw.([]interface{})
		if !ok {
			return navtree.Shard{}, fmt.Errorf("%s: path of %q must be an array", decls[0].Name, link)
		}
		var path []int
		for _, item := range items {
			num, ok := item.(json.Number)
			if !ok {
				return navtree.Shard{}, fmt.Errorf("%s: path of %q must hold integers", decls[0].Name, link)
			}
			v, err := strconv.Atoi(num.String())
			if err != nil {
				return navtree.Shard{}, fmt.Errorf("%s: path of %q: %w", decls[0].Name, link, err)
			}
			path = append(path, v)
		}
		shard.Entries = append(shard.Entries, navtree.IndexEntry{Link: link, Path: path})
	}
	sort.Slice(shard.Entries, func(i, j int) bool {
		return shard.Entries[i].Link < shard.Entries[j].Link
	})
	return shard, nil
}

func toNode(v interface{}) (*navtree.Node, error) {
	items, ok := v.([]interface{})
	if !ok || len(items) != 3 {
		return nil, fmt.Errorf("node must be a [label, link, children] triple")
	}
	label, ok := items[0].(string)
	if !ok {
		return nil, fmt.Errorf("node label must be a string")
	}
	link, ok := items[1].(string)
	if !ok {
		return nil, fmt.Errorf("node %q: link must be a string", label)
	}

	node := &navtree.Node{Label: label, Link: link}
	switch third := items[2].(type) {
	case nil:
	case string:
		node.Script = third
	case []interface{}:
		node.Children = make([]*navtree.Node, 0, len(third))
		for i, raw := range third {
			child, err := toNode(raw)
			if err != nil {
				return nil, fmt.Errorf("node %q child %d: %w", label, i, err)
			}
			node.Children = append(node.Children, child)
		}
	default:
		return nil, fmt.Errorf("node %q: children must be null, a script name or an array", label)
	}
	return node, nil
}

func toStrings(v interface{}) ([]string, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("must be an array")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %d must be a string", i)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseDeclarations(data []byte) ([]declaration, error) {
	var decls []declaration
	pos := 0
	for {
		pos = skipSpaceAndComments(data, pos)
		if pos >= len(data) {
			return decls, nil
		}
		if !bytes.HasPrefix(data[pos:], []byte("var")) || pos+3 >= len(data) || !isSpace(data[pos+3]) {
			return nil, fmt.Errorf("expected var declaration at offset %d", pos)
		}
		pos = skipSpace(data, pos+3)

		start := pos
		for pos < len(data) && isIdentByte(data[pos]) {
			pos++
		}
		if start == pos {
			return nil, fmt.Errorf("expected identifier at offset %d", start)
		}
		name := string(data[start:pos])

		pos = skipSpace(data, pos)
		if pos >= len(data) || data[pos] != '=' {
			return nil, fmt.Errorf("expected '=' after %s", name)
		}
		pos = skipSpace(data, pos+1)
		if pos >= len(data) {
			return nil, fmt.Errorf("missing value for %s", name)
		}

		var value interface{}
		switch data[pos] {
		case '\'':
			s, n, err := parseSingleQuoted(data[pos:])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			value = s
			pos += n
		default:
			dec := json.NewDecoder(bytes.NewReader(data[pos:]))
			dec.UseNumber()
			if err := dec.Decode(&value); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			pos += int(dec.InputOffset())
		}

		pos = skipSpace(data, pos)
		if pos < len(data) && data[pos] == ';' {
			pos++
		}
		decls = append(decls, declaration{Name: name, Value: value})
	}
}

func parseSingleQuoted(data []byte) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(data); i++ {
		switch c := data[i]; c {
		case '\'':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 >= len(data) {
				return "", 0, fmt.Errorf("unterminated escape")
			}
			i++
			switch data[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(data[i])
			}
		case '\n':
			return "", 0, fmt.Errorf("unterminated string")
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func skipSpaceAndComments(data []byte, pos int) int {
	for {
		pos = skipSpace(data, pos)
		switch {
		case bytes.HasPrefix(data[pos:], []byte("/*")):
			end := bytes.Index(data[pos+2:], []byte("*/"))
			if end < 0 {
				return len(data)
			}
			pos += 2 + end + 2
		case bytes.HasPrefix(data[pos:], []byte("//")):
			end := bytes.IndexByte(data[pos:], '\n')
			if end < 0 {
				return len(data)
			}
			pos += end + 1
		default:
			return pos
		}
	}
}

func skipSpace(data []byte, pos int) int {
	for pos < len(data) && isSpace(data[pos]) {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
