// Package navjs reads and writes the JavaScript navigation scripts consumed by
// the documentation frame: navtreedata.js, deferred child scripts and the
// navtreeindex shards.
package navjs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dura2d/navgen/internal/navtree"
)

const (
	DataFile     = "navtreedata.js"
	ScriptSuffix = ".js"

	rootIndent   = 2
	scriptIndent = 4
)

var (
	doubleQuoted = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	singleQuoted = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
)

// EncodeData renders navtreedata.js.
func EncodeData(t *navtree.Tree) []byte {
	var b bytes.Buffer
	b.WriteString(licenseHeader)
	b.WriteString("var NAVTREE =\n[\n")
	if t.Root != nil {
		writeNode(&b, t.Root, rootIndent)
	}
	b.WriteString("\n];\n\nvar NAVTREEINDEX =\n[\n")
	quoted := make([]string, len(t.Index))
	for i, link := range t.Index {
		quoted[i] = quote(link)
	}
	b.WriteString(strings.Join(quoted, ",\n"))
	b.WriteString("\n];\n\n")
	fmt.Fprintf(&b, "var SYNCONMSG = '%s';\n", singleQuoted.Replace(t.Messages.SyncOn))
	fmt.Fprintf(&b, "var SYNCOFFMSG = '%s';", singleQuoted.Replace(t.Messages.SyncOff))
	return b.Bytes()
}

// EncodeScript renders the deferred child script named name.
func EncodeScript(name string, children []*navtree.Node) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "var %s =\n[\n", navtree.ScriptVar(name))
	for i, child := range children {
		if i > 0 {
			b.WriteString(",\n")
		}
		writeNode(&b, child, scriptIndent)
	}
	b.WriteString("\n];\n")
	return b.Bytes()
}

// EncodeShard renders one navtreeindex script.
func EncodeShard(shard navtree.Shard) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "var %s =\n{\n", strings.ToUpper(shard.Name))
	for i, entry := range shard.Entries {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString(quote(entry.Link))
		b.WriteString(":")
		b.WriteString(formatPath(entry.Path))
	}
	b.WriteString("\n};\n")
	return b.Bytes()
}

func writeNode(b *bytes.Buffer, n *navtree.Node, indent int) {
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(b, "%s[ %s, %s, ", pad, quote(n.Label), quote(n.Link))
	switch {
	case n.Script != "":
		b.WriteString(quote(n.Script))
		b.WriteString(" ]")
	case n.Children == nil:
		b.WriteString("null ]")
	default:
		b.WriteString("[\n")
		for i, child := range n.Children {
			if i > 0 {
				b.WriteString(",\n")
			}
			writeNode(b, child, indent+2)
		}
		fmt.Fprintf(b, "\n%s] ]", pad)
	}
}

func quote(s string) string {
	return `"` + doubleQuoted.Replace(s) + `"`
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
