package navtree

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

var escapedChars = map[byte]string{
	'-':  "-",
	':':  "_1",
	'/':  "_2",
	'<':  "_3",
	'>':  "_4",
	'*':  "_5",
	'&':  "_6",
	'|':  "_7",
	'!':  "_9",
	',':  "_00",
	' ':  "_01",
	'{':  "_02",
	'}':  "_03",
	'?':  "_04",
	'^':  "_05",
	'%':  "_06",
	'(':  "_07",
	')':  "_08",
	'+':  "_09",
	'=':  "_0a",
	'$':  "_0b",
	'\\': "_0c",
	'@':  "_0d",
	']':  "_0e",
	'[':  "_0f",
	'#':  "_0g",
	'"':  "_0h",
	'~':  "_0i",
	'\'': "_0j",
	';':  "_0k",
	'`':  "_0l",
}

// EscapeName turns an arbitrary name into a file-name-safe page stem the way
// Doxygen does. Without caseSense, upper-case letters become "_" + lower case
// so that names differing only in case map to distinct files on
// case-insensitive file systems.
func EscapeName(name string, caseSense bool) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_':
			b.WriteString("__")
		case c == '.':
			b.WriteString("_8")
		case c >= 'A' && c <= 'Z':
			if caseSense {
				b.WriteByte(c)
			} else {
				b.WriteByte('_')
				b.WriteByte(c + ('a' - 'A'))
			}
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			b.WriteByte(c)
		default:
			if esc, ok := escapedChars[c]; ok {
				b.WriteString(esc)
				continue
			}
			fmt.Fprintf(&b, "_x%02x", c)
		}
	}
	return b.String()
}

// Naming derives page names for generated documentation entities.
type Naming struct {
	CaseSense bool
}

// ClassPage returns the page of a compound, e.g. "classd2_body.html".
func (n Naming) ClassPage(kind, name string) string {
	return n.ClassStem(kind, name) + ".html"
}

// ClassStem is ClassPage without the extension; it also names the class's
// member script.
func (n Naming) ClassStem(kind, name string) string {
	return kind + EscapeName(name, n.CaseSense)
}

// FilePage returns the page of a source file, e.g. "d2_body_8h.html".
func (n Naming) FilePage(file string) string {
	return n.FileStem(file) + ".html"
}

func (n Naming) FileStem(file string) string {
	return EscapeName(path.Base(file), n.CaseSense)
}

// MarkdownPage returns the page generated for an extra markdown page.
func (n Naming) MarkdownPage(relPath string) string {
	relPath = strings.TrimSuffix(relPath, path.Ext(relPath))
	return "md_" + EscapeName(relPath, n.CaseSense) + ".html"
}

// DirPage returns the page of a source directory.
func (n Naming) DirPage(dir string) string {
	sum := md5.Sum([]byte(dir))
	return "dir_" + hex.EncodeToString(sum[:]) + ".html"
}

// MemberAnchor returns the anchor of a member inside its page.
func MemberAnchor(scope, name, args string) string {
	key := name + args
	if scope != "" {
		key = scope + "::" + key
	}
	sum := md5.Sum([]byte(key))
	return "a" + hex.EncodeToString(sum[:])
}

// LetterSuffix returns the page suffix of an index letter: the letter itself
// when it is a lower-case ASCII letter or digit, else its hex bytes.
func LetterSuffix(letter string) string {
	if len(letter) == 1 {
		c := letter[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return letter
		}
	}
	return "0x" + hex.EncodeToString([]byte(letter))
}

// ScriptVar returns the JavaScript variable a deferred script declares. The
// script file keeps the page stem; only the identifier replaces "-" with "_".
func ScriptVar(script string) string {
	return strings.ReplaceAll(script, "-", "_")
}

// ScriptName derives the deferred script name for a node linking to link
// below a parent linking to parentLink.
func ScriptName(link, parentLink string) string {
	page, _ := SplitLink(link)
	stem := strings.TrimSuffix(page, ".html")
	if link == parentLink {
		return stem + "_dup"
	}
	return stem
}
