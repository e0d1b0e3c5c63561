package navtree

import (
	"fmt"
	"sort"
)

// IndexEntry maps a link to the position of the node that owns it.
type IndexEntry struct {
	Link string
	Path []int
}

// Shard is one navtreeindex script: a sorted slice of the link index.
type Shard struct {
	Name    string
	Entries []IndexEntry
}

// First returns the lowest link stored in the shard.
func (s Shard) First() string {
	if len(s.Entries) == 0 {
		return ""
	}
	return s.Entries[0].Link
}

// ShardName returns the script name of shard i.
func ShardName(i int) string {
	return fmt.Sprintf("navtreeindex%d", i)
}

// CollectLinks gathers every non-empty link of the tree with the path of its
// first pre-order occurrence, sorted byte-wise by link.
func CollectLinks(root *Node) []IndexEntry {
	seen := make(map[string]bool)
	entries := make([]IndexEntry, 0)
	_ = Walk(root, func(n *Node, path []int) error {
		if n.Link == "" || seen[n.Link] {
			return nil
		}
		seen[n.Link] = true
		entries = append(entries, IndexEntry{Link: n.Link, Path: path})
		return nil
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Link < entries[j].Link
	})
	return entries
}

// BuildShards partitions the link index into chunks of size entries.
// A non-positive size falls back to DefaultShardSize.
func BuildShards(root *Node, size int) []Shard {
	if size <= 0 {
		size = DefaultShardSize
	}
	entries := CollectLinks(root)
	shards := make([]Shard, 0, (len(entries)+size-1)/size)
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		shards = append(shards, Shard{
			Name:    ShardName(len(shards)),
			Entries: entries[start:end],
		})
	}
	return shards
}

// ShardIndex returns the NAVTREEINDEX list: the first link of each shard.
func ShardIndex(shards []Shard) []string {
	out := make([]string, 0, len(shards))
	for _, shard := range shards {
		out = append(out, shard.First())
	}
	return out
}
