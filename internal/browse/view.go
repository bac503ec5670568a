// Package browse maintains the receiver's position in a shared directory
// tree and projects raw listings into what the user actually sees.
package browse

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/725aayush/setu-sharing/pkg/protocol"
)

// Kind classifies an entry for filtering and display.
type Kind int

const (
	KindFolder Kind = iota
	KindImage
	KindDoc
	KindFile
)

// Classify determines the display kind of an entry. Directories are always
// folders, whatever mime type the server reported for them.
func Classify(e protocol.FileEntry) Kind {
	if e.IsDir {
		return KindFolder
	}
	mime := e.Mime
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.Contains(mime, "pdf"),
		strings.Contains(mime, "word"),
		strings.Contains(mime, "officedocument"),
		strings.HasPrefix(mime, "text/"):
		return KindDoc
	default:
		return KindFile
	}
}

// SortKey selects the ordering within each tier of a projection.
type SortKey int

const (
	SortName SortKey = iota
	SortSize
	SortModified
)

// ParseSortKey parses a user-supplied sort key name.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(s) {
	case "name":
		return SortName, true
	case "size":
		return SortSize, true
	case "modified", "mtime":
		return SortModified, true
	default:
		return SortName, false
	}
}

// TypeFilter restricts a projection to one class of entries.
type TypeFilter int

const (
	FilterAll TypeFilter = iota
	FilterFolders
	FilterFiles
	FilterImages
	FilterDocs
)

// ParseTypeFilter parses a user-supplied filter name.
func ParseTypeFilter(s string) (TypeFilter, bool) {
	switch strings.ToLower(s) {
	case "all":
		return FilterAll, true
	case "folders":
		return FilterFolders, true
	case "files":
		return FilterFiles, true
	case "images":
		return FilterImages, true
	case "docs", "documents":
		return FilterDocs, true
	default:
		return FilterAll, false
	}
}

// Controls holds the client-local search/sort/filter parameters. They affect
// presentation only, never server state.
type Controls struct {
	Search string
	Sort   SortKey
	Filter TypeFilter
}

// Project filters and orders a listing according to the view controls. It is
// a pure function: identical inputs produce identical output, and the input
// slice is never mutated.
func Project(entries []protocol.FileEntry, c Controls) []protocol.FileEntry {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]protocol.FileEntry, 0, len(entries))
	for _, e := range entries {
		if search != "" && !strings.Contains(strings.ToLower(e.Name), search) {
			continue
		}
		if !c.Filter.matches(e) {
			continue
		}
		out = append(out, e)
	}

	coll := collate.New(language.Und, collate.Loose)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		// Folders always sort before files.
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		switch c.Sort {
		case SortSize:
			return a.Size > b.Size
		case SortModified:
			return a.MTime > b.MTime
		default:
			return coll.CompareString(a.Name, b.Name) < 0
		}
	})

	return out
}

func (f TypeFilter) matches(e protocol.FileEntry) bool {
	switch f {
	case FilterAll:
		return true
	case FilterFolders:
		return e.IsDir
	case FilterFiles:
		return !e.IsDir
	case FilterImages:
		return Classify(e) == KindImage
	case FilterDocs:
		return Classify(e) == KindDoc
	default:
		return false
	}
}
