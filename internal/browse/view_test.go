package browse

import (
	"reflect"
	"testing"

	"github.com/725aayush/setu-sharing/pkg/protocol"
)

func sampleEntries() []protocol.FileEntry {
	return []protocol.FileEntry{
		{Name: "report.pdf", Mime: "application/pdf", Size: 2048, MTime: 300},
		{Name: "Photos", IsDir: true, Mime: "image/png", MTime: 500},
		{Name: "beach.jpg", Mime: "image/jpeg", Size: 4096, MTime: 100},
		{Name: "notes.txt", Mime: "text/plain", Size: 10, MTime: 400},
		{Name: "archive", IsDir: true, MTime: 200},
		{Name: "blob.bin", Mime: "application/octet-stream", Size: 512},
	}
}

func names(entries []protocol.FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		entry protocol.FileEntry
		want  Kind
	}{
		{"directory", protocol.FileEntry{IsDir: true}, KindFolder},
		{"directory with image mime stays folder", protocol.FileEntry{IsDir: true, Mime: "image/png"}, KindFolder},
		{"png", protocol.FileEntry{Mime: "image/png"}, KindImage},
		{"pdf", protocol.FileEntry{Mime: "application/pdf"}, KindDoc},
		{"word", protocol.FileEntry{Mime: "application/msword"}, KindDoc},
		{"docx", protocol.FileEntry{Mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, KindDoc},
		{"plain text", protocol.FileEntry{Mime: "text/plain"}, KindDoc},
		{"binary", protocol.FileEntry{Mime: "application/octet-stream"}, KindFile},
		{"no mime", protocol.FileEntry{}, KindFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.entry); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_FoldersAlwaysFirst(t *testing.T) {
	for _, key := range []SortKey{SortName, SortSize, SortModified} {
		out := Project(sampleEntries(), Controls{Sort: key})
		sawFile := false
		for _, e := range out {
			if !e.IsDir {
				sawFile = true
			} else if sawFile {
				t.Errorf("sort %v: directory %q after a file", key, e.Name)
			}
		}
	}
}

func TestProject_SortName(t *testing.T) {
	out := Project(sampleEntries(), Controls{Sort: SortName})
	want := []string{"archive", "Photos", "beach.jpg", "blob.bin", "notes.txt", "report.pdf"}
	if !reflect.DeepEqual(names(out), want) {
		t.Errorf("got %v, want %v", names(out), want)
	}
}

func TestProject_SortSizeDescending(t *testing.T) {
	out := Project(sampleEntries(), Controls{Sort: SortSize, Filter: FilterFiles})
	want := []string{"beach.jpg", "report.pdf", "blob.bin", "notes.txt"}
	if !reflect.DeepEqual(names(out), want) {
		t.Errorf("got %v, want %v", names(out), want)
	}
}

func TestProject_SortModifiedDescending_MissingAsZero(t *testing.T) {
	out := Project(sampleEntries(), Controls{Sort: SortModified, Filter: FilterFiles})
	want := []string{"notes.txt", "report.pdf", "beach.jpg", "blob.bin"}
	if !reflect.DeepEqual(names(out), want) {
		t.Errorf("got %v, want %v", names(out), want)
	}
}

func TestProject_SearchCaseInsensitive(t *testing.T) {
	out := Project(sampleEntries(), Controls{Search: "PDF"})
	if len(out) != 1 || out[0].Name != "report.pdf" {
		t.Errorf("expected PDF to match report.pdf, got %v", names(out))
	}

	out = Project([]protocol.FileEntry{{Name: "report.pdf"}}, Controls{Search: "RePoRt"})
	if len(out) != 1 {
		t.Fatalf("expected case-insensitive match, got %v", names(out))
	}

	out = Project(sampleEntries(), Controls{Search: "  beach  "})
	if len(out) != 1 || out[0].Name != "beach.jpg" {
		t.Errorf("expected trimmed search to match beach.jpg, got %v", names(out))
	}
}

func TestProject_TypeFilters(t *testing.T) {
	tests := []struct {
		filter TypeFilter
		want   []string
	}{
		{FilterFolders, []string{"archive", "Photos"}},
		{FilterFiles, []string{"beach.jpg", "blob.bin", "notes.txt", "report.pdf"}},
		{FilterImages, []string{"beach.jpg"}},
		{FilterDocs, []string{"notes.txt", "report.pdf"}},
	}

	for _, tt := range tests {
		out := Project(sampleEntries(), Controls{Filter: tt.filter})
		if !reflect.DeepEqual(names(out), tt.want) {
			t.Errorf("filter %v: got %v, want %v", tt.filter, names(out), tt.want)
		}
	}
}

func TestProject_DirectoryNeverMatchesImageFilter(t *testing.T) {
	entries := []protocol.FileEntry{{Name: "Photos", IsDir: true, Mime: "image/png"}}
	if out := Project(entries, Controls{Filter: FilterImages}); len(out) != 0 {
		t.Errorf("directory matched image filter: %v", names(out))
	}
	if out := Project(entries, Controls{Filter: FilterDocs}); len(out) != 0 {
		t.Errorf("directory matched doc filter: %v", names(out))
	}
}

func TestProject_Deterministic(t *testing.T) {
	c := Controls{Search: "e", Sort: SortSize, Filter: FilterAll}
	first := Project(sampleEntries(), c)
	second := Project(sampleEntries(), c)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("projection not deterministic:\n%v\n%v", first, second)
	}
}

func TestProject_InputNotMutated(t *testing.T) {
	in := sampleEntries()
	want := sampleEntries()
	Project(in, Controls{Sort: SortSize})
	if !reflect.DeepEqual(in, want) {
		t.Error("Project mutated its input slice")
	}
}

func TestParseControls(t *testing.T) {
	if k, ok := ParseSortKey("Modified"); !ok || k != SortModified {
		t.Errorf("ParseSortKey(Modified) = %v, %v", k, ok)
	}
	if _, ok := ParseSortKey("bogus"); ok {
		t.Error("bogus sort key accepted")
	}
	if f, ok := ParseTypeFilter("documents"); !ok || f != FilterDocs {
		t.Errorf("ParseTypeFilter(documents) = %v, %v", f, ok)
	}
	if _, ok := ParseTypeFilter("bogus"); ok {
		t.Error("bogus filter accepted")
	}
}
