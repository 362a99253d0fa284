package listing

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
	"github.com/kk-code-lab/rpanes/internal/tags"
)

func mkfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func mkdir(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestListOrdersDirectoriesBeforeFiles(t *testing.T) {
	// SETUP
	root := t.TempDir()
	mkfile(t, root, "b.txt", "b")
	mkfile(t, root, "A.txt", "a")
	mkdir(t, root, "sub")

	// EXECUTE
	records, err := NewEngine(nil, nil).List(root, CategoryAll, "", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	// VERIFY
	want := []string{"sub", "A.txt", "b.txt"}
	if got := names(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if !records[0].IsDir || records[1].IsDir {
		t.Fatalf("dir flags wrong: %+v", records)
	}
	if records[1].Path != filepath.Join(root, "A.txt") {
		t.Fatalf("path = %q", records[1].Path)
	}
}

func TestListCaseInsensitiveSortWithTieBreak(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"beta.txt", "Alpha.txt", "alpha.md", "Gamma", "delta"} {
		if n == "Gamma" || n == "delta" {
			mkdir(t, root, n)
			continue
		}
		mkfile(t, root, n, n)
	}

	records, err := NewEngine(nil, nil).List(root, "", "", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"delta", "Gamma", "alpha.md", "Alpha.txt", "beta.txt"}
	if got := names(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestListHidesDotDirectoriesButKeepsDotFiles(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, ".git")
	mkdir(t, root, "src")
	mkfile(t, root, ".env", "SECRET=1")
	mkfile(t, root, "main.go", "package main")

	records, err := NewEngine(nil, nil).List(root, CategoryAll, "", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"src", ".env", "main.go"}
	if got := names(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestListSymlinkToDirectoryCountsAsDirectory(t *testing.T) {
	root := t.TempDir()
	target := mkdir(t, t.TempDir(), "elsewhere")
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	mkfile(t, root, "a.txt", "a")

	records, err := NewEngine(nil, nil).List(root, CategoryAll, "", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].Name != "link" || !records[0].IsDir || !records[0].IsSymlink {
		t.Fatalf("records = %+v", records)
	}
}

func TestListFilterCategories(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"sheet.XLSX", "data.csv", "doc.pdf", "letter.docx", "pic.png", "notes.md", "raw.bin"} {
		mkfile(t, root, n, n)
	}
	mkdir(t, root, "folder")

	cases := []struct {
		filter Category
		want   []string
	}{
		{CategoryAll, []string{"folder", "data.csv", "doc.pdf", "letter.docx", "notes.md", "pic.png", "raw.bin", "sheet.XLSX"}},
		{CategoryExcel, []string{"folder", "data.csv", "sheet.XLSX"}},
		{CategoryPDF, []string{"folder", "doc.pdf"}},
		{CategoryWord, []string{"folder", "letter.docx"}},
		{CategoryImages, []string{"folder", "pic.png"}},
		{CategoryText, []string{"folder", "notes.md"}},
		{Category("Audio"), []string{"folder"}},
	}

	engine := NewEngine(nil, nil)
	for _, tc := range cases {
		records, err := engine.List(root, tc.filter, "", false)
		if err != nil {
			t.Fatalf("%s: %v", tc.filter, err)
		}
		if got := names(records); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: names = %v, want %v", tc.filter, got, tc.want)
		}
	}
}

func TestListSearchByName(t *testing.T) {
	root := t.TempDir()
	mkfile(t, root, "Report-2024.txt", "")
	mkfile(t, root, "summary.txt", "")
	mkdir(t, root, "reports")
	mkdir(t, root, "archive")

	engine := NewEngine(nil, nil)

	records, err := engine.List(root, CategoryAll, "REP", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got, want := names(records), []string{"reports", "Report-2024.txt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}

	records, err = engine.List(root, CategoryAll, "zzz", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("unmatched term returned %v", names(records))
	}
}

func TestListContentSearchOnlyForAllowListedExtensions(t *testing.T) {
	root := t.TempDir()
	mkfile(t, root, "notes.txt", "the Quarterly numbers are in")
	mkfile(t, root, "config.ini", "[quarterly]\nenabled=true")
	mkfile(t, root, "sheet.csv", "quarterly,1,2")
	mkfile(t, root, "other.txt", "nothing to see")
	mkdir(t, root, "quarterly-dir-no")

	engine := NewEngine(nil, nil)

	records, err := engine.List(root, CategoryAll, "quarterly", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got, want := names(records), []string{"quarterly-dir-no"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("without content search: %v, want %v", got, want)
	}

	records, err = engine.List(root, CategoryAll, "quarterly", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// .csv is not in the content allow-list.
	if got, want := names(records), []string{"quarterly-dir-no", "config.ini", "notes.txt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("with content search: %v, want %v", got, want)
	}
}

func TestListContentSearchReadsOnlyTheHead(t *testing.T) {
	root := t.TempDir()
	padding := make([]byte, ContentLimit)
	for i := range padding {
		padding[i] = 'x'
	}
	mkfile(t, root, "late.log", string(padding)+"needle")
	mkfile(t, root, "early.log", "needle"+string(padding))

	records, err := NewEngine(nil, nil).List(root, CategoryAll, "needle", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got, want := names(records), []string{"early.log"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestListContentSearchDecodesUTF16(t *testing.T) {
	root := t.TempDir()
	// "Hi Zoë" in UTF-16LE with BOM.
	data := []byte{0xFF, 0xFE, 'H', 0, 'i', 0, ' ', 0, 'Z', 0, 'o', 0, 0xEB, 0}
	if err := os.WriteFile(filepath.Join(root, "wide.txt"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := NewEngine(nil, nil).List(root, CategoryAll, "ZOË", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].Name != "wide.txt" {
		t.Fatalf("records = %v", names(records))
	}
}

func TestListUnreadableContentIsSkipped(t *testing.T) {
	root := t.TempDir()
	mkfile(t, root, "gone.txt", "needle")
	mkfile(t, root, "kept.txt", "needle")

	engine := NewEngine(nil, nil)
	engine.readText = func(path string, limit int64) (string, error) {
		if filepath.Base(path) == "gone.txt" {
			return "", os.ErrNotExist
		}
		return fsutil.ReadTextHead(path, limit)
	}

	records, err := engine.List(root, CategoryAll, "needle", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got, want := names(records), []string{"kept.txt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestListDecoratesTags(t *testing.T) {
	root := t.TempDir()
	a := mkfile(t, root, "a.txt", "")
	mkfile(t, root, "b.txt", "")
	store := tags.NewStore("")
	note := "check totals"
	if err := store.SetTag(a, tags.ColorRed, &note); err != nil {
		t.Fatal(err)
	}

	records, err := NewEngine(store, nil).List(root, CategoryAll, "", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records[0].TagColor != tags.ColorRed || records[0].Note != note {
		t.Fatalf("a.txt not decorated: %+v", records[0])
	}
	if records[1].TagColor != tags.ColorNone || records[1].Note != "" {
		t.Fatalf("b.txt unexpectedly decorated: %+v", records[1])
	}
}

func TestListMissingRoot(t *testing.T) {
	_, err := NewEngine(nil, nil).List(filepath.Join(t.TempDir(), "missing"), CategoryAll, "", false)
	if !errors.Is(err, fsutil.ErrPathNotFound) {
		t.Fatalf("err = %v, want PathNotFound", err)
	}
	if fsutil.Classify(err) != fsutil.KindPathNotFound {
		t.Fatalf("kind = %v", fsutil.Classify(err))
	}
}

func TestCategoryNextWraps(t *testing.T) {
	if CategoryAll.Next() != CategoryExcel {
		t.Fatalf("All.Next() = %v", CategoryAll.Next())
	}
	if CategoryText.Next() != CategoryAll {
		t.Fatalf("Text.Next() = %v", CategoryText.Next())
	}
	if Category("bogus").Next() != CategoryAll {
		t.Fatalf("unknown.Next() should reset to All")
	}
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Name: "sub", IsDir: true},
		{Name: "a.txt", Size: 10},
		{Name: "b.TXT", Size: 5},
		{Name: "c.pdf", Size: 100},
		{Name: "Makefile", Size: 1},
	}

	s := Summarize(records)
	if s.Dirs != 1 || s.Files != 4 || s.TotalBytes != 116 {
		t.Fatalf("summary = %+v", s)
	}
	want := []ExtCount{{".txt", 2}, {"", 1}, {".pdf", 1}}
	if !reflect.DeepEqual(s.Extensions, want) {
		t.Fatalf("extensions = %v, want %v", s.Extensions, want)
	}
}
