package listing

// Category is an extension filter applied to files.
type Category string

const (
	CategoryAll    Category = "All"
	CategoryExcel  Category = "Excel"
	CategoryPDF    Category = "PDF"
	CategoryWord   Category = "Word"
	CategoryImages Category = "Images"
	CategoryText   Category = "Text"
)

// Categories lists every filter in display order.
var Categories = []Category{
	CategoryAll,
	CategoryExcel,
	CategoryPDF,
	CategoryWord,
	CategoryImages,
	CategoryText,
}

var categoryExts = map[Category]map[string]struct{}{
	CategoryExcel:  set(".xlsx", ".xlsm", ".xls", ".csv"),
	CategoryPDF:    set(".pdf"),
	CategoryWord:   set(".docx", ".doc"),
	CategoryImages: set(".jpg", ".jpeg", ".png", ".gif"),
	CategoryText:   set(".txt", ".md", ".log"),
}

// contentExts are the extensions whose contents may be searched.
var contentExts = set(".txt", ".md", ".py", ".js", ".html", ".css", ".json", ".log", ".xml", ".ini", ".cfg")

// Matches reports whether a file with the lowercased extension ext passes the
// filter. All and the empty category pass everything; unknown ones nothing.
func (c Category) Matches(ext string) bool {
	if c == "" || c == CategoryAll {
		return true
	}
	exts, ok := categoryExts[c]
	if !ok {
		return false
	}
	_, ok = exts[ext]
	return ok
}

// Next returns the category after c in Categories, wrapping around.
func (c Category) Next() Category {
	for i, cat := range Categories {
		if cat == c {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return CategoryAll
}

// Searchable reports whether content search applies to ext.
func Searchable(ext string) bool {
	_, ok := contentExts[ext]
	return ok
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
