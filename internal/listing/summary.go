package listing

import "sort"

// ExtCount is the number of files sharing one extension.
type ExtCount struct {
	Ext   string
	Count int
}

// Summary aggregates a listing for the status bar.
type Summary struct {
	Dirs       int
	Files      int
	TotalBytes int64
	Extensions []ExtCount
}

// Summarize counts files and bytes and groups files by extension, most
// frequent first. Files without an extension are grouped under "".
func Summarize(records []Record) Summary {
	var s Summary
	counts := make(map[string]int)
	for _, r := range records {
		if r.IsDir {
			s.Dirs++
			continue
		}
		s.Files++
		s.TotalBytes += r.Size
		counts[r.Ext()]++
	}

	s.Extensions = make([]ExtCount, 0, len(counts))
	for ext, n := range counts {
		s.Extensions = append(s.Extensions, ExtCount{Ext: ext, Count: n})
	}
	sort.Slice(s.Extensions, func(i, j int) bool {
		if s.Extensions[i].Count != s.Extensions[j].Count {
			return s.Extensions[i].Count > s.Extensions[j].Count
		}
		return s.Extensions[i].Ext < s.Extensions[j].Ext
	})
	return s
}
