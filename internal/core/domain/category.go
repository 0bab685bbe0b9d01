package domain

import "strings"

// Category is a named bucket of document references.
// Names are not unique; see ReconcileSplit for how collisions merge.
type Category struct {
	// Name is the label assigned by the oracle or the operator.
	Name string

	// RefURLs reference CrawledDocument.URL values. They are not checked
	// at construction time; SanitizeCategories drops the dangling ones.
	RefURLs []string
}

// IsEmpty reports whether the category references no documents.
func (c Category) IsEmpty() bool {
	return len(c.RefURLs) == 0
}

// clone returns a copy that shares no backing array with c.
func (c Category) clone() Category {
	if c.RefURLs == nil {
		return Category{Name: c.Name}
	}
	urls := make([]string, len(c.RefURLs))
	copy(urls, c.RefURLs)
	return Category{Name: c.Name, RefURLs: urls}
}

// CategorySet is an ordered sequence of categories. Order is display order.
type CategorySet []Category

// Clone returns a deep copy of the set.
func (s CategorySet) Clone() CategorySet {
	if s == nil {
		return nil
	}
	out := make(CategorySet, len(s))
	for i := range s {
		out[i] = s[i].clone()
	}
	return out
}

// Names returns the category names in order.
func (s CategorySet) Names() []string {
	names := make([]string, len(s))
	for i := range s {
		names[i] = s[i].Name
	}
	return names
}

// FindCategory returns the index of the category whose name equals name
// exactly, or -1.
func FindCategory(set CategorySet, name string) int {
	for i := range set {
		if set[i].Name == name {
			return i
		}
	}
	return -1
}

// findCategoryFold is FindCategory with case-insensitive matching.
func findCategoryFold(set CategorySet, name string) int {
	for i := range set {
		if strings.EqualFold(set[i].Name, name) {
			return i
		}
	}
	return -1
}

// SanitizeCategories keeps only the RefURLs that resolve to a document in
// crawl. Categories that end up empty are kept; dropping them is the job of
// DropEmptyCategories. Applying it twice gives the same result as once.
func SanitizeCategories(set CategorySet, crawl CrawlResult) CategorySet {
	if set == nil {
		return nil
	}
	index := crawl.Index()
	out := make(CategorySet, len(set))
	for i := range set {
		urls := make([]string, 0, len(set[i].RefURLs))
		for _, url := range set[i].RefURLs {
			if _, ok := index[url]; ok {
				urls = append(urls, url)
			}
		}
		out[i] = Category{Name: set[i].Name, RefURLs: urls}
	}
	return out
}

// PruneURLsFromCategory removes every URL in urls from the category named
// exactly name. Other categories are untouched. An unknown name or an empty
// urls list returns a copy equal to the input. Emptied categories are kept.
func PruneURLsFromCategory(set CategorySet, name string, urls []string) CategorySet {
	out := set.Clone()
	idx := FindCategory(out, name)
	if idx < 0 || len(urls) == 0 {
		return out
	}

	remove := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		remove[url] = struct{}{}
	}

	kept := make([]string, 0, len(out[idx].RefURLs))
	for _, url := range out[idx].RefURLs {
		if _, drop := remove[url]; !drop {
			kept = append(kept, url)
		}
	}
	out[idx].RefURLs = kept
	return out
}

// DropEmptyCategories removes categories with no RefURLs.
func DropEmptyCategories(set CategorySet) CategorySet {
	out := make(CategorySet, 0, len(set))
	for i := range set {
		if !set[i].IsEmpty() {
			out = append(out, set[i].clone())
		}
	}
	return out
}

// ReconcileSplit merges the categories produced by splitting set[source]
// back into set. Only the category at source is removed, whether or not the
// oracle covered all of its URLs; other categories sharing its name stay.
// An out-of-range source removes nothing. Each produced category either
// merges into an existing category with a case-insensitively equal name,
// keeping the existing name's casing and unioning the URLs, or is appended.
func ReconcileSplit(set CategorySet, source int, produced CategorySet) CategorySet {
	out := make(CategorySet, 0, len(set)+len(produced))
	for i := range set {
		if i == source {
			continue
		}
		out = append(out, set[i].clone())
	}

	for i := range produced {
		if idx := findCategoryFold(out, produced[i].Name); idx >= 0 {
			out[idx].RefURLs = unionURLs(out[idx].RefURLs, produced[i].RefURLs)
			continue
		}
		out = append(out, Category{
			Name:    produced[i].Name,
			RefURLs: unionURLs(nil, produced[i].RefURLs),
		})
	}
	return out
}

// RenameCategory renames the category called from to to. If another
// category already uses to (case-insensitively), the two are merged under
// the existing category's position and casing. Unknown from is a no-op.
func RenameCategory(set CategorySet, from, to string) CategorySet {
	idx := FindCategory(set, from)
	if idx < 0 || from == to {
		return set.Clone()
	}

	renamed := set[idx].clone()
	renamed.Name = to

	rest := make(CategorySet, 0, len(set))
	for i := range set {
		if i == idx {
			continue
		}
		rest = append(rest, set[i].clone())
	}

	if target := findCategoryFold(rest, to); target >= 0 {
		rest[target].RefURLs = unionURLs(rest[target].RefURLs, renamed.RefURLs)
		return rest
	}

	out := make(CategorySet, 0, len(set))
	out = append(out, rest[:idx]...)
	out = append(out, renamed)
	out = append(out, rest[idx:]...)
	return out
}

// unionURLs appends the URLs of b missing from a, preserving order and
// dropping duplicates within either input.
func unionURLs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, url := range list {
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			out = append(out, url)
		}
	}
	return out
}
