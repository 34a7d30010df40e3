package filterlist

import (
	"strings"

	foldfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
)

// Matcher selects and orders the items shown for a filter value. An empty
// filter must return every item.
type Matcher func(filter string, items []Item) []Item

type itemSource []Item

func (s itemSource) String(i int) string { return s[i].Text }
func (s itemSource) Len() int            { return len(s) }

// FuzzyMatcher ranks items by fuzzy score, best first.
func FuzzyMatcher(filter string, items []Item) []Item {
	if strings.TrimSpace(filter) == "" {
		return items
	}
	matches := fuzzy.FindFrom(filter, itemSource(items))
	out := make([]Item, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}

// FoldMatcher keeps items whose text contains the filter characters in
// order, ignoring case and diacritics, in their original order.
func FoldMatcher(filter string, items []Item) []Item {
	if strings.TrimSpace(filter) == "" {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if foldfuzzy.MatchNormalizedFold(filter, it.Text) {
			out = append(out, it)
		}
	}
	return out
}

// PassThrough shows every item regardless of the filter, for callers that
// filter on their side through OnFilterChange.
func PassThrough(_ string, items []Item) []Item { return items }
