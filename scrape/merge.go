package scrape

import "github.com/fwojciec/biblefetch"

// MergeResult is the outcome of joining fetch results with menu entries.
type MergeResult struct {
	// Records are successful results joined with their chapter, in result order.
	Records []*biblefetch.MergedChapter

	// Failed are results that carried an error.
	Failed []*biblefetch.FetchResult

	// Misses are results whose URL matched no chapter. The URL is the only
	// join key, so a redirect that changed it lands here.
	Misses []*biblefetch.FetchResult
}

// Merge left-joins results onto refs by chapter URL. If two refs share a
// URL the later one wins.
func Merge(results []*biblefetch.FetchResult, refs []biblefetch.ChapterRef) *MergeResult {
	byURL := make(map[string]biblefetch.ChapterRef, len(refs))
	for _, ref := range refs {
		byURL[ref.URL] = ref
	}

	out := &MergeResult{}
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			out.Failed = append(out.Failed, r)
			continue
		}
		ref, ok := byURL[r.ChapterURL]
		if !ok {
			out.Misses = append(out.Misses, r)
			continue
		}
		out.Records = append(out.Records, &biblefetch.MergedChapter{
			ID:    ref.ID,
			URL:   ref.URL,
			Text:  r.Text,
			Audio: r.Audio,
		})
	}
	return out
}
