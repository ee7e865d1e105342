package locate

import "github.com/isometry/go-activedirectory/internal/netlogon"

// detectSite picks the most-voted client_site field among a set of probe
// results.
//
// The original implementation this is grounded on
// (lib/ad/core/locate.py:_detect_site) sorts (count, site) pairs ascending
// and then returns the *first* entry — the least-voted site — even though
// its own debug-log message talks about picking the "best" site. This is
// an internal contradiction in that code, not a deliberate design. Per the
// specification's explicit resolution, most-voted is the contract
// implemented here; see TestDetectSite_MostVotedNotLeastVoted.
func detectSite(results []*netlogon.ProbeResult) (string, bool) {
	votes := make(map[string]int)
	for _, r := range results {
		if r.Reply == nil || r.Reply.ClientSite == "" {
			continue
		}
		votes[r.Reply.ClientSite]++
	}
	if len(votes) == 0 {
		return "", false
	}
	best := ""
	bestCount := -1
	for site, count := range votes {
		if count > bestCount || (count == bestCount && site < best) {
			best = site
			bestCount = count
		}
	}
	return best, true
}
