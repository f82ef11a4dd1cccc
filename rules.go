package linkify

import (
	"net"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// editAction says what the final pass does with a claimed span.
type editAction int

const (
	actionPreview editAction = iota // replace with a Preview segment
	actionKeep                      // keep verbatim, shield from later rules
	actionStrip                     // drop, leaving surrounding whitespace
)

// edit is a claimed span of the original message.
type edit struct {
	start, end int
	action     editAction
	binding    int // index into the bindings list, previews only
}

// matchRule recognizes one kind of link body. Rules run in slice order and
// a rule never claims a span that overlaps one claimed by an earlier rule.
type matchRule struct {
	name    string
	pattern *regexp.Regexp
	extract func(groups []string) (editAction, LinkReference, bool)
	// preview rules are skipped for messages over the size limit.
	preview bool
}

// Rule names, in priority order.
const (
	ruleBook       = "book-link"
	ruleBookshelf  = "bookshelf-link"
	ruleBareDomain = "bare-domain"
	ruleExternal   = "external-url"
)

// buildRules compiles the ordered rule set for the given site hosts.
// hosts[0] is the primary domain; the rest are aliases.
func (p *Parser) buildRules(hosts []string) []matchRule {
	quoted := make([]string, len(hosts))
	for i, h := range hosts {
		quoted[i] = regexp.QuoteMeta(h)
	}
	domain := `(?:` + strings.Join(quoted, "|") + `)`
	sitePrefix := `(?:(?:https?://)?(?:www\.)?` + domain + `)?`

	return []matchRule{
		{
			name:    ruleBook,
			pattern: regexp.MustCompile(`(?i)` + sitePrefix + regexp.QuoteMeta(bookPathPrefix) + `([0-9]+)/?`),
			extract: extractBook,
			preview: true,
		},
		{
			name: ruleBookshelf,
			pattern: regexp.MustCompile(`(?i)` + sitePrefix + regexp.QuoteMeta(bookshelfSharePath) +
				`\?` + bookshelfUserParam + `=([^&#\s]+)&` + bookshelfShelfParam + `=([^&#\s]+)`),
			extract: extractBookshelf,
			preview: true,
		},
		{
			name:    ruleBareDomain,
			pattern: regexp.MustCompile(`(?i)(?:www\.)?` + domain + `/?`),
			extract: func([]string) (editAction, LinkReference, bool) {
				return actionKeep, nil, true
			},
		},
		{
			name:    ruleExternal,
			pattern: regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`),
			extract: p.extractExternal,
		},
	}
}

// extractBook yields Book{id}. Ids that overflow int64 stay plain text.
func extractBook(groups []string) (editAction, LinkReference, bool) {
	id, err := strconv.ParseInt(groups[1], 10, 64)
	if err != nil {
		return 0, nil, false
	}
	return actionPreview, BookRef{ID: id}, true
}

// extractBookshelf yields Bookshelf{username, shelfName} with both fields
// percent-decoded. A malformed escape or invalid UTF-8 leaves the link as text.
func extractBookshelf(groups []string) (editAction, LinkReference, bool) {
	username, ok := decodeQueryValue(groups[1])
	if !ok {
		return 0, nil, false
	}
	shelf, ok := decodeQueryValue(groups[2])
	if !ok {
		return 0, nil, false
	}
	return actionPreview, BookshelfRef{Username: username, ShelfName: shelf}, true
}

func decodeQueryValue(raw string) (string, bool) {
	v, err := url.QueryUnescape(raw)
	if err != nil || v == "" || !utf8.ValidString(v) {
		return "", false
	}
	return norm.NFC.String(v), true
}

// extractExternal strips URLs whose host is not the site, keeps same-site
// URLs, and leaves anything without a usable host as plain text.
func (p *Parser) extractExternal(groups []string) (editAction, LinkReference, bool) {
	host, ok := urlHost(groups[0])
	if !ok {
		return 0, nil, false
	}
	if p.isSiteHost(host) {
		return actionKeep, nil, true
	}
	return actionStrip, nil, true
}

// urlHost returns the canonical ASCII host of a matched URL body.
func urlHost(raw string) (string, bool) {
	target := raw
	if !hasHTTPScheme(raw) {
		target = "http://" + raw
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", false
	}

	// Sentence punctuation glued to a bare host is not part of it.
	host := strings.TrimRight(u.Hostname(), `.,;:!?)]}'"`)
	if host == "" {
		return "", false
	}
	if net.ParseIP(host) != nil {
		return host, true
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return "", false
	}
	return strings.TrimPrefix(ascii, "www."), true
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// isSiteHost reports whether host is a site host or one of its sub-domains.
func (p *Parser) isSiteHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range p.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// collectEdits runs the rules over the original message and returns the
// claimed spans in document order along with the preview bindings. With
// previews false only the keep and strip rules run.
func (p *Parser) collectEdits(message string, previews bool) ([]edit, []LinkReference) {
	var claimed []edit
	var bindings []LinkReference

	for _, r := range p.rules {
		if r.preview && !previews {
			continue
		}

		// Matches of one rule never overlap each other, so each candidate is
		// only checked against spans claimed by earlier rules.
		var added []edit
		for _, loc := range r.pattern.FindAllStringSubmatchIndex(message, -1) {
			start, end := loc[0], loc[1]
			if !atBoundary(message, start, end) || overlapsClaimed(claimed, start, end) {
				continue
			}

			action, ref, ok := r.extract(submatches(message, loc))
			if !ok {
				continue
			}

			e := edit{start: start, end: end, action: action, binding: -1}
			if action == actionPreview {
				e.binding = len(bindings)
				bindings = append(bindings, ref)
			}
			added = append(added, e)
		}
		claimed = mergeEdits(claimed, added)
	}
	return claimed, bindings
}

// atBoundary reports whether [start, end) is preceded by start-of-string or
// whitespace and followed by end-of-string or whitespace.
func atBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// overlapsClaimed reports whether [start, end) intersects a span in claimed,
// which is sorted and non-overlapping.
func overlapsClaimed(claimed []edit, start, end int) bool {
	i := sort.Search(len(claimed), func(i int) bool { return claimed[i].end > start })
	return i < len(claimed) && claimed[i].start < end
}

// mergeEdits merges two sorted, mutually non-overlapping edit lists.
func mergeEdits(a, b []edit) []edit {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]edit, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].start < b[j].start {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// submatches converts an index match into strings; unmatched groups are "".
func submatches(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}
