package scrape

import (
	"regexp"
	"sort"
	"strings"
)

// Manifest links are found with two documented rules:
//
//  1. Absolute http(s) URLs whose path ends in .m3u8, .m3u or .mpd, with an
//     optional query string. A URL ends at whitespace, a quote, '<', '>',
//     a backtick, a parenthesis or a backslash; trailing ",;." are dropped.
//  2. JavaScript/JSON string literals holding escaped URLs ("https:\/\/..."
//     or "\u002F") are decoded as JavaScript and re-scanned with rule 1.
//
// HTML "&amp;" inside a match is unescaped. .xml is not scraped: pages link
// too many unrelated XML documents.
var (
	urlPattern = regexp.MustCompile("https?://[^\\s\"'<>`()\\\\]+")

	doubleQuoted = regexp.MustCompile(`"(?:[^"\\\n]|\\.)*"`)
	singleQuoted = regexp.MustCompile(`'(?:[^'\\\n]|\\.)*'`)

	manifestSuffixes = []string{".m3u8", ".m3u", ".mpd"}
)

type match struct {
	pos  int
	link string
}

// FindLinks returns playlist and manifest URLs found in body, ordered by
// first appearance and de-duplicated. No match is not an error.
func FindLinks(body string) []string {
	matches, decodedSpans := scanLiterals(body)
	for _, m := range scanURLs(body, 0) {
		// a literal that decoded to a link supersedes its raw, still escaped text
		if !insideAny(decodedSpans, m.pos) {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	seen := make(map[string]struct{}, len(matches))
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.link]; ok {
			continue
		}
		seen[m.link] = struct{}{}
		links = append(links, m.link)
	}
	return links
}

func scanURLs(text string, offset int) []match {
	var out []match
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		candidate := strings.TrimRight(text[loc[0]:loc[1]], ",;.")
		candidate = strings.ReplaceAll(candidate, "&amp;", "&")
		if isManifestURL(candidate) {
			out = append(out, match{pos: offset + loc[0], link: candidate})
		}
	}
	return out
}

func scanLiterals(body string) ([]match, [][]int) {
	var decoder *literalDecoder
	var out []match
	var spans [][]int
	for _, re := range []*regexp.Regexp{doubleQuoted, singleQuoted} {
		for _, loc := range re.FindAllStringIndex(body, -1) {
			literal := body[loc[0]:loc[1]]
			if !strings.Contains(literal, `\`) || !mentionsManifest(literal) {
				continue
			}
			if decoder == nil {
				decoder = newLiteralDecoder()
			}
			decoded, err := decoder.Decode(literal)
			if err != nil {
				continue
			}
			found := scanURLs(decoded, loc[0])
			if len(found) > 0 {
				out = append(out, found...)
				spans = append(spans, loc)
			}
		}
	}
	return out, spans
}

func insideAny(spans [][]int, pos int) bool {
	for _, span := range spans {
		if pos >= span[0] && pos < span[1] {
			return true
		}
	}
	return false
}

func isManifestURL(candidate string) bool {
	path := candidate
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(path)
	for _, suffix := range manifestSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// mentionsManifest is a cheap filter run before a literal is decoded. Escaped
// dots ("\u002e") are rare enough to ignore.
func mentionsManifest(literal string) bool {
	lower := strings.ToLower(literal)
	return strings.Contains(lower, "m3u") || strings.Contains(lower, "mpd")
}
