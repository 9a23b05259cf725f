package citation

import (
	"strings"
	"unicode"

	"github.com/ppiankov/scaleproof/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// DefaultKeywordThreshold is the share of title keywords a page must contain
const DefaultKeywordThreshold = 0.6

// Search strategies recorded in ContentMatchDiagnostics
const (
	StrategyFullTitle = "full-title"
	StrategyKeywords  = "keyword-threshold"
	StrategyNoTitle   = "no-keywords"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"with": true, "by": true, "from": true, "is": true, "as": true,
}

// Matcher decides whether a page is about an expected title
type Matcher struct {
	Threshold float64
}

// NewMatcher creates a matcher; thresholds outside (0,1] fall back to the default
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultKeywordThreshold
	}
	return Matcher{Threshold: threshold}
}

// Match checks body against title. A page matches when it contains the whole
// normalized title, or at least Threshold of the title's keywords.
func (m Matcher) Match(body, title string) (bool, model.ContentMatchDiagnostics) {
	text := " " + Normalize(VisibleText(body)) + " "
	normalizedTitle := Normalize(title)
	expected := ExtractKeywords(title)

	diag := model.ContentMatchDiagnostics{
		ExpectedKeywords: expected,
		FoundKeywords:    []string{},
		MissingKeywords:  []string{},
		ContentLength:    len(body),
		SearchStrategy:   StrategyKeywords,
	}

	for _, kw := range expected {
		if strings.Contains(text, " "+kw+" ") {
			diag.FoundKeywords = append(diag.FoundKeywords, kw)
		} else {
			diag.MissingKeywords = append(diag.MissingKeywords, kw)
		}
	}

	if len(expected) == 0 {
		diag.SearchStrategy = StrategyNoTitle
		return false, diag
	}
	diag.MatchPercentage = float64(len(diag.FoundKeywords)) / float64(len(expected))

	if normalizedTitle != "" && strings.Contains(text, " "+normalizedTitle+" ") {
		diag.SearchStrategy = StrategyFullTitle
		return true, diag
	}
	return diag.MatchPercentage >= m.Threshold, diag
}

// ExtractKeywords returns the distinct non-stop-word tokens of a title. When the
// title has more than one token, the full normalized title is added as a bonus keyword.
func ExtractKeywords(title string) []string {
	normalized := Normalize(title)
	if normalized == "" {
		return []string{}
	}

	tokens := strings.Fields(normalized)
	seen := make(map[string]bool, len(tokens)+1)
	keywords := make([]string, 0, len(tokens)+1)
	for _, tok := range tokens {
		if stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}

	if len(tokens) > 1 && !seen[normalized] {
		keywords = append(keywords, normalized)
	}
	return keywords
}

// Normalize lowercases s, strips diacritics, and collapses punctuation and
// whitespace into single spaces
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// VisibleText extracts text nodes from HTML, skipping scripts and styles.
// Input that does not parse is returned unchanged.
func VisibleText(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return body
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		// Titles and meta descriptions often carry the scale name
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "name", "property":
					name = strings.ToLower(attr.Val)
				case "content":
					content = attr.Val
				}
			}
			if name == "description" || name == "og:title" || name == "og:description" {
				buf.WriteString(content)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String()
}
