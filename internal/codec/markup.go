package codec

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlBlock = regexp.MustCompile(`(?i)<(p|li|ul|ol|h[1-6]|div)[\s>]`)

// NormalizeMarkup turns model output that ignored the plain-text format
// back into it. HTML is flattened into one line per block with list items
// as "- " bullets, and markdown decoration around section headers
// ("## Lunch", "**BREAKFAST:**") is removed. Plain text passes through.
func NormalizeMarkup(text string) string {
	if htmlBlock.MatchString(text) {
		if lines := htmlLines(text); len(lines) > 0 {
			text = strings.Join(lines, "\n")
		}
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = undecorateHeader(l)
	}
	return strings.Join(lines, "\n")
}

func htmlLines(text string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil
	}

	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li").Each(func(_ int, s *goquery.Selection) {
		node := goquery.NodeName(s)
		if node != "li" && s.ParentsFiltered("li").Length() > 0 {
			return
		}
		t := strings.Join(strings.Fields(s.Text()), " ")
		if t == "" {
			return
		}
		if node == "li" {
			t = "- " + t
		}
		lines = append(lines, t)
	})
	return lines
}

// undecorateHeader strips markdown from a line that is only a section
// header. Bulleted items are left alone.
func undecorateHeader(line string) string {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "#") && !strings.HasPrefix(t, "**") && !strings.HasPrefix(t, "__") {
		return line
	}
	t = strings.TrimSpace(strings.TrimLeft(t, "#"))
	t = strings.TrimSpace(strings.Trim(t, "*_"))

	upper := strings.ToUpper(t)
	for _, h := range sectionHeaders {
		if upper == h.keyword || strings.HasPrefix(upper, h.keyword+":") || strings.HasPrefix(upper, h.keyword+" (") {
			return strings.TrimRight(t, "*_")
		}
	}
	return line
}
