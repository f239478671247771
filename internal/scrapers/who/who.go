// Package who extracts the text sections of the WHO asthma fact sheet.
package who

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"asthma-pipeline/internal/components/assert"
	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_client_get_facts = "client.get-facts"
)

const DefaultURL = "https://www.who.int/news-room/fact-sheets/detail/asthma"

var DefaultSections = []string{"Overview", "Impact", "Symptoms", "Causes", "Treatment"}

// Fetcher is satisfied by fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// sectionContent renders the siblings following header up to the next h2.
func sectionContent(header *goquery.Selection) []string {
	var content []string
	for sibling := header.Next(); sibling.Length() > 0; sibling = sibling.Next() {
		switch goquery.NodeName(sibling) {
		case "h2":
			return content
		case "p":
			if text := htmlutil.Text(sibling); text != "" {
				content = append(content, text)
			}
		case "ul":
			sibling.Find("li").Each(func(_ int, li *goquery.Selection) {
				content = append(content, "- "+htmlutil.Text(li))
			})
		case "div":
			if text := htmlutil.Text(sibling); text != "" {
				content = append(content, "- "+text)
			}
		}
	}
	return content
}

// ParseFacts maps each wanted h2 title to its content, one line per paragraph or bullet.
// Sections that are absent or empty are left out.
func ParseFacts(doc *goquery.Document, sections []string) map[string]string {
	out := map[string]string{}
	doc.Find("h2").Each(func(_ int, header *goquery.Selection) {
		title := strings.TrimSpace(htmlutil.Text(header))
		if !slices.Contains(sections, title) {
			return
		}
		content := sectionContent(header)
		if len(content) > 0 {
			out[title] = strings.Join(content, "\n")
		}
	})
	return out
}

type Client struct {
	fetcher Fetcher
	url     string
	tel     telemetry.API
}

func NewClient(fetcher Fetcher, url string, tel telemetry.API) Client {
	assert.NotNil(fetcher)
	assert.NotNil(tel)
	if url == "" {
		url = DefaultURL
	}
	return Client{
		fetcher: fetcher,
		url:     url,
		tel:     telemetry.NewScopedAPI("who", tel),
	}
}

func (c Client) GetFacts(ctx context.Context, sections []string) (map[string]string, error) {
	markup, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("who: get facts: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		c.tel.ReportBroken(report_client_get_facts, err)
		return nil, fmt.Errorf("who: parse fact sheet: %w", err)
	}

	facts := ParseFacts(doc, sections)
	for _, section := range sections {
		if _, ok := facts[section]; !ok {
			c.tel.ReportWarning(report_client_get_facts, "section missing or empty", section)
		}
	}
	return facts, nil
}
