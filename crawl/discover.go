// Package crawl discovers the documentation units published on an index
// page, keeping discovery separate from the conversion pipeline.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/flaremd/core"
)

// Item is one downloadable documentation unit.
type Item struct {
	Name     string `json:"name"`
	ZipURL   string `json:"zip_url"`
	Category string `json:"category,omitempty"`
}

// genericLinkTexts are anchor texts that say nothing about the unit.
var genericLinkTexts = map[string]bool{
	"download zip file": true,
	"download":          true,
	"zip":               true,
}

// DiscoverUnits fetches indexURL and lists the ZIP bundles it links to.
// Table rows are read first: the name comes from the first cell and the
// category from the closest heading above the table. Without any such
// row every .zip anchor on the page is used. Exact (name, zip) duplicates
// are dropped; order is kept.
func DiscoverUnits(ctx context.Context, indexURL string, fetcher core.Fetcher) ([]Item, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("parsing index URL: %w", err)
	}
	result, err := fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetching index: %w", err)
	}
	if u, err := url.Parse(result.URL); err == nil && u.IsAbs() {
		base = u
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}

	items := fromTables(doc, base)
	if len(items) == 0 {
		items = fromAnchors(doc, base)
	}

	seen := newOrderedSet[Item]()
	for _, it := range items {
		seen.Add(it)
	}
	return seen.All(), nil
}

func fromTables(doc *goquery.Document, base *url.URL) []Item {
	var items []Item
	category := ""
	doc.Find("h1, h2, h3, h4, table").Each(func(_ int, s *goquery.Selection) {
		if !s.Is("table") {
			category = strings.TrimSpace(s.Text())
			return
		}
		s.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return
			}
			name := strings.TrimSpace(cells.First().Text())
			zip := ""
			row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				if strings.Contains(strings.ToLower(href), ".zip") {
					zip = resolveURL(href, base)
				}
				return zip == ""
			})
			if zip != "" && name != "" {
				items = append(items, Item{Name: name, ZipURL: zip, Category: category})
			}
		})
	})
	return items
}

func fromAnchors(doc *goquery.Document, base *url.URL) []Item {
	var items []Item
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !IsZip(href) {
			return
		}
		abs := resolveURL(href, base)
		if abs == "" {
			return
		}
		name := strings.TrimSpace(a.Text())
		if name == "" || genericLinkTexts[strings.ToLower(name)] {
			name = zipStem(abs)
		}
		items = append(items, Item{Name: name, ZipURL: abs})
	})
	return items
}

func zipStem(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	b := path.Base(u.Path)
	return strings.TrimSuffix(b, path.Ext(b))
}
