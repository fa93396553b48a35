package extraction

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"deposit-radar/internal/scraper"
	"deposit-radar/pkg/models"
)

const (
	maxPagesPerSite = 20
	maxLinksPerPage = 200
)

// UniversalRule extracts USD deposit offers from arbitrary bank pages:
// tables first, then generic content blocks, then discovered JSON
// endpoints when the markup gave nothing. Same-domain links that look
// deposit-related are followed one level deep.
type UniversalRule struct{}

func (r *UniversalRule) Extract(ctx context.Context, fetcher scraper.Fetcher, page *scraper.Page) ([]models.RawOffer, error) {
	type job struct {
		url   string
		depth int
		page  *scraper.Page
	}

	visited := make(map[string]bool)
	queue := []job{{url: page.URL, depth: 0, page: page}}

	var all []models.RawOffer

	for len(queue) > 0 && len(visited) < maxPagesPerSite {
		j := queue[0]
		queue = queue[1:]
		if visited[j.url] {
			continue
		}
		visited[j.url] = true

		p := j.page
		if p == nil {
			fetched, err := fetcher.Fetch(ctx, j.url)
			if err != nil || !fetched.OK() {
				continue
			}
			p = fetched
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Body))
		if err != nil {
			continue
		}
		doc.Find("script,style,noscript").Remove()

		bank := bestBankName(doc)
		pageText := normSpace(doc.Text())
		forcedUSD := pageForcedUSD(j.url, pageText)

		var offers []models.RawOffer
		offers = append(offers, extractFromTables(doc, j.url, bank, forcedUSD)...)
		offers = append(offers, extractFromBlocks(doc, j.url, bank, forcedUSD)...)
		if len(offers) == 0 {
			offers = append(offers, extractFromJSONEndpoints(ctx, fetcher, j.url, bank, p.Body)...)
		}
		all = append(all, offers...)

		if j.depth < 1 {
			for _, link := range collectLinks(j.url, doc) {
				if !visited[link] {
					queue = append(queue, job{url: link, depth: j.depth + 1})
				}
			}
		}
	}

	return Dedup(all), nil
}

func bestBankName(doc *goquery.Document) string {
	if h1 := normSpace(doc.Find("h1").First().Text()); h1 != "" {
		return truncate(h1, 80)
	}
	if title := normSpace(doc.Find("title").First().Text()); title != "" {
		return truncate(title, 80)
	}
	return "Unknown Bank"
}

// collectLinks gathers same-domain links that look deposit- or
// USD-related, preserving document order.
func collectLinks(baseURL string, doc *goquery.Document) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		u := base.ResolveReference(ref).String()
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return true
		}
		if !sameDomain(baseURL, u) || seen[u] {
			return true
		}
		seen[u] = true

		text := strings.ToLower(normSpace(a.Text()))
		lu := strings.ToLower(u)

		switch {
		case containsAny(lu, depositLinkHints) || containsAny(text, depositLinkHints):
			out = append(out, u)
		case strings.Contains(lu, "usd") || strings.Contains(lu, "currency=usd") ||
			strings.Contains(lu, "valyuta=usd") || strings.Contains(lu, "$"):
			out = append(out, u)
		}

		return len(out) < maxLinksPerPage
	})

	return out
}

// extractFromTables reads deposit tables, using the header row to locate
// currency, rate and name columns when the table declares them.
func extractFromTables(doc *goquery.Document, pageURL, bank string, forcedUSD bool) []models.RawOffer {
	var out []models.RawOffer
	site := DomainOf(pageURL)

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		var headers []string
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(normSpace(cell.Text())))
		})

		curIdx, rateIdx, nameIdx := -1, -1, -1
		for i, h := range headers {
			if curIdx < 0 && (strings.Contains(h, "currency") || strings.Contains(h, "валюта") ||
				strings.Contains(h, "valyuta") || strings.Contains(h, "usd")) {
				curIdx = i
			}
			if rateIdx < 0 && containsAny(h, rateHints) {
				rateIdx = i
			}
			if nameIdx < 0 && (strings.Contains(h, "deposit") || strings.Contains(h, "вклад") ||
				strings.Contains(h, "депозит") || strings.Contains(h, "omonat")) {
				nameIdx = i
			}
		}

		rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td,th")
			if cells.Length() == 0 {
				return
			}

			rowText := normSpace(tr.Text())
			if isNoise(rowText) {
				return
			}

			curText := ""
			if curIdx >= 0 && curIdx < cells.Length() {
				curText = normSpace(cells.Eq(curIdx).Text())
			}

			if !forcedUSD && !isUSDContext(rowText) && !isUSDContext(curText) {
				return
			}
			low := strings.ToLower(rowText)
			if containsAny(low, usdNegative) && !containsAny(low, usdPositive) {
				return
			}

			rateText := rowText
			if rateIdx >= 0 && rateIdx < cells.Length() {
				rateText = normSpace(cells.Eq(rateIdx).Text())
			}
			rate, ok := pickRateText(rateText)
			if !ok {
				return
			}

			name := ""
			if nameIdx >= 0 && nameIdx < cells.Length() {
				name = normSpace(cells.Eq(nameIdx).Text())
			}
			if name == "" {
				name = pickNameFromBlock(tr)
			}
			if name == "" || isNoise(name) {
				return
			}

			out = append(out, models.RawOffer{
				Bank:       bank,
				Site:       site,
				Name:       name,
				RateText:   rate,
				TermText:   rowText,
				Conditions: rowText,
				SourceURL:  pageURL,
			})
		})
	})

	return out
}

// extractFromBlocks scans generic content blocks for rate mentions in a
// USD context. Much noisier than tables, so the filters are stricter.
func extractFromBlocks(doc *goquery.Document, pageURL, bank string, forcedUSD bool) []models.RawOffer {
	var out []models.RawOffer
	site := DomainOf(pageURL)

	doc.Find("tr,article,li,section,div").Each(func(_ int, block *goquery.Selection) {
		text := normSpace(block.Text())
		if text == "" || isNoise(text) || !hasDigit(text) {
			return
		}

		low := strings.ToLower(text)
		if !strings.Contains(text, "%") && !containsAny(low, rateHints) {
			return
		}
		if !forcedUSD && !isUSDContext(text) {
			return
		}
		if containsAny(low, usdNegative) && !containsAny(low, usdPositive) {
			return
		}

		rate, ok := pickRateText(text)
		if !ok {
			return
		}

		name := pickNameFromBlock(block)
		if name == "" || isNoise(name) {
			return
		}
		lowName := strings.ToLower(name)
		for _, junk := range []string{"cookie", "privacy", "policy", "search", "subscribe"} {
			if strings.Contains(lowName, junk) {
				return
			}
		}

		out = append(out, models.RawOffer{
			Bank:       bank,
			Site:       site,
			Name:       name,
			RateText:   rate,
			TermText:   text,
			Conditions: text,
			SourceURL:  pageURL,
		})
	})

	return out
}

// pickNameFromBlock prefers a heading or emphasized phrase inside the
// block, falling back to the block's own text.
func pickNameFromBlock(block *goquery.Selection) string {
	for _, tag := range []string{"h1", "h2", "h3", "h4", "strong", "b", "a"} {
		if s := normSpace(block.Find(tag).First().Text()); s != "" && !isNoise(s) {
			return s
		}
	}
	return truncate(normSpace(block.Text()), 120)
}
