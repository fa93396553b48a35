// Package pipeline wires the run together: load the URL list, scrape
// each site in order, normalize the offers and write the artifacts.
// Per-site failures are recorded and never abort the run.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"deposit-radar/internal/config"
	"deposit-radar/internal/extraction"
	"deposit-radar/internal/normalize"
	"deposit-radar/internal/report"
	"deposit-radar/internal/scraper"
	"deposit-radar/internal/urlfile"
	"deposit-radar/pkg/models"
)

// usdProbeTokens is the cheap page-level check used to classify pages
// that produced no offers.
var usdProbeTokens = []string{"usd", "$", "dollar", "aqsh"}

// Summary is the outcome of a full run.
type Summary struct {
	Records   []models.DepositRecord
	Statuses  []models.SiteStatus
	Artifacts []report.Artifact
}

// OKSites counts sites that produced at least one offer.
func (s *Summary) OKSites() int {
	n := 0
	for _, st := range s.Statuses {
		if st.Success() {
			n++
		}
	}
	return n
}

// Offers counts normalized records with an available rate.
func (s *Summary) Offers() int {
	n := 0
	for _, r := range s.Records {
		if r.RateAvailable {
			n++
		}
	}
	return n
}

// Pipeline runs the batch scrape
type Pipeline struct {
	Config  *config.AppConfig
	Fetcher scraper.Fetcher
	Browser scraper.Fetcher
	Logger  *zap.Logger
}

// New creates a pipeline from the configuration
func New(cfg *config.AppConfig, log *zap.Logger) *Pipeline {
	p := &Pipeline{
		Config:  cfg,
		Fetcher: scraper.New(cfg),
		Logger:  log,
	}
	if cfg.Browser.Enabled {
		p.Browser = scraper.NewBrowserFetcher(cfg)
	}
	return p
}

// Run executes the full pipeline. The returned error is fatal only for
// configuration problems or when every output artifact failed to write;
// per-site failures surface in the summary instead.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	urls, err := urlfile.Load(p.Config.IO.InputFile)
	if err != nil {
		return nil, err
	}

	var offers []models.RawOffer
	var placeholders []models.DepositRecord
	statuses := make([]models.SiteStatus, 0, len(urls))

	for _, url := range urls {
		status, siteOffers := p.scrapeSite(ctx, url)
		statuses = append(statuses, status)
		if len(siteOffers) > 0 {
			offers = append(offers, siteOffers...)
		} else {
			placeholders = append(placeholders, normalize.Placeholder(url, status.Domain))
		}
	}

	records := normalize.Records(offers)
	records = append(records, placeholders...)
	normalize.Sort(records)

	summary := &Summary{
		Records:   records,
		Statuses:  statuses,
		Artifacts: report.NewWriter(&p.Config.IO).WriteAll(records, statuses),
	}

	failed := 0
	for _, a := range summary.Artifacts {
		if a.Err != nil {
			failed++
			p.Logger.Error("write artifact", zap.String("kind", a.Kind), zap.Error(a.Err))
			continue
		}
		p.Logger.Info("wrote artifact", zap.String("kind", a.Kind), zap.String("path", a.Path))
	}

	p.Logger.Info("run complete",
		zap.Int("deposits", summary.Offers()),
		zap.Int("ok_sites", summary.OKSites()),
		zap.Int("total_sites", len(statuses)))

	if failed == len(summary.Artifacts) {
		return summary, errors.New("all output artifacts failed to write")
	}
	return summary, nil
}

// scrapeSite processes a single configured URL and returns its status
// entry plus any extracted offers.
func (p *Pipeline) scrapeSite(ctx context.Context, url string) (models.SiteStatus, []models.RawOffer) {
	status := models.SiteStatus{
		InputURL:  url,
		Domain:    extraction.DomainOf(url),
		Result:    models.ResultError,
		Timestamp: time.Now(),
	}
	log := p.Logger.With(zap.String("domain", status.Domain))

	page, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		status.Note = shortErr(err)
		log.Error("fetch failed", zap.Error(err))
		return status, nil
	}

	status.HTTPStatus = page.StatusCode
	status.Signals = scraper.Diagnose(page)

	if scraper.IsHardBlock(page.StatusCode, status.Signals) {
		status.Result = models.ResultBlocked
		status.Note = status.Signals
		if status.Note == "" {
			status.Note = (&scraper.StatusError{URL: url, StatusCode: page.StatusCode}).Error()
		}
		log.Error("blocked", zap.String("note", status.Note))
		return status, nil
	}
	if !page.OK() {
		status.Note = shortErr(&scraper.StatusError{URL: url, StatusCode: page.StatusCode})
		log.Error("fetch failed", zap.Int("status", page.StatusCode))
		return status, nil
	}

	// Render client-side pages when a browser is available.
	if p.Browser != nil && scraper.LooksJSEmpty(page.Body) {
		rendered, err := p.Browser.Fetch(ctx, url)
		if err != nil {
			log.Warn("browser render failed", zap.Error(err))
		} else {
			page = rendered
		}
	}

	rule := extraction.RuleFor(status.Domain)
	offers, err := rule.Extract(ctx, p.Fetcher, page)
	if err != nil {
		status.Note = shortErr(err)
		log.Error("extract failed", zap.Error(err))
		return status, nil
	}

	status.RowsFound = len(offers)
	if len(offers) > 0 {
		status.Result = models.ResultOK
		log.Info("scraped", zap.Int("rows", len(offers)))
		return status, offers
	}

	status.Result, status.Note = classifyEmpty(page.Body)
	log.Warn("no rows", zap.String("result", status.Result), zap.String("note", status.Note))
	return status, nil
}

// classifyEmpty explains why a fetched page yielded no offers.
func classifyEmpty(body string) (string, string) {
	switch {
	case scraper.LooksJSEmpty(body):
		return models.ResultJSRenderRequired, "HTML looks like a JS shell or too thin"
	case !containsAnyFold(body, usdProbeTokens):
		return models.ResultNoUSDMatch, "No USD markers found"
	case !strings.Contains(body, "%"):
		return models.ResultNoRatesFound, "No percent values found"
	default:
		return models.ResultNoMatchingDeposits, "USD markers exist but no valid deposit/rate pairs detected"
	}
}

func containsAnyFold(s string, tokens []string) bool {
	low := strings.ToLower(s)
	for _, t := range tokens {
		if strings.Contains(low, t) {
			return true
		}
	}
	return false
}

func shortErr(err error) string {
	msg := err.Error()
	if len(msg) > 180 {
		msg = msg[:180]
	}
	return msg
}
