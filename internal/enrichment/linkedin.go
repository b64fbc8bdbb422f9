package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"go.uber.org/zap"
)

// Profile is the raw result of scraping a public profile page
type Profile struct {
	Title      string
	Background string
	ImageURL   string
}

// ProfileEnricher extracts professional details from a profile URL
// using a captured browser session
type ProfileEnricher interface {
	EnrichProfile(ctx context.Context, profileURL string, session *domain.LinkedInSession) (*Profile, error)
}

// LinkedInScraper is a headless-browser ProfileEnricher. It replays
// the stored session cookies and reads the profile page selectors.
type LinkedInScraper struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewLinkedInScraper(timeout time.Duration, logger *zap.Logger) *LinkedInScraper {
	return &LinkedInScraper{
		timeout: timeout,
		logger:  logger,
	}
}

func (s *LinkedInScraper) EnrichProfile(ctx context.Context, profileURL string, session *domain.LinkedInSession) (*Profile, error) {
	if session == nil || len(session.Cookies) == 0 {
		return nil, fmt.Errorf("no browser session available")
	}

	scrapeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(scrapeCtx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var title, background, imageURL string
	err := chromedp.Run(taskCtx,
		setSessionCookies(session.Cookies),
		chromedp.Navigate(profileURL),
		chromedp.WaitReady("body"),
		chromedp.Text(`main section h2`, &title, chromedp.AtLeast(0)),
		chromedp.Text(`section.about div.display-flex span`, &background, chromedp.AtLeast(0)),
		chromedp.AttributeValue(`main img.profile-photo`, "src", &imageURL, nil, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape profile: %w", err)
	}

	s.logger.Debug("profile scraped",
		zap.String("url", profileURL),
		zap.Bool("has_title", title != ""),
		zap.Bool("has_background", background != ""),
	)

	return &Profile{
		Title:      strings.TrimSpace(title),
		Background: strings.TrimSpace(background),
		ImageURL:   imageURL,
	}, nil
}

// setSessionCookies replays stored "name=value" cookie pairs into the
// browser before navigation
func setSessionCookies(cookies []string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, pair := range cookies {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			err := network.SetCookie(name, value).
				WithDomain(".linkedin.com").
				WithPath("/").
				WithSecure(true).
				WithHTTPOnly(true).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to set cookie %q: %w", name, err)
			}
		}
		return nil
	})
}

// StaticProfileEnricher returns a fixed profile. It stands in for the
// browser-backed scraper when scraping is disabled.
type StaticProfileEnricher struct {
	Profile *Profile
	Err     error
}

func (s *StaticProfileEnricher) EnrichProfile(ctx context.Context, profileURL string, session *domain.LinkedInSession) (*Profile, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Profile, nil
}
