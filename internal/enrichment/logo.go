package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/proposalhub/proposalhub-api/internal/domain"
	"go.uber.org/zap"
)

const linkedInOrgLookupURL = "https://api.linkedin.com/v2/organizations"

// LogoResult is one provider's answer to a logo lookup
type LogoResult struct {
	LogoURL        string
	PrimaryColor   string
	SecondaryColor string
	Source         string
}

// LogoFinder locates a company logo by walking a provider chain:
// the LinkedIn organization API, then Clearbit's logo service, then
// Google Custom Search. The first provider whose image URL actually
// serves an image wins.
type LogoFinder struct {
	clearbitBaseURL string
	googleAPIKey    string
	googleCX        string
	linkedInToken   string
	httpClient      *http.Client
	logger          *zap.Logger
}

func NewLogoFinder(clearbitBaseURL, googleAPIKey, googleCX, linkedInToken string, logger *zap.Logger) *LogoFinder {
	return &LogoFinder{
		clearbitBaseURL: clearbitBaseURL,
		googleAPIKey:    googleAPIKey,
		googleCX:        googleCX,
		linkedInToken:   linkedInToken,
		httpClient:      &http.Client{},
		logger:          logger,
	}
}

// Find returns the first logo any provider can produce, or ErrChainExhausted
func (f *LogoFinder) Find(ctx context.Context, org *domain.Organization) (*LogoResult, error) {
	type provider struct {
		name string
		fn   func(context.Context, *domain.Organization) (*LogoResult, error)
	}
	providers := []provider{
		{"linkedin", f.fromLinkedIn},
		{"clearbit", f.fromClearbit},
		{"google", f.fromGoogle},
	}

	for _, p := range providers {
		result, err := p.fn(ctx, org)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Debug("logo provider failed, trying next",
				zap.String("provider", p.name),
				zap.Error(err),
			)
			continue
		}
		if result == nil || result.LogoURL == "" {
			continue
		}
		if !f.fetchable(ctx, result.LogoURL) {
			f.logger.Debug("logo url not fetchable, trying next",
				zap.String("provider", p.name),
				zap.String("url", result.LogoURL),
			)
			continue
		}
		return result, nil
	}

	return nil, ErrChainExhausted
}

func (f *LogoFinder) fromLinkedIn(ctx context.Context, org *domain.Organization) (*LogoResult, error) {
	if f.linkedInToken == "" {
		return nil, fmt.Errorf("linkedin token not configured")
	}

	lookupURL := linkedInOrgLookupURL + "?q=vanityName&vanityName=" + url.QueryEscape(org.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.linkedInToken)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "linkedin", StatusCode: resp.StatusCode}
	}

	var parsed struct {
		Elements []struct {
			LogoV2 struct {
				Original string `json:"original"`
			} `json:"logoV2"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Elements) == 0 {
		return nil, nil
	}

	return &LogoResult{
		LogoURL: parsed.Elements[0].LogoV2.Original,
		Source:  "linkedin",
	}, nil
}

func (f *LogoFinder) fromClearbit(ctx context.Context, org *domain.Organization) (*LogoResult, error) {
	domainName := websiteDomain(org.Website)
	if domainName == "" {
		return nil, nil
	}

	return &LogoResult{
		LogoURL: strings.TrimRight(f.clearbitBaseURL, "/") + "/" + domainName,
		Source:  "clearbit",
	}, nil
}

func (f *LogoFinder) fromGoogle(ctx context.Context, org *domain.Organization) (*LogoResult, error) {
	if f.googleAPIKey == "" || f.googleCX == "" {
		return nil, fmt.Errorf("google search not configured")
	}

	query := url.Values{}
	query.Set("key", f.googleAPIKey)
	query.Set("cx", f.googleCX)
	query.Set("q", org.Name+" logo")
	query.Set("searchType", "image")
	query.Set("num", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/customsearch/v1?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "google", StatusCode: resp.StatusCode}
	}

	var parsed struct {
		Items []struct {
			Link string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Items) == 0 {
		return nil, nil
	}

	return &LogoResult{
		LogoURL: parsed.Items[0].Link,
		Source:  "google",
	}, nil
}

// fetchable checks the candidate URL actually serves an image
func (f *LogoFinder) fetchable(ctx context.Context, logoURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, logoURL, nil)
	if err != nil {
		return false
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	contentType := resp.Header.Get("Content-Type")
	return contentType == "" || strings.HasPrefix(contentType, "image/")
}

// websiteDomain strips scheme, path and www from a website URL
func websiteDomain(website string) string {
	if website == "" {
		return ""
	}
	raw := website
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
