package enrichment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/enrichment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLogoFinder(clearbitBaseURL string) *enrichment.LogoFinder {
	// No LinkedIn token and no Google keys, so only the Clearbit
	// provider is live
	return enrichment.NewLogoFinder(clearbitBaseURL, "", "", "", zap.NewNop())
}

func TestLogoFinder_ClearbitLogoFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme.test", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	finder := newLogoFinder(srv.URL)

	result, err := finder.Find(context.Background(), &domain.Organization{
		Name:    "Acme Corp",
		Website: "https://acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/acme.test", result.LogoURL)
	assert.Equal(t, "clearbit", result.Source)
}

func TestLogoFinder_StripsSchemeAndWWWFromWebsite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme.test", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	finder := newLogoFinder(srv.URL)

	result, err := finder.Find(context.Background(), &domain.Organization{
		Name:    "Acme Corp",
		Website: "https://www.acme.test/about-us",
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/acme.test", result.LogoURL)
}

func TestLogoFinder_UnfetchableURLExhaustsChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	finder := newLogoFinder(srv.URL)

	_, err := finder.Find(context.Background(), &domain.Organization{
		Name:    "Acme Corp",
		Website: "https://acme.test",
	})
	assert.ErrorIs(t, err, enrichment.ErrChainExhausted)
}

func TestLogoFinder_NonImageResponseExhaustsChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	finder := newLogoFinder(srv.URL)

	_, err := finder.Find(context.Background(), &domain.Organization{
		Name:    "Acme Corp",
		Website: "https://acme.test",
	})
	assert.ErrorIs(t, err, enrichment.ErrChainExhausted)
}

func TestLogoFinder_NoWebsiteNoProviders(t *testing.T) {
	finder := newLogoFinder("https://logo.clearbit.test")

	_, err := finder.Find(context.Background(), &domain.Organization{Name: "Acme Corp"})
	assert.ErrorIs(t, err, enrichment.ErrChainExhausted)
}

func TestLogoFinder_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	finder := newLogoFinder(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := finder.Find(ctx, &domain.Organization{
		Name:    "Acme Corp",
		Website: "https://acme.test",
	})
	assert.ErrorIs(t, err, context.Canceled)
}
