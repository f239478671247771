package fetch

import (
	"context"
	"fmt"

	"asthma-pipeline/internal/components/assert"
	"asthma-pipeline/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_fetcher_fetch = "fetcher.fetch"
)

// DefaultUserAgent is a desktop browser identity, some publishers refuse the default Go one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// FetchError is returned when the server answers with a non-2xx status.
type FetchError struct {
	StatusCode int
	URL        string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

type Options struct {
	UserAgent        string
	CloudflareBypass bool
	// Output receives every HTTP exchange when set.
	Output telemetry.MessageOutput
}

type Fetcher struct {
	http *resty.Client
	tel  telemetry.API
}

func NewFetcher(opts Options, tel telemetry.API) Fetcher {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("fetch", tel)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	telemetry.InstrumentResty(client, tel, opts.Output)

	return Fetcher{http: client, tel: tel}
}

// Fetch performs a single GET against url and returns the response body.
func (f Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	res, err := f.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_fetch, err, url)
		return "", err
	}
	if !res.IsSuccess() {
		err := &FetchError{StatusCode: res.StatusCode(), URL: url}
		f.tel.ReportBroken(report_fetcher_fetch, err)
		return "", err
	}
	return res.String(), nil
}
