// Package browser manages the playwright session the extractors run against.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
)

// Cookie is one regional cookie applied to the browser context before any
// navigation.
type Cookie struct {
	Name  string
	Value string
}

// Browser owns one playwright instance and browser context. Pages opened from
// it are exclusively owned by the worker that opened them for the duration of
// one job.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
	logger  *slog.Logger
}

type Options struct {
	// WSEndpoint connects to a remote browser over CDP (for example a
	// browserless deployment). Empty launches a local browser.
	WSEndpoint string
	Headless   bool
	Timeout    time.Duration
	UserAgent  string
	Locale     string
	TimezoneID string
	// Cookies pin the storefront to one region and language.
	Cookies      []Cookie
	CookieDomain string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:   true,
		Timeout:    30 * time.Second,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Locale:     "tr-TR",
		TimezoneID: "Europe/Istanbul",
		Cookies: []Cookie{
			{Name: "countryCode", Value: "TR"},
			{Name: "storefrontId", Value: "1"},
			{Name: "language", Value: "tr"},
		},
		CookieDomain: ".trendyol.com",
	}
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var b playwright.Browser
	if opts.WSEndpoint != "" {
		b, err = pw.Chromium.ConnectOverCDP(opts.WSEndpoint)
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("failed to connect to browser endpoint: %w", err)
		}
	} else {
		b, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: &opts.Headless,
			Args: []string{
				"--disable-blink-features=AutomationControlled",
				"--disable-dev-shm-usage",
				"--no-sandbox",
			},
		})
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
	}

	context, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  &opts.UserAgent,
		Locale:     &opts.Locale,
		TimezoneId: &opts.TimezoneID,
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if len(opts.Cookies) > 0 {
		cookies := make([]playwright.OptionalCookie, 0, len(opts.Cookies))
		for _, c := range opts.Cookies {
			cookies = append(cookies, playwright.OptionalCookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   playwright.String(opts.CookieDomain),
				Path:     playwright.String("/"),
				Secure:   playwright.Bool(true),
				SameSite: playwright.SameSiteAttributeLax,
			})
		}
		if err := context.AddCookies(cookies); err != nil {
			context.Close()
			b.Close()
			pw.Stop()
			return nil, fmt.Errorf("failed to set regional cookies: %w", err)
		}
	}

	return &Browser{
		pw:      pw,
		browser: b,
		context: context,
		timeout: opts.Timeout,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// OpenPage opens a fresh page for one job. The caller must close it on every
// exit path.
func (b *Browser) OpenPage(ctx context.Context) (pagequery.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))

	return pagequery.NewPlaywrightPage(page, b.logger), nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}
