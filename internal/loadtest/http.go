package loadtest

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// newHTTPClient creates an HTTP client with a cookie jar so every
// request shares one session, like a browser would.
func newHTTPClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &http.Client{Timeout: timeout, Jar: jar}, nil
}

// checkServiceHealth verifies the service answers on /healthz.
func checkServiceHealth(ctx context.Context, client *http.Client, config *Config) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("service not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", resp.StatusCode)
	}
	return nil
}

// submitItems posts the line items concurrently using a worker pool.
func submitItems(ctx context.Context, client *http.Client, config *Config, items []LineItem, stats *Stats) error {
	log.Printf("submitting %d items with %d workers...", len(items), config.Workers)

	target := config.BaseURL + "/estimate"

	var (
		successful int64
		rejected   int64
		failed     int64
		submitted  int64
	)

	itemChan := make(chan LineItem, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleItem(ctx, client, target, item)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "rejected":
						atomic.AddInt64(&rejected, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose {
						log.Printf("progress: %d/%d submitted (success: %d, rejected: %d, failed: %d)",
							atomic.LoadInt64(&submitted), len(items),
							atomic.LoadInt64(&successful),
							atomic.LoadInt64(&rejected),
							atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(itemChan)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case itemChan <- item:
			}
		}
	}()

	wg.Wait()

	stats.ItemsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ItemsSuccessful = int(atomic.LoadInt64(&successful))
	stats.ItemsRejected = int(atomic.LoadInt64(&rejected))
	stats.ItemsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("submission completed: success=%d rejected=%d failed=%d",
		stats.ItemsSuccessful, stats.ItemsRejected, stats.ItemsFailed)
	return nil
}

// submitSingleItem posts one form and classifies the outcome. A redirect
// means the estimate was accepted; a 4xx means the form was rejected.
func submitSingleItem(ctx context.Context, client *http.Client, target string, item LineItem) string {
	form := url.Values{
		"city":              {item.City},
		"location":          {item.Location},
		"construction_type": {item.ConstructionType},
		"work_type":         {item.WorkType},
		"work_description":  {item.WorkDescription},
		"volume":            {strconv.FormatFloat(item.Volume, 'f', 2, 64)},
		"unit":              {item.Unit},
		"unit_price":        {strconv.FormatFloat(item.UnitPrice, 'f', 0, 64)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "failed"
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "failed"
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusSeeOther:
		// The client follows the redirect, so a 200 is the rendered page.
		return "success"
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return "rejected"
	default:
		return "failed"
	}
}

// countResultRows fetches the index page and counts the ledger rows by
// their delete links.
func countResultRows(ctx context.Context, client *http.Client, config *Config) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch index: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read index: %w", err)
	}
	return strings.Count(string(body), `href="/delete/`), nil
}
