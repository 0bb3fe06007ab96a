// Package exchange talks to the public file-exchange repository that hosts
// transistor records as individual JSON files plus an index file and the
// housing-type / manufacturer whitelists.
package exchange

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/powerlab/transistordb/internal/domain"
	"github.com/powerlab/transistordb/internal/repository"
)

// Client fetches records and whitelists over HTTP. URLs are injected so
// tests can point at a local server.
type Client struct {
	IndexURL         string
	ManufacturersURL string
	HousingTypesURL  string

	httpc *http.Client
}

// New builds a client with a bounded request timeout.
func New(indexURL, manufacturersURL, housingTypesURL string) *Client {
	return &Client{
		IndexURL:         indexURL,
		ManufacturersURL: manufacturersURL,
		HousingTypesURL:  housingTypesURL,
		httpc:            &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange fetch %s: status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FetchIndex returns the list of downloadable transistor file URLs, one per
// non-empty line of the index file. Relative entries are resolved against
// the index URL's directory.
func (c *Client) FetchIndex(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.IndexURL)
	if err != nil {
		return nil, err
	}
	base := c.IndexURL
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[:i+1]
	}
	var urls []string
	sc := bufio.NewScanner(strings.NewReader(string(body)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			line = base + line
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

// FetchTransistor downloads and decodes one record file. Malformed payloads
// surface as domain.ErrInvalidRecord through the store codec.
func (c *Client) FetchTransistor(ctx context.Context, url string) (*domain.Transistor, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return repository.Decode(body)
}

// FetchList downloads a plain-text whitelist, one entry per line.
func (c *Client) FetchList(ctx context.Context, url string) ([]string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseList(string(body)), nil
}

// ParseList splits whitelist file content into trimmed non-empty lines.
func ParseList(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
