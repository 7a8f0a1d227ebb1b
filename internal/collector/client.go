package collector

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// newHTTPClient builds the resty client shared by the HTTP fetchers.
func newHTTPClient(proxyURL string) *resty.Client {
	c := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0")
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return c
}
