package platform

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// requestTimeout bounds every provider call so a hung platform cannot
// stall a poller tick indefinitely.
const requestTimeout = 15 * time.Second

func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json")
}
