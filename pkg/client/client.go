package client

import (
	"venuebook/pkg/cache"
	"venuebook/pkg/config"
)

// Client groups the resource clients over one HTTP client and one query
// cache, so an invalidation by any of them is seen by all.
type Client struct {
	HTTP     *HttpClient
	Cache    *cache.Cache
	Accounts *AccountClient
	Venues   *VenueClient
	Bookings *BookingClient
}

func NewClient(cfg *config.Config, tokens TokenSource, queryCache *cache.Cache) *Client {
	httpClient := NewHttpClient(cfg.APIBaseURL, cfg.RequestTimeout, tokens, cfg.Log)
	venues := NewVenueClient(httpClient, queryCache, cfg.MaxVenueImages)

	return &Client{
		HTTP:     httpClient,
		Cache:    queryCache,
		Accounts: NewAccountClient(httpClient, queryCache),
		Venues:   venues,
		Bookings: NewBookingClient(httpClient, queryCache, venues, cfg.Log),
	}
}
