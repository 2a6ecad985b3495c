package client

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"

	"venuebook/pkg/cache"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"golang.org/x/sync/errgroup"
)

const TagBooking = "Booking"

type BookingClient struct {
	httpClient *HttpClient
	cache      *cache.Cache
	venues     *VenueClient
	log        *logger.Logger

	// set once the server has shown it has no owner-bookings endpoint
	ownerEndpointMissing atomic.Bool
}

func NewBookingClient(httpClient *HttpClient, queryCache *cache.Cache, venues *VenueClient, log *logger.Logger) *BookingClient {
	return &BookingClient{
		httpClient: httpClient,
		cache:      queryCache,
		venues:     venues,
		log:        log.Component("booking_client"),
	}
}

func (c *BookingClient) List(ctx context.Context) ([]model.Booking, error) {
	const path = "/bookings"

	bookings, err := cache.Query(ctx, c.cache, path, func(ctx context.Context) ([]model.Booking, []cache.Tag, error) {
		resp, err := c.httpClient.GET(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		bookings, err := decode[[]model.Booking](resp, "booking list")
		if err != nil {
			return nil, nil, err
		}
		return bookings, bookingListTags(bookings), nil
	})
	return slices.Clone(bookings), err
}

// ListByOwner returns the bookings of every venue owned by ownerID. When the
// server has no owner endpoint the owner's venues and all bookings are
// fetched concurrently and filtered here; that result depends on the venue
// list as well, so it is also tagged with the venue LIST tag.
func (c *BookingClient) ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	path := "/bookings/owner/" + url.PathEscape(ownerID)

	bookings, err := cache.Query(ctx, c.cache, path, func(ctx context.Context) ([]model.Booking, []cache.Tag, error) {
		if !c.ownerEndpointMissing.Load() {
			resp, err := c.httpClient.GET(ctx, path)
			if err == nil {
				bookings, err := decode[[]model.Booking](resp, "booking list")
				if err != nil {
					return nil, nil, err
				}
				return bookings, bookingListTags(bookings), nil
			}
			if !endpointMissing(err) {
				return nil, nil, err
			}
			c.ownerEndpointMissing.Store(true)
			c.log.Info("owner bookings endpoint unavailable, filtering client-side", "owner_id", ownerID)
		}

		bookings, err := c.filterByOwner(ctx, ownerID)
		if err != nil {
			return nil, nil, err
		}
		return bookings, append(bookingListTags(bookings), cache.ListTag(TagVenue)), nil
	})
	return slices.Clone(bookings), err
}

func (c *BookingClient) filterByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	var (
		venues []model.Venue
		all    []model.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		venues, err = c.venues.ListByOwner(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = c.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owned := make(map[string]bool, len(venues))
	for _, v := range venues {
		owned[v.ID] = true
	}

	bookings := make([]model.Booking, 0)
	for _, b := range all {
		if owned[b.Venue.ID] {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func endpointMissing(err error) bool {
	apiErr, ok := apperrors.As(err)
	if !ok {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusMethodNotAllowed
}

// Create books a venue. The venue's booked dates change, so the venue and
// the venue list are invalidated along with the booking list.
func (c *BookingClient) Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, "/bookings", req)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(
		cache.ListTag(TagBooking),
		cache.ItemTag(TagVenue, req.Venue),
		cache.ListTag(TagVenue),
	)

	booking, err := decode[model.Booking](resp, "booking")
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Update patches a booking. When the response does not name the venue every
// venue result is invalidated, since a date change moves a booked date.
func (c *BookingClient) Update(ctx context.Context, id string, patch model.BookingUpdate) (*model.Booking, error) {
	resp, err := c.httpClient.PATCH(ctx, "/bookings/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}

	booking, decodeErr := decode[model.Booking](resp, "booking")
	tags := []cache.Tag{cache.ItemTag(TagBooking, id), cache.ListTag(TagBooking)}
	if decodeErr == nil && booking.Venue.ID != "" {
		tags = append(tags, cache.ItemTag(TagVenue, booking.Venue.ID), cache.ListTag(TagVenue))
	} else {
		tags = append(tags, cache.TypeTag(TagVenue))
	}
	c.cache.Invalidate(tags...)

	if decodeErr != nil {
		return nil, decodeErr
	}
	return &booking, nil
}

// Delete removes a booking. venueID may be empty when unknown; every venue
// result is invalidated then.
func (c *BookingClient) Delete(ctx context.Context, id, venueID string) error {
	if _, err := c.httpClient.DELETE(ctx, "/bookings/"+url.PathEscape(id)); err != nil {
		return err
	}

	tags := []cache.Tag{cache.ItemTag(TagBooking, id), cache.ListTag(TagBooking)}
	if venueID != "" {
		tags = append(tags, cache.ItemTag(TagVenue, venueID), cache.ListTag(TagVenue))
	} else {
		tags = append(tags, cache.TypeTag(TagVenue))
	}
	c.cache.Invalidate(tags...)
	return nil
}

func bookingListTags(bookings []model.Booking) []cache.Tag {
	tags := make([]cache.Tag, 0, len(bookings)+1)
	for _, b := range bookings {
		tags = append(tags, cache.ItemTag(TagBooking, b.ID))
	}
	return append(tags, cache.ListTag(TagBooking))
}
