package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"venuebook/pkg/cache"
	"venuebook/pkg/config"
	"venuebook/pkg/model"
	"venuebook/pkg/sanitizer"

	"github.com/google/go-querystring/query"
)

const (
	TagVenue = "Venue"

	// ImagesField is the multipart field the upload endpoint reads.
	ImagesField = "images"
)

var (
	ErrTooManyImages = errors.New("too many images")
	ErrNoImages      = errors.New("no images selected")
)

type VenueClient struct {
	httpClient *HttpClient
	cache      *cache.Cache
	maxImages  int
}

func NewVenueClient(httpClient *HttpClient, queryCache *cache.Cache, maxImages int) *VenueClient {
	if maxImages < 1 {
		maxImages = config.DefaultMaxVenueImages
	}
	return &VenueClient{
		httpClient: httpClient,
		cache:      queryCache,
		maxImages:  maxImages,
	}
}

func (c *VenueClient) MaxImages() int {
	return c.maxImages
}

func (c *VenueClient) List(ctx context.Context, filter model.VenueFilter) ([]model.Venue, error) {
	q, err := query.Values(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode venue filter: %w", err)
	}
	path := "/venues"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.list(ctx, path)
}

func (c *VenueClient) ListByOwner(ctx context.Context, ownerID string) ([]model.Venue, error) {
	return c.list(ctx, "/venues/owner/"+url.PathEscape(ownerID))
}

func (c *VenueClient) list(ctx context.Context, path string) ([]model.Venue, error) {
	venues, err := cache.Query(ctx, c.cache, path, func(ctx context.Context) ([]model.Venue, []cache.Tag, error) {
		resp, err := c.httpClient.GET(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		venues, err := decode[[]model.Venue](resp, "venue list")
		if err != nil {
			return nil, nil, err
		}
		for i := range venues {
			venues[i].Images = sanitizer.NormalizeImageURLs(venues[i].Images)
		}
		return venues, venueListTags(venues), nil
	})
	return slices.Clone(venues), err
}

// VenueKey is the cache key of a venue detail query.
func VenueKey(id string) string {
	return "/venues/" + url.PathEscape(id)
}

func (c *VenueClient) Get(ctx context.Context, id string) (*model.Venue, error) {
	path := VenueKey(id)

	venue, err := cache.Query(ctx, c.cache, path, func(ctx context.Context) (model.Venue, []cache.Tag, error) {
		resp, err := c.httpClient.GET(ctx, path)
		if err != nil {
			return model.Venue{}, nil, err
		}
		venue, err := decode[model.Venue](resp, "venue")
		if err != nil {
			return model.Venue{}, nil, err
		}
		venue.Images = sanitizer.NormalizeImageURLs(venue.Images)
		return venue, []cache.Tag{cache.ItemTag(TagVenue, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	venue.BookedDates = slices.Clone(venue.BookedDates)
	venue.Images = slices.Clone(venue.Images)
	return &venue, nil
}

func (c *VenueClient) Create(ctx context.Context, req model.CreateVenueRequest) (*model.Venue, error) {
	resp, err := c.httpClient.POST(ctx, "/venues", req)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.ListTag(TagVenue))

	venue, err := decode[model.Venue](resp, "venue")
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (c *VenueClient) Update(ctx context.Context, id string, patch model.VenueUpdate) (*model.Venue, error) {
	resp, err := c.httpClient.PATCH(ctx, "/venues/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.ItemTag(TagVenue, id), cache.ListTag(TagVenue))

	venue, err := decode[model.Venue](resp, "venue")
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (c *VenueClient) Delete(ctx context.Context, id string) error {
	if _, err := c.httpClient.DELETE(ctx, "/venues/"+url.PathEscape(id)); err != nil {
		return err
	}
	c.cache.Invalidate(cache.ItemTag(TagVenue, id), cache.ListTag(TagVenue))
	return nil
}

// UploadImages attaches files to a venue and returns the stored image
// references. More than MaxImages files are rejected before any request.
func (c *VenueClient) UploadImages(ctx context.Context, id string, files []model.ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if len(files) > c.maxImages {
		return nil, fmt.Errorf("%w: %d selected, at most %d allowed", ErrTooManyImages, len(files), c.maxImages)
	}

	resp, err := c.httpClient.POSTFiles(ctx, "/venues/"+url.PathEscape(id)+"/upload-image", ImagesField, files)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.ItemTag(TagVenue, id), cache.ListTag(TagVenue))

	images, err := decode[[]string](resp, "uploaded images")
	if err != nil {
		return nil, err
	}
	return sanitizer.NormalizeImageURLs(images), nil
}

func venueListTags(venues []model.Venue) []cache.Tag {
	tags := make([]cache.Tag, 0, len(venues)+1)
	for _, v := range venues {
		tags = append(tags, cache.ItemTag(TagVenue, v.ID))
	}
	return append(tags, cache.ListTag(TagVenue))
}
