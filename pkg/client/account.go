package client

import (
	"context"
	"net/url"
	"slices"

	"venuebook/pkg/cache"
	"venuebook/pkg/model"
)

const TagAccount = "Account"

type AccountClient struct {
	httpClient *HttpClient
	cache      *cache.Cache
}

func NewAccountClient(httpClient *HttpClient, queryCache *cache.Cache) *AccountClient {
	return &AccountClient{
		httpClient: httpClient,
		cache:      queryCache,
	}
}

func (c *AccountClient) Login(ctx context.Context, req model.LoginRequest) (*model.AuthPayload, error) {
	resp, err := c.httpClient.POST(ctx, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	return c.decodeAuth(resp)
}

// Register always asks for the "user" role; other roles are assigned by an
// admin through Create.
func (c *AccountClient) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthPayload, error) {
	req.Role = model.RoleUser
	resp, err := c.httpClient.POST(ctx, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return c.decodeAuth(resp)
}

func (c *AccountClient) decodeAuth(resp *Response) (*model.AuthPayload, error) {
	payload, err := decode[model.AuthPayload](resp, "auth payload")
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *AccountClient) Profile(ctx context.Context) (*model.Account, error) {
	account, err := cache.Query(ctx, c.cache, "auth/profile", func(ctx context.Context) (model.Account, []cache.Tag, error) {
		resp, err := c.httpClient.GET(ctx, "/auth/profile")
		if err != nil {
			return model.Account{}, nil, err
		}
		account, err := decode[model.Account](resp, "profile")
		if err != nil {
			return model.Account{}, nil, err
		}
		return account, []cache.Tag{cache.ItemTag(TagAccount, account.ID)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *AccountClient) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	path := "/users?" + url.Values{"role": {string(role)}}.Encode()

	accounts, err := cache.Query(ctx, c.cache, path, func(ctx context.Context) ([]model.Account, []cache.Tag, error) {
		resp, err := c.httpClient.GET(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		accounts, err := decode[[]model.Account](resp, "account list")
		if err != nil {
			return nil, nil, err
		}
		return accounts, accountListTags(accounts), nil
	})
	return slices.Clone(accounts), err
}

func (c *AccountClient) Create(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error) {
	resp, err := c.httpClient.POST(ctx, "/users", req)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.ListTag(TagAccount))

	account, err := decode[model.Account](resp, "account")
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *AccountClient) Update(ctx context.Context, id string, patch model.AccountUpdate) (*model.Account, error) {
	resp, err := c.httpClient.PATCH(ctx, "/users/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.ItemTag(TagAccount, id), cache.ListTag(TagAccount))

	account, err := decode[model.Account](resp, "account")
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *AccountClient) Delete(ctx context.Context, id string) error {
	if _, err := c.httpClient.DELETE(ctx, "/users/"+url.PathEscape(id)); err != nil {
		return err
	}
	c.cache.Invalidate(cache.ItemTag(TagAccount, id), cache.ListTag(TagAccount))
	return nil
}

func accountListTags(accounts []model.Account) []cache.Tag {
	tags := make([]cache.Tag, 0, len(accounts)+1)
	for _, a := range accounts {
		tags = append(tags, cache.ItemTag(TagAccount, a.ID))
	}
	return append(tags, cache.ListTag(TagAccount))
}
