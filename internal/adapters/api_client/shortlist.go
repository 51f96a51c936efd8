package api_client

import (
	"context"
	"net/http"
	"net/url"

	"houseclay-client/internal/core/domain"
)

var shortlistAddMutation = &MutationDef[string, struct{}]{
	Endpoint: EndpointShortlistAdd,
	Query: func(propertyID string) Request {
		return Request{Method: http.MethodPost, Path: "/property/user/shortlist-property/" + url.PathEscape(propertyID)}
	},
	Decode:          decodeNothing,
	InvalidatesTags: []Tag{TagShortlist},
}

var shortlistRemoveMutation = &MutationDef[string, struct{}]{
	Endpoint: EndpointShortlistRemove,
	Query: func(propertyID string) Request {
		return Request{Method: http.MethodDelete, Path: "/property/user/remove-shortlisted-property/" + url.PathEscape(propertyID)}
	},
	Decode:          decodeNothing,
	InvalidatesTags: []Tag{TagShortlist},
}

var shortlistedQuery = &QueryDef[struct{}, []domain.PropertyListing]{
	Endpoint: EndpointShortlisted,
	Query: func(struct{}) Request {
		return Request{Method: http.MethodGet, Path: "/property/user/shortlisted-properties"}
	},
	Decode: func(resp *Response) ([]domain.PropertyListing, error) {
		body, err := decodeJSON[shortlistedResponse](resp)
		if err != nil {
			return nil, err
		}
		return body.ShortlistedProperties, nil
	},
	ProvidesTags: []Tag{TagShortlist},
}

func (c *Client) AddToShortlist(ctx context.Context, propertyID string) error {
	_, err := runMutation(ctx, c, shortlistAddMutation, propertyID)
	return err
}

func (c *Client) RemoveFromShortlist(ctx context.Context, propertyID string) error {
	_, err := runMutation(ctx, c, shortlistRemoveMutation, propertyID)
	return err
}

func (c *Client) ListShortlisted(ctx context.Context) ([]domain.PropertyListing, error) {
	return runQuery(ctx, c, shortlistedQuery, struct{}{}, false)
}
