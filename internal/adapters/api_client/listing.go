package api_client

import (
	"context"
	"net/http"

	"houseclay-client/internal/core/domain"
)

// Публикация и правка меняют список объявлений пользователя,
// поэтому обе инвалидируют User.
var addPropertyMutation = &MutationDef[map[string]any, domain.SubmittedListing]{
	Endpoint: EndpointAddProperty,
	Query: func(body map[string]any) Request {
		return Request{Method: http.MethodPost, Path: "/property/user/add", Body: body}
	},
	Decode:          decodeSubmittedListing,
	InvalidatesTags: []Tag{TagUser},
}

var updatePropertyMutation = &MutationDef[map[string]any, domain.SubmittedListing]{
	Endpoint: EndpointUpdateProperty,
	Query: func(body map[string]any) Request {
		return Request{Method: http.MethodPut, Path: "/property/user/update", Body: body}
	},
	Decode:          decodeSubmittedListing,
	InvalidatesTags: []Tag{TagUser},
}

func (c *Client) AddProperty(ctx context.Context, draft domain.ListingDraft) (domain.SubmittedListing, error) {
	return runMutation(ctx, c, addPropertyMutation, draft.Payload())
}

func (c *Client) UpdateProperty(ctx context.Context, draft domain.ListingDraft) (domain.SubmittedListing, error) {
	return runMutation(ctx, c, updatePropertyMutation, draft.Payload())
}
