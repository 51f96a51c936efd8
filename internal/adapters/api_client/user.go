package api_client

import (
	"context"
	"net/http"

	"houseclay-client/internal/core/domain"
)

var userDetailQuery = &QueryDef[struct{}, *domain.UserDetail]{
	Endpoint: EndpointUserDetail,
	Query: func(struct{}) Request {
		return Request{Method: http.MethodGet, Path: "/user/detail"}
	},
	Decode: func(resp *Response) (*domain.UserDetail, error) {
		body, err := decodeJSON[userDetailResponse](resp)
		if err != nil {
			return nil, err
		}
		return body.toDomain(), nil
	},
	ProvidesTags: []Tag{TagUser},
}

var updateUserMutation = &MutationDef[domain.ProfileUpdate, struct{}]{
	Endpoint: EndpointUpdateUser,
	Query: func(update domain.ProfileUpdate) Request {
		return Request{Method: http.MethodPut, Path: "/user/update", Body: update}
	},
	Decode:          decodeNothing,
	InvalidatesTags: []Tag{TagUser},
}

func (c *Client) GetUserDetail(ctx context.Context) (*domain.UserDetail, error) {
	return runQuery(ctx, c, userDetailQuery, struct{}{}, false)
}

func (c *Client) UpdateUser(ctx context.Context, update domain.ProfileUpdate) error {
	_, err := runMutation(ctx, c, updateUserMutation, update)
	return err
}
