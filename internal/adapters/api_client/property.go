package api_client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"houseclay-client/internal/core/domain"
)

var publicPropertyQuery = &QueryDef[string, *domain.PropertyDetail]{
	Endpoint: EndpointPublicProperty,
	Query: func(id string) Request {
		return Request{Method: http.MethodGet, Path: "/property/" + url.PathEscape(id)}
	},
	Decode:        decodePropertyDetail,
	KeepUnusedFor: time.Hour,
}

var myPropertyQuery = &QueryDef[string, *domain.PropertyDetail]{
	Endpoint: EndpointMyProperty,
	Query: func(id string) Request {
		return Request{Method: http.MethodGet, Path: "/property/user/" + url.PathEscape(id)}
	},
	Decode:        decodePropertyDetail,
	ProvidesTags:  []Tag{TagUser},
	KeepUnusedFor: time.Hour,
}

var deactivatePropertyMutation = &MutationDef[string, struct{}]{
	Endpoint: EndpointDeactivateProperty,
	Query: func(id string) Request {
		return Request{Method: http.MethodPut, Path: "/property/user/deactivate/" + url.PathEscape(id)}
	},
	Decode:          decodeNothing,
	InvalidatesTags: []Tag{TagUser},
}

type reportArg struct {
	PropertyID string
	Payload    reportRequest
}

var reportPropertyMutation = &MutationDef[reportArg, struct{}]{
	Endpoint: EndpointReportProperty,
	Query: func(arg reportArg) Request {
		return Request{Method: http.MethodPost, Path: "/property/user/report-property/" + url.PathEscape(arg.PropertyID), Body: arg.Payload}
	},
	Decode: decodeNothing,
}

// contactOwnerMutation списывает connect-кредит, поэтому это мутация:
// ответ не кешируется, а профиль с балансом перечитывается.
var contactOwnerMutation = &MutationDef[string, domain.OwnerContactResult]{
	Endpoint: EndpointContactOwner,
	Query: func(id string) Request {
		return Request{Method: http.MethodGet, Path: "/property/user/contact/" + url.PathEscape(id)}
	},
	Decode:          decodeJSON[domain.OwnerContactResult],
	InvalidatesTags: []Tag{TagUser},
}

func (c *Client) GetPublicProperty(ctx context.Context, propertyID string) (*domain.PropertyDetail, error) {
	return runQuery(ctx, c, publicPropertyQuery, propertyID, false)
}

func (c *Client) GetMyProperty(ctx context.Context, propertyID string) (*domain.PropertyDetail, error) {
	return runQuery(ctx, c, myPropertyQuery, propertyID, false)
}

func (c *Client) DeactivateProperty(ctx context.Context, propertyID string) error {
	_, err := runMutation(ctx, c, deactivatePropertyMutation, propertyID)
	return err
}

func (c *Client) ReportProperty(ctx context.Context, propertyID, reportType, comment string) error {
	_, err := runMutation(ctx, c, reportPropertyMutation, reportArg{
		PropertyID: propertyID,
		Payload:    reportRequest{ReportType: reportType, Comment: comment},
	})
	return err
}

func (c *Client) ContactOwner(ctx context.Context, propertyID string) (*domain.OwnerContactResult, error) {
	result, err := runMutation(ctx, c, contactOwnerMutation, propertyID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
