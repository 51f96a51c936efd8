package api_client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
)

var checkUserQuery = &QueryDef[string, checkUserResponse]{
	Endpoint: EndpointCheckUser,
	Query: func(phoneNo string) Request {
		return Request{Method: http.MethodGet, Path: "/user/check-user", Query: url.Values{"phoneNo": {phoneNo}}}
	},
	Decode: decodeJSON[checkUserResponse],
}

var generateOTPMutation = &MutationDef[string, string]{
	Endpoint: EndpointGenerateOTP,
	Query: func(phoneNo string) Request {
		return Request{Method: http.MethodPost, Path: "/auth/generate-otp", Query: url.Values{"phoneNo": {phoneNo}}}
	},
	Decode: decodeText,
}

// decodeAuthUser: сервер отвечает JSON при успехе и может вернуть
// текст с причиной отказа даже со статусом 2xx.
func decodeAuthUser(resp *Response) (*domain.UserProfile, error) {
	if !isJSON(resp) {
		msg := strings.TrimSpace(string(resp.Body))
		if msg == "" {
			msg = "Login failed"
		}
		return nil, &domain.RequestError{Kind: domain.KindCustom, Message: msg}
	}
	dto, err := decodeJSON[authUserDetailDTO](resp)
	if err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

var loginMutation = &MutationDef[loginRequest, *domain.UserProfile]{
	Endpoint: EndpointLogin,
	Query: func(body loginRequest) Request {
		return Request{Method: http.MethodPost, Path: "/user/login", Body: body}
	},
	Decode:          decodeAuthUser,
	InvalidatesTags: []Tag{TagUser, TagShortlist},
}

var registerMutation = &MutationDef[registerRequest, *domain.UserProfile]{
	Endpoint: EndpointRegister,
	Query: func(body registerRequest) Request {
		return Request{Method: http.MethodPost, Path: "/user/register", Body: body}
	},
	Decode:          decodeAuthUser,
	InvalidatesTags: []Tag{TagUser, TagShortlist},
}

var logoutMutation = &MutationDef[struct{}, struct{}]{
	Endpoint: EndpointLogout,
	Query: func(struct{}) Request {
		return Request{Method: http.MethodPost, Path: logoutPath}
	},
	Decode: decodeNothing,
}

// CheckUser возвращает false, если сервер не знает номер (404).
func (c *Client) CheckUser(ctx context.Context, phoneNo string) (bool, error) {
	_, err := runQuery(ctx, c, checkUserQuery, phoneNo, true)
	if err == nil {
		return true, nil
	}
	var reqErr *domain.RequestError
	if errors.As(err, &reqErr) {
		if status, ok := reqErr.HTTPStatus(); ok && status == http.StatusNotFound {
			contextkeys.LoggerFromContext(ctx).Debug("Phone number is not registered", port.Fields{"endpoint": EndpointCheckUser.String()})
			return false, nil
		}
	}
	return false, err
}

func (c *Client) GenerateOTP(ctx context.Context, phoneNo string) error {
	_, err := runMutation(ctx, c, generateOTPMutation, phoneNo)
	return err
}

func (c *Client) Login(ctx context.Context, phoneNo, otpCode string) (*domain.UserProfile, error) {
	return runMutation(ctx, c, loginMutation, loginRequest{PhoneNo: phoneNo, OTPCode: otpCode})
}

func (c *Client) Register(ctx context.Context, phoneNo, name, emailID, otpCode string) (*domain.UserProfile, error) {
	return runMutation(ctx, c, registerMutation, registerRequest{PhoneNo: phoneNo, Name: name, EmailID: emailID, OTPCode: otpCode})
}

// Logout просит сервер удалить cookie сессии и забывает её локально.
func (c *Client) Logout(ctx context.Context) error {
	_, err := runMutation(ctx, c, logoutMutation, struct{}{})
	c.pipeline.ClearSession(ctx)
	c.ResetCache()
	return err
}
