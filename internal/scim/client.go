// Package scim is a minimal client for the SCIM v2 user endpoints used to
// rename logins: listing users page by page and replacing a user's userName.
package scim

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"resty.dev/v3"

	"scimrename/internal/errors"
)

// PatchOpSchema identifies a SCIM PatchOp request document.
const PatchOpSchema = "urn:ietf:params:scim:api:messages:2.0:PatchOp"

// UserNamePath is the attribute replaced by PatchUserName.
const UserNamePath = "userName"

const defaultTimeout = 30 * time.Second

// User is the subset of a SCIM user resource the tool reads.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UserName    string `json:"userName"`
}

// ListResponse is one page of GET /v2/Users.
type ListResponse struct {
	Resources    []User `json:"Resources"`
	StartIndex   int    `json:"startIndex"`
	ItemsPerPage int    `json:"itemsPerPage"`
	TotalResults int    `json:"totalResults"`
}

// PatchOperation is a single entry of a PatchOp document.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

// PatchRequest is the body sent by PatchUserName.
type PatchRequest struct {
	Schemas    []string         `json:"schemas"`
	Operations []PatchOperation `json:"Operations"`
}

// NewUserNamePatch builds the single-operation document that replaces
// userName with newUserName.
func NewUserNamePatch(newUserName string) PatchRequest {
	return PatchRequest{
		Schemas: []string{PatchOpSchema},
		Operations: []PatchOperation{
			{Op: "replace", Path: UserNamePath, Value: newUserName},
		},
	}
}

// Client talks to one SCIM tenant.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a Client for baseURL authenticating with a bearer token.
// Transport warnings from the HTTP layer go to logger.
func NewClient(baseURL, token string, logger logrus.FieldLogger) *Client {
	c := resty.New().
		SetLogger(logger).
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/scim+json, application/json")

	return &Client{http: c, baseURL: baseURL}
}

// Close releases the idle connections held by the client.
func (c *Client) Close() error {
	return c.http.Close()
}

// ListUsers fetches one page of users starting at the 1-based startIndex.
// The body is decoded as JSON whatever Content-Type the server declares.
func (c *Client) ListUsers(ctx context.Context, startIndex, count int) (*ListResponse, error) {
	url := c.baseURL + "/v2/Users"

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("startIndex", strconv.Itoa(startIndex)).
		SetQueryParam("count", strconv.Itoa(count)).
		Get("/v2/Users")
	if err != nil {
		return nil, errors.NewTransportError(url, "GET request failed", err)
	}
	if !resp.IsSuccess() {
		return nil, errors.NewStatusError(url, resp.StatusCode(), resp.String())
	}

	page := &ListResponse{}
	if err := json.Unmarshal(resp.Bytes(), page); err != nil {
		return nil, errors.NewParsingError(url, "invalid user list response", err)
	}
	return page, nil
}

// PatchUserName replaces the userName of the user identified by uid.
func (c *Client) PatchUserName(ctx context.Context, uid, newUserName string) error {
	url := c.baseURL + "/v2/Users/" + uid

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("uid", uid).
		SetBody(NewUserNamePatch(newUserName)).
		Patch("/v2/Users/{uid}")
	if err != nil {
		return errors.NewTransportError(url, "PATCH request failed", err)
	}
	if !resp.IsSuccess() {
		return errors.NewStatusError(url, resp.StatusCode(), resp.String())
	}

	return nil
}
