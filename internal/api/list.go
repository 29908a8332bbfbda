package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"backoffice-cli/internal/model"
)

// ListParams maps the shared list-endpoint convention:
// GET <resource>/list?limit=&offset=&keyword=&status=&<extra>=
type ListParams struct {
	Limit   int
	Offset  int
	Keyword string
	Status  string
	Extra   map[string]string
}

// Values encodes the params, omitting empty values entirely. The backend
// distinguishes "param absent" from "param empty", so an empty keyword must
// not be sent as keyword=.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	if s := strings.TrimSpace(p.Keyword); s != "" {
		v.Set("keyword", s)
	}
	if s := strings.TrimSpace(p.Status); s != "" {
		v.Set("status", s)
	}
	for k, val := range p.Extra {
		if s := strings.TrimSpace(val); s != "" {
			v.Set(k, s)
		}
	}
	return v
}

// ListResult is one page of a resource plus the filtered total.
type ListResult struct {
	Items []model.Item
	Total int
}

// List fetches one page of resourcePath (e.g. "staff", "banner").
func (c *Client) List(ctx context.Context, resourcePath string, p ListParams) (ListResult, error) {
	var items []model.Item
	env, err := c.do(ctx, http.MethodGet, resourcePath+"/list", p.Values(), nil, &items)
	if err != nil {
		return ListResult{}, err
	}
	total := len(items)
	if env.Total != nil {
		total = *env.Total
	}
	return ListResult{Items: items, Total: total}, nil
}
