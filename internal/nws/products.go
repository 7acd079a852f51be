package nws

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wxgate/wxgate/internal/wxerr"
)

// hwoProductType is the agency's product code for the hazardous weather outlook.
const hwoProductType = "HWO"

// Product is a fetched text product: issuance metadata plus raw body.
type Product struct {
	IssuanceTime time.Time
	Text         string
}

type productListResponse struct {
	Graph []struct {
		ID           string `json:"@id"`
		IssuanceTime string `json:"issuanceTime"`
	} `json:"@graph"`
}

type productResponse struct {
	IssuanceTime string `json:"issuanceTime"`
	ProductText  string `json:"productText"`
}

// LatestHazardOutlook fetches the most recently issued hazardous weather
// outlook for an office via the product listing: the listing gives product
// references, and the newest reference is fetched for its raw text.
func (c *Client) LatestHazardOutlook(ctx context.Context, office string) (*Product, error) {
	listURL := fmt.Sprintf("%s/products/types/%s/locations/%s", c.baseURL, hwoProductType, office)

	var list productListResponse
	if err := c.getJSON(ctx, "products", listURL, &list); err != nil {
		return nil, err
	}
	if list.Graph == nil {
		// The listing always carries the @graph container; its absence means
		// the response shape changed underneath us.
		return nil, wxerr.Parsef("product listing for %s: missing @graph container", office)
	}
	if len(list.Graph) == 0 {
		return nil, fmt.Errorf("no %s products for %s: %w", hwoProductType, office, wxerr.ErrNotFound)
	}

	// The listing is ordered newest first.
	ref := list.Graph[0]

	var prod productResponse
	if err := c.getJSON(ctx, "product", ref.ID, &prod); err != nil {
		return nil, err
	}
	if prod.ProductText == "" {
		return nil, wxerr.Parsef("product %s: empty product text", ref.ID)
	}

	result := &Product{Text: prod.ProductText}
	if t, err := time.Parse(time.RFC3339, prod.IssuanceTime); err == nil {
		result.IssuanceTime = t
	}
	return result, nil
}

// HazardOutlookHTML fetches the legacy outlook page for an office. The page
// embeds each bulletin in a <pre> block; callers hand it to hwo.FromHTML.
func (c *Client) HazardOutlookHTML(ctx context.Context, office string) (string, error) {
	q := url.Values{}
	q.Set("cwa", office)
	q.Set("wwa", "hazardous weather outlook")
	pageURL := c.hwoBaseURL + "?" + q.Encode()

	resp, err := c.get(ctx, "hwo_page", pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &wxerr.UpstreamError{Endpoint: "hwo_page", Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &wxerr.UpstreamError{Endpoint: "hwo_page", Err: err}
	}
	return string(body), nil
}
