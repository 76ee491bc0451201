package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultMLSGridURL = "https://api.mlsgrid.com/v2/Property"

// mlsgridResponse is the OData envelope from the MLSGrid Property resource.
type mlsgridResponse struct {
	Value []mlsgridProperty `json:"value"`
}

type mlsgridProperty struct {
	Latitude        *float64 `json:"Latitude"`
	Longitude       *float64 `json:"Longitude"`
	UnparsedAddress string   `json:"UnparsedAddress"`
}

// hasPoint reports whether the listing carries a usable coordinate pair.
// The feed writes 0 for unknown positions.
func (p mlsgridProperty) hasPoint() bool {
	return p.Latitude != nil && p.Longitude != nil &&
		*p.Latitude != 0 && *p.Longitude != 0
}

// geocodeMLSGrid looks the address up in the MLS feed itself: an exact
// UnparsedAddress match first, then the city+zip listings as an approximate
// center. One or two API calls per valuation.
func (g *geocoder) geocodeMLSGrid(ctx context.Context, addr AddressInput) (*Result, error) {
	filter := fmt.Sprintf("UnparsedAddress eq '%s' and City eq '%s'",
		escapeOData(addr.Street), escapeOData(addr.City))
	props, err := g.queryMLSGrid(ctx, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(props) > 0 && props[0].hasPoint() {
		return &Result{
			Latitude:  *props[0].Latitude,
			Longitude: *props[0].Longitude,
			Source:    "mlsgrid",
			Quality:   "rooftop",
			Matched:   true,
		}, nil
	}

	// Broader search: any listing in the same city and zip approximates the
	// neighborhood center.
	filter = fmt.Sprintf("City eq '%s' and PostalCode eq '%s'",
		escapeOData(addr.City), escapeOData(addr.ZipCode))
	props, err = g.queryMLSGrid(ctx, filter, 5)
	if err != nil {
		return nil, err
	}
	for _, p := range props {
		if p.hasPoint() {
			zap.L().Debug("geocode: using mlsgrid approximate center",
				zap.String("city", addr.City),
				zap.String("zip", addr.ZipCode),
			)
			return &Result{
				Latitude:  *p.Latitude,
				Longitude: *p.Longitude,
				Source:    "mlsgrid",
				Quality:   "approximate",
				Matched:   true,
			}, nil
		}
	}

	return &Result{Matched: false, Source: "mlsgrid"}, nil
}

func (g *geocoder) queryMLSGrid(ctx context.Context, filter string, top int) ([]mlsgridProperty, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: mlsgrid rate limit")
	}

	params := url.Values{
		"$filter": {filter},
		"$select": {"Latitude,Longitude,UnparsedAddress"},
		"$top":    {fmt.Sprintf("%d", top)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.mlsgridURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mlsgrid build request")
	}
	req.Header.Set("Authorization", "Bearer "+g.mlsgridToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mlsgrid request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: mlsgrid returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mlsgrid read body")
	}

	var parsed mlsgridResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: mlsgrid parse response")
	}
	return parsed.Value, nil
}

// escapeOData doubles single quotes per OData string-literal rules.
func escapeOData(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\'' {
			out = append(out, '\'')
		}
		out = append(out, r)
	}
	return string(out)
}
