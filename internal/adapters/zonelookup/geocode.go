package zonelookup

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"encoding/json"
	"fmt"
	"net/http"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// geocode resolves a place ("port, country") to coordinates using
// OpenRouteService (/geocode/search). found is false when ORS has no match.
func (l *TimeZoneDBLookup) geocode(
	ctx context.Context,
	place string,
) (_ domain.Coordinates, found bool, err error) {
	defer obs.Time(ctx, "ors.geocode")(&err)

	endpoint := l.orsBaseURL + "/geocode/search"
	query := map[string]string{
		"text":   place,
		"layers": "locality,county,region,country",
		"size":   "1",
	}

	resp, err := l.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := l.newRequest(ctx, http.MethodGet, endpoint, query)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", l.orsKey)
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("execute geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, false, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, false, fmt.Errorf("invalid coordinate format for %q", place)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, true, nil
}
