package zonelookup

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type timeZoneResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ZoneName string `json:"zoneName"`
}

// zoneAt asks TimeZoneDB (/v2.1/get-time-zone, by=position) for the IANA
// zone at c. An empty zone with a nil error means the position has no zone,
// which happens for points at sea.
func (l *TimeZoneDBLookup) zoneAt(ctx context.Context, c domain.Coordinates) (_ string, err error) {
	defer obs.Time(ctx, "timezonedb.zoneAt")(&err)

	endpoint := l.tzdbBaseURL + "/v2.1/get-time-zone"
	query := map[string]string{
		"key":    l.tzdbKey,
		"format": "json",
		"by":     "position",
		"lat":    strconv.FormatFloat(c.Lat, 'f', 6, 64),
		"lng":    strconv.FormatFloat(c.Lon, 'f', 6, 64),
	}

	resp, err := l.doWithRetry(ctx, func() (*http.Request, error) {
		return l.newRequest(ctx, http.MethodGet, endpoint, query)
	})
	if err != nil {
		return "", fmt.Errorf("execute time zone request: %w", err)
	}
	defer resp.Body.Close()

	var decoded timeZoneResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode time zone response: %w", err)
	}

	if !strings.EqualFold(decoded.Status, "OK") {
		// TimeZoneDB reports unknown positions as FAILED with a message.
		if strings.Contains(strings.ToLower(decoded.Message), "record not found") {
			return "", nil
		}
		return "", fmt.Errorf("time zone lookup failed: %s", decoded.Message)
	}

	return strings.TrimSpace(decoded.ZoneName), nil
}
