// ABOUTME: Extracts a stop name and location from chat arguments
// ABOUTME: Accepts raw lat/lng pairs, intel map URLs and consumer map URLs

package coords

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/harper/willow/internal/models"
)

// ErrMissingName is returned when no stop name precedes the location.
var ErrMissingName = errors.New("stop name is required")

// Parsed is the result of reading an addstop argument list.
type Parsed struct {
	Name     string
	Location models.GeoPoint
}

// ParseText splits text on whitespace and parses the tokens.
func ParseText(text string) (Parsed, error) {
	return Parse(strings.Fields(text))
}

// Parse reads tokens as "name... <url>" or "name... <lat> <lng>".
func Parse(tokens []string) (Parsed, error) {
	if len(tokens) == 0 {
		return Parsed{}, ErrMissingName
	}

	last := tokens[len(tokens)-1]
	if isURL(last) {
		return parseURL(last, tokens[:len(tokens)-1])
	}

	if len(tokens) < 3 {
		if len(tokens) == 2 {
			if _, err := ParsePoint(tokens[0], tokens[1]); err == nil {
				return Parsed{}, ErrMissingName
			}
		}
		return Parsed{}, fmt.Errorf("%w: expected a name followed by latitude and longitude", models.ErrInvalidCoordinates)
	}

	n := len(tokens)
	p, err := ParsePoint(tokens[n-2], tokens[n-1])
	if err != nil {
		return Parsed{}, err
	}
	return Parsed{Name: strings.Join(tokens[:n-2], " "), Location: p}, nil
}

// ParsePoint parses a latitude and longitude pair and checks their ranges.
func ParsePoint(latStr, lngStr string) (models.GeoPoint, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: latitude %q", models.ErrInvalidCoordinates, latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: longitude %q", models.ErrInvalidCoordinates, lngStr)
	}
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return models.GeoPoint{}, err
	}
	return models.NewGeoPoint(lat, lng), nil
}

// parsePair reads a "lat,lng" query value.
func parsePair(value string) (models.GeoPoint, error) {
	lat, lng, ok := strings.Cut(value, ",")
	if !ok {
		return models.GeoPoint{}, fmt.Errorf("%w: %q is not a lat,lng pair", models.ErrInvalidCoordinates, value)
	}
	return ParsePoint(lat, lng)
}

func isURL(token string) bool {
	lower := strings.ToLower(token)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

func parseURL(raw string, nameTokens []string) (Parsed, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", models.ErrInvalidCoordinates, err)
	}
	query := u.Query()
	name := strings.Join(nameTokens, " ")

	var value string
	if strings.Contains(strings.ToLower(u.Host), "ingress") {
		value = query.Get("pll")
		if value == "" {
			return Parsed{}, models.ErrMissingPortalLocation
		}
	} else {
		value = query.Get("ll")
		if value == "" {
			return Parsed{}, fmt.Errorf("%w: no ll parameter in %s", models.ErrInvalidCoordinates, u.Host)
		}
		if q := strings.TrimSpace(query.Get("q")); q != "" {
			name = q
		}
	}

	p, err := parsePair(value)
	if err != nil {
		return Parsed{}, err
	}
	if name == "" {
		return Parsed{}, ErrMissingName
	}
	return Parsed{Name: name, Location: p}, nil
}
