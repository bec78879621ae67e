package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// WMS GetFeatureInfo request shape. The query box is rendered as a small
// virtual map tile and the feature lookup happens at its center pixel.
const (
	wmsVersion      = "1.3.0"
	wmsPixelSize    = 101
	wmsCenterPixel  = 50
	wmsFeatureCount = 5
	defaultCRS      = "EPSG:3857"
	// defaultBoxHalfMeters yields the 300 m wide query box of the
	// reference deployment.
	defaultBoxHalfMeters = 150
)

// Content types tried during content negotiation, in fallback order.
const (
	infoFormatJSON = "application/json"
	infoFormatXML  = "text/xml"
	infoFormatText = "text/plain"
)

// ResponseFormat records which negotiated format produced a result.
type ResponseFormat string

const (
	FormatJSON ResponseFormat = "json"
	FormatXML  ResponseFormat = "xml"
	FormatText ResponseFormat = "text"
)

// AviationLevel is the tri-state outcome of an aviation zone query.
type AviationLevel int

const (
	// AviationNone means no relevant response.
	AviationNone AviationLevel = iota
	// AviationContext means the service returned informational content
	// without a discrete feature.
	AviationContext
	// AviationHit means a concrete, rule-relevant feature was returned.
	AviationHit
)

func (l AviationLevel) String() string {
	switch l {
	case AviationHit:
		return "hit"
	case AviationContext:
		return "context"
	default:
		return "none"
	}
}

// AviationResult is the outcome of querying the aviation zone service at
// one coordinate.
type AviationResult struct {
	Level    AviationLevel
	Raw      string
	Format   ResponseFormat
	ZoneName string
	Cached   bool
}

// ProtectedAreaResult is the outcome of querying the protected-area service
// at one coordinate.
type ProtectedAreaResult struct {
	Hit      bool
	Raw      string
	Format   ResponseFormat
	ZoneName string
	Cached   bool
}

// WMSService describes one OGC WMS GetFeatureInfo endpoint.
type WMSService struct {
	BaseURL string
	Layer   string
	CRS     string
}

// ZoneClient issues feature-info queries against the aviation and
// protected-area services, with content-negotiation fallback and a short
// lived response cache.
type ZoneClient struct {
	Aviation      WMSService
	Protected     WMSService
	BoxHalfMeters float64

	httpClient *http.Client
	cache      *responseCache
	logger     *slog.Logger
}

func NewZoneClient(aviation, protected WMSService, logger *slog.Logger) *ZoneClient {
	if aviation.CRS == "" {
		aviation.CRS = defaultCRS
	}
	if protected.CRS == "" {
		protected.CRS = defaultCRS
	}

	return &ZoneClient{
		Aviation:      aviation,
		Protected:     protected,
		BoxHalfMeters: defaultBoxHalfMeters,
		httpClient:    &http.Client{Timeout: requestTimeout},
		cache:         newResponseCache(cacheTTL),
		logger:        logger,
	}
}

// featureInfoURL builds the GetFeatureInfo request for one service, point
// and negotiated content type.
func (c *ZoneClient) featureInfoURL(svc WMSService, lat, lon float64, infoFormat string) string {
	minX, minY, maxX, maxY := BoundingBoxAround(lat, lon, c.BoxHalfMeters)

	query := url.Values{}
	query.Set("SERVICE", "WMS")
	query.Set("VERSION", wmsVersion)
	query.Set("REQUEST", "GetFeatureInfo")
	query.Set("LAYERS", svc.Layer)
	query.Set("QUERY_LAYERS", svc.Layer)
	query.Set("INFO_FORMAT", infoFormat)
	query.Set("CRS", svc.CRS)
	query.Set("BBOX", fmt.Sprintf("%.3f,%.3f,%.3f,%.3f", minX, minY, maxX, maxY))
	query.Set("WIDTH", fmt.Sprint(wmsPixelSize))
	query.Set("HEIGHT", fmt.Sprint(wmsPixelSize))
	query.Set("I", fmt.Sprint(wmsCenterPixel))
	query.Set("J", fmt.Sprint(wmsCenterPixel))
	query.Set("FEATURE_COUNT", fmt.Sprint(wmsFeatureCount))

	separator := "?"
	if strings.Contains(svc.BaseURL, "?") {
		separator = "&"
	}

	return svc.BaseURL + separator + query.Encode()
}

// QueryAviation resolves the tri-state aviation outcome for one coordinate.
// Content negotiation runs JSON -> XML -> plain text; failures of the first
// two attempts are swallowed, only the final attempt's error surfaces.
// Cancellation aborts the chain immediately and propagates as the context's
// error so callers can tell "superseded" from "failed".
func (c *ZoneClient) QueryAviation(ctx context.Context, lat, lon float64) (AviationResult, error) {
	key := cacheKey(kindAviation, c.Aviation.BaseURL, c.Aviation.Layer, c.Aviation.CRS,
		lat, lon, c.BoxHalfMeters)
	if cached, ok := c.cache.aviation.Get(key); ok {
		cached.Cached = true

		return cached, nil
	}

	// JSON attempt. A body that doesn't unmarshal falls through to XML,
	// the same as a failed fetch.
	body, err := sendRequest(ctx, c.httpClient, c.featureInfoURL(c.Aviation, lat, lon, infoFormatJSON))
	if err == nil {
		if level, ok := classifyFeatureJSON(body); ok {
			result := AviationResult{Level: level, Raw: string(body), Format: FormatJSON}
			c.cache.aviation.Add(key, result)

			return result, nil
		}
	} else if ctx.Err() != nil {
		return AviationResult{}, ctx.Err()
	} else {
		c.logger.Debug("aviation JSON attempt failed, falling back to XML", "error", err)
	}

	// XML attempt. Unrecognized documents classify as none; only a failed
	// fetch falls through to plain text.
	body, err = sendRequest(ctx, c.httpClient, c.featureInfoURL(c.Aviation, lat, lon, infoFormatXML))
	if err == nil {
		result := AviationResult{
			Level:    classifyAviationXML(body),
			Raw:      string(body),
			Format:   FormatXML,
			ZoneName: extractZoneName(body),
		}
		c.cache.aviation.Add(key, result)

		return result, nil
	}
	if ctx.Err() != nil {
		return AviationResult{}, ctx.Err()
	}
	c.logger.Debug("aviation XML attempt failed, falling back to plain text", "error", err)

	// Plain-text attempt, the last resort. Its error is not swallowed.
	body, err = sendRequest(ctx, c.httpClient, c.featureInfoURL(c.Aviation, lat, lon, infoFormatText))
	if err != nil {
		if ctx.Err() != nil {
			return AviationResult{}, ctx.Err()
		}

		return AviationResult{}, fmt.Errorf("queryAviation: %w", err)
	}

	result := AviationResult{Level: classifyAviationText(body), Raw: string(body), Format: FormatText}
	c.cache.aviation.Add(key, result)

	return result, nil
}

// QueryProtected resolves the binary protected-area outcome for one
// coordinate. The chain is JSON -> XML only; there is no plain-text
// fallback, so an XML fetch failure fails the whole query.
func (c *ZoneClient) QueryProtected(ctx context.Context, lat, lon float64) (ProtectedAreaResult, error) {
	key := cacheKey(kindProtected, c.Protected.BaseURL, c.Protected.Layer, c.Protected.CRS,
		lat, lon, c.BoxHalfMeters)
	if cached, ok := c.cache.protected.Get(key); ok {
		cached.Cached = true

		return cached, nil
	}

	body, err := sendRequest(ctx, c.httpClient, c.featureInfoURL(c.Protected, lat, lon, infoFormatJSON))
	if err == nil {
		if level, ok := classifyFeatureJSON(body); ok {
			result := ProtectedAreaResult{Hit: level == AviationHit, Raw: string(body), Format: FormatJSON}
			c.cache.protected.Add(key, result)

			return result, nil
		}
	} else if ctx.Err() != nil {
		return ProtectedAreaResult{}, ctx.Err()
	} else {
		c.logger.Debug("protected-area JSON attempt failed, falling back to XML", "error", err)
	}

	body, err = sendRequest(ctx, c.httpClient, c.featureInfoURL(c.Protected, lat, lon, infoFormatXML))
	if err != nil {
		if ctx.Err() != nil {
			return ProtectedAreaResult{}, ctx.Err()
		}

		return ProtectedAreaResult{}, fmt.Errorf("queryProtected: %w", err)
	}

	lower := strings.ToLower(string(body))
	hit := !isServiceException(lower) && countFeatureMembers(lower) > 0
	result := ProtectedAreaResult{
		Hit:      hit,
		Raw:      string(body),
		Format:   FormatXML,
		ZoneName: extractZoneName(body),
	}
	c.cache.protected.Add(key, result)

	return result, nil
}

// featureCollection is the slice of a GeoJSON response the classifier cares
// about; everything else in the document is ignored.
type featureCollection struct {
	Features []json.RawMessage `json:"features"`
}

// classifyFeatureJSON reports hit for a non-empty feature list and none for
// an empty one. A body that isn't feature JSON reports ok=false so the
// caller falls through to the next format.
func classifyFeatureJSON(body []byte) (AviationLevel, bool) {
	var collection featureCollection
	if err := json.Unmarshal(body, &collection); err != nil {
		return AviationNone, false
	}

	if len(collection.Features) > 0 {
		return AviationHit, true
	}

	return AviationNone, true
}

// classifyAviationXML maps an XML feature-info document onto the tri-state
// outcome. Service-exception payloads mean "no data", never a hit.
func classifyAviationXML(body []byte) AviationLevel {
	lower := strings.ToLower(string(body))

	if isServiceException(lower) {
		return AviationNone
	}

	if countFeatureMembers(lower) > 0 {
		return AviationHit
	}

	// Informational wrappers without a discrete feature, e.g. an ESRI
	// FeatureInfoResponse envelope or a generic fields element.
	if strings.Contains(lower, "featureinforesponse") || strings.Contains(lower, "<fields") {
		return AviationContext
	}

	return AviationNone
}

// classifyAviationText treats any non-empty, non-exception text as context.
// Plain text cannot carry a structured feature, so it never classifies as a
// hit. This permissive rule matches the deployed behavior and must not be
// tightened.
func classifyAviationText(body []byte) AviationLevel {
	text := strings.TrimSpace(string(body))
	if text == "" || isServiceException(strings.ToLower(text)) {
		return AviationNone
	}

	return AviationContext
}

// isServiceException detects the OGC exception payload variants. The input
// must already be lower-cased.
func isServiceException(lower string) bool {
	return strings.Contains(lower, "serviceexception") ||
		strings.Contains(lower, "exceptionreport") ||
		strings.Contains(lower, "ows:exception")
}

// countFeatureMembers counts feature-member elements, supporting both the
// bare and the GML-namespaced tag spelling. The input must already be
// lower-cased.
func countFeatureMembers(lower string) int {
	return strings.Count(lower, "<featuremember") + strings.Count(lower, "<gml:featuremember")
}

// zoneNameTags is the ordered probe list for a human-readable zone name in
// XML responses. Order matters: the first tag with non-empty text wins.
var zoneNameTags = []string{
	"name", "Name", "NAME",
	"title", "Title",
	"zone", "Zone",
	"designation", "Designation",
	"id", "ID",
}

var zoneNamePatterns = compileZoneNamePatterns()

func compileZoneNamePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(zoneNameTags))
	for _, tag := range zoneNameTags {
		patterns = append(patterns,
			regexp.MustCompile(`<(?:[A-Za-z0-9_.]+:)?`+tag+`(?:\s[^>]*)?>([^<]+)</`))
	}

	return patterns
}

// extractZoneName probes an XML body for the first candidate tag with
// non-empty text content. Returns "" when nothing matches.
func extractZoneName(body []byte) string {
	text := string(body)
	for _, pattern := range zoneNamePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if name := strings.TrimSpace(match[1]); name != "" {
			return name
		}
	}

	return ""
}
