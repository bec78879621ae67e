package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
)

const (
	testLat = 64.8
	testLon = -18.5
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// formatServer answers GetFeatureInfo requests per negotiated INFO_FORMAT
// and counts the requests it sees for each.
type formatServer struct {
	server *httptest.Server

	jsonStatus int
	jsonBody   string
	xmlStatus  int
	xmlBody    string
	textStatus int
	textBody   string

	jsonHits atomic.Int64
	xmlHits  atomic.Int64
	textHits atomic.Int64
}

func newFormatServer(t *testing.T) *formatServer {
	t.Helper()

	fs := &formatServer{
		jsonStatus: http.StatusOK,
		xmlStatus:  http.StatusOK,
		textStatus: http.StatusOK,
	}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("INFO_FORMAT") {
		case infoFormatJSON:
			fs.jsonHits.Add(1)
			w.WriteHeader(fs.jsonStatus)
			_, _ = w.Write([]byte(fs.jsonBody))
		case infoFormatXML:
			fs.xmlHits.Add(1)
			w.WriteHeader(fs.xmlStatus)
			_, _ = w.Write([]byte(fs.xmlBody))
		case infoFormatText:
			fs.textHits.Add(1)
			w.WriteHeader(fs.textStatus)
			_, _ = w.Write([]byte(fs.textBody))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(fs.server.Close)

	return fs
}

func newTestClient(aviation, protected *formatServer) *ZoneClient {
	avURL, paURL := "http://unused.invalid", "http://unused.invalid"
	if aviation != nil {
		avURL = aviation.server.URL
	}
	if protected != nil {
		paURL = protected.server.URL
	}

	return NewZoneClient(
		WMSService{BaseURL: avURL, Layer: "airspace"},
		WMSService{BaseURL: paURL, Layer: "reserves"},
		testLogger(),
	)
}

func TestFeatureInfoURL(t *testing.T) {
	client := newTestClient(nil, nil)

	raw := client.featureInfoURL(client.Aviation, testLat, testLon, infoFormatJSON)
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("featureInfoURL produced an unparseable URL: %v", err)
	}

	query := parsed.Query()
	expected := map[string]string{
		"SERVICE":       "WMS",
		"VERSION":       "1.3.0",
		"REQUEST":       "GetFeatureInfo",
		"LAYERS":        "airspace",
		"QUERY_LAYERS":  "airspace",
		"INFO_FORMAT":   infoFormatJSON,
		"CRS":           "EPSG:3857",
		"WIDTH":         "101",
		"HEIGHT":        "101",
		"I":             "50",
		"J":             "50",
		"FEATURE_COUNT": "5",
	}
	for key, want := range expected {
		if got := query.Get(key); got != want {
			t.Errorf("query[%s] = %q, want %q", key, got, want)
		}
	}

	bbox := strings.Split(query.Get("BBOX"), ",")
	if len(bbox) != 4 {
		t.Errorf("BBOX = %q, want four comma-separated values", query.Get("BBOX"))
	}
}

func TestFeatureInfoURLAppendsToExistingQuery(t *testing.T) {
	client := newTestClient(nil, nil)
	client.Aviation.BaseURL = "http://example.invalid/wms?map=iceland"

	raw := client.featureInfoURL(client.Aviation, testLat, testLon, infoFormatJSON)
	if strings.Count(raw, "?") != 1 {
		t.Errorf("featureInfoURL = %q, want a single '?'", raw)
	}
}

func TestQueryAviationJSONHit(t *testing.T) {
	aviation := newFormatServer(t)
	aviation.jsonBody = `{"features":[{"id":"R-1","properties":{"name":"Reykjavik CTR"}}]}`

	client := newTestClient(aviation, nil)
	result, err := client.QueryAviation(context.Background(), testLat, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Level != AviationHit {
		t.Errorf("level = %v, want hit", result.Level)
	}
	if result.Format != FormatJSON {
		t.Errorf("format = %v, want json", result.Format)
	}

	// Fallback monotonicity: a successful JSON attempt means the XML and
	// text attempts are never issued.
	if aviation.jsonHits.Load() != 1 || aviation.xmlHits.Load() != 0 || aviation.textHits.Load() != 0 {
		t.Errorf("requests = (json %d, xml %d, text %d), want (1, 0, 0)",
			aviation.jsonHits.Load(), aviation.xmlHits.Load(), aviation.textHits.Load())
	}
}

func TestQueryAviationJSONEmptyIsNone(t *testing.T) {
	aviation := newFormatServer(t)
	aviation.jsonBody = `{"features":[]}`

	client := newTestClient(aviation, nil)
	result, err := client.QueryAviation(context.Background(), testLat, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Level != AviationNone {
		t.Errorf("level = %v, want none", result.Level)
	}
}

func TestQueryAviationFallsBackToXML(t *testing.T) {
	aviation := newFormatServer(t)
	aviation.jsonStatus = http.StatusInternalServerError
	aviation.xmlBody = `<wfs:FeatureCollection>
		<gml:featureMember><Zone><name>Akureyri TIZ</name></Zone></gml:featureMember>
	</wfs:FeatureCollection>`

	client := newTestClient(aviation, nil)
	result, err := client.QueryAviation(context.Background(), testLat, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Level != AviationHit {
		t.Errorf("level = %v, want hit", result.Level)
	}
	if result.Format != FormatXML {
		t.Errorf("format = %v, want xml", result.Format)
	}
	if result.ZoneName != "Akureyri TIZ" {
		t.Errorf("zone name = %q, want %q", result.ZoneName, "Akureyri TIZ")
	}
}

func TestQueryAviationUnparseableJSONFallsThrough(t *testing.T) {
	aviation := newFormatServer(t)
	aviation.jsonBody = `<html>this is not JSON</html>`
	aviation.xmlBody = `<ServiceExceptionReport><ServiceException/></ServiceExceptionReport>`

	client := newTestClient(aviation, nil)
	result, err := client.QueryAviation(context.Background(), testLat, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Level != AviationNone || result.Format != FormatXML {
		t.Errorf("result = %+v, want none via xml", result)
	}
	if aviation.xmlHits.Load() != 1 {
		t.Errorf("xml requests = %d, want 1", aviation.xmlHits.Load())
	}
}

func TestQueryAviationTextFallback(t *testing.T) {
	tests := []struct {
		name     string
		textBody string
		expected AviationLevel
	}{
		{name: "informational text is context", textBody: "No NOTAM data", expected: AviationContext},
		{name: "empty text is none", textBody: "   \n", expected: AviationNone},
		{name: "exception text is none", textBody: "msWMSException: ServiceException occurred", expected: AviationNone},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			aviation := newFormatServer(t)
			aviation.jsonStatus = http.StatusInternalServerError
			aviation.xmlStatus = http.StatusInternalServerError
			aviation.textBody = test.textBody

			client := newTestClient(aviation, nil)
			result, err := client.QueryAviation(context.Background(), testLat, testLon)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Level != test.expected {
				t.Errorf("level = %v, want %v", result.Level, test.expected)
			}
			if result.Format != FormatText {
				t.Errorf("format = %v, want text", result.Format)
			}
		})
	}
}

func TestQueryAviationFinalAttemptErrorSurfaces(t *testing.T) {
	aviation := newFormatServer(t)
	aviation.jsonStatus = http.StatusInternalServerError
	aviation.xmlStatus = http.StatusInternalServerError
	aviation.textStatus = http.StatusBadGateway

	client := newTestClient(aviation, nil)
	_, err := client.QueryAviation(context.Background(), testLat, testLon)
	if err == nil {
		t.Fatal("expected an error when every attempt fails")
	}
	if !errors.Is(err, ErrNonOkResponse) {
		t.Errorf("error = %v, want %v", err, ErrNonOkResponse)
	}
}

func TestQueryAviationCancellation(t *testing.T) {
	started := make(chan struct{})
	blocker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer blocker.Close()

	client := NewZoneClient(
		WMSService{BaseURL: blocker.URL, Layer: "airspace"},
		WMSService{BaseURL: blocker.URL, Layer: "reserves"},
		testLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.QueryAviation(ctx, testLat, testLon)
		done <- err
	}()

	<-started
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestQueryProtectedJSONHit(t *testing.T) {
	protected := newFormatServer(t)
	protected.jsonBody = `{"features":[{"id":1}]}`

	client := newTestClient(nil, protected)
	result, err := client.QueryProtected(context.Background(), testLat, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Hit {
		t.Error("hit = false, want true")
	}
}

func TestQueryProtectedXMLFallback(t *testing.T) {
	protected := newFormatServer(t)
	protected.jsonStatus = http.StatusInternalServerError
	protected.xmlBody = `<FeatureCollection>
		<featureMember><Reserve><Name>Þingvellir</Name></Reserve></featureMember>
	</FeatureCollection>`

	client := newTestClient(nil, protected)
	result, err := client.QueryProtected(context.Background(), testLat, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Hit {
		t.Error("hit = false, want true")
	}
	if result.ZoneName != "Þingvellir" {
		t.Errorf("zone name = %q, want %q", result.ZoneName, "Þingvellir")
	}
}

func TestQueryProtectedHasNoTextFallback(t *testing.T) {
	protected := newFormatServer(t)
	protected.jsonStatus = http.StatusInternalServerError
	protected.xmlStatus = http.StatusInternalServerError
	protected.textBody = "would classify as context for aviation"

	client := newTestClient(nil, protected)
	_, err := client.QueryProtected(context.Background(), testLat, testLon)
	if err == nil {
		t.Fatal("expected an error when JSON and XML both fail")
	}
	if protected.textHits.Load() != 0 {
		t.Errorf("text requests = %d, want 0", protected.textHits.Load())
	}
}

func TestQueryUsesCache(t *testing.T) {
	aviation := newFormatServer(t)
	aviation.jsonBody = `{"features":[]}`

	client := newTestClient(aviation, nil)

	first, err := client.QueryAviation(context.Background(), testLat, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first result should not be cached")
	}

	// Sub-meter jitter rounds to the same cache key.
	second, err := client.QueryAviation(context.Background(), testLat+0.000001, testLon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("second result should come from the cache")
	}
	if aviation.jsonHits.Load() != 1 {
		t.Errorf("json requests = %d, want 1", aviation.jsonHits.Load())
	}
}

func TestClassifyAviationXML(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected AviationLevel
	}{
		{
			name:     "service exception is none",
			body:     `<ServiceExceptionReport><ServiceException>layer not queryable</ServiceException></ServiceExceptionReport>`,
			expected: AviationNone,
		},
		{
			name:     "ows exception is none",
			body:     `<ows:ExceptionReport><ows:Exception exceptionCode="NoApplicableCode"/></ows:ExceptionReport>`,
			expected: AviationNone,
		},
		{
			name:     "bare feature member is a hit",
			body:     `<FeatureCollection><featureMember/></FeatureCollection>`,
			expected: AviationHit,
		},
		{
			name:     "namespaced feature member is a hit",
			body:     `<wfs:FeatureCollection><gml:featureMember/></wfs:FeatureCollection>`,
			expected: AviationHit,
		},
		{
			name:     "feature info response wrapper is context",
			body:     `<FeatureInfoResponse></FeatureInfoResponse>`,
			expected: AviationContext,
		},
		{
			name:     "fields element is context",
			body:     `<doc><FIELDS a="1"/></doc>`,
			expected: AviationContext,
		},
		{
			name:     "unrecognized document is none",
			body:     `<something-else/>`,
			expected: AviationNone,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := classifyAviationXML([]byte(test.body)); got != test.expected {
				t.Errorf("classifyAviationXML() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestExtractZoneName(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "lowercase name",
			body:     `<zone><name>Vatnajökull</name></zone>`,
			expected: "Vatnajökull",
		},
		{
			name:     "namespaced title",
			body:     `<app:feature><app:Title>Friðland að Fjallabaki</app:Title></app:feature>`,
			expected: "Friðland að Fjallabaki",
		},
		{
			name:     "name is preferred over id",
			body:     `<f><id>42</id><name>Askja</name></f>`,
			expected: "Askja",
		},
		{
			name:     "empty name falls through to later candidates",
			body:     `<f><name> </name><designation>Nature reserve</designation></f>`,
			expected: "Nature reserve",
		},
		{
			name:     "nothing matches",
			body:     `<f><other>x</other></f>`,
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := extractZoneName([]byte(test.body)); got != test.expected {
				t.Errorf("extractZoneName() = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestCountFeatureMembers(t *testing.T) {
	body := strings.ToLower(`<c><featureMember/><gml:featureMember/><featureMember/></c>`)
	// The namespaced spelling must not be double counted by the bare one.
	if got := countFeatureMembers(body); got != 3 {
		t.Errorf("countFeatureMembers() = %d, want 3", got)
	}
}
