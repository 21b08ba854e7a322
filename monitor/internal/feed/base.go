package feed

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/navlane/navlane/monitor/internal/config"
	"github.com/navlane/navlane/monitor/internal/ekf"
)

const defaultFetchTimeout = 2 * time.Second

// Feed fetches one estimator state sample per call.
type Feed interface {
	Fetch(ctx context.Context) (*ekf.LaneState, error)
}

// New returns the appropriate Feed for the given source configuration.
// It builds the HTTP client once and reuses it across fetch calls.
func New(laneID string, src config.Source) (Feed, error) {
	client, err := buildHTTPClient(src)
	if err != nil {
		return nil, fmt.Errorf("feed %q: build http client: %w", laneID, err)
	}
	switch src.Type {
	case "json":
		return &jsonFeed{laneID: laneID, src: src, client: client}, nil
	case "promtext":
		return &promFeed{laneID: laneID, src: src, client: client}, nil
	default:
		return nil, fmt.Errorf("feed: unsupported type %q", src.Type)
	}
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	src  config.Source
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.src.Auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.src.Auth.Header, t.src.Auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.src.Auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.src.Auth.Username, t.src.Auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the source's auth and TLS settings.
func buildHTTPClient(src config.Source) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: src.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if src.Auth.Mode == "mtls" {
		cert, err := tls.LoadX509KeyPair(src.Auth.CertFile, src.Auth.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}

		if src.Auth.CAFile != "" {
			caPEM, err := os.ReadFile(src.Auth.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caPEM) {
				return nil, fmt.Errorf("no valid certs found in ca file %q", src.Auth.CAFile)
			}
			tlsCfg.RootCAs = pool
		}
	}

	transport := &authRoundTripper{
		base: &http.Transport{TLSClientConfig: tlsCfg},
		src:  src,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultFetchTimeout,
	}, nil
}

// fetchBody performs an HTTP GET to url and returns the response body.
func fetchBody(ctx context.Context, client *http.Client, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	// Non-empty result with a non-nil err means partial parse (trailing lines,
	// format warnings). Treat as success.
	return mfs, nil
}

// gaugeValue returns the value of the first sample in a MetricFamily.
// Returns 0 if mf is nil or empty (metric not present in the exposition).
func gaugeValue(mf *dto.MetricFamily) float64 {
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0
	}
	m := mf.GetMetric()[0]
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	}
	return 0
}

// boolGauge reads a 0/1 gauge as a bool. Absent gauges read false.
func boolGauge(mfs map[string]*dto.MetricFamily, name string) bool {
	return gaugeValue(mfs[name]) != 0
}

// vec3Of assembles a Vec3 from a family's x/y/z axis samples.
func vec3Of(mfs map[string]*dto.MetricFamily, name string) ekf.Vec3 {
	v := labelValues(mfs[name], "axis")
	return ekf.Vec3{X: v["x"], Y: v["y"], Z: v["z"]}
}

// vec2Of assembles a Vec2 from a family's x/y axis samples.
func vec2Of(mfs map[string]*dto.MetricFamily, name string) ekf.Vec2 {
	v := labelValues(mfs[name], "axis")
	return ekf.Vec2{X: v["x"], Y: v["y"]}
}

// labelValues maps each sample's value of labelName to its metric value.
// Samples without the label are skipped.
func labelValues(mf *dto.MetricFamily, labelName string) map[string]float64 {
	out := make(map[string]float64)
	if mf == nil {
		return out
	}
	for _, m := range mf.GetMetric() {
		var key string
		for _, lp := range m.GetLabel() {
			if lp.GetName() == labelName {
				key = lp.GetValue()
				break
			}
		}
		if key == "" {
			continue
		}
		switch {
		case m.Gauge != nil:
			out[key] = m.Gauge.GetValue()
		case m.Counter != nil:
			out[key] = m.Counter.GetValue()
		case m.Untyped != nil:
			out[key] = m.Untyped.GetValue()
		}
	}
	return out
}
