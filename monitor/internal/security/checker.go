// Package security inspects the TLS certificates of configured lane source
// endpoints. The monitor sweeps all lanes at startup and logs a warning for
// any certificate that is expiring or already expired, so a lane does not
// silently drop off the console mid-flight because its estimator endpoint
// stopped accepting connections.
package security

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/url"
	"time"

	"github.com/navlane/navlane/monitor/internal/config"
)

// expiryWarnDays is the remaining-lifetime threshold below which a
// certificate is reported as expiring.
const expiryWarnDays = 30

const dialTimeout = 10 * time.Second

// CertStatus describes the leaf certificate presented by one lane endpoint.
type CertStatus struct {
	LaneID   string
	Endpoint string
	Status   string // "valid" | "expiring" | "expired" | "unreachable"
	Issuer   string
	NotAfter time.Time
	DaysLeft int
}

// SweepLanes checks every HTTPS lane endpoint and logs one line per finding.
// Plain-HTTP lanes are skipped. Intended to run once at startup; failures are
// advisory and never block the monitor.
func SweepLanes(ctx context.Context, lanes []config.Lane) []CertStatus {
	var out []CertStatus
	for _, lane := range lanes {
		cs := Check(ctx, lane.Source)
		if cs == nil {
			continue
		}
		cs.LaneID = lane.ID

		switch cs.Status {
		case "valid":
			slog.Debug("lane endpoint certificate ok",
				"lane", lane.ID, "days_left", cs.DaysLeft)
		case "unreachable":
			slog.Warn("lane endpoint not reachable over TLS",
				"lane", lane.ID, "endpoint", cs.Endpoint)
		default:
			slog.Warn("lane endpoint certificate needs attention",
				"lane", lane.ID,
				"status", cs.Status,
				"issuer", cs.Issuer,
				"days_left", cs.DaysLeft,
			)
		}
		out = append(out, *cs)
	}
	return out
}

// Check dials the TLS endpoint for the given lane source and returns a
// CertStatus describing the leaf certificate.
//
// Returns nil for non-HTTPS endpoints, there is no TLS certificate to
// inspect. Uses a bounded dial timeout so a slow or unreachable host does
// not block startup indefinitely.
func Check(ctx context.Context, src config.Source) *CertStatus {
	u, err := url.Parse(src.Endpoint)
	if err != nil || u.Scheme != "https" {
		return nil
	}

	cs := &CertStatus{Endpoint: src.Endpoint}

	leaf, err := fetchLeaf(ctx, u.Host, src.TLS.InsecureSkipVerify)
	if err != nil {
		cs.Status = "unreachable"
		return cs
	}

	daysLeft := time.Until(leaf.NotAfter).Hours() / 24
	cs.Issuer = leaf.Issuer.CommonName
	cs.NotAfter = leaf.NotAfter.UTC()
	cs.DaysLeft = int(math.Floor(daysLeft))
	cs.Status = grade(daysLeft)
	return cs
}

// fetchLeaf performs a TLS handshake with host and returns the leaf
// certificate it presented.
func fetchLeaf(ctx context.Context, host string, skipVerify bool) (*x509.Certificate, error) {
	if _, _, err := net.SplitHostPort(host); err != nil {
		// No explicit port in the URL, append the HTTPS default.
		host = net.JoinHostPort(host, "443")
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			InsecureSkipVerify: skipVerify, //nolint:gosec
		},
	}

	netConn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		return nil, err
	}
	conn := netConn.(*tls.Conn)
	defer conn.Close()

	peerCerts := conn.ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, errors.New("peer presented no certificate")
	}
	return peerCerts[0], nil
}

func grade(daysLeft float64) string {
	switch {
	case daysLeft <= 0:
		return "expired"
	case daysLeft <= expiryWarnDays:
		return "expiring"
	default:
		return "valid"
	}
}
