// Package remote downloads collection artifacts over HTTP(S).
package remote

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/colpack/colpack/internal/errors"
)

// UserAgent is sent with every outgoing request.
const UserAgent = "colpack"

// TransportOptions collect the TLS settings of the HTTP client.
type TransportOptions struct {
	// RootCertFilenames is a list of PEM files with additional root
	// certificates to trust.
	RootCertFilenames []string

	// InsecureTLS disables certificate verification.
	InsecureTLS bool
}

// userAgentRoundTripper sets the User-Agent header on outgoing requests.
type userAgentRoundTripper struct {
	userAgent string
	rt        http.RoundTripper
}

func (c *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", c.userAgent)
	return c.rt.RoundTrip(req)
}

// Transport returns a new http.RoundTripper with default settings applied.
// If custom root certificate files are given, each must point to a valid
// PEM file, otherwise the function will return an error.
func Transport(opts TransportOptions) (http.RoundTripper, error) {
	// copied from net/http
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{},
	}

	if opts.InsecureTLS {
		tr.TLSClientConfig.InsecureSkipVerify = true
	}

	if len(opts.RootCertFilenames) > 0 {
		pool := x509.NewCertPool()
		for _, filename := range opts.RootCertFilenames {
			if filename == "" {
				return nil, errors.Errorf("empty filename for root certificate supplied")
			}
			b, err := os.ReadFile(filename)
			if err != nil {
				return nil, errors.Errorf("unable to read root certificate: %v", err)
			}
			if ok := pool.AppendCertsFromPEM(b); !ok {
				return nil, errors.Errorf("cannot parse root certificate from %q", filename)
			}
		}
		tr.TLSClientConfig.RootCAs = pool
	}

	return &userAgentRoundTripper{userAgent: UserAgent, rt: tr}, nil
}

// NewClient returns an HTTP client using a Transport built from opts.
func NewClient(opts TransportOptions) (*http.Client, error) {
	rt, err := Transport(opts)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: rt}, nil
}
