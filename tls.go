package rtinfo

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// TLS verify outcomes.
const (
	TLSSuccess = "Success"
	TLSFailure = "*** FAILURE ***"
	TLSUnknown = "*** UNKNOWN - internet connection failure? ***"
)

const (
	tlsVerifyTimeout    = 15 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
)

// VerifyTLS connects to rawURL with certificate verification against the
// system roots. Certificate and protocol errors report [TLSFailure]; any
// other failure, such as DNS or a refused connection, reports [TLSUnknown].
func VerifyTLS(rawURL string) string {
	return verifyTLS(rawURL, nil)
}

func verifyTLS(rawURL string, roots *x509.CertPool) string {
	tr := &http.Transport{
		Proxy:           proxyFunc(),
		TLSClientConfig: &tls.Config{RootCAs: roots},
	}
	defer tr.CloseIdleConnections()

	client := &http.Client{Transport: tr, Timeout: tlsVerifyTimeout}
	resp, err := client.Head(rawURL)
	if err != nil {
		return classifyTLSError(err)
	}
	resp.Body.Close()
	return TLSSuccess
}

func classifyTLSError(err error) string {
	var (
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidErr  x509.CertificateInvalidError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownAuth),
		errors.As(err, &hostErr),
		errors.As(err, &invalidErr),
		errors.As(err, &recordErr),
		errors.As(err, &alertErr):
		return TLSFailure
	}
	return TLSUnknown
}

func proxyFunc() func(*http.Request) (*url.URL, error) {
	fn := httpproxy.FromEnvironment().ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

// proxyFor returns the proxy used for rawURL with credentials redacted,
// or "direct".
func proxyFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "error: " + err.Error()
	}
	p, err := httpproxy.FromEnvironment().ProxyFunc()(u)
	if err != nil {
		return "error: " + err.Error()
	}
	if p == nil {
		return "direct"
	}
	return p.Redacted()
}

// tlsVersions are the protocol versions checked by [tlsProtocols].
var tlsVersions = []uint16{
	tls.VersionTLS10,
	tls.VersionTLS11,
	tls.VersionTLS12,
	tls.VersionTLS13,
}

// tlsProtocols lists the protocol versions that complete a handshake
// against a loopback server configured to accept all of them.
func tlsProtocols() string {
	cert, err := selfSignedCert()
	if err != nil {
		return "error: " + err.Error()
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS10,
		MaxVersion:   tls.VersionTLS13,
	})
	if err != nil {
		return "error: " + err.Error()
	}
	defer ln.Close()

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.SetDeadline(time.Now().Add(tlsHandshakeTimeout))
			_ = c.(*tls.Conn).Handshake()
			c.Close()
		}
	}()

	var names []string
	for _, v := range tlsVersions {
		if handshake(ln.Addr().String(), v) == nil {
			names = append(names, tls.VersionName(v))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func handshake(addr string, version uint16) error {
	dialer := &net.Dialer{Timeout: tlsHandshakeTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{
		MinVersion:         version,
		MaxVersion:         version,
		InsecureSkipVerify: true, // loopback self-signed; only the version matters
	})
	if err != nil {
		return err
	}
	return conn.Close()
}

func selfSignedCert() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate key: %w", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "rtinfo loopback"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create certificate: %w", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}

// firstExisting returns the first path that exists, or the first
// candidate when none does.
func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}
