//go:build linux

package rtinfo

// Trust store locations searched by crypto/x509 on Linux, in order.
var (
	certFiles = []string{
		"/etc/ssl/certs/ca-certificates.crt",
		"/etc/pki/tls/certs/ca-bundle.crt",
		"/etc/ssl/ca-bundle.pem",
		"/etc/pki/tls/cacert.pem",
		"/etc/pki/ca-trust/extracted/pem/tls-ca-bundle.pem",
		"/etc/ssl/cert.pem",
	}
	certDirs = []string{
		"/etc/ssl/certs",
		"/etc/pki/tls/certs",
	}
	opensslConfigFiles = []string{
		"/usr/lib/ssl/openssl.cnf",
		"/etc/ssl/openssl.cnf",
		"/etc/pki/tls/openssl.cnf",
	}
)
