//go:build !linux

package rtinfo

var (
	certFiles = []string{
		"/etc/ssl/cert.pem",
		"/usr/local/etc/ssl/cert.pem",
		"/usr/local/share/certs/ca-root-nss.crt",
		"/etc/certs/ca-certificates.crt",
	}
	certDirs = []string{
		"/etc/ssl/certs",
		"/usr/local/share/certs",
		"/etc/openssl/certs",
	}
	opensslConfigFiles = []string{
		"/etc/ssl/openssl.cnf",
		"/usr/local/etc/openssl/openssl.cnf",
	}
)
