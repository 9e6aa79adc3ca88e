// Package security holds the TLS settings for serving sessionstream over
// HTTPS, optionally requiring client certificates.
//
//	cfg := security.TLSConfig{
//	    CertFile:     "/etc/sessionstream/cert.pem",
//	    KeyFile:      "/etc/sessionstream/key.pem",
//	    ClientCAFile: "/etc/sessionstream/clients.pem",
//	}
//
//	tlsConfig, err := cfg.Build()
//
// A zero TLSConfig is disabled and Build returns nil.
package security
