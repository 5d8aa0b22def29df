// Package certgen builds throwaway certificates for tests.
package certgen

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/url"
	"testing"
	"time"
)

// Signer selects how the generated certificate is signed
type Signer int

const (
	// SignedByCA signs with a freshly generated test CA
	SignedByCA Signer = iota
	// SelfSigned signs with the certificate's own key
	SelfSigned
	// ForeignKeySameName copies the subject into the issuer but signs with an unrelated key
	ForeignKeySameName
)

// Options describe the certificate to generate. Zero validity defaults to a
// window of one hour ago until ninety days from now.
type Options struct {
	NotBefore       time.Time
	NotAfter        time.Time
	CommonName      string
	Organization    []string
	DNSNames        []string
	URIs            []*url.URL
	IPAddresses     []net.IP
	ExtraExtensions []pkix.Extension
	Signer          Signer
	// Unparsable skips decoding the signed DER, for extensions crypto/x509
	// rejects. The returned Certificate then has a nil Cert.
	Unparsable bool
}

// Certificate bundles a generated leaf with its key material
type Certificate struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
	DER  []byte
}

// TLSCertificate returns the leaf as a tls.Certificate for test servers
func (c *Certificate) TLSCertificate() tls.Certificate {
	return tls.Certificate{
		Certificate: [][]byte{c.DER},
		PrivateKey:  c.Key,
		Leaf:        c.Cert,
	}
}

// New generates a certificate or fails the test
func New(t testing.TB, opts Options) *Certificate {
	t.Helper()

	key := newKey(t)

	notBefore := opts.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().Add(-time.Hour)
	}
	notAfter := opts.NotAfter
	if notAfter.IsZero() {
		notAfter = time.Now().Add(90 * 24 * time.Hour)
	}

	tmpl := &x509.Certificate{
		SerialNumber: newSerial(t),
		Subject: pkix.Name{
			CommonName:   opts.CommonName,
			Organization: opts.Organization,
		},
		NotBefore:       notBefore,
		NotAfter:        notAfter,
		KeyUsage:        x509.KeyUsageDigitalSignature,
		ExtKeyUsage:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:        opts.DNSNames,
		URIs:            opts.URIs,
		IPAddresses:     opts.IPAddresses,
		ExtraExtensions: opts.ExtraExtensions,
	}

	var parent *x509.Certificate
	var signer *ecdsa.PrivateKey
	switch opts.Signer {
	case SelfSigned:
		parent, signer = tmpl, key
	case ForeignKeySameName:
		foreign := *tmpl
		parent, signer = &foreign, newKey(t)
	default:
		parent, signer = newCA(t)
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, signer)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	if opts.Unparsable {
		return &Certificate{Key: key, DER: der}
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}

	return &Certificate{
		Cert: cert,
		Key:  key,
		DER:  der,
	}
}

func newCA(t testing.TB) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	key := newKey(t)
	tmpl := &x509.Certificate{
		SerialNumber: newSerial(t),
		Subject: pkix.Name{
			CommonName:   "certgen test ca",
			Organization: []string{"Certgen Test CA"},
		},
		NotBefore:             time.Now().Add(-24 * time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate(ca) error = %v", err)
	}
	ca, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate(ca) error = %v", err)
	}
	return ca, key
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return key
}

func newSerial(t testing.TB) *big.Int {
	t.Helper()
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	if err != nil {
		t.Fatalf("rand.Int() error = %v", err)
	}
	return serial
}
