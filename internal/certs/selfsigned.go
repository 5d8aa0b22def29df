package certs

import (
	"bytes"
	"crypto/x509"
)

// IsSelfSigned reports whether cert is issued by its own subject and its
// signature verifies against its own public key. Matching names without a
// valid self-signature are not enough.
func IsSelfSigned(cert *x509.Certificate) bool {
	if !bytes.Equal(cert.RawSubject, cert.RawIssuer) {
		return false
	}
	// CheckSignatureFrom would also enforce CA basic constraints, which most
	// self-signed leaf certificates do not carry.
	return cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}
