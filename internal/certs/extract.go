package certs

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"net/netip"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidCommonName              = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidOrganization            = asn1.ObjectIdentifier{2, 5, 4, 10}
	oidExtensionSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}
)

// GeneralName tags (context-specific, implicit) from RFC 5280 section 4.2.1.6
const (
	generalNameDNS = 2
	generalNameURI = 6
	generalNameIP  = 7
)

// Extractor pulls display fields out of a parsed certificate. Each field is
// extracted independently; a failure in one never prevents the others.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an Extractor. A nil logger discards diagnostics.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Issuer returns the issuer organization names joined with ","
func (e *Extractor) Issuer(cert *x509.Certificate) string {
	return e.joinAttributes(cert.Issuer.Names, oidOrganization, "issuer")
}

// Subject returns the subject common names joined with ","
func (e *Extractor) Subject(cert *x509.Certificate) string {
	return e.joinAttributes(cert.Subject.Names, oidCommonName, "subject")
}

func (e *Extractor) joinAttributes(names []pkix.AttributeTypeAndValue, oid asn1.ObjectIdentifier, field string) string {
	values := make([]string, 0, len(names))
	for _, atv := range names {
		if !atv.Type.Equal(oid) {
			continue
		}
		s, ok := atv.Value.(string)
		if !ok {
			e.logger.Error("failed to decode name attribute",
				zap.String("field", field),
				zap.String("oid", atv.Type.String()),
			)
			s = ""
		}
		values = append(values, s)
	}
	return strings.Join(values, ",")
}

// SANs returns the DNS, URI and IPv4 entries of the subject alternative name
// extension. It returns nil when the extension is missing or cannot be parsed.
func (e *Extractor) SANs(cert *x509.Certificate) []string {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidExtensionSubjectAltName) {
			continue
		}
		sans, err := ParseSubjectAltNames(ext.Value)
		if err != nil {
			e.logger.Debug("unreadable subject alternative name extension", zap.Error(err))
			return nil
		}
		return sans
	}
	return nil
}

// ParseSubjectAltNames decodes the DER value of a subject alternative name
// extension. Unsupported name forms and IP addresses that are not exactly four
// octets are skipped. The returned slice is never nil on success.
func ParseSubjectAltNames(der []byte) ([]string, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return nil, errors.New("invalid subject alternative names sequence")
	}
	if !input.Empty() {
		return nil, errors.New("trailing data after subject alternative names")
	}

	sans := make([]string, 0)
	for !seq.Empty() {
		var value cryptobyte.String
		var tag cbasn1.Tag
		if !seq.ReadAnyASN1(&value, &tag) {
			return nil, errors.New("invalid general name")
		}

		// constructed forms (otherName, directoryName, ...) fall through here
		switch tag {
		case cbasn1.Tag(generalNameDNS).ContextSpecific():
			sans = append(sans, string(value))
		case cbasn1.Tag(generalNameURI).ContextSpecific():
			sans = append(sans, string(value))
		case cbasn1.Tag(generalNameIP).ContextSpecific():
			if len(value) != 4 {
				continue
			}
			sans = append(sans, netip.AddrFrom4([4]byte{value[0], value[1], value[2], value[3]}).String())
		}
	}
	return sans, nil
}
