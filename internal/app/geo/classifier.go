// Package geo classifies raw request metadata into the coarse dimensions the
// analytics engine aggregates on: an ISO country code and a device class.
package geo

import (
	"fmt"
	"net"
	"strings"

	"github.com/mileusna/useragent"
	"github.com/oschwald/geoip2-golang"
)

// UnknownCountry is the sentinel for any address that cannot be resolved.
const UnknownCountry = "Unknown"

// OtherDevice is the generic placeholder device class; the platform hint
// substitutes it when supplied.
const OtherDevice = "Other"

// Classifier maps raw request metadata to attribution dimensions. Both
// methods are pure lookups: they never fail, never block on the network, and
// degrade to sentinel values instead of erroring.
type Classifier interface {
	Country(addr string) string
	Device(signature, platformHint string) string
}

type classifier struct {
	reader *geoip2.Reader
}

// New opens the MaxMind country database at dbPath. An empty path yields a
// classifier whose Country always reports UnknownCountry, so the service can
// boot without a database file.
func New(dbPath string) (Classifier, error) {
	if dbPath == "" {
		return &classifier{}, nil
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("geo: open database: %w", err)
	}
	return &classifier{reader: reader}, nil
}

func (c *classifier) Country(addr string) string {
	if c.reader == nil {
		return UnknownCountry
	}

	// Addresses may arrive as host:port from proxies.
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	ip := net.ParseIP(addr)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return UnknownCountry
	}

	record, err := c.reader.Country(ip)
	if err != nil || record.Country.IsoCode == "" {
		return UnknownCountry
	}
	return record.Country.IsoCode
}

func (c *classifier) Device(signature, platformHint string) string {
	ua := useragent.Parse(signature)

	device := ua.Device
	if device == "" {
		switch {
		case ua.Mobile:
			device = "Mobile"
		case ua.Tablet:
			device = "Tablet"
		case ua.Bot:
			device = "Bot"
		default:
			device = OtherDevice
		}
	}

	// Desktop agents rarely carry a device family; the client-hint platform
	// (e.g. `"Windows"`, quotes included) is the better label when present.
	if device == OtherDevice && platformHint != "" {
		device = platformHint
	}

	return strings.ReplaceAll(device, `"`, "")
}
