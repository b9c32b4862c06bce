package geo

import "testing"

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func TestClassifier_Country_NoDatabase(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for _, addr := range []string{"8.8.8.8", "not-an-ip", "", "127.0.0.1", "10.0.0.1:443"} {
		if got := c.Country(addr); got != UnknownCountry {
			t.Errorf("Country(%q) = %q, want %q", addr, got, UnknownCountry)
		}
	}
}

func TestClassifier_Device_FamilyFromSignature(t *testing.T) {
	c, _ := New("")

	if got := c.Device(iphoneUA, ""); got != "iPhone" {
		t.Fatalf("Device(iphone) = %q, want iPhone", got)
	}
}

func TestClassifier_Device_PlatformHintFallback(t *testing.T) {
	c, _ := New("")

	// Desktop agents carry no device family; the client hint wins and its
	// surrounding quotes are stripped.
	if got := c.Device(desktopUA, `"Windows"`); got != "Windows" {
		t.Fatalf("Device(desktop, hint) = %q, want Windows", got)
	}

	if got := c.Device(desktopUA, ""); got != OtherDevice {
		t.Fatalf("Device(desktop, no hint) = %q, want %q", got, OtherDevice)
	}
}

func TestClassifier_Device_NeverEmpty(t *testing.T) {
	c, _ := New("")

	if got := c.Device("", ""); got == "" {
		t.Fatal("Device returned empty class for empty signature")
	}
	if got := c.Device("", `"macOS"`); got != "macOS" {
		t.Fatalf("Device(empty, hint) = %q, want macOS", got)
	}
}
