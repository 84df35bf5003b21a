package qrpayload

import (
	"errors"
	"testing"
)

func TestWiFiPayload(t *testing.T) {
	tests := []struct {
		name string
		wifi WiFi
		want string
	}{
		{
			"WPA network",
			WiFi{SSID: "HomeNet", Password: "secret", Auth: WiFiWPA},
			"WIFI:S:HomeNet;T:WPA;P:secret;H:false;;",
		},
		{
			"Open network",
			WiFi{SSID: "Cafe", Auth: WiFiNoPass},
			"WIFI:S:Cafe;T:nopass;P:;H:false;;",
		},
		{
			"Hidden network",
			WiFi{SSID: "HomeNet", Password: "secret", Auth: WiFiWEP, Hidden: true},
			"WIFI:S:HomeNet;T:WEP;P:secret;H:true;;",
		},
		{
			"Defaults to WPA",
			WiFi{SSID: "HomeNet", Password: "secret"},
			"WIFI:S:HomeNet;T:WPA;P:secret;H:false;;",
		},
		{
			"Escapes specials",
			WiFi{SSID: `Home;Net`, Password: `p:a,s"s\w`, Auth: WiFiWPA},
			`WIFI:S:Home\;Net;T:WPA;P:p\:a\,s\"s\\w;H:false;;`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.wifi.Payload(); got != tt.want {
				t.Errorf("Payload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	if got := Phone(" +49 151 12345678 "); got != "tel:+49 151 12345678" {
		t.Errorf("Phone() = %q", got)
	}
}

func TestSocial(t *testing.T) {
	tests := []struct {
		platform string
		username string
		want     string
	}{
		{"instagram", "velagio", "https://instagram.com/velagio"},
		{"Instagram", "@velagio", "https://instagram.com/velagio"},
		{"tiktok", "velagio", "https://tiktok.com/@velagio"},
		{"youtube", " velagio ", "https://youtube.com/@velagio"},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			got, err := Social(tt.platform, tt.username)
			if err != nil {
				t.Fatalf("Social() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Social() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSocial_UnknownPlatform(t *testing.T) {
	if _, err := Social("myspace", "velagio"); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("Social() error = %v, want ErrUnknownPlatform", err)
	}
}

func TestResolverURL(t *testing.T) {
	if got := ResolverURL("https://qr.example.com/", "AB12CD"); got != "https://qr.example.com/resolve?id=AB12CD" {
		t.Errorf("ResolverURL() = %q", got)
	}
}

func TestManageSyncURL(t *testing.T) {
	got := ManageSyncURL("https://qr.example.com", "abc+/=")
	want := "https://qr.example.com/manage?sync=abc%2B%2F%3D"
	if got != want {
		t.Errorf("ManageSyncURL() = %q, want %q", got, want)
	}
}

func TestValidateTargetURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"Valid https", "https://example.com/path?q=1", nil},
		{"Valid http", "http://example.com", nil},
		{"Empty", "", ErrEmptyContent},
		{"No scheme", "example.com", ErrInvalidURL},
		{"Wrong scheme", "ftp://example.com", ErrInvalidScheme},
		{"Javascript scheme", "javascript:alert(1)", ErrInvalidScheme},
		{"No host", "https:///path", ErrEmptyHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateTargetURL(tt.url); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTargetURL(%q) error = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
