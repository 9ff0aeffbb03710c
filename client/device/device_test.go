package device_test

import (
	"testing"

	"github.com/forkwallet/netclient/client/device"
	"github.com/forkwallet/netclient/internal/validate"
)

func testInfo() device.Info {
	return device.Info{
		DeviceID:   "DEVICE-1",
		OS:         "IOS",
		OSVersion:  "17.2",
		AppVersion: "1.4.0",
		Locale:     "en",
	}
}

func TestInfo_Headers(t *testing.T) {
	h := testInfo().Headers()

	exp := map[string]string{
		device.HeaderDeviceID:       "DEVICE-1",
		device.HeaderOS:             "IOS",
		device.HeaderOSVersion:      "17.2",
		device.HeaderAppVersion:     "1.4.0",
		device.HeaderAcceptLanguage: "en",
	}
	for k, v := range exp {
		if got := h.Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
	if h.Get(device.HeaderClientRequestID) == "" {
		t.Error("expected a client request id")
	}
}

func TestInfo_HeadersFreshRequestID(t *testing.T) {
	info := testInfo()
	a := info.Headers().Get(device.HeaderClientRequestID)
	b := info.Headers().Get(device.HeaderClientRequestID)
	if a == b {
		t.Fatalf("expected distinct request ids, got %q twice", a)
	}
}

func TestInfo_LocaleFunc(t *testing.T) {
	testCases := map[string]struct {
		fn  func() string
		exp string
	}{
		"override":    {fn: func() string { return "ru" }, exp: "ru"},
		"emptyIgnore": {fn: func() string { return "" }, exp: "en"},
		"unset":       {exp: "en"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			info := testInfo()
			info.LocaleFunc = tc.fn
			if got := info.Headers().Get(device.HeaderAcceptLanguage); got != tc.exp {
				t.Errorf("accept-language = %q, want %q", got, tc.exp)
			}
		})
	}
}

func TestInfo_Validate(t *testing.T) {
	if err := testInfo().Validate(); err != nil {
		t.Fatalf("expected valid info, got %v", err)
	}

	info := testInfo()
	info.AppVersion = ""
	err := info.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := validate.GetFieldErrors(err).Fields()["appVersion"]; !ok {
		t.Errorf("expected appVersion field error, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "de_DE.UTF-8")

	info := device.Detect("")
	if err := info.Validate(); err != nil {
		t.Fatalf("detected info should be valid: %v", err)
	}
	if info.Locale != "de" {
		t.Errorf("locale = %q, want de", info.Locale)
	}
	if info.AppVersion != "unknown" {
		t.Errorf("app version = %q, want unknown", info.AppVersion)
	}
	if again := device.Detect("1.0"); again.DeviceID != info.DeviceID {
		t.Errorf("device id not stable: %q vs %q", info.DeviceID, again.DeviceID)
	}
}
