// Package device describes the running client to the backend through a
// fixed set of outbound headers.
package device

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/forkwallet/netclient/internal/validate"
)

// Header names sent with every request.
const (
	HeaderDeviceID        = "x-device-id"
	HeaderOS              = "x-device-operating-system"
	HeaderOSVersion       = "x-device-operating-system-version"
	HeaderAppVersion      = "x-app-version"
	HeaderClientRequestID = "x-ime-client-request-id"
	HeaderAcceptLanguage  = "accept-language"
)

// Info identifies the device and app build issuing requests.
type Info struct {
	DeviceID   string `json:"deviceId" validate:"required"`
	OS         string `json:"os" validate:"required"`
	OSVersion  string `json:"osVersion" validate:"required"`
	AppVersion string `json:"appVersion" validate:"required"`
	Locale     string `json:"locale" validate:"required"`

	// LocaleFunc, when set and returning a non-empty value, overrides
	// Locale. The interface language may change while the client lives.
	LocaleFunc func() string `json:"-"`
}

// Detect fills an Info from the runtime environment.
func Detect(appVersion string) Info {
	if appVersion == "" {
		appVersion = "unknown"
	}

	return Info{
		DeviceID:   deviceID(),
		OS:         strings.ToUpper(runtime.GOOS),
		OSVersion:  runtime.Version(),
		AppVersion: appVersion,
		Locale:     locale(),
	}
}

// Validate reports missing fields.
func (i Info) Validate() error {
	if err := validate.Check(i); err != nil {
		return fmt.Errorf("device info: %w", err)
	}
	return nil
}

// Headers returns the environment headers. A fresh request id is generated
// on every call.
func (i Info) Headers() http.Header {
	lang := i.Locale
	if i.LocaleFunc != nil {
		if l := i.LocaleFunc(); l != "" {
			lang = l
		}
	}

	h := make(http.Header, 6)
	h.Set(HeaderDeviceID, i.DeviceID)
	h.Set(HeaderOS, i.OS)
	h.Set(HeaderOSVersion, i.OSVersion)
	h.Set(HeaderAppVersion, i.AppVersion)
	h.Set(HeaderClientRequestID, strings.ToUpper(uuid.NewString()))
	h.Set(HeaderAcceptLanguage, lang)

	return h
}

// deviceID derives a stable id from the host name, falling back to a random one.
func deviceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return strings.ToUpper(uuid.NewString())
	}
	return strings.ToUpper(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(host)).String())
}

// locale extracts the language code from LANG, e.g. "en_US.UTF-8" -> "en".
func locale() string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, "_.@"); i > 0 {
			v = v[:i]
		}
		return strings.ToLower(v)
	}
	return "en"
}
