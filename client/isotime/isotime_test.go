package isotime_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/forkwallet/netclient/client/isotime"
)

func TestParse(t *testing.T) {
	testCases := map[string]struct {
		in     string
		exp    time.Time
		expErr bool
	}{
		"fractional": {
			in:  "2023-05-01T12:00:00.123+00:00",
			exp: time.Date(2023, 5, 1, 12, 0, 0, 123_000_000, time.UTC),
		},
		"seconds": {
			in:  "2023-05-01T12:00:00+00:00",
			exp: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		"zulu": {
			in:  "2023-05-01T12:00:00Z",
			exp: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		"offset": {
			in:  "2023-05-01T15:00:00.500+03:00",
			exp: time.Date(2023, 5, 1, 12, 0, 0, 500_000_000, time.UTC),
		},
		"dateOnly": {
			in:     "2023-05-01",
			expErr: true,
		},
		"noZone": {
			in:     "2023-05-01T12:00:00",
			expErr: true,
		},
		"empty": {
			expErr: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := isotime.Parse(tc.in)
			if tc.expErr {
				if !errors.Is(err, isotime.ErrInvalidTimestamp) {
					t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.exp) {
				t.Errorf("got %v, want %v", got, tc.exp)
			}
		})
	}
}

func TestTime_JSON(t *testing.T) {
	var v struct {
		Created isotime.Time  `json:"created"`
		Updated isotime.Time  `json:"updated"`
		Deleted *isotime.Time `json:"deleted"`
	}

	in := `{"created":"2023-05-01T12:00:00.123+00:00","updated":"2023-05-01T12:00:00+00:00","deleted":null}`
	if err := json.Unmarshal([]byte(in), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Created.Nanosecond() != 123_000_000 {
		t.Errorf("created = %v", v.Created)
	}
	if v.Updated.Second() != 0 || v.Updated.IsZero() {
		t.Errorf("updated = %v", v.Updated)
	}
	if v.Deleted != nil {
		t.Errorf("deleted = %v, want nil", v.Deleted)
	}

	out, err := json.Marshal(v.Created)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2023-05-01T12:00:00.123Z"` {
		t.Errorf("marshal = %s", out)
	}
}

func TestTime_JSONRejects(t *testing.T) {
	for _, in := range []string{`"2023-05-01"`, `12345`} {
		var v isotime.Time
		if err := json.Unmarshal([]byte(in), &v); !errors.Is(err, isotime.ErrInvalidTimestamp) {
			t.Errorf("%s: expected ErrInvalidTimestamp, got %v", in, err)
		}
	}
}
