package types

import "testing"

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		config Config
		want   error
	}{
		{"empty backend", Config{}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "redis"}, ErrBackendUnknown},
		{"sqlite ok", Config{Backend: BackendSQLite, DataDir: "/tmp/x"}, nil},
		{"server missing base url", Config{Backend: BackendServer}, ErrBaseURLEmpty},
		{"server ok", Config{Backend: BackendServer, BaseURL: "http://localhost:3000"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.config.Validate(); err != tc.want {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}
