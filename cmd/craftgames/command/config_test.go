package command

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg    Config
		expErr string
	}{
		"valid": {
			cfg: Config{DataFolder: "data", WorldContainer: "worlds"},
		},
		"valid with nats listener": {
			cfg: Config{DataFolder: "data", WorldContainer: "worlds", Nats: NatsConfig{Port: 4222, StartTimeout: "5s"}},
		},
		"missing data folder": {
			cfg:    Config{WorldContainer: "worlds"},
			expErr: "data_folder is required",
		},
		"missing world container": {
			cfg:    Config{DataFolder: "data"},
			expErr: "world_container is required",
		},
		"bad timeout": {
			cfg:    Config{DataFolder: "data", WorldContainer: "worlds", Nats: NatsConfig{StartTimeout: "soon"}},
			expErr: "parsing nats.start_timeout",
		},
		"bad port": {
			cfg:    Config{DataFolder: "data", WorldContainer: "worlds", Nats: NatsConfig{Port: 70000}},
			expErr: "nats.port must be between",
		},
		"negative width": {
			cfg:    Config{DataFolder: "data", WorldContainer: "worlds", Console: ConsoleConfig{Width: -1}},
			expErr: "width must not be negative",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
