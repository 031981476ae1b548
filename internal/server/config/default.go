package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "0.0.0.0:7890"

	DefaultSnapshotPath     = "data/todos.json"
	DefaultSnapshotInterval = 5 * time.Minute

	DefaultRateBurst = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
			RateBurst: DefaultRateBurst,
		},
		Storage: StorageSection{
			SnapshotPath:     DefaultSnapshotPath,
			SnapshotInterval: DefaultSnapshotInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
