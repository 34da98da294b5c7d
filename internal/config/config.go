// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelPath points at the trained regression model artifact.
	ModelPath string `koanf:"model_path"`

	// EncodersPath points at the categorical encoder artifact.
	EncodersPath string `koanf:"encoders_path"`

	// CSVPath is the local result file, one row per estimate.
	CSVPath string `koanf:"csv_path"`

	// SessionDBPath is the SQLite file backing the session store.
	SessionDBPath string `koanf:"session_db_path"`

	// SessionCookie names the cookie carrying the opaque session token.
	SessionCookie string `koanf:"session_cookie"`

	// SpreadsheetID identifies the remote result spreadsheet.
	SpreadsheetID string `koanf:"spreadsheet_id"`

	// Worksheet selects the target worksheet; empty means the first one.
	Worksheet string `koanf:"worksheet"`

	// CredentialsPath is the service-account key file for the remote sink.
	CredentialsPath string `koanf:"credentials_path"`

	// SheetRateLimit caps remote sheet calls per second.
	SheetRateLimit int `koanf:"sheet_rate_limit"`

	// Plausibility-correction thresholds; see the estimate package.
	CorrectionMaxRatio    float64 `koanf:"correction_max_ratio"`
	CorrectionMinRatio    float64 `koanf:"correction_min_ratio"`
	CorrectionAbsoluteCap float64 `koanf:"correction_absolute_cap"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":8080",
		ModelPath:             "artifacts/model.json",
		EncodersPath:          "artifacts/encoders.json",
		CSVPath:               "hasil_prediksi.csv",
		SessionDBPath:         "sessions.db",
		SessionCookie:         "taksir_session",
		SpreadsheetID:         "",
		Worksheet:             "",
		CredentialsPath:       "credentials.json",
		SheetRateLimit:        2,
		CorrectionMaxRatio:    3.0,
		CorrectionMinRatio:    0.3,
		CorrectionAbsoluteCap: 100_000_000,
	}
}
