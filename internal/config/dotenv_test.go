package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	for _, key := range []string{"APP_ENV", "DB_PATH", "CATALOG_PATH", "LOG_FORMAT", "STATIC_DIR"} {
		t.Setenv(key, "")
	}

	path := writeDotEnv(t, `
# local overrides

APP_ENV=production
export DB_PATH=/var/lib/estimator.db
CATALOG_PATH="catalog/pricing.yaml"
LOG_FORMAT=text # easier to read
STATIC_DIR='public'
`)
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	want := map[string]string{
		"APP_ENV":      "production",
		"DB_PATH":      "/var/lib/estimator.db",
		"CATALOG_PATH": "catalog/pricing.yaml",
		"LOG_FORMAT":   "text",
		"STATIC_DIR":   "public",
	}
	for key, value := range want {
		if got := os.Getenv(key); got != value {
			t.Fatalf("%s=%q, want %q", key, got, value)
		}
	}
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	if err := loadDotEnv(writeDotEnv(t, "PORT=8080\n")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("PORT"); got != "9090" {
		t.Fatalf("PORT=%q, want %q", got, "9090")
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
}

func TestParseDotEnvLine(t *testing.T) {
	cases := []struct {
		line      string
		key, want string
		ok        bool
	}{
		{line: "PORT=8080 # http port", key: "PORT", want: "8080", ok: true},
		{line: `CATALOG_PATH="pricing.yaml # not a comment"`, key: "CATALOG_PATH", want: "pricing.yaml # not a comment", ok: true},
		{line: "STATIC_DIR='web static'", key: "STATIC_DIR", want: "web static", ok: true},
		{line: "LOG_LEVEL=debug#verbose", key: "LOG_LEVEL", want: "debug#verbose", ok: true},
		{line: "  # indented comment", ok: false},
		{line: "=orphan", ok: false},
		{line: "no separator", ok: false},
	}

	for _, tc := range cases {
		k, v, ok := parseDotEnvLine(tc.line)
		if ok != tc.ok {
			t.Fatalf("parseDotEnvLine(%q) ok=%v, want %v", tc.line, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if k != tc.key || v != tc.want {
			t.Fatalf("parseDotEnvLine(%q) = %q=%q, want %q=%q", tc.line, k, v, tc.key, tc.want)
		}
	}
}
