package environment

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type testConfig struct {
	Driver   string        `env:"STORE_DRIVER" default:"json"`
	Workers  int           `env:"WORKERS" default:"1"`
	Timeout  time.Duration `env:"TIMEOUT" default:"5s"`
	Debug    bool          `env:"DEBUG"`
	Origins  []string      `env:"ORIGINS" default:"a, b" separator:","`
	internal string        `env:"INTERNAL"`
	Untagged string
}

func TestParseEnvTags_Defaults(t *testing.T) {
	var cfg testConfig
	if err := ParseEnvTags("TEST", &cfg); err != nil {
		t.Fatalf("ParseEnvTags: %v", err)
	}

	want := testConfig{
		Driver:  "json",
		Workers: 1,
		Timeout: 5 * time.Second,
		Origins: []string{"a", "b"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestParseEnvTags_Overrides(t *testing.T) {
	t.Setenv("TEST_STORE_DRIVER", "postgres")
	t.Setenv("TEST_WORKERS", "3")
	t.Setenv("TEST_TIMEOUT", "250ms")
	t.Setenv("TEST_DEBUG", "true")

	var cfg testConfig
	if err := ParseEnvTags("TEST", &cfg); err != nil {
		t.Fatalf("ParseEnvTags: %v", err)
	}
	if cfg.Driver != "postgres" || cfg.Workers != 3 || cfg.Timeout != 250*time.Millisecond || !cfg.Debug {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestParseEnvTags_Required(t *testing.T) {
	var cfg struct {
		URL string `env:"URL" required:"true"`
	}
	if err := ParseEnvTags("TEST", &cfg); err == nil {
		t.Fatal("expected error for missing required variable")
	}
}

func TestParseEnvTags_BadInput(t *testing.T) {
	var notPtr testConfig
	if err := ParseEnvTags("", notPtr); err == nil {
		t.Error("expected error for non-pointer")
	}

	t.Setenv("TEST_WORKERS", "many")
	var cfg testConfig
	if err := ParseEnvTags("TEST", &cfg); err == nil {
		t.Error("expected error for unparsable int")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MINIMALTODO_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MINIMALTODO_TEST_KEY") })

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := GetEnvOrDefault("MINIMALTODO_TEST_KEY", ""); got != "from-file" {
		t.Errorf("got %q", got)
	}
	if got := GetPrefixEnvOrDefault("MINIMALTODO", "UNSET_KEY", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
}

func TestParseEnvTags_EmbeddedAndNumeric(t *testing.T) {
	type Base struct {
		Port string `env:"PORT" default:":8080"`
	}
	var cfg struct {
		Base
		Ratio float64 `env:"RATIO" default:"0.5"`
		Limit uint16  `env:"LIMIT" default:"10"`
	}
	t.Setenv("EMB_PORT", ":9090")

	if err := ParseEnvTags("EMB", &cfg); err != nil {
		t.Fatalf("ParseEnvTags: %v", err)
	}
	if cfg.Port != ":9090" || cfg.Ratio != 0.5 || cfg.Limit != 10 {
		t.Errorf("unexpected config %+v", cfg)
	}
}
