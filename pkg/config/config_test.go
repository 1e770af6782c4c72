package config

import "testing"

func TestDBConfigValidate(t *testing.T) {
	valid := DBConfig{Driver: DBDriverSQLite, DSN: "clinic.db"}
	if err := valid.validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	unknown := DBConfig{Driver: "mysql", DSN: "x"}
	if err := unknown.validate(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}

	empty := DBConfig{Driver: DBDriverPostgres}
	if err := empty.validate(); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestAllowedOrigins(t *testing.T) {
	app := AppConfig{CORSOrigins: "http://localhost:5173, https://clinic.example.com ,"}
	origins := app.AllowedOrigins()
	if len(origins) != 2 {
		t.Fatalf("expected 2 origins, got %v", origins)
	}
	if origins[0] != "http://localhost:5173" || origins[1] != "https://clinic.example.com" {
		t.Fatalf("unexpected origins %v", origins)
	}
}

func TestRedisEnabled(t *testing.T) {
	if (RedisConfig{}).Enabled() {
		t.Fatal("expected redis disabled without url")
	}
	if !(RedisConfig{URL: "redis://localhost:6379"}).Enabled() {
		t.Fatal("expected redis enabled with url")
	}
}
