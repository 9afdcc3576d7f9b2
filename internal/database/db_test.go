package database

import (
	"strings"
	"testing"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("app", "s3cret", "db.local", "3306", "messaging")
	if !strings.HasPrefix(dsn, "app:s3cret@tcp(db.local:3306)/messaging?") {
		t.Errorf("unexpected DSN prefix: %s", dsn)
	}
	for _, p := range []string{"parseTime=true", "loc=UTC", "clientFoundRows=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, p) {
			t.Errorf("DSN missing %s: %s", p, dsn)
		}
	}
}

func TestBuildDSN_emptyPassword(t *testing.T) {
	dsn := buildDSN("app", "", "localhost", "3306", "messaging")
	if !strings.HasPrefix(dsn, "app@tcp(localhost:3306)/messaging?") {
		t.Errorf("password-less DSN should omit the colon: %s", dsn)
	}
}
