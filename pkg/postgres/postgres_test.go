package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "u", Pass: "p", DB: "shop"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}
