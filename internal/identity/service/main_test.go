package service

import (
	"os"
	"testing"

	"github.com/revops/revenue-sync-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("debug")
	os.Exit(m.Run())
}
