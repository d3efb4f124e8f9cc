package realtime

import (
	"os"
	"testing"

	"github.com/Xantonozar/billkhata-go/logger"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}
