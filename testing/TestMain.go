package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("PLANORA_TEST_MODE", "1")
		if os.Getenv("MASTER_ADMIN_ID") == "" {
			_ = os.Setenv("MASTER_ADMIN_ID", "test-master-admin")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
