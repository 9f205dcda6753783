package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PLANORA_TEST_MODE") == "" {
			_ = os.Setenv("PLANORA_TEST_MODE", "1")
		}
	})
}
