package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

var testEnvDefaults = map[string]string{
	"JWT_SECRET":    "test-secret",
	"JWT_ALGORITHM": "HS256",
	"BCRYPT_COST":   "4",
}

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("ODYSSEY_TEST_MODE", "1")
		for k, v := range testEnvDefaults {
			if os.Getenv(k) == "" {
				_ = os.Setenv(k, v)
			}
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
