package imageconv

import (
	"testing"

	"go.uber.org/goleak"
)

// Пайплайн не должен оставлять горутины после Run.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
