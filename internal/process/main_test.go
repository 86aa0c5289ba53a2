package process

import (
	"testing"

	"github.com/wagiedev/frame-pump-go/internal/proctest"
)

func TestMain(m *testing.M) {
	proctest.Main(m)
}
