package dig_container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/classsync/apps/api/echo"
	"github.com/trezcool/classsync/core"
)

func TestNew_memoryEngine(t *testing.T) {
	t.Setenv("ENV", "TEST")

	c := New()
	err := c.Invoke(func(conf *core.Config, server *echoapi.Server, closer StoreCloser) {
		assert.Equal(t, engineMemory, conf.Database.Engine)
		assert.NotNil(t, server)
		closer()
	})
	require.NoError(t, err)
}
