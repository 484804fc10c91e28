package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/printsink/reactor"
)

func TestConnTable_Lifecycle(t *testing.T) {
	table := newConnTable()
	conn := &reactor.Conn{}
	table.insert(conn, time.Now())
	fd := conn.Fd()

	table.appendData(fd, []byte("AB"))
	table.appendData(fd, []byte("CD"))
	table.appendData(fd+1000, []byte("ignored"))

	p, ok := table.get(fd)
	require.True(t, ok)
	assert.Equal(t, "ABCD", string(p.data))
	assert.Equal(t, []int{fd}, table.fds())

	_, ok = table.remove(fd)
	assert.True(t, ok)
	_, ok = table.remove(fd)
	assert.False(t, ok, "removal happens once")
	assert.Equal(t, 0, table.len())
}
