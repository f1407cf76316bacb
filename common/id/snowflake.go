package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	initErr error
	once    sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has any effect; later calls report its error.
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New generates a time-ordered id used to correlate the logs of one sync run.
// Falls back to node 0 when Init was never called (tests, one-shot CLI runs).
func New() int64 {
	if err := Init(0); err != nil {
		panic(fmt.Sprintf("id: snowflake node not initialized: %v", err))
	}
	return node.Generate().Int64()
}
