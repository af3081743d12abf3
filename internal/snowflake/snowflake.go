package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init initializes the snowflake node with the given node ID.
// Node ID should be unique across all instances (0-1023).
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// NextID generates a new unique snowflake ID. Without a prior Init it uses
// node 0, which is enough for a single instance and for tests.
func NextID() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(0)
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
