// Package idgen builds entity identifiers of the form
// {prefix}_{snowflake}_{suffix}. The snowflake part is time ordered per node,
// the suffix is nine random hex characters. Two terminals sharing a node id
// could in theory collide; collisions are not detected or resolved.
package idgen

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	PrefixProduct     = "prod"
	PrefixCategory    = "cat"
	PrefixTransaction = "txn"

	suffixLen = 9
)

type Generator struct {
	node *snowflake.Node
}

// New returns a generator for the given terminal node (0-1023).
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

func (g *Generator) Next(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
	return fmt.Sprintf("%s_%s_%s", prefix, g.node.Generate().String(), suffix)
}
