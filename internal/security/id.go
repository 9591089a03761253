package security

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// IDGenerator produces opaque unique identifiers.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// NewIDGenerator returns a generator for scheme: uuid (default), ksuid or
// snowflake. node is only used by snowflake.
func NewIDGenerator(scheme string, node int64) (IDGenerator, error) {
	switch scheme {
	case "", "uuid":
		return IDFunc(func() string { return uuid.NewString() }), nil
	case "ksuid":
		return IDFunc(func() string { return ksuid.New().String() }), nil
	case "snowflake":
		n, err := snowflake.NewNode(node)
		if err != nil {
			return nil, fmt.Errorf("snowflake node %d: %w", node, err)
		}
		return IDFunc(func() string { return n.Generate().String() }), nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}
