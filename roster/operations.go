package roster

import (
	"errors"
	"fmt"
)

var ErrUnknownOperation = errors.New("unknown roster operation")

type OpKind string

const (
	OpMove      OpKind = "move"
	OpSeparator OpKind = "separator"
)

// Operation is one edit submitted by an operator. For OpSeparator, Node may carry a
// client-side id; later operations in the same batch can refer to it.
type Operation struct {
	Op     OpKind `json:"op"`
	Node   string `json:"node,omitempty"`
	Before string `json:"before,omitempty"`
}

// Apply runs a batch of operations as one unit: if any operation fails, or the final
// layout changes the pool of a competitor with recorded bouts, the sequence is
// restored to its state before the batch.
func (s *Sequence) Apply(ops []Operation) error {
	saved := s.Nodes()
	aliases := make(map[string]string)
	resolve := func(id string) string {
		if real, ok := aliases[id]; ok {
			return real
		}
		return id
	}

	for i, op := range ops {
		var err error
		switch op.Op {
		case OpMove:
			err = s.Move(resolve(op.Node), resolve(op.Before))
		case OpSeparator:
			id := s.InsertSeparator()
			if op.Node != "" {
				aliases[op.Node] = id
			}
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownOperation, op.Op)
		}
		if err != nil {
			s.nodes = saved
			return fmt.Errorf("operation %d: %w", i+1, err)
		}
	}
	if err := s.CheckLocks(); err != nil {
		s.nodes = saved
		return err
	}
	return nil
}
