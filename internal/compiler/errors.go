package compiler

import "fmt"

func errNodeNotFound(kind string, id NodeId) error {
	return fmt.Errorf("hir: no %s with id %d in map", kind, id)
}
