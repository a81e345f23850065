package tree

import "errors"

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

var (
	ErrEmptyTree        = errors.New("[rbtree] empty tree")
	ErrEraseEnd         = errors.New("[rbtree] erase the end iterator")
	ErrForeignIterator  = errors.New("[rbtree] iterator belongs to another tree")
	errRedViolation     = errors.New("[rbtree] red violation")
	errBlackViolation   = errors.New("[rbtree] black violation")
	errOrderViolation   = errors.New("[rbtree] order violation")
	errExtremeViolation = errors.New("[rbtree] extremal node violation")
)

// RBNode is the read-only view of a tree node. The sentinel header is
// never exposed, the root's parent is nil.
type RBNode[V any] interface {
	Val() V
	Color() RBColor
	Left() RBNode[V]
	Right() RBNode[V]
	Parent() RBNode[V]
}
