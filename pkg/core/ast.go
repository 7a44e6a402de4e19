package core

import "github.com/leapstack-labs/leapschema/pkg/token"

// Node is implemented by AST nodes that carry a source range.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a marker interface for expression nodes.
// Expressions carry no source positions.
type Expr interface {
	exprNode()
}

// TableSource is a node of the FROM-clause tree. The variant set is closed:
// every TableSource is either a *TableLeaf or a *JoinSource.
type TableSource interface {
	Node
	tableSourceNode()
}

// NodeInfo provides the source span for statements and table sources.
type NodeInfo struct {
	Span token.Span
}

// Pos implements Node.
func (n *NodeInfo) Pos() token.Position { return n.Span.Start }

// End implements Node.
func (n *NodeInfo) End() token.Position { return n.Span.End }

// SourceText returns the original text of a node given the script it was
// parsed from.
func SourceText(src string, n Node) string {
	return token.Span{Start: n.Pos(), End: n.End()}.Text(src)
}

// SetSpan records the node's source range.
func (n *NodeInfo) SetSpan(s token.Span) { n.Span = s }
