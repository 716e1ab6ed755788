package ast

import (
	"fmt"
	"strings"
)

// Print renders n as an indented textual tree, primarily useful in tests
// and debugging output; it is not used by the compiler itself.
func Print(n Node) string {
	var sb strings.Builder
	print1(&sb, n, 0)
	return sb.String()
}

func print1(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(describe(n))
	sb.WriteByte('\n')
	for _, c := range Children(n) {
		print1(sb, c, depth+1)
	}
}

func describe(n Node) string {
	switch v := n.(type) {
	case *Program:
		return "Program"
	case *Variable:
		return fmt.Sprintf("Variable %s: %s", v.Name(), typeName(v.Type))
	case *FunctionDefinition:
		return fmt.Sprintf("FunctionDefinition %s: %s", v.Name(), typeName(v.ReturnType))
	case *CompoundStatement:
		return "CompoundStatement"
	case *DeclarationStatement:
		return "DeclarationStatement"
	case *ExpressionStatement:
		return "ExpressionStatement"
	case *IfStatement:
		return "IfStatement"
	case *WhileStatement:
		return "WhileStatement"
	case *DoWhileStatement:
		return "DoWhileStatement"
	case *ForStatement:
		return "ForStatement"
	case *SwitchStatement:
		return "SwitchStatement"
	case *BreakStatement:
		return "BreakStatement"
	case *ContinueStatement:
		return "ContinueStatement"
	case *ReturnStatement:
		return "ReturnStatement"
	case *GotoStatement:
		return fmt.Sprintf("GotoStatement -> %s", v.Name)
	case *NumberLiteral:
		return fmt.Sprintf("NumberLiteral %s (%s)", formatNumber(v), typeName(v.valueType))
	case *StringLiteral:
		return fmt.Sprintf("StringLiteral %q", string(v.Value))
	case *VariableRef:
		return fmt.Sprintf("VariableRef %s", v.Name)
	case *UnaryOp:
		return fmt.Sprintf("UnaryOp %s postfix=%v", v.Op, v.Postfix)
	case *BinaryOp:
		return fmt.Sprintf("BinaryOp %s", v.Op)
	case *TernaryOp:
		return "TernaryOp"
	case *Call:
		return "Call"
	case *Subscript:
		return "Subscript"
	case *Cast:
		return fmt.Sprintf("Cast -> %s", typeName(v.Target))
	default:
		return fmt.Sprintf("%T", n)
	}
}

func typeName(t VariableType) string {
	if t == nil {
		return "?"
	}
	return t.Name()
}

func formatNumber(n *NumberLiteral) string {
	if n.Value.Type.IsFloat() {
		return fmt.Sprintf("%g", n.Value.Float64())
	}
	if n.Value.Type.IsSigned() {
		return fmt.Sprintf("%d", n.Value.Int64())
	}
	return fmt.Sprintf("%d", n.Value.Uint64())
}
