package ast_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeDefineAndLookUp(t *testing.T) {
	global := ast.NewGlobalScope()
	intType, err := global.LookUp("int")
	require.NoError(t, err)

	local := ast.NewScope(global)
	v := ast.NewVariable("x", false, intType.(ast.VariableType), nil, token.Span{})
	require.NoError(t, local.Define(v))

	got, err := local.LookUp("x")
	require.NoError(t, err)
	assert.Same(t, v, got)

	// a name defined in the inner scope is not visible from the outer one
	_, err = global.LookUp("x")
	assert.Error(t, err)
}

func TestScopeCollision(t *testing.T) {
	s := ast.NewScope(nil)
	v1 := ast.NewVariable("x", false, nil, nil, token.Span{})
	v2 := ast.NewVariable("x", false, nil, nil, token.Span{})
	require.NoError(t, s.Define(v1))

	err := s.Define(v2)
	require.Error(t, err)
	var nameErr *ast.NameError
	require.ErrorAs(t, err, &nameErr)
	assert.True(t, nameErr.Collision)
	assert.Same(t, v1, nameErr.Existing)
}

func TestScopeUndefinedName(t *testing.T) {
	s := ast.NewScope(nil)
	_, err := s.LookUp("nope")
	require.Error(t, err)
	var nameErr *ast.NameError
	require.ErrorAs(t, err, &nameErr)
	assert.False(t, nameErr.Collision)
}

func TestBasicTypeConvertibility(t *testing.T) {
	global := ast.NewGlobalScope()
	intT, _ := global.LookUp("int")
	longT, _ := global.LookUp("long")
	floatT, _ := global.LookUp("float")

	assert.True(t, intT.(ast.VariableType).CanBeConvertedTo(intT.(ast.VariableType)))
	assert.True(t, intT.(ast.VariableType).CanBeConvertedTo(longT.(ast.VariableType)))
	assert.False(t, longT.(ast.VariableType).CanBeConvertedTo(intT.(ast.VariableType)))
	assert.False(t, intT.(ast.VariableType).CanBeConvertedTo(floatT.(ast.VariableType)))
}

func TestUnsignedVariantOf(t *testing.T) {
	global := ast.NewGlobalScope()
	intT, _ := global.LookUp("int")
	u := ast.UnsignedVariantOf(intT.(*ast.BasicType))
	assert.Equal(t, numeric.Uint32, u.Number)
}

func TestChildrenAndRecursiveChildren(t *testing.T) {
	lit := ast.NewNumberLiteral(numeric.FromInt64(numeric.Sint32, 0), token.Span{})
	ret := ast.NewReturnStatement(lit, token.Span{})
	body := ast.NewCompoundStatement(ast.NewScope(nil), []ast.Stmt{ret}, token.Span{})

	kids := ast.Children(body)
	require.Len(t, kids, 1)
	assert.Same(t, ast.Node(ret), kids[0])

	all := ast.RecursiveChildren(body)
	require.Len(t, all, 2)
	assert.Same(t, ast.Node(lit), all[1])
}

func TestParentsWalksToRoot(t *testing.T) {
	global := ast.NewGlobalScope()
	intT, _ := global.LookUp("int")

	lit := ast.NewNumberLiteral(numeric.FromInt64(numeric.Sint32, 0), token.Span{})
	ret := ast.NewReturnStatement(lit, token.Span{})
	body := ast.NewCompoundStatement(ast.NewScope(global), []ast.Stmt{ret}, token.Span{})
	fn := ast.NewFunctionDefinition("main", intT.(ast.VariableType), ast.NewScope(global), nil, token.Span{})
	fn.SetBody(body)
	prog := ast.NewProgram(global)
	prog.AddFunction(fn)

	parents := ast.Parents(lit)
	require.Len(t, parents, 4)
	assert.Same(t, ast.Node(ret), parents[0])
	assert.Same(t, ast.Node(body), parents[1])
	assert.Same(t, ast.Node(fn), parents[2])
	assert.Same(t, ast.Node(prog), parents[3])

	assert.Same(t, fn, ast.EnclosingFunction(lit))
}

func TestLabeledStatements(t *testing.T) {
	ret := ast.NewReturnStatement(nil, token.Span{})
	ast.AddLabel(ret, &ast.Label{Kind: ast.GotoLabel, Name: "a"})
	body := ast.NewCompoundStatement(ast.NewScope(nil), []ast.Stmt{ret}, token.Span{})

	labeled := ast.LabeledStatements(body)
	require.Len(t, labeled, 1)
	assert.Same(t, ast.Stmt(ret), labeled[0])
}

func TestPrintDoesNotPanic(t *testing.T) {
	lit := ast.NewNumberLiteral(numeric.FromInt64(numeric.Sint32, 42), token.Span{})
	ret := ast.NewReturnStatement(lit, token.Span{})
	out := ast.Print(ret)
	assert.Contains(t, out, "ReturnStatement")
}
