package compiler

import (
	"fmt"

	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/numeric"
)

// genStmt lowers one statement. Any label(s) attached to s are bound to its
// start address first, so a goto targeting s resolves here regardless of
// which statement variant follows.
func (g *gen) genStmt(s ast.Stmt) error {
	if len(s.Labels()) > 0 {
		g.b.Label(s)
	}

	switch v := s.(type) {
	case *ast.CompoundStatement:
		return g.genCompound(v)
	case *ast.DeclarationStatement:
		return g.genDecl(v)
	case *ast.ExpressionStatement:
		return g.genExprStatement(v)
	case *ast.IfStatement:
		return g.genIf(v)
	case *ast.WhileStatement:
		return g.genWhile(v)
	case *ast.DoWhileStatement:
		return g.genDoWhile(v)
	case *ast.ForStatement:
		return g.genFor(v)
	case *ast.SwitchStatement:
		return fmt.Errorf("compiler: switch statement code generation is not implemented")
	case *ast.BreakStatement:
		return g.genBreak()
	case *ast.ContinueStatement:
		return g.genContinue()
	case *ast.ReturnStatement:
		return g.genReturn(v)
	case *ast.GotoStatement:
		g.b.Emit(Jump, Pending(v.Target))
		return nil
	default:
		return fmt.Errorf("compiler: unsupported statement node %T", s)
	}
}

func (g *gen) genCompound(c *ast.CompoundStatement) error {
	for _, s := range c.Statements {
		if err := g.genStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *gen) genDecl(d *ast.DeclarationStatement) error {
	for _, v := range d.Vars {
		g.allocLocal(v)
		if v.Init == nil {
			continue
		}
		if err := g.genExpr(v.Init); err != nil {
			return err
		}
		g.convertTop(numType(v.Init.ValueType()), numType(v.Type))
		if err := g.genVariableAddr(v); err != nil {
			return err
		}
		g.b.Emit(Store, Concrete(uint64(typeSize(v.Type))))
	}
	return nil
}

// exprResultSize is the number of bytes genExpr(e) leaves on the stack — 0
// for a call to a void function, since genCall does not read the return
// slot in that case.
func (g *gen) exprResultSize(e ast.Expr) int {
	if c, ok := e.(*ast.Call); ok {
		if ref, ok := c.Callee.(*ast.VariableRef); ok {
			if fn, ok := ref.Def.(*ast.FunctionDefinition); ok && g.isVoid(fn.ReturnType) {
				return 0
			}
		}
	}
	return typeSize(e.ValueType())
}

func (g *gen) genExprStatement(s *ast.ExpressionStatement) error {
	if err := g.genExpr(s.Expr); err != nil {
		return err
	}
	if size := g.exprResultSize(s.Expr); size > 0 {
		g.b.Emit(Pop, Concrete(uint64(size)))
	}
	return nil
}

func (g *gen) genIf(v *ast.IfStatement) error {
	if err := g.genCondition(v.Cond); err != nil {
		return err
	}
	elseKey := new(int)
	g.b.Emit(Jumpz, Pending(elseKey))
	if err := g.genStmt(v.Then); err != nil {
		return err
	}
	if v.Else == nil {
		g.b.Label(elseKey)
		return nil
	}
	endKey := new(int)
	g.b.Emit(Jump, Pending(endKey))
	g.b.Label(elseKey)
	if err := g.genStmt(v.Else); err != nil {
		return err
	}
	g.b.Label(endKey)
	return nil
}

func (g *gen) pushLoop(breakKey, continueKey any) {
	g.loopBreak = append(g.loopBreak, breakKey)
	g.loopContinue = append(g.loopContinue, continueKey)
}

func (g *gen) popLoop() {
	g.loopBreak = g.loopBreak[:len(g.loopBreak)-1]
	g.loopContinue = g.loopContinue[:len(g.loopContinue)-1]
}

func (g *gen) genWhile(v *ast.WhileStatement) error {
	startKey, endKey := new(int), new(int)
	g.b.Label(startKey)
	if err := g.genCondition(v.Cond); err != nil {
		return err
	}
	g.b.Emit(Jumpz, Pending(endKey))

	g.pushLoop(endKey, startKey)
	err := g.genStmt(v.Body)
	g.popLoop()
	if err != nil {
		return err
	}

	g.b.Emit(Jump, Pending(startKey))
	g.b.Label(endKey)
	return nil
}

func (g *gen) genDoWhile(v *ast.DoWhileStatement) error {
	startKey, continueKey, endKey := new(int), new(int), new(int)
	g.b.Label(startKey)

	g.pushLoop(endKey, continueKey)
	err := g.genStmt(v.Body)
	g.popLoop()
	if err != nil {
		return err
	}

	g.b.Label(continueKey)
	if err := g.genCondition(v.Cond); err != nil {
		return err
	}
	g.b.Emit(Jumpz, Pending(endKey))
	g.b.Emit(Jump, Pending(startKey))
	g.b.Label(endKey)
	return nil
}

func (g *gen) genFor(v *ast.ForStatement) error {
	if v.Init != nil {
		if err := g.genStmt(v.Init); err != nil {
			return err
		}
	}

	startKey, continueKey, endKey := new(int), new(int), new(int)
	g.b.Label(startKey)
	if v.Cond != nil {
		if err := g.genCondition(v.Cond); err != nil {
			return err
		}
		g.b.Emit(Jumpz, Pending(endKey))
	}

	g.pushLoop(endKey, continueKey)
	err := g.genStmt(v.Body)
	g.popLoop()
	if err != nil {
		return err
	}

	g.b.Label(continueKey)
	if v.Post != nil {
		if err := g.genExpr(v.Post); err != nil {
			return err
		}
		if size := g.exprResultSize(v.Post); size > 0 {
			g.b.Emit(Pop, Concrete(uint64(size)))
		}
	}
	g.b.Emit(Jump, Pending(startKey))
	g.b.Label(endKey)
	return nil
}

func (g *gen) genBreak() error {
	if len(g.loopBreak) == 0 {
		return fmt.Errorf("compiler: break outside of a loop")
	}
	g.b.Emit(Jump, Pending(g.loopBreak[len(g.loopBreak)-1]))
	return nil
}

func (g *gen) genContinue() error {
	if len(g.loopContinue) == 0 {
		return fmt.Errorf("compiler: continue outside of a loop")
	}
	g.b.Emit(Jump, Pending(g.loopContinue[len(g.loopContinue)-1]))
	return nil
}

func (g *gen) genReturn(v *ast.ReturnStatement) error {
	if v.Value != nil {
		if err := g.genExpr(v.Value); err != nil {
			return err
		}
		g.convertTop(numType(v.Value.ValueType()), numType(g.fn.ReturnType))
		g.b.Emit(LoadC[numeric.Uint16], Concrete(uint64(g.returnSlotAddr)))
		g.b.Emit(Store, Concrete(uint64(typeSize(g.fn.ReturnType))))
	}
	g.b.Emit(Return, Immediate{})
	return nil
}
