package expression

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine is a wrapper around expr-lang/expr used to evaluate routing-rule
// conditions against lead fields. Compiled programs are cached by source.
type Engine struct {
	programCache map[string]*vm.Program
	mu           sync.RWMutex
}

// NewEngine creates a new expression engine
func NewEngine() *Engine {
	return &Engine{
		programCache: make(map[string]*vm.Program),
	}
}

// EvaluateCondition compiles (if needed) and runs a boolean expression against
// the given environment. Non-boolean results are an error, not a truthy guess.
func (e *Engine) EvaluateCondition(expression string, env map[string]interface{}) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, fmt.Errorf("empty condition expression")
	}

	program, err := e.getProgram(expression)
	if err != nil {
		return false, err
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not evaluate to a boolean (got %T)", expression, output)
	}
	return result, nil
}

// Validate compiles the expression without running it
func (e *Engine) Validate(expression string) error {
	_, err := e.getProgram(expression)
	return err
}

func (e *Engine) getProgram(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if prog, ok := e.programCache[expression]; ok {
		return prog, nil
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("failed to compile condition %q: %w", expression, err)
	}

	e.programCache[expression] = program
	return program, nil
}
