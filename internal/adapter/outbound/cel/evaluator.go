// Package cel provides CEL expression filtering for catalog products.
package cel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/alexwatever/wept/internal/domain/catalog"
)

// maxExpressionLength is the maximum allowed length for filter expressions.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit per evaluation.
const maxCostBudget = 100_000

// maxNestingDepth is the maximum parenthesis/bracket nesting depth.
const maxNestingDepth = 50

// evalTimeout bounds a single evaluation.
const evalTimeout = time.Second

// interruptCheckFreq is how often (in comprehension iterations) context cancellation is checked.
const interruptCheckFreq = 100

// Evaluator compiles and evaluates CEL expressions against products.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a new CEL evaluator with the product environment.
func NewEvaluator() (*Evaluator, error) {
	env, err := NewProductEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create product environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Compile parses and type-checks a CEL expression, returning a compiled program.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}

	prg, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
		cel.InterruptCheckFrequency(interruptCheckFreq),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}

	return prg, nil
}

// validateNesting checks that the expression does not exceed the maximum
// nesting depth for parentheses, brackets and braces.
func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}

// ValidateExpression checks that expr is valid and within the size limits.
func (e *Evaluator) ValidateExpression(expr string) error {
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}

	if expr == "" {
		return errors.New("expression is empty")
	}

	if err := validateNesting(expr); err != nil {
		return err
	}

	if _, err := e.Compile(expr); err != nil {
		return fmt.Errorf("invalid CEL expression: %w", err)
	}

	return nil
}

// Evaluate runs a compiled program against p.
func (e *Evaluator) Evaluate(ctx context.Context, prg cel.Program, p catalog.Product) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	result, _, err := prg.ContextEval(ctx, BuildProductActivation(p))
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}

	b, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}
	return b, nil
}

// ProductFilter is a compiled product filter expression.
type ProductFilter struct {
	expr string
	eval *Evaluator
	prg  cel.Program
}

// NewProductFilter validates and compiles expr.
func NewProductFilter(expr string) (*ProductFilter, error) {
	eval, err := NewEvaluator()
	if err != nil {
		return nil, err
	}
	if err := eval.ValidateExpression(expr); err != nil {
		return nil, err
	}
	prg, err := eval.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ProductFilter{expr: expr, eval: eval, prg: prg}, nil
}

// String returns the source expression.
func (f *ProductFilter) String() string { return f.expr }

// Match reports whether p satisfies the filter.
func (f *ProductFilter) Match(ctx context.Context, p catalog.Product) (bool, error) {
	return f.eval.Evaluate(ctx, f.prg, p)
}

// Filter returns the products that satisfy the filter, in input order.
func (f *ProductFilter) Filter(ctx context.Context, products []catalog.Product) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		ok, err := f.Match(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("filter %q on %s: %w", f.expr, p.Key(), err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
