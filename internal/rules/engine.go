// Package rules provides the CEL-Go based input constraint engine.
package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/opensource-finance/retention/internal/domain"
)

// Constraint is a boolean CEL expression a record must satisfy.
type Constraint struct {
	ID         string `json:"id"`
	Field      string `json:"field"`
	Expression string `json:"expression"`
	Message    string `json:"message"`
}

// CompiledConstraint holds a pre-compiled CEL program.
type CompiledConstraint struct {
	Constraint Constraint
	Program    cel.Program
}

// Engine checks customer records against compiled constraints.
// Constraints are evaluated in load order; all violations are reported.
type Engine struct {
	mu          sync.RWMutex
	env         *cel.Env
	constraints []*CompiledConstraint
}

// NewEngine creates a constraint engine with the customer record variables.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("recency", cel.IntType),
		cel.Variable("total_spending", cel.DoubleType),
		cel.Variable("num_web_purchases", cel.IntType),
		cel.Variable("num_store_purchases", cel.IntType),
		cel.Variable("num_catalog_purchases", cel.IntType),
		cel.Variable("num_deals_purchases", cel.IntType),
		cel.Variable("num_web_visits_month", cel.IntType),
		cel.Variable("income", cel.DoubleType),
		cel.Variable("age", cel.IntType),
		cel.Variable("total_purchases", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// NewDefaultEngine creates an engine loaded with DefaultConstraints.
func NewDefaultEngine() (*Engine, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}
	if err := engine.LoadConstraints(DefaultConstraints()); err != nil {
		return nil, err
	}
	return engine, nil
}

// LoadConstraints compiles and replaces the loaded constraints. Nothing is
// replaced if any constraint fails to compile.
func (e *Engine) LoadConstraints(constraints []Constraint) error {
	compiled := make([]*CompiledConstraint, 0, len(constraints))
	for _, c := range constraints {
		cc, err := e.compile(c)
		if err != nil {
			return err
		}
		compiled = append(compiled, cc)
	}

	e.mu.Lock()
	e.constraints = compiled
	e.mu.Unlock()
	return nil
}

// Constraints returns the loaded constraint definitions.
func (e *Engine) Constraints() []Constraint {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Constraint, 0, len(e.constraints))
	for _, cc := range e.constraints {
		out = append(out, cc.Constraint)
	}
	return out
}

// Check evaluates every constraint. It returns a *domain.ConstraintError
// listing all violations, or nil when the record is acceptable.
func (e *Engine) Check(rec domain.CustomerRecord) error {
	e.mu.RLock()
	constraints := e.constraints
	e.mu.RUnlock()

	activation := activationFor(rec)

	var violations []domain.ConstraintViolation
	for _, cc := range constraints {
		out, _, err := cc.Program.Eval(activation)
		if err != nil {
			return fmt.Errorf("constraint %s: evaluation error: %w", cc.Constraint.ID, err)
		}
		if out == types.True {
			continue
		}
		violations = append(violations, domain.ConstraintViolation{
			Field:   cc.Constraint.Field,
			Rule:    cc.Constraint.Expression,
			Message: cc.Constraint.Message,
		})
	}

	if len(violations) > 0 {
		return &domain.ConstraintError{Violations: violations}
	}
	return nil
}

func (e *Engine) compile(c Constraint) (*CompiledConstraint, error) {
	ast, issues := e.env.Compile(c.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile constraint %s: %w", c.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("constraint %s: expression must return bool, got %s", c.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for constraint %s: %w", c.ID, err)
	}

	return &CompiledConstraint{Constraint: c, Program: program}, nil
}

func activationFor(rec domain.CustomerRecord) map[string]any {
	return map[string]any{
		"recency":               int64(rec.Recency),
		"total_spending":        rec.TotalSpending,
		"num_web_purchases":     int64(rec.NumWebPurchases),
		"num_store_purchases":   int64(rec.NumStorePurchases),
		"num_catalog_purchases": int64(rec.NumCatalogPurchases),
		"num_deals_purchases":   int64(rec.NumDealsPurchases),
		"num_web_visits_month":  int64(rec.NumWebVisitsMonth),
		"income":                rec.Income,
		"age":                   int64(rec.Age),
		"total_purchases":       int64(rec.TotalPurchases()),
	}
}
