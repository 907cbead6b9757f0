package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry creates transforms from string parameters, for command line use.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (ConfigTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("set_budget", createSetBudget)
	registry.Register("scale_budget", createScaleBudget)
	registry.Register("remove_budget", func(map[string]string) (ConfigTransform, error) { return &RemoveBudget{}, nil })
	registry.Register("set_horizon", createSetHorizon)
	registry.Register("set_discount_rate", createSetDiscountRate)
	registry.Register("set_goal", createSetGoal)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (ConfigTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}
	return factory(params)
}

// List returns the names of all registered transforms in sorted order.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "set_budget:amount=150000,type=hard"
func (r *TransformRegistry) ParseTransformSpec(spec string) (ConfigTransform, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	paramsStr = strings.TrimSpace(paramsStr)
	if name == "" {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	params := make(map[string]string)
	if paramsStr != "" {
		for _, pair := range strings.Split(paramsStr, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", pair)
			}
			params[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	return r.Create(name, params)
}

func createSetBudget(params map[string]string) (ConfigTransform, error) {
	amountStr, ok := params["amount"]
	if !ok {
		return nil, fmt.Errorf("set_budget requires 'amount' parameter")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount value: %w", err)
	}
	return &SetBudget{Amount: amount, Type: domain.BudgetType(params["type"])}, nil
}

func createScaleBudget(params map[string]string) (ConfigTransform, error) {
	percentStr, ok := params["percent"]
	if !ok {
		return nil, fmt.Errorf("scale_budget requires 'percent' parameter")
	}
	percent, err := strconv.ParseFloat(percentStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid percent value: %w", err)
	}
	return &ScaleBudget{Percent: percent}, nil
}

func createSetHorizon(params map[string]string) (ConfigTransform, error) {
	yearsStr, ok := params["years"]
	if !ok {
		return nil, fmt.Errorf("set_horizon requires 'years' parameter")
	}
	years, err := strconv.Atoi(yearsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid years value: %w", err)
	}
	return &SetHorizon{Years: years}, nil
}

func createSetDiscountRate(params map[string]string) (ConfigTransform, error) {
	rateStr, ok := params["rate"]
	if !ok {
		return nil, fmt.Errorf("set_discount_rate requires 'rate' parameter")
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %w", err)
	}
	return &SetDiscountRate{Rate: rate}, nil
}

func createSetGoal(params map[string]string) (ConfigTransform, error) {
	goal, ok := params["goal"]
	if !ok {
		return nil, fmt.Errorf("set_goal requires 'goal' parameter")
	}
	return &SetGoal{Goal: domain.OptimizationGoal(goal)}, nil
}
