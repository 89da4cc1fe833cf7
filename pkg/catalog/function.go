// SPDX-License-Identifier: Apache-2.0

package catalog

// Parameter is a routine (function/procedure/aggregate) argument.
type Parameter struct {
	Name string
	Type string
	Mode string // IN, OUT, INOUT, VARIADIC
}

// Function is a CREATE FUNCTION object. Per spec.md §4.1's general rule,
// most Function fields are alterable in place (language, volatility,
// security, search_path, ...); the signature (Parameters, ReturnType) is
// not, since PostgreSQL identifies the function by its argument types.
type Function struct {
	StableID          StableID
	Schema            string
	Name              string
	Parameters        []Parameter
	ReturnType        string
	Language          string
	Definition        string
	Volatility        string // IMMUTABLE, STABLE, VOLATILE
	IsStrict          bool
	IsSecurityDefiner bool
	IsLeakproof       bool
	Parallel          string // SAFE, UNSAFE, RESTRICTED
	SearchPath        string
	Comment           string
	Owner             string
	Privileges        []Privilege
}

// ArgTypes returns the comma-joined input-parameter type list used to
// build the function's StableID, mirroring PostgreSQL's own
// disambiguation-by-signature rule.
func (f *Function) ArgTypes() string {
	return argTypes(f.Parameters)
}

func argTypes(params []Parameter) string {
	out := ""
	for i, p := range params {
		if p.Mode == "OUT" {
			continue
		}
		if out != "" {
			out += ","
		}
		out += p.Type
		_ = i
	}
	return out
}

func (f *Function) Equal(other *Function) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Language == other.Language &&
		f.Definition == other.Definition &&
		f.Volatility == other.Volatility &&
		f.IsStrict == other.IsStrict &&
		f.IsSecurityDefiner == other.IsSecurityDefiner &&
		f.IsLeakproof == other.IsLeakproof &&
		f.Parallel == other.Parallel &&
		f.SearchPath == other.SearchPath
}

// NonAlterableChanged reports whether the function's signature (argument
// types or return type) differs — the one non-alterable aspect of a
// function, forcing CREATE OR REPLACE to go through a drop+create pair
// instead of a plain body replace when PostgreSQL itself would reject
// CREATE OR REPLACE (return type / argument change).
func (f *Function) NonAlterableChanged(other *Function) bool {
	return f.ArgTypes() != other.ArgTypes() || f.ReturnType != other.ReturnType
}

// Procedure is a CREATE PROCEDURE object (no return type).
type Procedure struct {
	StableID          StableID
	Schema            string
	Name              string
	Parameters        []Parameter
	Language          string
	Definition        string
	IsSecurityDefiner bool
	SearchPath        string
	Comment           string
	Owner             string
	Privileges        []Privilege
}

func (p *Procedure) ArgTypes() string { return argTypes(p.Parameters) }

func (p *Procedure) Equal(other *Procedure) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Language == other.Language &&
		p.Definition == other.Definition &&
		p.IsSecurityDefiner == other.IsSecurityDefiner &&
		p.SearchPath == other.SearchPath
}

func (p *Procedure) NonAlterableChanged(other *Procedure) bool {
	return p.ArgTypes() != other.ArgTypes()
}

// Aggregate is a CREATE AGGREGATE object. Per spec.md §4.1's worked
// example, every field of an aggregate is non-alterable: transition,
// final, combine, serial/deserial functions, all state-data properties,
// the argument array, return type, parallel-safety, strictness, the
// hypothetical flag, and the sort operator. Any difference forces
// CreateAggregate(orReplace=true) rather than a targeted ALTER (S6).
type Aggregate struct {
	StableID           StableID
	Schema             string
	Name               string
	Parameters         []Parameter
	ReturnType          string
	TransitionFunction  string
	FinalFunction       string
	CombineFunction     string
	SerialFunction      string
	DeserialFunction    string
	StateType           string
	StateDataSize       int
	InitialCondition    string
	IsParallelSafe      bool
	IsStrict            bool
	Hypothetical        bool
	SortOperator        string
	Comment             string
	Owner               string
	Privileges          []Privilege
}

func (a *Aggregate) ArgTypes() string { return argTypes(a.Parameters) }

// Equal treats every field as part of identity, consistent with "every
// field is non-alterable" — there is no sub-ALTER path for aggregates at
// all, so Equal doubles as the non-alterable check (spec.md §4.1 step 4a).
func (a *Aggregate) Equal(other *Aggregate) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.ReturnType == other.ReturnType &&
		a.TransitionFunction == other.TransitionFunction &&
		a.FinalFunction == other.FinalFunction &&
		a.CombineFunction == other.CombineFunction &&
		a.SerialFunction == other.SerialFunction &&
		a.DeserialFunction == other.DeserialFunction &&
		a.StateType == other.StateType &&
		a.StateDataSize == other.StateDataSize &&
		a.InitialCondition == other.InitialCondition &&
		a.IsParallelSafe == other.IsParallelSafe &&
		a.IsStrict == other.IsStrict &&
		a.Hypothetical == other.Hypothetical &&
		a.SortOperator == other.SortOperator &&
		a.ArgTypes() == other.ArgTypes()
}
