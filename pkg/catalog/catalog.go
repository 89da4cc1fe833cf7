// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the typed, immutable snapshot of a PostgreSQL
// database that the rest of pgdiff operates on: schemas, relations,
// routines, and the other object kinds listed in spec.md §3, plus the flat
// dependency edge list the resolver consumes.
//
// Catalog values are never mutated after construction — the catalog
// extractor (external to this module, spec.md §1) builds one, and
// everything downstream (differ, resolver, exporter) treats it as a
// read-only value.
package catalog

// DepType is the PostgreSQL pg_depend dependency type of an edge.
type DepType string

const (
	DepTypeNormal   DepType = "n"
	DepTypeAuto     DepType = "a"
	DepTypeInternal DepType = "i"
	DepTypeExtension DepType = "e"
	DepTypePartition DepType = "p"
)

// DependencyEdge is one entry of Catalog.Depends: dependent requires
// referenced to exist, with PostgreSQL's own classification of why.
type DependencyEdge struct {
	Dependent  StableID
	Referenced StableID
	DepType    DepType
}

// DefaultPrivilegeState answers "what privileges would a newly created
// object of this kind, in this schema, receive by default" — the join of
// ALTER DEFAULT PRIVILEGES entries recorded for the acting user with
// PostgreSQL's built-in PUBLIC defaults (EXECUTE on routines, USAGE on
// types and domains; no built-in default is modelled for languages).
// Used by the privilege sub-diff (spec.md
// §4.1.2) to avoid emitting spurious grants for newly created objects.
type DefaultPrivilegeState struct {
	Entries []DefaultPrivilege
}

// EffectiveDefaults returns the privileges a new object of objType created
// by user in schema would receive absent any explicit GRANT/REVOKE.
func (d *DefaultPrivilegeState) EffectiveDefaults(user, objType, schema string) []Privilege {
	var out []Privilege
	for _, e := range d.Entries {
		if e.Grantor != user || e.ObjectType != objType {
			continue
		}
		if e.Scope != "" && e.Scope != schema {
			continue
		}
		for _, p := range e.Privileges {
			out = append(out, p)
		}
	}
	out = append(out, builtinPublicDefaults(objType)...)
	return out
}

// builtinPublicDefaults returns PostgreSQL's hardcoded PUBLIC default
// privileges that are not recorded as ALTER DEFAULT PRIVILEGES entries:
// EXECUTE on routines (functions, procedures, aggregates), USAGE on
// domains, enum and range types, and composite types (spec.md §4.1.2).
// objType uses the same keyword ALTER DEFAULT PRIVILEGES itself accepts
// (ROUTINES, TYPES, ...), so a caller can pass the same string to both
// this function (via EffectiveDefaults) and a DefaultPrivilege.ObjectType
// comparison.
func builtinPublicDefaults(objType string) []Privilege {
	switch objType {
	case "ROUTINES":
		return []Privilege{{Grantee: "PUBLIC", Privilege: PrivilegeExecute, Grantable: false}}
	case "TYPES":
		return []Privilege{{Grantee: "PUBLIC", Privilege: PrivilegeUsage, Grantable: false}}
	default:
		return nil
	}
}

// DiffContext carries the ambient information the per-kind differ needs
// that is not itself part of either catalog snapshot (spec.md §4.1).
type DiffContext struct {
	Version               int
	CurrentUser           string
	DefaultPrivilegeState *DefaultPrivilegeState
	MainRoles             map[string]*Role
}

// Catalog is the complete snapshot of one PostgreSQL database, keyed by
// StableID within each object-kind map, per spec.md §3.
type Catalog struct {
	Version     int
	CurrentUser string

	Schemas            map[StableID]*Schema
	Tables             map[StableID]*Table
	ForeignTables      map[StableID]*ForeignTable
	Views              map[StableID]*View
	MaterializedViews  map[StableID]*MaterializedView
	Sequences          map[StableID]*Sequence
	CompositeTypes     map[StableID]*CompositeType
	EnumTypes          map[StableID]*EnumType
	RangeTypes         map[StableID]*RangeType
	Domains            map[StableID]*Domain
	Functions          map[StableID]*Function
	Procedures         map[StableID]*Procedure
	Aggregates         map[StableID]*Aggregate
	Indexes            map[StableID]*Index
	Triggers           map[StableID]*Trigger
	Rules              map[StableID]*Rule
	Policies           map[StableID]*Policy
	Roles              map[StableID]*Role
	Extensions         map[StableID]*Extension
	Publications       map[StableID]*Publication
	Subscriptions      map[StableID]*Subscription
	ForeignDataWrappers map[StableID]*ForeignDataWrapper
	ForeignServers     map[StableID]*ForeignServer
	UserMappings       map[StableID]*UserMapping
	Languages          map[StableID]*Language
	EventTriggers      map[StableID]*EventTrigger
	Collations         map[StableID]*Collation

	DefaultPrivileges *DefaultPrivilegeState

	Depends []DependencyEdge
}

// New returns an empty, initialized Catalog (all maps allocated) suitable
// as either side of a diff — e.g. as the "main" side when exporting a
// branch from scratch (spec.md S1/S2 scenarios).
func New(version int, currentUser string) *Catalog {
	return &Catalog{
		Version:             version,
		CurrentUser:         currentUser,
		Schemas:             map[StableID]*Schema{},
		Tables:              map[StableID]*Table{},
		ForeignTables:       map[StableID]*ForeignTable{},
		Views:               map[StableID]*View{},
		MaterializedViews:   map[StableID]*MaterializedView{},
		Sequences:           map[StableID]*Sequence{},
		CompositeTypes:      map[StableID]*CompositeType{},
		EnumTypes:           map[StableID]*EnumType{},
		RangeTypes:          map[StableID]*RangeType{},
		Domains:             map[StableID]*Domain{},
		Functions:           map[StableID]*Function{},
		Procedures:          map[StableID]*Procedure{},
		Aggregates:          map[StableID]*Aggregate{},
		Indexes:             map[StableID]*Index{},
		Triggers:            map[StableID]*Trigger{},
		Rules:               map[StableID]*Rule{},
		Policies:            map[StableID]*Policy{},
		Roles:               map[StableID]*Role{},
		Extensions:          map[StableID]*Extension{},
		Publications:        map[StableID]*Publication{},
		Subscriptions:       map[StableID]*Subscription{},
		ForeignDataWrappers: map[StableID]*ForeignDataWrapper{},
		ForeignServers:      map[StableID]*ForeignServer{},
		UserMappings:        map[StableID]*UserMapping{},
		Languages:           map[StableID]*Language{},
		EventTriggers:       map[StableID]*EventTrigger{},
		Collations:          map[StableID]*Collation{},
		DefaultPrivileges:   &DefaultPrivilegeState{},
	}
}

// Context builds the DiffContext a diff run against this catalog uses for
// every create-path owner/privilege decision: the acting user, the
// default-privilege state, and the role set, all as this catalog recorded
// them.
func (c *Catalog) Context() *DiffContext {
	return &DiffContext{
		Version:               c.Version,
		CurrentUser:           c.CurrentUser,
		DefaultPrivilegeState: c.DefaultPrivileges,
		MainRoles:             c.Roles,
	}
}

// RelevantObjects returns, for a set of seed StableIDs, the set of
// StableIDs reachable within depth hops of the dependency relation in
// either direction. Used by the resolver to restrict the DependencyModel
// to a bounded closure (spec.md §4.3).
func (c *Catalog) RelevantObjects(seed []StableID, depth int) map[StableID]bool {
	seen := map[StableID]bool{}
	frontier := make([]StableID, 0, len(seed))
	for _, id := range seed {
		seen[id] = true
		frontier = append(frontier, id)
	}

	forward := map[StableID][]StableID{}
	backward := map[StableID][]StableID{}
	for _, e := range c.Depends {
		if e.Dependent.IsUnknown() || e.Referenced.IsUnknown() {
			continue
		}
		forward[e.Dependent] = append(forward[e.Dependent], e.Referenced)
		backward[e.Referenced] = append(backward[e.Referenced], e.Dependent)
	}

	for i := 0; i < depth; i++ {
		var next []StableID
		for _, id := range frontier {
			for _, n := range append(append([]StableID{}, forward[id]...), backward[id]...) {
				if !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return seen
}
