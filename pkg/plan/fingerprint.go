// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// Fingerprint implements spec.md §6's sourceFingerprint/targetFingerprint:
// sha256 over the sorted stableIds touched by the filtered change set,
// paired with each id's corresponding object data in cat. Two catalogs
// that agree on every object the plan's changes touch fingerprint
// identically, regardless of what else either catalog contains.
func Fingerprint(changes []change.Change, cat *catalog.Catalog) string {
	ids := scopeIDs(changes)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
		obj, ok := lookupObject(cat, id)
		if ok {
			if data, err := json.Marshal(obj); err == nil {
				h.Write(data)
			}
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// scopeIDs collects the deduplicated set of stableIds a change set
// touches: every id each change creates, drops, or names as its own
// identity — this is "the plan's scope" spec.md §6 fingerprints over.
func scopeIDs(changes []change.Change) []catalog.StableID {
	seen := map[catalog.StableID]bool{}
	var out []catalog.StableID
	add := func(id catalog.StableID) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, c := range changes {
		add(c.StableID())
		for _, id := range c.Creates() {
			add(id)
		}
		for _, id := range c.Drops() {
			add(id)
		}
	}
	return out
}

// lookupObject resolves id to its current value in cat, trying every
// typed collection keyed by id's kind prefix. Sub-object and cluster-wide
// pseudo-ids (comments, acls, constraints, columns) have no standalone
// catalog collection — their data already rides along on the owning
// table/view's serialized value, so they report ok=false and contribute
// only their id bytes to the hash.
func lookupObject(cat *catalog.Catalog, id catalog.StableID) (any, bool) {
	kind, _, _ := strings.Cut(string(id), ":")
	switch catalog.ObjectType(kind) {
	case catalog.ObjectTypeSchema:
		return get(cat.Schemas, id)
	case catalog.ObjectTypeTable:
		return get(cat.Tables, id)
	case catalog.ObjectTypeForeignTable:
		return get(cat.ForeignTables, id)
	case catalog.ObjectTypeView:
		return get(cat.Views, id)
	case catalog.ObjectTypeMaterializedView:
		return get(cat.MaterializedViews, id)
	case catalog.ObjectTypeSequence:
		return get(cat.Sequences, id)
	case catalog.ObjectTypeCompositeType:
		return get(cat.CompositeTypes, id)
	case catalog.ObjectTypeEnumType:
		return get(cat.EnumTypes, id)
	case catalog.ObjectTypeRangeType:
		return get(cat.RangeTypes, id)
	case catalog.ObjectTypeDomain:
		return get(cat.Domains, id)
	case catalog.ObjectTypeFunction:
		return get(cat.Functions, id)
	case catalog.ObjectTypeProcedure:
		return get(cat.Procedures, id)
	case catalog.ObjectTypeAggregate:
		return get(cat.Aggregates, id)
	case catalog.ObjectTypeIndex:
		return get(cat.Indexes, id)
	case catalog.ObjectTypeTrigger:
		return get(cat.Triggers, id)
	case catalog.ObjectTypeRule:
		return get(cat.Rules, id)
	case catalog.ObjectTypePolicy:
		return get(cat.Policies, id)
	case catalog.ObjectTypeRole:
		return get(cat.Roles, id)
	case catalog.ObjectTypeExtension:
		return get(cat.Extensions, id)
	case catalog.ObjectTypePublication:
		return get(cat.Publications, id)
	case catalog.ObjectTypeSubscription:
		return get(cat.Subscriptions, id)
	case catalog.ObjectTypeForeignDataWrapper:
		return get(cat.ForeignDataWrappers, id)
	case catalog.ObjectTypeForeignServer:
		return get(cat.ForeignServers, id)
	case catalog.ObjectTypeUserMapping:
		return get(cat.UserMappings, id)
	case catalog.ObjectTypeLanguage:
		return get(cat.Languages, id)
	case catalog.ObjectTypeEventTrigger:
		return get(cat.EventTriggers, id)
	case catalog.ObjectTypeCollation:
		return get(cat.Collations, id)
	default:
		return nil, false
	}
}

func get[V any](m map[catalog.StableID]V, id catalog.StableID) (any, bool) {
	v, ok := m[id]
	return v, ok
}
