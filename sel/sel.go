// Package sel selects the namespaces an index sync run visits.
package sel

import (
	"slices"
	"strings"
)

// Reserved holds the names never traversed: administrative databases and system
// collections. Order is kept for logging.
type Reserved struct {
	Databases   []string
	Collections []string
}

// DefaultReserved returns the MongoDB administrative databases and the system views
// collection.
func DefaultReserved() Reserved {
	return Reserved{
		Databases:   []string{"admin", "config", "local"},
		Collections: []string{"system.views"},
	}
}

// IsReservedDatabase reports whether db must be skipped.
func (r Reserved) IsReservedDatabase(db string) bool {
	return slices.Contains(r.Databases, db)
}

// IsReservedCollection reports whether coll must be skipped.
func (r Reserved) IsReservedCollection(coll string) bool {
	return slices.Contains(r.Collections, coll)
}

// NSFilter returns true if a namespace is allowed.
type NSFilter func(db, coll string) bool

// AllowAll allows every namespace.
func AllowAll(string, string) bool {
	return true
}

// MakeFilter builds a filter from include and exclude lists. An entry is "db", "db.*"
// (the whole database) or "db.coll". Exclusion takes precedence. With a non-empty include
// list only included namespaces pass.
func MakeFilter(include, exclude []string) NSFilter {
	if len(include) == 0 && len(exclude) == 0 {
		return AllowAll
	}

	inc := parseRules(include)
	exc := parseRules(exclude)

	return func(db, coll string) bool {
		if exc.match(db, coll) {
			return false
		}

		if len(inc) != 0 {
			return inc.match(db, coll)
		}

		return true
	}
}

// rules maps a database name to its listed collections. A nil list covers the whole
// database.
type rules map[string][]string

func (r rules) match(db, coll string) bool {
	colls, ok := r[db]
	if !ok {
		return false
	}

	return colls == nil || slices.Contains(colls, coll)
}

func parseRules(entries []string) rules {
	r := make(rules)

	for _, entry := range entries {
		db, coll, _ := strings.Cut(entry, ".")

		colls, seen := r[db]
		if seen && colls == nil {
			continue
		}

		if coll == "" || coll == "*" {
			r[db] = nil

			continue
		}

		r[db] = append(colls, coll)
	}

	return r
}
