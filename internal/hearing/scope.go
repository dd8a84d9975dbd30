package hearing

import "strings"

type Scope string

const (
	ScopeCourtroom Scope = "courtroom"
	ScopeCounsel   Scope = "counsel"
	ScopeClient    Scope = "client"
	ScopeGlobal    Scope = "global"
)

// DefaultScopes applies when SCHEDULER_CONFLICT_SCOPES is blank.
const DefaultScopes = "courtroom,counsel"

var scopeOrder = []Scope{ScopeCourtroom, ScopeCounsel, ScopeClient, ScopeGlobal}

// ScopeSet is the set of dimensions along which overlapping hearings count as conflicts.
type ScopeSet map[Scope]struct{}

// ParseScopes reads a comma separated scope list. Unknown tokens are ignored.
func ParseScopes(raw string) ScopeSet {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultScopes
	}

	set := ScopeSet{}
	for _, token := range strings.Split(raw, ",") {
		s := Scope(strings.ToLower(strings.TrimSpace(token)))
		switch s {
		case ScopeCourtroom, ScopeCounsel, ScopeClient, ScopeGlobal:
			set[s] = struct{}{}
		}
	}
	return set
}

func (s ScopeSet) Has(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

func (s ScopeSet) String() string {
	names := make([]string, 0, len(s))
	for _, scope := range scopeOrder {
		if s.Has(scope) {
			names = append(names, string(scope))
		}
	}
	return strings.Join(names, ",")
}
