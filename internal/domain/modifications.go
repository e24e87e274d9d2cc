package domain

// UserModifications is the sparse per-trip annotation record owned by this
// layer: which activities the user marked done, how each stop's activity list
// is reordered, and where the user last was. One record exists per trip in
// the single-user deployment.
//
// ActivityOrders values are permutations over the *original* (pre-reorder)
// activity array of a stop: position i of the materialized list holds the
// activity whose original index is ActivityOrders[stopID][i]. Capturing
// orders against the original array keeps saves composable — see
// merge.ComposeOrder.
type UserModifications struct {
	ActivityStatus map[string]bool  `json:"activityStatus"`
	ActivityOrders map[string][]int `json:"activityOrders"`
	LastViewedBase string           `json:"lastViewedBase,omitempty"`
	LastViewedDate string           `json:"lastViewedDate,omitempty"` // ISO-8601
}

// NewUserModifications returns the empty default shape used when no record
// exists yet. Both maps are non-nil so callers can index and assign freely.
func NewUserModifications() UserModifications {
	return UserModifications{
		ActivityStatus: map[string]bool{},
		ActivityOrders: map[string][]int{},
	}
}

// Normalize replaces nil maps with empty ones. Records decoded from JSON that
// omitted a field pass through here so the empty-default invariant holds.
func (m *UserModifications) Normalize() {
	if m.ActivityStatus == nil {
		m.ActivityStatus = map[string]bool{}
	}
	if m.ActivityOrders == nil {
		m.ActivityOrders = map[string][]int{}
	}
}

// Clone returns a deep copy. The merge engine and the façade hand records
// across goroutine boundaries; copying keeps callers free to mutate.
func (m UserModifications) Clone() UserModifications {
	out := UserModifications{
		ActivityStatus: make(map[string]bool, len(m.ActivityStatus)),
		ActivityOrders: make(map[string][]int, len(m.ActivityOrders)),
		LastViewedBase: m.LastViewedBase,
		LastViewedDate: m.LastViewedDate,
	}
	for id, done := range m.ActivityStatus {
		out.ActivityStatus[id] = done
	}
	for stopID, order := range m.ActivityOrders {
		cp := make([]int, len(order))
		copy(cp, order)
		out.ActivityOrders[stopID] = cp
	}
	return out
}
