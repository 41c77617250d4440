package shared

// Actor identifies who performed an operation. The finance core never
// authenticates it; callers pass whatever identity their boundary established.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SystemActor stamps mutations the core performs on its own behalf,
// such as reconciliation markers.
var SystemActor = Actor{ID: "system", Name: "system"}
