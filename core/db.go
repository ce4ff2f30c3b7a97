package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrdering turns "-field" / "field" into a DBOrdering; fields outside allowed are dropped.
func ParseOrdering(allowed map[string]bool, fields ...string) []DBOrdering {
	var ords []DBOrdering
	for _, f := range fields {
		f = CleanString(f, true)
		asc := true
		if len(f) > 0 && f[0] == '-' {
			asc = false
			f = f[1:]
		}
		if allowed[f] {
			ords = append(ords, DBOrdering{Field: f, Ascending: asc})
		}
	}
	return ords
}
