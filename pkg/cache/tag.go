package cache

// ListID is the sentinel id a collection query is tagged with.
const ListID = "LIST"

// Tag names the entity a cached result depends on. An empty ID in an
// invalidation matches every tag of that Type.
type Tag struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

func ItemTag(typ, id string) Tag {
	return Tag{Type: typ, ID: id}
}

func ListTag(typ string) Tag {
	return Tag{Type: typ, ID: ListID}
}

func TypeTag(typ string) Tag {
	return Tag{Type: typ}
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// Matches reports whether invalidating t invalidates a result tagged with
// provided.
func (t Tag) Matches(provided Tag) bool {
	return t.Type == provided.Type && (t.ID == "" || t.ID == provided.ID)
}

func matchesAny(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.Matches(p) {
				return true
			}
		}
	}
	return false
}

func tagStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
