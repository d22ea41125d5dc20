package cache

import "fmt"

// Tag labels a cached result so mutations can invalidate it. A tag
// without ID names the whole collection of its type.
type Tag struct {
	Type string
	ID   string
}

// TypeTag returns a collection-level tag.
func TypeTag(typ string) Tag {
	return Tag{Type: typ}
}

// IDTag returns an item-level tag.
func IDTag(typ string, id any) Tag {
	return Tag{Type: typ, ID: fmt.Sprint(id)}
}

// String renders "Type" or "Type:ID".
func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// tagIndex maps tags to the keys that provided them:
// type -> id ("" for collection) -> set of key strings.
type tagIndex struct {
	byType map[string]map[string]map[string]struct{}
}

func newTagIndex() *tagIndex {
	return &tagIndex{byType: make(map[string]map[string]map[string]struct{})}
}

func (ix *tagIndex) add(key string, tags []Tag) {
	for _, tag := range tags {
		ids, ok := ix.byType[tag.Type]
		if !ok {
			ids = make(map[string]map[string]struct{})
			ix.byType[tag.Type] = ids
		}
		keys, ok := ids[tag.ID]
		if !ok {
			keys = make(map[string]struct{})
			ids[tag.ID] = keys
		}
		keys[key] = struct{}{}
	}
}

func (ix *tagIndex) remove(key string, tags []Tag) {
	for _, tag := range tags {
		ids := ix.byType[tag.Type]
		if ids == nil {
			continue
		}
		delete(ids[tag.ID], key)
		if len(ids[tag.ID]) == 0 {
			delete(ids, tag.ID)
		}
		if len(ids) == 0 {
			delete(ix.byType, tag.Type)
		}
	}
}

// match returns the keys invalidated by tag. A collection tag matches
// every key that provided any tag of its type; an item tag matches only
// keys that provided that exact item.
func (ix *tagIndex) match(tag Tag) []string {
	ids := ix.byType[tag.Type]
	if ids == nil {
		return nil
	}

	var out []string
	if tag.ID != "" {
		for key := range ids[tag.ID] {
			out = append(out, key)
		}
		return out
	}

	seen := make(map[string]struct{})
	for _, keys := range ids {
		for key := range keys {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}
