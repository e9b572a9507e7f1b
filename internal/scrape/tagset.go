package scrape

// TagSet assigns run-local sequential ids to tag labels, starting at 1. It is
// constructed fresh for every crawl run and travels with the run's Result;
// nothing holds one as process-level state. The ids are an internal crawl
// artifact only: durable tag identity is reconciled by label at sync time,
// never by these numbers.
type TagSet struct {
	ids    map[string]int
	labels []string
}

// NewTagSet returns an empty TagSet.
func NewTagSet() *TagSet {
	return &TagSet{ids: make(map[string]int)}
}

// Assign returns the id already given to label in this run, or allocates the
// next sequential one.
func (t *TagSet) Assign(label string) int {
	if id, ok := t.ids[label]; ok {
		return id
	}
	id := len(t.labels) + 1
	t.ids[label] = id
	t.labels = append(t.labels, label)
	return id
}

// Len reports how many distinct labels were seen.
func (t *TagSet) Len() int {
	return len(t.labels)
}

// TagLabel pairs a label with its run-local id.
type TagLabel struct {
	Label string
	ID    int
}

// Labels returns all (label, id) pairs in id order. A nil TagSet has none.
func (t *TagSet) Labels() []TagLabel {
	if t == nil {
		return nil
	}
	out := make([]TagLabel, 0, len(t.labels))
	for i, label := range t.labels {
		out = append(out, TagLabel{Label: label, ID: i + 1})
	}
	return out
}
