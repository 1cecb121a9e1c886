package dataset

// Catalog and viewing-log column names.
const (
	ColTitle       = "title"
	ColDescription = "description"
	ColListedIn    = "listed_in"
	ColDateAdded   = "date_added"
	ColDuration    = "duration"
	ColRating      = "rating"

	ColViewTitle = "Title"
	ColViewDate  = "Date"
)

var missingMessages = map[string]string{
	ColListedIn:    "No genre information available",
	ColDateAdded:   "No date information available",
	ColDuration:    "No duration information available",
	ColDescription: "No description information available",
	ColTitle:       "No title information available",
	ColViewTitle:   "No viewing title information available",
	ColViewDate:    "No viewing date information available",
}

// Capabilities records which optional columns a table carries. It is computed
// once after load and consulted by every downstream component.
type Capabilities struct {
	present map[string]bool
}

// DetectSchema inspects a table's columns. A nil table has no capabilities.
func DetectSchema(t *Table) Capabilities {
	c := Capabilities{present: map[string]bool{}}
	if t == nil {
		return c
	}
	for _, name := range t.Columns() {
		c.present[name] = true
	}
	return c
}

// Has reports whether a column is present.
func (c Capabilities) Has(name string) bool { return c.present[name] }

// Require returns a *MissingColumnError for the first absent column.
func (c Capabilities) Require(names ...string) error {
	for _, n := range names {
		if !c.present[n] {
			return &MissingColumnError{Column: n, Message: missingMessages[n]}
		}
	}
	return nil
}

// Optional lists which of the known catalog and viewing-log fields are present.
func (c Capabilities) Optional() map[string]bool {
	out := map[string]bool{}
	for _, n := range []string{ColTitle, ColDescription, ColListedIn, ColDateAdded, ColDuration, ColRating, ColViewTitle, ColViewDate} {
		out[n] = c.present[n]
	}
	return out
}
