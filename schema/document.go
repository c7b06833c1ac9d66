package schema

// TOCNode is one entry of a document's table of contents tree.
type TOCNode struct {
	Title       string     `json:"title"`
	Level       int        `json:"level"`
	ID          string     `json:"id,omitempty"`
	Subsections []*TOCNode `json:"subsections,omitempty"`
}

// TOC is the section tree attached to a document's structure.
type TOC struct {
	Sections []*TOCNode `json:"sections"`
}

// Structure holds the navigational metadata extracted alongside content.
type Structure struct {
	TOC *TOC `json:"toc,omitempty"`
}

// DocumentMetadata carries document-level metadata. Custom is a free-form
// map used by preparation passes (for example the cross-reference index).
type DocumentMetadata struct {
	Title  string         `json:"title,omitempty"`
	Custom map[string]any `json:"custom,omitempty"`
}

// Document is the normalized input to the chunking engine: an ordered
// element sequence with monotonic positions, plus optional structure.
// Its construction belongs to the extraction collaborators.
type Document struct {
	Content   []ContentElement `json:"content"`
	Structure Structure        `json:"structure,omitempty"`
	Metadata  DocumentMetadata `json:"metadata,omitempty"`
}

// SetCustom stores a value in the document's custom metadata, allocating
// the map on first use.
func (d *Document) SetCustom(key string, value any) {
	if d.Metadata.Custom == nil {
		d.Metadata.Custom = make(map[string]any)
	}
	d.Metadata.Custom[key] = value
}
