package catalog

// MenuItem is one entry of a navigation menu. ParentID is empty for
// top-level entries.
type MenuItem struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Order    int    `json:"order" yaml:"order"`
}

// Menu is a named WordPress navigation menu.
type Menu struct {
	Name  string     `json:"name" yaml:"name"`
	Items []MenuItem `json:"items" yaml:"items"`
}

// TopLevel returns the entries without a parent, in menu order.
func (m Menu) TopLevel() []MenuItem {
	var out []MenuItem
	for _, it := range m.Items {
		if it.ParentID == "" {
			out = append(out, it)
		}
	}
	return out
}

// Children returns the direct children of the entry with the given ID.
func (m Menu) Children(id string) []MenuItem {
	var out []MenuItem
	for _, it := range m.Items {
		if it.ParentID == id {
			out = append(out, it)
		}
	}
	return out
}

// Settings are the site-wide general settings shown in headers and footers.
type Settings struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
}
