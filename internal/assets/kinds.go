package assets

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Kind is the category of a media reference.
type Kind string

const (
	// KindImage is a raster image the thumbnail engine can resize.
	KindImage Kind = "image"
	// KindStylesheet is a CSS file.
	KindStylesheet Kind = "stylesheet"
	// KindJavascript is a script file.
	KindJavascript Kind = "javascript"
	// KindFlash is a flash movie.
	KindFlash Kind = "flash"
	// KindSound is an audio file played through the flash player.
	KindSound Kind = "sound"
	// KindOther is anything without a registered extension.
	KindOther Kind = "other"
)

// Kinds lists every kind with a handler.
var Kinds = []Kind{KindImage, KindStylesheet, KindJavascript, KindFlash, KindSound}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown asset kind %q", s)
}

// ExtensionTable lists the extensions, lower case without the dot, that
// belong to each kind.
type ExtensionTable map[Kind][]string

// DefaultExtensions returns the built-in table.
func DefaultExtensions() ExtensionTable {
	return ExtensionTable{
		KindImage:      {"gif", "jpg", "jpeg", "bmp", "png", "webp", "tif", "tiff"},
		KindStylesheet: {"css"},
		KindJavascript: {"js"},
		KindFlash:      {"swf"},
		KindSound:      {"mp3"},
	}
}

// ParseExtensions parses "kind:ext,ext;kind:ext" into a table.
func ParseExtensions(s string) (ExtensionTable, error) {
	table := ExtensionTable{}
	for _, group := range strings.Split(s, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		name, list, ok := strings.Cut(group, ":")
		if !ok {
			return nil, fmt.Errorf("invalid extension group %q: want kind:ext,ext", group)
		}
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		for _, ext := range strings.Split(list, ",") {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext != "" {
				table[kind] = append(table[kind], ext)
			}
		}
	}
	return table, nil
}

// String formats the table the way ParseExtensions reads it, kinds sorted.
func (t ExtensionTable) String() string {
	kinds := make([]string, 0, len(t))
	for k := range t {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, k+":"+strings.Join(t[Kind(k)], ","))
	}
	return strings.Join(parts, ";")
}

// index inverts the table. An extension listed under two kinds belongs to
// the first in Kinds order.
func (t ExtensionTable) index() map[string]Kind {
	idx := make(map[string]Kind)
	for i := len(Kinds) - 1; i >= 0; i-- {
		for _, ext := range t[Kinds[i]] {
			idx[ext] = Kinds[i]
		}
	}
	return idx
}

// extension returns the lower-case extension of a reference. A query string
// or fragment after the extension is ignored; '?' and '#' earlier in the
// name are part of the file name.
func extension(ref string) string {
	ext := path.Ext(ref)
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
