package pathcodec

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Params are the transform parameters that take part in a derived name.
// A zero Width or Height means the axis was not requested.
type Params struct {
	Width  int
	Height int
	// Method is the resize method name ("crop" or "fit"); only its first
	// letter is encoded.
	Method string
	// Format is the normalized upper-case output format, e.g. "JPG".
	// Empty means the source extension.
	Format string
}

// HasResize reports whether at least one dimension was requested.
func (p Params) HasResize() bool {
	return p.Width > 0 || p.Height > 0
}

// Derive returns the cache-relative, slash-separated path for source
// transformed with p. source must be a non-empty slash-separated path with
// an extension; callers reject anything else before getting here.
func Derive(source string, p Params) string {
	dir, file := path.Split(filepath.ToSlash(source))
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	format := strings.ToLower(p.Format)
	if format == "" {
		format = ext
	}

	var b strings.Builder
	b.Grow(len(source) + 24)
	b.WriteString(dir)
	b.WriteString(base)
	b.WriteByte('_')
	b.WriteString(ext)
	b.WriteString(suffix(p))
	b.WriteByte('.')
	b.WriteString(format)
	return b.String()
}

// suffix flattens the resize parameters. Format-only derivatives get none.
func suffix(p Params) string {
	if !p.HasResize() {
		return ""
	}
	s := "_"
	if p.Width > 0 {
		s += "_w" + strconv.Itoa(p.Width)
	}
	if p.Height > 0 {
		s += "_h" + strconv.Itoa(p.Height)
	}
	if p.Method != "" {
		s += "_m" + strings.ToLower(p.Method[:1])
	}
	return s
}

// Asset is a derived file: where it lives and where it is served from.
type Asset struct {
	RelPath     string
	StoragePath string
	PublicURL   string
}

// Codec maps derived names under a cache root and URL prefix.
type Codec struct {
	root      string
	urlPrefix string
}

// New creates a Codec rooted at root (a directory) and served under
// urlPrefix. A missing trailing slash on urlPrefix is added.
func New(root, urlPrefix string) *Codec {
	if urlPrefix != "" && !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Codec{root: root, urlPrefix: urlPrefix}
}

// Root returns the cache root directory.
func (c *Codec) Root() string {
	return c.root
}

// StoragePath returns the absolute location of a cache-relative path.
func (c *Codec) StoragePath(rel string) string {
	return filepath.Join(c.root, filepath.FromSlash(rel))
}

// PublicURL returns the URL a cache-relative path is served from. Characters
// that are not valid in a URL path, such as '#', '?', '%' or spaces, are
// percent-escaped.
func (c *Codec) PublicURL(rel string) string {
	u := url.URL{Path: strings.TrimPrefix(rel, "/")}
	return c.urlPrefix + u.EscapedPath()
}

// Asset derives the cache entry for source transformed with p.
func (c *Codec) Asset(source string, p Params) Asset {
	rel := Derive(source, p)
	return Asset{
		RelPath:     rel,
		StoragePath: c.StoragePath(rel),
		PublicURL:   c.PublicURL(rel),
	}
}

// derivedName matches the file name of a resized derivative:
// base, source extension tag, then the parameter tags.
var derivedName = regexp.MustCompile(`^(.+)_([^_]+)__(?:w[0-9]+(?:_h[0-9]+)?|h[0-9]+)(?:_m[a-z])?\.[a-z0-9]+$`)

// Origin is what a derived name says about its source.
type Origin struct {
	// Dir is the slash-separated source directory with a trailing slash,
	// or empty at the root.
	Dir  string
	Base string
	// Ext is the lower-case source extension without the dot.
	Ext string
}

// Matches reports whether source, a slash-separated media path, is the
// file o was derived from. Extensions compare case-insensitively.
func (o Origin) Matches(source string) bool {
	dir, file := path.Split(filepath.ToSlash(source))
	ext := path.Ext(file)
	return dir == o.Dir &&
		strings.TrimSuffix(file, ext) == o.Base &&
		strings.EqualFold(strings.TrimPrefix(ext, "."), o.Ext)
}

// ParseDerived recovers the source of a cache-relative derivative name.
// ok is false for anything Derive would not produce with a resize.
func ParseDerived(rel string) (o Origin, ok bool) {
	dir, file := path.Split(filepath.ToSlash(rel))
	m := derivedName.FindStringSubmatch(file)
	if m == nil {
		return Origin{}, false
	}
	return Origin{Dir: dir, Base: m[1], Ext: m[2]}, true
}
