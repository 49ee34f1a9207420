package assets

import (
	"fmt"
	"strings"

	"webmedia/internal/logging"
	"webmedia/internal/thumbnail"
)

// Config configures a Dispatcher.
type Config struct {
	Extensions ExtensionTable
	// Defaults are applied to a kind's attributes unless the caller set the
	// key.
	Defaults map[Kind]thumbnail.Attrs
	// SoundPlayerURL is the flash player sounds are embedded with. Empty
	// leaves sound references untouched.
	SoundPlayerURL string
}

// DefaultConfig returns the built-in extension table and defaults.
func DefaultConfig() Config {
	return Config{
		Extensions: DefaultExtensions(),
		Defaults: map[Kind]thumbnail.Attrs{
			KindFlash: {{Key: "wmode", Value: "opaque"}},
		},
	}
}

// ParseDefaults parses "kind:key=value,key=value;kind:key=value".
func ParseDefaults(s string) (map[Kind]thumbnail.Attrs, error) {
	out := make(map[Kind]thumbnail.Attrs)
	for _, group := range strings.Split(s, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		name, list, ok := strings.Cut(group, ":")
		if !ok {
			return nil, fmt.Errorf("invalid attribute group %q: want kind:key=value", group)
		}
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		for _, pair := range strings.Split(list, ",") {
			if strings.TrimSpace(pair) == "" {
				continue
			}
			key, value, ok := strings.Cut(pair, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid attribute %q for %s: want key=value", pair, kind)
			}
			out[kind] = out[kind].Set(key, strings.TrimSpace(value))
		}
	}
	return out, nil
}

// Result is a dispatched reference.
type Result struct {
	Kind  Kind            `json:"kind"`
	Src   string          `json:"src"`
	Attrs thumbnail.Attrs `json:"attrs"`
}

// Dispatcher routes references to the handler for their kind.
type Dispatcher struct {
	kinds          map[string]Kind
	defaults       map[Kind]thumbnail.Attrs
	images         thumbnail.Processor
	soundPlayerURL string
}

// NewDispatcher creates a dispatcher that sends images to images.
func NewDispatcher(cfg Config, images thumbnail.Processor) *Dispatcher {
	if cfg.Extensions == nil {
		cfg.Extensions = DefaultExtensions()
	}
	return &Dispatcher{
		kinds:          cfg.Extensions.index(),
		defaults:       cfg.Defaults,
		images:         images,
		soundPlayerURL: cfg.SoundPlayerURL,
	}
}

// Classify returns the kind of ref by its extension.
func (d *Dispatcher) Classify(ref string) Kind {
	if k, ok := d.kinds[extension(ref)]; ok {
		return k
	}
	return KindOther
}

// Process classifies source and runs its kind's handler. attrs is not
// modified.
func (d *Dispatcher) Process(source string, attrs thumbnail.Attrs) (Result, error) {
	kind := d.Classify(source)
	attrs = attrs.Clone()
	for _, def := range d.defaults[kind] {
		attrs = attrs.SetDefault(def.Key, def.Value)
	}

	var (
		src = source
		err error
	)
	switch kind {
	case KindImage:
		src, attrs, err = d.images.Process(source, attrs)
	case KindSound:
		src, attrs = d.sound(source, attrs)
	case KindStylesheet, KindJavascript, KindFlash, KindOther:
	}
	if err != nil {
		logging.Debug("assets: %s handler failed for %q: %v", kind, source, err)
		return Result{}, fmt.Errorf("%s %q: %w", kind, source, err)
	}

	return Result{Kind: kind, Src: src, Attrs: attrs}, nil
}

// sound embeds source through the flash player. The title attribute moves
// into the player's FlashVars.
func (d *Dispatcher) sound(source string, attrs thumbnail.Attrs) (string, thumbnail.Attrs) {
	if d.soundPlayerURL == "" || source == "" {
		return source, attrs
	}
	title, _ := attrs.Get("title")
	attrs = attrs.Delete("title").
		Set("FlashVars", "soundFile="+source+"&titles="+title).
		SetInt("width", 240).
		SetInt("height", 30)
	return d.soundPlayerURL, attrs
}
