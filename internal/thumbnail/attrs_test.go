package thumbnail

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAttrs_GetSetDelete(t *testing.T) {
	a := kv("alt", "x", "width", "10")

	if v, ok := a.Get("width"); !ok || v != "10" {
		t.Errorf("Get(width) = %q, %v", v, ok)
	}
	if a.Has("height") {
		t.Error("Has(height) = true on a bag without height")
	}

	a = a.SetInt("width", 20).Set("title", "t")
	if want := kv("alt", "x", "width", "20", "title", "t"); !reflect.DeepEqual(a, want) {
		t.Errorf("after Set = %v, want %v", a, want)
	}

	a = a.SetDefault("alt", "ignored").SetDefault("id", "i")
	if v, _ := a.Get("alt"); v != "x" {
		t.Errorf("SetDefault replaced an existing value: %q", v)
	}

	orig := a.Clone()
	d := a.Delete("width")
	if want := kv("alt", "x", "title", "t", "id", "i"); !reflect.DeepEqual(d, want) {
		t.Errorf("Delete = %v, want %v", d, want)
	}
	if !reflect.DeepEqual(a, orig) {
		t.Errorf("Delete modified its receiver: %v", a)
	}

	if m := a.Map(); m["title"] != "t" || len(m) != 4 {
		t.Errorf("Map = %v", m)
	}
}

func TestAttrs_JSON(t *testing.T) {
	a := kv("width", "50", "alt", `say "hi"`, "class", "b")

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := `{"width":"50","alt":"say \"hi\"","class":"b"}`; string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Attrs
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(back, a) {
		t.Errorf("Unmarshal = %v, want %v", back, a)
	}
}

func TestAttrs_UnmarshalScalars(t *testing.T) {
	var a Attrs
	if err := json.Unmarshal([]byte(`{"width": 50, "lazy": true, "alt": null, "height": "40"}`), &a); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := kv("width", "50", "lazy", "true", "alt", "", "height", "40")
	if !reflect.DeepEqual(a, want) {
		t.Errorf("Unmarshal = %v, want %v", a, want)
	}

	for _, bad := range []string{`{"style": {"color": "red"}}`, `["width"]`, `"x"`} {
		var a Attrs
		if err := json.Unmarshal([]byte(bad), &a); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", bad)
		}
	}
}
