package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/elpescado/reamp-player/pkg/spec"
)

// Source is one declared URI for a track, tagged with its MIME type.
// Declaration order matters: the loader falls back through sources in
// the order the page declared them.
type Source struct {
	Mime string
	URI  string
}

// Setting is one knob of the rig that produced a track, value
// normalized to [0,1].
type Setting struct {
	Name  string
	Value float64
}

// Track is the immutable per-rig configuration from the page payload.
type Track struct {
	Title    string
	Icon     string
	Sources  []Source
	Settings []Setting
}

// SourceFor returns the declared URI for a MIME type, if any.
func (t Track) SourceFor(mime string) (string, bool) {
	for _, s := range t.Sources {
		if s.Mime == mime {
			return s.URI, true
		}
	}
	return "", false
}

// Player is one embedded player declaration.
type Player struct {
	Title  string  `json:"title"`
	Tracks []Track `json:"tracks"`
}

// UnmarshalJSON keeps the declaration order of "sources", which a map
// would destroy, and unfolds the flat [name, value, ...] settings list.
func (t *Track) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    string          `json:"title"`
		Icon     string          `json:"icon"`
		Sources  json.RawMessage `json:"sources"`
		Settings json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Title = raw.Title
	t.Icon = raw.Icon

	if len(raw.Sources) > 0 && string(raw.Sources) != "null" {
		srcs, err := parseOrderedSources(raw.Sources)
		if err != nil {
			return fmt.Errorf("track %q sources: %w", raw.Title, err)
		}
		t.Sources = srcs
	}
	if len(raw.Settings) > 0 && string(raw.Settings) != "null" {
		set, err := parseSettings(raw.Settings)
		if err != nil {
			return fmt.Errorf("track %q settings: %w", raw.Title, err)
		}
		t.Settings = set
	}
	return nil
}

// parseOrderedSources walks the {"mime": "uri", ...} object token by
// token so the original key order survives.
func parseOrderedSources(raw json.RawMessage) ([]Source, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var out []Source
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		mime, _ := keyTok.(string)

		var uri string
		if err := dec.Decode(&uri); err != nil {
			return nil, fmt.Errorf("source %q: %w", mime, err)
		}
		out = append(out, Source{Mime: mime, URI: uri})
	}
	return out, nil
}

// parseSettings reads the flat alternating list ["gain", 0.7, ...].
func parseSettings(raw json.RawMessage) ([]Setting, error) {
	var flat []json.RawMessage
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("odd settings list length %d", len(flat))
	}

	out := make([]Setting, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		var s Setting
		if err := json.Unmarshal(flat[i], &s.Name); err != nil {
			return nil, fmt.Errorf("setting name at %d: %w", i, err)
		}
		if err := json.Unmarshal(flat[i+1], &s.Value); err != nil {
			return nil, fmt.Errorf("setting %q value: %w", s.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Discover scans a host page for embedded player payloads. Every
// occurrence of the payload marker introduces one JSON declaration;
// the scan takes the first object following the marker and resumes
// after it, so payload bodies are never re-matched.
func Discover(r io.Reader) ([]Player, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var players []Player
	off := 0
	for {
		idx := strings.Index(string(raw[off:]), spec.PayloadMarker)
		if idx < 0 {
			break
		}
		start := off + idx + len(spec.PayloadMarker)

		brace := bytes.IndexByte(raw[start:], '{')
		if brace < 0 {
			break
		}
		start += brace

		dec := json.NewDecoder(bytes.NewReader(raw[start:]))
		var p Player
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("payload at offset %d: %w", start, err)
		}
		players = append(players, p)

		off = start + int(dec.InputOffset())
	}
	return players, nil
}

// DiscoverFile is Discover over a page file on disk.
func DiscoverFile(path string) ([]Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Discover(f)
}
