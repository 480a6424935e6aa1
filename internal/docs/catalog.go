// Package docs serves the reference page for the backend's realtime
// broadcast events. The catalog ships embedded as YAML; prose fields are
// Markdown rendered once at load.
package docs

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed events.yaml
var eventsYAML []byte

// Channel types.
const (
	ChannelPrivate = "private"
	ChannelPublic  = "public"
)

type PayloadField struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Nullable    bool   `yaml:"nullable"`
	Description string `yaml:"description"`
}

type Event struct {
	ID          string         `yaml:"id"`
	BroadcastAs string         `yaml:"broadcast_as"`
	Class       string         `yaml:"class"`
	Channels    []string       `yaml:"channels"`
	ChannelType string         `yaml:"channel_type"`
	Trigger     string         `yaml:"trigger"`
	Description string         `yaml:"description"`
	Payload     []PayloadField `yaml:"payload"`
	Listener    string         `yaml:"listener"`
	Notes       string         `yaml:"notes"`

	// Rendered from Description and Notes.
	DescriptionHTML template.HTML `yaml:"-"`
	NotesHTML       template.HTML `yaml:"-"`
}

// ListenName is what a client passes to listen(). Custom broadcast names
// need a leading dot.
func (e Event) ListenName() string {
	if e.BroadcastAs == e.shortClass() {
		return e.BroadcastAs
	}
	return "." + e.BroadcastAs
}

func (e Event) shortClass() string {
	for i := len(e.Class) - 1; i >= 0; i-- {
		if e.Class[i] == '\\' {
			return e.Class[i+1:]
		}
	}
	return e.Class
}

// ChannelRule documents who may subscribe to a channel pattern.
type ChannelRule struct {
	Pattern string `yaml:"pattern"`
	Type    string `yaml:"type"`
	Rule    string `yaml:"rule"`
}

type Catalog struct {
	Events   []Event       `yaml:"events"`
	Channels []ChannelRule `yaml:"channels"`
}

// Broadcaster is where clients connect.
type Broadcaster struct {
	Host   string
	Port   int
	Scheme string
	Key    string
}

// TLS mirrors the client option: only https forces TLS.
func (b Broadcaster) TLS() bool {
	return b.Scheme == "https"
}

// URL is the WebSocket endpoint clients dial.
func (b Broadcaster) URL() string {
	scheme := "ws"
	if b.TLS() {
		scheme = "wss"
	}
	return scheme + "://" + b.Host + ":" + strconv.Itoa(b.Port)
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(eventsYAML)
}

// Parse reads and validates a catalog, then renders its Markdown.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse event catalog: %w", err)
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	seen := make(map[string]struct{}, len(c.Events))
	for i := range c.Events {
		e := &c.Events[i]
		if e.ID == "" || e.BroadcastAs == "" {
			return nil, fmt.Errorf("event %d: id and broadcast_as are required", i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("event %q: duplicate id", e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.ChannelType != ChannelPrivate && e.ChannelType != ChannelPublic {
			return nil, fmt.Errorf("event %q: channel_type must be %s or %s", e.ID, ChannelPrivate, ChannelPublic)
		}
		var err error
		if e.DescriptionHTML, err = render(md, e.Description); err != nil {
			return nil, fmt.Errorf("event %q description: %w", e.ID, err)
		}
		if e.NotesHTML, err = render(md, e.Notes); err != nil {
			return nil, fmt.Errorf("event %q notes: %w", e.ID, err)
		}
	}
	return &c, nil
}

// render converts Markdown to HTML. goldmark drops raw HTML unless told
// otherwise, so the output is safe to mark trusted.
func render(md goldmark.Markdown, source string) (template.HTML, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
