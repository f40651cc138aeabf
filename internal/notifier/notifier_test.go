package notifier

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/vict0rsch/ntfy-go/internal/config"
)

type recordedCall struct {
	method  string
	url     string
	body    string
	headers map[string]string
}

// fakeTransport records every request and can be told to fail specific URLs.
type fakeTransport struct {
	mu       sync.Mutex
	calls    []recordedCall
	failURLs map[string]error
}

func (f *fakeTransport) Post(_ context.Context, url string, body []byte, headers map[string]string) error {
	return f.record("POST", url, string(body), headers)
}

func (f *fakeTransport) Put(_ context.Context, url string, body io.Reader, headers map[string]string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	return f.record("PUT", url, string(data), headers)
}

func (f *fakeTransport) record(method, url, body string, headers map[string]string) error {
	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: method, url: url, body: body, headers: copied})
	f.mu.Unlock()
	if err, ok := f.failURLs[url]; ok {
		return err
	}
	return nil
}

type fixedGenerator struct{ name string }

func (g fixedGenerator) Generate() string { return g.name }

func newTestNotifier(t *testing.T, opts Options) (*Notifier, *fakeTransport) {
	t.Helper()

	ft := &fakeTransport{}
	if opts.Transport == nil {
		opts.Transport = ft
	}
	if opts.Generator == nil {
		opts.Generator = fixedGenerator{name: "generated-topic"}
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	if opts.ConfPath == "" {
		opts.ConfPath = filepath.Join(t.TempDir(), config.FileName)
	}
	n, err := New(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return n, ft
}

func TestNewExplicitArgumentsWinOverFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)
	fileCfg := config.Config{
		Topics:   []string{"file-topic"},
		Emails:   []string{"file@example.com"},
		Defaults: map[string]string{"title": "From file"},
	}
	if err := config.Write(path, fileCfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, _ := newTestNotifier(t, Options{
		ConfPath: path,
		Topics:   []string{"arg-topic"},
		Defaults: map[string]string{"title": "From args"},
	})

	cfg := n.Config()
	if want := []string{"arg-topic"}; !slices.Equal(cfg.Topics, want) {
		t.Fatalf("expected explicit topics %v, got %v", want, cfg.Topics)
	}
	if want := []string{"file@example.com"}; !slices.Equal(cfg.Emails, want) {
		t.Fatalf("expected file emails %v, got %v", want, cfg.Emails)
	}
	if cfg.Defaults["title"] != "From args" {
		t.Fatalf("expected constructor defaults to win, got %q", cfg.Defaults["title"])
	}
}

func TestNewRejectsUnknownDefaultBeforeAnyIO(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)
	_, err := New(Options{
		ConfPath: path,
		Defaults: map[string]string{"bogus": "1"},
		Persist:  true,
	})
	if !errors.Is(err, config.ErrUnknownDefault) {
		t.Fatalf("expected ErrUnknownDefault, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no file to be written, stat: %v", statErr)
	}
}

func TestNewGeneratesTopicWhenNoTargets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)
	n, _ := newTestNotifier(t, Options{ConfPath: path, Persist: true})

	cfg := n.Config()
	if want := []string{"generated-topic"}; !slices.Equal(cfg.Topics, want) {
		t.Fatalf("expected generated topic, got %v", cfg.Topics)
	}

	// The generated topic must have been persisted.
	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(reloaded.Topics, cfg.Topics) {
		t.Fatalf("expected persisted topics %v, got %v", cfg.Topics, reloaded.Topics)
	}
}

func TestNewFailsWhenGeneratorProducesNothing(t *testing.T) {
	t.Parallel()

	_, err := New(Options{
		ConfPath:  filepath.Join(t.TempDir(), config.FileName),
		Transport: &fakeTransport{},
		Generator: fixedGenerator{name: ""},
	})
	if !errors.Is(err, ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}

func TestNewWithEmailsOnly(t *testing.T) {
	t.Parallel()

	n, _ := newTestNotifier(t, Options{Emails: []string{"x@y.com"}})
	cfg := n.Config()
	if len(cfg.Topics) != 0 {
		t.Fatalf("expected no generated topic when emails are set, got %v", cfg.Topics)
	}
	if want := []string{"x@y.com"}; !slices.Equal(cfg.Emails, want) {
		t.Fatalf("expected emails %v, got %v", want, cfg.Emails)
	}
}

func TestUpdateThenRemoveDefaultsRestoresPriorSet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)
	if err := config.Write(path, config.Config{
		Topics:   []string{"t"},
		Defaults: map[string]string{"priority": "2"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, _ := newTestNotifier(t, Options{ConfPath: path})
	before := n.Config().Defaults

	if err := n.UpdateDefaults(map[string]string{"title": "X"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Config().Defaults["title"] != "X" {
		t.Fatalf("expected updated title")
	}
	if err := n.RemoveDefaults([]string{"title"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := n.Config().Defaults
	if len(after) != len(before) {
		t.Fatalf("expected prior default set %v, got %v", before, after)
	}
	for k, v := range before {
		if after[k] != v {
			t.Fatalf("default %q: expected %q, got %q", k, v, after[k])
		}
	}
}

func TestUpdateDefaultsRejectsUnknownKey(t *testing.T) {
	t.Parallel()

	n, _ := newTestNotifier(t, Options{Topics: []string{"t"}})
	if err := n.UpdateDefaults(map[string]string{"bogus": "1"}, false); !errors.Is(err, config.ErrUnknownDefault) {
		t.Fatalf("expected ErrUnknownDefault, got %v", err)
	}
}

func TestRemoveMutatorsIgnoreAbsentItems(t *testing.T) {
	t.Parallel()

	n, _ := newTestNotifier(t, Options{
		Topics: []string{"a", "b"},
		Emails: []string{"x@y.com"},
	})

	if err := n.RemoveTopics([]string{"missing"}, false); err != nil {
		t.Fatalf("expected absent topic to be a warning, got %v", err)
	}
	if err := n.RemoveEmails([]string{"missing@nowhere"}, false); err != nil {
		t.Fatalf("expected absent email to be a warning, got %v", err)
	}
	if err := n.RemoveDefaults([]string{"click"}, false); err != nil {
		t.Fatalf("expected absent default to be a warning, got %v", err)
	}

	cfg := n.Config()
	if want := []string{"a", "b"}; !slices.Equal(cfg.Topics, want) {
		t.Fatalf("expected topics unchanged, got %v", cfg.Topics)
	}
}

func TestMutatorsPersistWhenAsked(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)
	n, _ := newTestNotifier(t, Options{
		ConfPath: path,
		Topics:   []string{"a", "b"},
		Persist:  true,
	})

	if err := n.RemoveTopics([]string{"a"}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"b"}; !slices.Equal(reloaded.Topics, want) {
		t.Fatalf("expected persisted topics %v, got %v", want, reloaded.Topics)
	}

	if err := n.AddBaseURLs([]string{"https://ntfy.example.com"}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reloaded, err = config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"https://ntfy.example.com"}; !slices.Equal(reloaded.BaseURLs, want) {
		t.Fatalf("expected persisted base URLs %v, got %v", want, reloaded.BaseURLs)
	}
}

func TestRemoveAllTargets(t *testing.T) {
	t.Parallel()

	n, _ := newTestNotifier(t, Options{
		Topics:   []string{"a", "b"},
		Emails:   []string{"x@y.com"},
		BaseURLs: []string{"https://ntfy.example.com"},
	})

	if err := n.RemoveAllTopics(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.RemoveAllEmails(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.RemoveAllBaseURLs(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := n.Config()
	if len(cfg.Topics) != 0 || len(cfg.Emails) != 0 || len(cfg.BaseURLs) != 0 {
		t.Fatalf("expected all targets cleared, got %+v", cfg)
	}
}

func TestAddMutatorsSkipDuplicates(t *testing.T) {
	t.Parallel()

	n, _ := newTestNotifier(t, Options{Topics: []string{"a"}})
	if err := n.AddTopics([]string{"a", "b"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a", "b"}; !slices.Equal(n.Config().Topics, want) {
		t.Fatalf("expected %v, got %v", want, n.Config().Topics)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	n, _ := newTestNotifier(t, Options{
		Topics:   []string{"a", "b"},
		Emails:   []string{"x@y.com"},
		Defaults: map[string]string{"title": "Hello"},
	})

	out := n.Describe()
	for _, want := range []string{
		"topics: a, b",
		"emails to: x@y.com",
		"base URLs: " + config.DefaultBaseURL,
		"title: Hello",
		n.Path(),
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected describe output to contain %q, got:\n%s", want, out)
		}
	}
}
