package notifier

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vict0rsch/ntfy-go/internal/config"
	"github.com/vict0rsch/ntfy-go/internal/topic"
	"github.com/vict0rsch/ntfy-go/internal/transport"
)

// Options configures a Notifier. Explicit target lists always win over values
// loaded from the configuration file. A nil slice means "not provided"; a
// non-nil empty slice is an explicit empty override.
type Options struct {
	Topics   []string
	Emails   []string
	BaseURLs []string
	Defaults map[string]string

	// ConfPath locates the configuration file. Empty means the current
	// working directory; a directory gets config.FileName appended.
	ConfPath string

	// Persist writes the merged configuration back after construction and
	// after every mutation that asks for it.
	Persist bool
	// Warn enables non-fatal diagnostics (absent removals, sensitive-data
	// reminders, suspicious base URLs).
	Warn bool
	// Describe logs a human-readable summary of the notifier once built.
	Describe bool

	// Injected collaborators. Nil values get production defaults.
	Transport transport.Transport
	Generator topic.Generator
	Logger    *zap.Logger
}

// Notifier dispatches notifications to a push gateway. It is safe for
// concurrent use; every call is synchronous and stateless beyond the owned
// configuration.
type Notifier struct {
	mu   sync.Mutex
	cfg  config.Config
	path string

	persist   bool
	warn      bool
	transport transport.Transport
	generator topic.Generator
	log       *zap.Logger
}

// New builds a Notifier by layering the configuration file under the explicit
// options. If neither topics nor emails end up configured, a random topic is
// generated so the notifier is always usable.
func New(opts Options) (*Notifier, error) {
	// Validate before any file or network activity.
	if err := config.ValidateDefaults(opts.Defaults); err != nil {
		return nil, err
	}

	path, err := config.ResolvePath(opts.ConfPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Defaults == nil {
		cfg.Defaults = map[string]string{}
	}
	for k, v := range opts.Defaults {
		cfg.Defaults[strings.ToLower(k)] = v
	}
	if opts.Topics != nil {
		cfg.Topics = append([]string(nil), opts.Topics...)
	}
	if opts.Emails != nil {
		cfg.Emails = append([]string(nil), opts.Emails...)
	}
	if opts.BaseURLs != nil {
		cfg.BaseURLs = append([]string(nil), opts.BaseURLs...)
	}

	n := &Notifier{
		cfg:       cfg,
		path:      path,
		persist:   opts.Persist,
		warn:      opts.Warn,
		transport: opts.Transport,
		generator: opts.Generator,
		log:       opts.Logger,
	}
	if n.transport == nil {
		n.transport = transport.NewHTTP(0)
	}
	if n.generator == nil {
		n.generator = topic.NewWords()
	}
	if n.log == nil {
		n.log = zap.NewNop()
	}

	if len(n.cfg.Topics) == 0 && len(n.cfg.Emails) == 0 {
		generated := n.generator.Generate()
		n.warnf("no topic and no email configured; generating a random topic",
			zap.String("topic", generated))
		if generated != "" {
			n.cfg.Topics = []string{generated}
		}
	}
	if len(n.cfg.Topics) == 0 && len(n.cfg.Emails) == 0 {
		return nil, ErrNoTargets
	}

	if opts.Persist {
		if err := n.WriteConfig(); err != nil {
			return nil, err
		}
	}
	if opts.Describe {
		n.log.Info(n.Describe())
	}
	return n, nil
}

// Config returns a defensive copy of the current configuration.
func (n *Notifier) Config() config.Config {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cfg.Clone()
}

// Path returns the resolved configuration file location.
func (n *Notifier) Path() string { return n.path }

// WriteConfig persists the current configuration to the resolved path.
func (n *Notifier) WriteConfig() error {
	n.warnf("your configuration may contain sensitive data; make sure it is ignored by your version control system",
		zap.String("path", n.path))

	n.mu.Lock()
	cfg := n.cfg.Clone()
	n.mu.Unlock()
	return config.Write(n.path, cfg)
}

// Describe renders a human-readable summary of the notifier's state. It is a
// pure function of the configuration and performs no I/O.
func (n *Notifier) Describe() string {
	cfg := n.Config()

	var b strings.Builder
	if len(cfg.Topics) > 0 {
		fmt.Fprintf(&b, "Notifier will push to topics: %s\n", strings.Join(cfg.Topics, ", "))
	}
	if len(cfg.Emails) > 0 {
		fmt.Fprintf(&b, "Notifier will send emails to: %s\n", strings.Join(cfg.Emails, ", "))
	}
	urls := cfg.BaseURLs
	if len(urls) == 0 {
		urls = []string{config.DefaultBaseURL}
	}
	fmt.Fprintf(&b, "Notifier will target base URLs: %s\n", strings.Join(urls, ", "))

	keys := make([]string, 0, len(cfg.Defaults))
	for k, v := range cfg.Defaults {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "Default %s: %s\n", k, cfg.Defaults[k])
	}
	fmt.Fprintf(&b, "Configuration file: %s", n.path)
	return b.String()
}

func (n *Notifier) warnf(msg string, fields ...zap.Field) {
	if n.warn {
		n.log.Warn(msg, fields...)
	}
}
