package application

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/vict0rsch/ntfy-go/internal/config"
	"github.com/vict0rsch/ntfy-go/internal/notifier"
	"github.com/vict0rsch/ntfy-go/internal/topic"
	"github.com/vict0rsch/ntfy-go/internal/transport"
)

// App implements the CLI commands on top of the notifier and config packages.
type App struct {
	logger    *zap.Logger
	out       io.Writer
	in        io.Reader
	transport transport.Transport
	generator topic.Generator
}

// New wires an App with production collaborators.
func New(logger *zap.Logger) *App {
	return &App{
		logger:    logger,
		out:       os.Stdout,
		in:        os.Stdin,
		transport: transport.NewHTTP(0),
		generator: topic.NewWords(),
	}
}

// SendParams carries the flag values of the send command. The Set booleans
// distinguish "flag not passed" from an explicitly empty value, which is how
// --emails "" suppresses configured emails for one call.
type SendParams struct {
	Message  string
	ConfPath string

	Topics    string
	TopicsSet bool
	Emails    string
	EmailsSet bool
	BaseURLs  string

	Title    string
	Priority string
	Tags     string
	Click    string
	Attach   string
	Actions  string
	Icon     string

	DefaultsFile string
	Debug        bool
}

// Send dispatches one notification using the stored configuration overlaid
// with the given flags, then reports every destination that was targeted.
func (a *App) Send(ctx context.Context, p SendParams) error {
	defaults := map[string]string{}
	if p.DefaultsFile != "" {
		loaded, err := config.LoadDefaultsFile(p.DefaultsFile)
		if err != nil {
			return err
		}
		defaults = loaded
	}

	n, err := notifier.New(notifier.Options{
		Topics:    listOrNil(p.Topics, p.TopicsSet),
		Emails:    listOrNil(p.Emails, p.EmailsSet),
		Defaults:  defaults,
		ConfPath:  p.ConfPath,
		Persist:   false,
		Warn:      false,
		Transport: a.transport,
		Generator: a.generator,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	dispatched, err := n.Notify(ctx, notifier.Message{
		Body:     p.Message,
		BaseURLs: listOrNil(p.BaseURLs, p.BaseURLs != ""),
		Title:    p.Title,
		Priority: p.Priority,
		Tags:     config.SplitList(p.Tags),
		Click:    p.Click,
		Attach:   p.Attach,
		Actions:  config.SplitList(p.Actions),
		Icon:     p.Icon,
		Debug:    p.Debug,
	})
	if len(dispatched) > 0 {
		fmt.Fprintf(a.out, "🎉 Notification sent to %s\n", strings.Join(dispatched, ", "))
	}
	return err
}

// Init creates a fresh configuration file with one generated topic. An
// existing file is only overwritten with force.
func (a *App) Init(confPath string, force bool) error {
	path, err := config.ResolvePath(confPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	generated := a.generator.Generate()
	cfg := config.Default()
	cfg.Topics = []string{generated}
	if err := config.Write(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "🔑 Your first topic is %q. Use it to subscribe to notifications!\n", generated)
	fmt.Fprintf(a.out, "🎉 Config file created at %s\n", path)
	return nil
}

// Clean deletes the configuration file, prompting for confirmation unless
// force is set.
func (a *App) Clean(confPath string, force bool) error {
	path, err := config.ResolvePath(confPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", config.ErrNotFound, path)
		}
		return err
	}
	if !force {
		fmt.Fprintf(a.out, "Are you sure you want to delete %s? [y/N] ", path)
		if !a.confirm() {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}
	if err := config.Remove(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "🎉 Config file removed from %s\n", path)
	return nil
}

// AddTopic appends a topic to the configuration file.
func (a *App) AddTopic(confPath, t string) error {
	return a.editConfig(confPath, func(cfg *config.Config) error {
		for _, existing := range cfg.Topics {
			if existing == t {
				return fmt.Errorf("topic %q already exists", t)
			}
		}
		cfg.Topics = append(cfg.Topics, t)
		fmt.Fprintf(a.out, "🎉 Topic %q added\n", t)
		return nil
	})
}

// AddEmail appends an email to the configuration file.
func (a *App) AddEmail(confPath, email string) error {
	return a.editConfig(confPath, func(cfg *config.Config) error {
		for _, existing := range cfg.Emails {
			if existing == email {
				return fmt.Errorf("email %q already exists", email)
			}
		}
		cfg.Emails = append(cfg.Emails, email)
		fmt.Fprintf(a.out, "🎉 Email %q added\n", email)
		return nil
	})
}

// AddDefault sets a message default in the configuration file, overwriting an
// existing value for the same key.
func (a *App) AddDefault(confPath, key, value string) error {
	if err := config.ValidateDefaults(map[string]string{key: value}); err != nil {
		return err
	}
	return a.editConfig(confPath, func(cfg *config.Config) error {
		key = strings.ToLower(key)
		if prev, ok := cfg.Defaults[key]; ok {
			fmt.Fprintf(a.out, "Default %q already exists (%q). Overwriting.\n", key, prev)
		}
		cfg.Defaults[key] = value
		fmt.Fprintf(a.out, "🎉 Default %s=%s added\n", key, value)
		return nil
	})
}

// RemoveTopic removes a topic from the configuration file. A missing topic is
// reported but is not an error.
func (a *App) RemoveTopic(confPath, t string) error {
	return a.editConfig(confPath, func(cfg *config.Config) error {
		kept := cfg.Topics[:0]
		found := false
		for _, existing := range cfg.Topics {
			if existing == t {
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		if !found {
			fmt.Fprintf(a.out, "Topic %q does not exist. Ignoring.\n", t)
			return nil
		}
		cfg.Topics = kept
		fmt.Fprintf(a.out, "🎉 Topic %q removed\n", t)
		return nil
	})
}

// RemoveEmail removes an email from the configuration file.
func (a *App) RemoveEmail(confPath, email string) error {
	return a.editConfig(confPath, func(cfg *config.Config) error {
		kept := cfg.Emails[:0]
		found := false
		for _, existing := range cfg.Emails {
			if existing == email {
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		if !found {
			fmt.Fprintf(a.out, "Email %q does not exist. Ignoring.\n", email)
			return nil
		}
		cfg.Emails = kept
		fmt.Fprintf(a.out, "🎉 Email %q removed\n", email)
		return nil
	})
}

// RemoveDefault removes a message default from the configuration file.
func (a *App) RemoveDefault(confPath, key string) error {
	return a.editConfig(confPath, func(cfg *config.Config) error {
		key = strings.ToLower(key)
		value, ok := cfg.Defaults[key]
		if !ok {
			fmt.Fprintf(a.out, "Default %q does not exist. Ignoring.\n", key)
			return nil
		}
		delete(cfg.Defaults, key)
		fmt.Fprintf(a.out, "🎉 Default %s=%s removed\n", key, value)
		return nil
	})
}

// NewTopic generates a random topic, optionally saving it to the
// configuration file.
func (a *App) NewTopic(confPath string, save bool) error {
	generated := a.generator.Generate()
	if !save {
		fmt.Fprintf(a.out, "🎉 Topic: %s\n", generated)
		return nil
	}

	path, err := config.ResolvePath(confPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Topics = append(cfg.Topics, generated)
	if err := config.Write(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "🎉 Topic %q added to %s\n", generated, path)
	return nil
}

// Describe prints the notifier summary resolved from the configuration file.
func (a *App) Describe(confPath string) error {
	n, err := notifier.New(notifier.Options{
		ConfPath:  confPath,
		Persist:   false,
		Warn:      false,
		Transport: a.transport,
		Generator: a.generator,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, n.Describe())
	return nil
}

// editConfig loads an existing configuration file, applies fn, and writes the
// result back. The file must already exist: target edits on a missing file
// are almost always a typo in --conf-path.
func (a *App) editConfig(confPath string, fn func(*config.Config) error) error {
	path, err := config.ResolvePath(confPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", config.ErrNotFound, path)
		}
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cfg.Defaults == nil {
		cfg.Defaults = map[string]string{}
	}
	if err := fn(&cfg); err != nil {
		return err
	}
	return config.Write(path, cfg)
}

func (a *App) confirm() bool {
	scanner := bufio.NewScanner(a.in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// listOrNil turns a comma-separated flag value into a list, preserving the
// nil-vs-empty distinction the notifier relies on: nil when the flag was not
// passed, an empty (non-nil) list when it was passed empty.
func listOrNil(raw string, set bool) []string {
	if !set {
		return nil
	}
	return config.SplitList(raw)
}
