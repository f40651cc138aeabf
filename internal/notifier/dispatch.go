package notifier

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vict0rsch/ntfy-go/internal/config"
)

// Message is one notification to dispatch. Target slices follow the same
// nil-vs-empty convention as Options: nil falls back to the stored
// configuration, a non-nil empty slice suppresses that target kind entirely.
type Message struct {
	Body string

	Topics   []string
	Emails   []string
	BaseURLs []string

	Title    string
	Priority string
	Tags     []string
	Click    string
	Attach   string
	Actions  []string
	Icon     string

	// Debug surfaces every resolved request (URL, method, headers, body
	// size) through the logger before sending. Diagnostics only.
	Debug bool
}

// Notify dispatches the message to every configured (base URL, destination)
// pair: one request per topic at {base}/{topic}, one per email at
// {base}/alerts. It returns the ordered list of destinations a request was
// attempted for, one entry per pair, topics before emails, repeated per base
// URL. A transport failure for one destination never prevents the remaining
// dispatches; the errors are accumulated and returned together.
func (n *Notifier) Notify(ctx context.Context, m Message) ([]string, error) {
	n.mu.Lock()
	cfg := n.cfg.Clone()
	n.mu.Unlock()

	attach := m.Attach
	if attach == "" {
		attach = cfg.Defaults["attach"]
	}
	if m.Body != "" && attach != "" {
		return nil, fmt.Errorf("%w (attachment: %s)", ErrConflict, attach)
	}

	headers := n.assembleHeaders(cfg, m)

	method := "POST"
	var fileBody []byte
	if attach != "" {
		if strings.HasPrefix(attach, "http") {
			headers["Attach"] = attach
		} else {
			data, err := os.ReadFile(attach)
			if err != nil {
				return nil, fmt.Errorf("read attachment: %w", err)
			}
			method = "PUT"
			fileBody = data
			headers["Filename"] = filepath.Base(attach)
		}
	}

	bases := n.resolveBaseURLs(cfg, m.BaseURLs)
	topics := m.Topics
	if topics == nil {
		topics = cfg.Topics
	}
	emails := m.Emails
	if emails == nil {
		emails = cfg.Emails
	}
	if len(topics) == 0 && len(emails) == 0 {
		n.warnf("no destination to notify; nothing dispatched")
		return []string{}, nil
	}

	logRequest := n.log.Debug
	if m.Debug {
		logRequest = n.log.Info
	}

	dispatched := make([]string, 0, len(bases)*(len(topics)+len(emails)))
	var errs error
	for _, base := range bases {
		for _, t := range topics {
			url := base + "/" + t
			h := copyHeaders(headers)
			logRequest("dispatching notification",
				zap.String("url", url),
				zap.String("method", method),
				zap.Any("headers", h),
				zap.Int("body_bytes", bodySize(method, m.Body, fileBody)))
			dispatched = append(dispatched, t)
			errs = multierr.Append(errs, n.send(ctx, method, url, m.Body, fileBody, h))
		}
		for _, e := range emails {
			url := base + "/alerts"
			h := copyHeaders(headers)
			h["Email"] = e
			logRequest("dispatching notification",
				zap.String("url", url),
				zap.String("method", method),
				zap.Any("headers", h),
				zap.Int("body_bytes", bodySize(method, m.Body, fileBody)))
			dispatched = append(dispatched, e)
			errs = multierr.Append(errs, n.send(ctx, method, url, m.Body, fileBody, h))
		}
	}
	return dispatched, errs
}

func (n *Notifier) send(ctx context.Context, method, url, body string, fileBody []byte, headers map[string]string) error {
	var err error
	if method == "PUT" {
		err = n.transport.Put(ctx, url, bytes.NewReader(fileBody), headers)
	} else {
		err = n.transport.Post(ctx, url, []byte(body), headers)
	}
	if err != nil {
		return fmt.Errorf("dispatch to %s: %w", url, err)
	}
	return nil
}

// assembleHeaders layers the stored message defaults (re-cased to the wire
// capitalization) under the per-call overrides. Empty values never make it
// into the header set; the attach default is handled by the caller since it
// switches between the Attach header and a file upload.
func (n *Notifier) assembleHeaders(cfg config.Config, m Message) map[string]string {
	headers := map[string]string{}
	for k, v := range cfg.Defaults {
		if v == "" || strings.EqualFold(k, "attach") {
			continue
		}
		headers[wireKey(k)] = v
	}
	if m.Priority != "" {
		headers["Priority"] = m.Priority
	}
	if m.Title != "" {
		headers["Title"] = m.Title
	}
	if m.Click != "" {
		headers["Click"] = m.Click
	}
	if m.Icon != "" {
		headers["Icon"] = m.Icon
	}
	if len(m.Tags) > 0 {
		headers["Tags"] = strings.Join(m.Tags, ",")
	}
	if len(m.Actions) > 0 {
		headers["Actions"] = strings.Join(m.Actions, ",")
	}
	return headers
}

// resolveBaseURLs applies the per-call > stored > built-in precedence and
// normalizes every URL by stripping a single trailing slash. A URL without an
// HTTP(S) scheme is suspicious but not fatal.
func (n *Notifier) resolveBaseURLs(cfg config.Config, override []string) []string {
	bases := override
	if bases == nil {
		bases = cfg.BaseURLs
	}
	if len(bases) == 0 {
		bases = []string{config.DefaultBaseURL}
	}
	out := make([]string, 0, len(bases))
	for _, base := range bases {
		base = strings.TrimSuffix(base, "/")
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			n.warnf("base URL does not look like an HTTP(S) URL", zap.String("base_url", base))
		}
		out = append(out, base)
	}
	return out
}

// wireKey re-cases a lower-case configuration key to the gateway's header
// capitalization (title -> Title).
func wireKey(k string) string {
	if k == "" {
		return k
	}
	return strings.ToUpper(k[:1]) + strings.ToLower(k[1:])
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h)+1)
	for k, v := range h {
		out[k] = v
	}
	return out
}

func bodySize(method, body string, fileBody []byte) int {
	if method == "PUT" {
		return len(fileBody)
	}
	return len(body)
}
