package notifier

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vict0rsch/ntfy-go/internal/config"
)

// AddTopics appends topics that are not already configured, warning on
// duplicates, and persists the configuration when asked to.
func (n *Notifier) AddTopics(topics []string, persist bool) error {
	n.mu.Lock()
	n.cfg.Topics = n.appendMissing(n.cfg.Topics, topics, "topic")
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// AddEmails appends emails that are not already configured.
func (n *Notifier) AddEmails(emails []string, persist bool) error {
	n.mu.Lock()
	n.cfg.Emails = n.appendMissing(n.cfg.Emails, emails, "email")
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// AddBaseURLs appends base URLs that are not already configured.
func (n *Notifier) AddBaseURLs(urls []string, persist bool) error {
	n.mu.Lock()
	n.cfg.BaseURLs = n.appendMissing(n.cfg.BaseURLs, urls, "base URL")
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// RemoveTopics removes the given topics. A topic that is not configured is a
// warning, not an error.
func (n *Notifier) RemoveTopics(topics []string, persist bool) error {
	n.mu.Lock()
	n.cfg.Topics = n.removePresent(n.cfg.Topics, topics, "topic")
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// RemoveEmails removes the given emails.
func (n *Notifier) RemoveEmails(emails []string, persist bool) error {
	n.mu.Lock()
	n.cfg.Emails = n.removePresent(n.cfg.Emails, emails, "email")
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// RemoveBaseURLs removes the given base URLs.
func (n *Notifier) RemoveBaseURLs(urls []string, persist bool) error {
	n.mu.Lock()
	n.cfg.BaseURLs = n.removePresent(n.cfg.BaseURLs, urls, "base URL")
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// RemoveAllTopics clears the topic list.
func (n *Notifier) RemoveAllTopics(persist bool) error {
	n.mu.Lock()
	n.cfg.Topics = nil
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// RemoveAllEmails clears the email list.
func (n *Notifier) RemoveAllEmails(persist bool) error {
	n.mu.Lock()
	n.cfg.Emails = nil
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// RemoveAllBaseURLs clears the base URL list, falling back to the default
// gateway on the next dispatch.
func (n *Notifier) RemoveAllBaseURLs(persist bool) error {
	n.mu.Lock()
	n.cfg.BaseURLs = nil
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// UpdateDefaults merges the given message defaults into the configuration,
// overwriting on key collision. Keys are validated against the allow-list.
func (n *Notifier) UpdateDefaults(defaults map[string]string, persist bool) error {
	if err := config.ValidateDefaults(defaults); err != nil {
		return err
	}
	n.mu.Lock()
	for k, v := range defaults {
		n.cfg.Defaults[strings.ToLower(k)] = v
	}
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

// RemoveDefaults deletes the given message default keys. An absent key is a
// warning, not an error.
func (n *Notifier) RemoveDefaults(keys []string, persist bool) error {
	n.mu.Lock()
	for _, k := range keys {
		k = strings.ToLower(k)
		if _, ok := n.cfg.Defaults[k]; !ok {
			n.warnf("default is not configured; ignoring", zap.String("key", k))
			continue
		}
		delete(n.cfg.Defaults, k)
	}
	n.mu.Unlock()
	return n.maybeWrite(persist)
}

func (n *Notifier) appendMissing(current, items []string, kind string) []string {
	for _, item := range items {
		if contains(current, item) {
			n.warnf(kind+" is already configured; ignoring", zap.String(kind, item))
			continue
		}
		current = append(current, item)
	}
	return current
}

func (n *Notifier) removePresent(current, items []string, kind string) []string {
	for _, item := range items {
		if !contains(current, item) {
			n.warnf(kind+" is not configured; ignoring", zap.String(kind, item))
			continue
		}
		kept := current[:0]
		for _, existing := range current {
			if existing != item {
				kept = append(kept, existing)
			}
		}
		current = kept
	}
	return current
}

func (n *Notifier) maybeWrite(persist bool) error {
	if !persist {
		return nil
	}
	return n.WriteConfig()
}

func contains(list []string, item string) bool {
	for _, existing := range list {
		if existing == item {
			return true
		}
	}
	return false
}
