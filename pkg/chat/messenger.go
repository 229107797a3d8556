// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package chat

import "sync"

// DefaultPrefix is prepended to messages sent through a new Messenger.
const DefaultPrefix = "[Hytalib] "

// Recipient receives chat messages.
type Recipient interface {
	SendMessage(msg string)
}

// Messenger sends prefixed, formatted messages. The zero value has no
// prefix; use NewMessenger for the default one.
type Messenger struct {
	mu     sync.RWMutex
	prefix string
}

// NewMessenger returns a Messenger using DefaultPrefix.
func NewMessenger() *Messenger {
	return &Messenger{prefix: DefaultPrefix}
}

// SetPrefix replaces the prefix. An empty prefix sends messages bare.
func (m *Messenger) SetPrefix(prefix string) {
	m.mu.Lock()
	m.prefix = prefix
	m.mu.Unlock()
}

// Prefix returns the current prefix.
func (m *Messenger) Prefix() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefix
}

// Compose returns the message exactly as recipients see it. The prefix is
// sent as is; only msg is run through Format.
func (m *Messenger) Compose(msg string) string {
	return m.Prefix() + Format(msg)
}

// Send delivers msg to r. A nil recipient is ignored.
func (m *Messenger) Send(r Recipient, msg string) {
	if r == nil {
		return
	}
	r.SendMessage(m.Compose(msg))
}

// Broadcast formats msg once and delivers it to every non-nil recipient.
func (m *Messenger) Broadcast(recipients []Recipient, msg string) {
	out := m.Compose(msg)
	for _, r := range recipients {
		if r != nil {
			r.SendMessage(out)
		}
	}
}
