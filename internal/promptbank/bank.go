// Package promptbank holds the pool of follow-up conversation prompts the
// sweeper draws from. The bank loads from a JSON file and falls back to a
// small built-in set when the file is missing or malformed, so prompt supply
// is never a runtime failure.
package promptbank

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// defaultPrompts ships with the binary and backs the bank whenever the
// configured file cannot be used.
var defaultPrompts = []string{
	"What are you doing right now? 💭",
	"How was your day today? 🌸",
	"If we could go anywhere together, where would you take me? ✈️💜",
	"Do you like listening to music when you study or relax? 🎶",
	"What's your favorite food? 🍜",
	"Who was your first bias in BTS? 😉",
	"Tell me something funny that happened to you today 😂",
	"If you could sing one song with me, what would it be? 🎤",
	"What's the weather like where you are? ☀️🌧️",
	"Truth or dare? 😏",
}

// bankFile is the accepted JSON document shape: either an object with a
// conversation_bank array, or a bare array of strings.
type bankFile struct {
	ConversationBank []string `json:"conversation_bank"`
}

// Bank is a concurrency-safe pool of prompt strings.
type Bank struct {
	mu           sync.RWMutex
	prompts      []string
	fromDefaults bool
	path         string
	logger       *log.Logger
}

// Load builds a Bank from the JSON file at path. Any failure (missing file,
// bad JSON, empty list) is logged once and answered with the built-in
// defaults.
func Load(path string, logger *log.Logger) *Bank {
	if logger == nil {
		logger = log.Default()
	}
	b := &Bank{path: path, logger: logger}
	if err := b.reload(); err != nil {
		logger.Printf("promptbank: could not load %s (%v), using %d built-in prompts", path, err, len(defaultPrompts))
		b.useDefaults()
	}
	return b
}

// RandomPrompt returns a uniformly random prompt from the bank.
func (b *Bank) RandomPrompt() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prompts[rand.IntN(len(b.prompts))]
}

// Len returns the number of prompts currently loaded.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.prompts)
}

// FromDefaults reports whether the bank is serving the built-in prompts.
func (b *Bank) FromDefaults() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fromDefaults
}

// Watch reloads the bank when its source file changes. A reload failure keeps
// the previous prompts. Watch blocks until ctx is done; run it in its own
// goroutine.
func (b *Bank) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save and
	// the inode-level watch would be lost after the first write.
	if err := watcher.Add(filepath.Dir(b.path)); err != nil {
		return err
	}
	target := filepath.Clean(b.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := b.reload(); err != nil {
				b.logger.Printf("promptbank: reload of %s failed (%v), keeping %d previous prompts", b.path, err, b.Len())
				continue
			}
			b.logger.Printf("promptbank: reloaded %d prompts from %s", b.Len(), b.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Printf("promptbank: watch error: %v", err)
		}
	}
}

func (b *Bank) reload() error {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return err
	}
	prompts, err := parse(raw)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.prompts = prompts
	b.fromDefaults = false
	b.mu.Unlock()
	return nil
}

func (b *Bank) useDefaults() {
	b.mu.Lock()
	b.prompts = defaultPrompts
	b.fromDefaults = true
	b.mu.Unlock()
}

func parse(raw []byte) ([]string, error) {
	var doc bankFile
	if err := json.Unmarshal(raw, &doc); err == nil && len(doc.ConversationBank) > 0 {
		return doc.ConversationBank, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New("prompt bank is empty")
	}
	return list, nil
}
