// Package store owns the secret mapping held in the encrypted vault file and
// its load/decrypt, mutate, encrypt/persist cycle. The mapping lives in
// memory only for the duration of a single operation and is never cached
// across invocations.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/llmsecrets/llm-secrets/pkg/mask"
	"github.com/llmsecrets/llm-secrets/pkg/sops"
)

const (
	FileMode = 0o600 // Owner read/write only
	DirMode  = 0o700 // Owner read/write/execute only

	// InternalPrefix marks keys that exist as shipped placeholders. They are
	// excluded from the available count and from injection.
	InternalPrefix = "_"

	// ExampleKey is written by Init so a fresh vault decrypts to a
	// non-empty, recognizable document.
	ExampleKey   = "_example"
	exampleValue = "replace-me"

	tmpSuffix      = ".tmp"
	lockSuffix     = ".lock"
	sopsConfigName = ".sops.yaml"

	MaxKeyLength = 256
)

var (
	ErrStoreNotFound   = errors.New("store: vault file not found")
	ErrStoreExists     = errors.New("store: vault file already exists")
	ErrKeyNotFound     = errors.New("store: secret key not found")
	ErrInternalKey     = errors.New("store: key is reserved for internal use")
	ErrKeyInvalid      = errors.New("store: invalid key name")
	ErrPersistFailed   = errors.New("store: failed to persist vault file")
	ErrInvalidDocument = errors.New("store: vault document is not a key/value mapping")
)

// Entry is one row of a key listing. Values are never part of a listing.
type Entry struct {
	Key       string
	Internal  bool
	Available bool
}

// Store drives the read-modify-write cycle against a single vault file
// through an external encryption backend.
type Store struct {
	path    string
	backend sops.Backend
}

// New creates a Store for the vault file at path. The path comes from a
// resolved config value, never from ambient state.
func New(path string, backend sops.Backend) *Store {
	return &Store{path: path, backend: backend}
}

// Path returns the vault file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the vault file is present on disk.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// NormalizeKey canonicalizes a key to NFC so visually identical keys map to
// the same entry regardless of how the terminal composed them.
func NormalizeKey(key string) string {
	return norm.NFC.String(strings.TrimSpace(key))
}

// IsInternal reports whether key is a reserved placeholder entry.
func IsInternal(key string) bool {
	return strings.HasPrefix(key, InternalPrefix)
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", ErrKeyInvalid)
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("%w: key exceeds %d characters", ErrKeyInvalid, MaxKeyLength)
	}
	for _, r := range key {
		if !isValidKeyChar(r) {
			return fmt.Errorf("%w: character %q is not allowed", ErrKeyInvalid, r)
		}
	}
	return nil
}

func isValidKeyChar(r rune) bool {
	// Letters and digits in any script, plus -, _, ., /
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '-' || r == '_' || r == '.' || r == '/'
}

// Load decrypts the vault file and returns a private copy of the mapping.
// Mutating the returned map does not affect any other state.
func (s *Store) Load(ctx context.Context) (map[string]string, error) {
	if !s.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, s.path)
	}

	plaintext, err := s.backend.DecryptFile(ctx, s.path)
	if err != nil {
		return nil, err
	}

	secrets := make(map[string]string)
	if err := yaml.Unmarshal(plaintext, &secrets); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, s.path)
	}
	return secrets, nil
}

// save serializes the mapping, encrypts it through the backend, and moves it
// into place with a temp-file-plus-rename sequence. A failure at any point
// leaves the previous vault file untouched; the plaintext temp file never
// outlives the call.
func (s *Store) save(ctx context.Context, secrets map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	// yaml.v3 marshals map keys in sorted order, keeping the document stable
	// across saves.
	doc, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	tmpPath := s.path + tmpSuffix
	if err := os.WriteFile(tmpPath, doc, FileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	defer os.Remove(tmpPath)

	if err := s.backend.EncryptFileInPlace(ctx, tmpPath, dir); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

// Init creates a new vault file containing only the internal example key.
// The whole existence-check-and-create sequence runs under the advisory
// lock, so two concurrent Init calls cannot both succeed. recipient may be
// empty, in which case it is derived from the configured key material.
func (s *Store) Init(ctx context.Context, recipient string) error {
	release, err := s.acquireLock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	defer release()

	if s.Exists() {
		return fmt.Errorf("%w: %s", ErrStoreExists, s.path)
	}

	if recipient == "" {
		recipient, err = s.backend.Recipient(ctx)
		if err != nil {
			return err
		}
	}

	if err := s.writeSopsConfig(recipient); err != nil {
		return err
	}

	return s.save(ctx, map[string]string{ExampleKey: exampleValue})
}

// writeSopsConfig writes the backend's creation rules next to the vault file
// if no configuration exists there yet.
func (s *Store) writeSopsConfig(recipient string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	configPath := filepath.Join(dir, sopsConfigName)
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	rules := fmt.Sprintf("creation_rules:\n  - age: %s\n", recipient)
	if err := os.WriteFile(configPath, []byte(rules), FileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

// Set inserts or overwrites a secret and persists the vault. The lock is
// held across the whole load-mutate-persist cycle.
func (s *Store) Set(ctx context.Context, key, value string) error {
	key = NormalizeKey(key)
	if err := validateKey(key); err != nil {
		return err
	}

	release, err := s.acquireLock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	defer release()

	secrets, err := s.Load(ctx)
	if err != nil {
		return err
	}
	secrets[key] = value
	return s.save(ctx, secrets)
}

// Delete removes a secret and persists the vault.
func (s *Store) Delete(ctx context.Context, key string) error {
	key = NormalizeKey(key)

	release, err := s.acquireLock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	defer release()

	secrets, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := secrets[key]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	delete(secrets, key)
	return s.save(ctx, secrets)
}

// List projects the mapping to entries sorted by key. Available means the
// key is not internal and carries a non-empty value.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	secrets, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(secrets))
	for key, value := range secrets {
		internal := IsInternal(key)
		entries = append(entries, Entry{
			Key:       key,
			Internal:  internal,
			Available: !internal && value != "",
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Get returns the raw secret value. Callers must treat the result as
// sensitive and forward it only to a sink the user controls. Internal keys
// resolve only when allowInternal is set.
func (s *Store) Get(ctx context.Context, key string, allowInternal bool) (string, error) {
	key = NormalizeKey(key)

	secrets, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	value, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if IsInternal(key) && !allowInternal {
		// Internal keys read like missing keys unless explicitly allowed.
		return "", fmt.Errorf("%w: %s: %w (pass --internal to read it)", ErrKeyNotFound, key, ErrInternalKey)
	}
	return value, nil
}

// Peek returns the masked display form of a secret and its length; the raw
// value never leaves this method.
func (s *Store) Peek(ctx context.Context, key string, reveal int, allowInternal bool) (string, int, error) {
	value, err := s.Get(ctx, key, allowInternal)
	if err != nil {
		return "", 0, err
	}
	masked, length := mask.Preview(value, reveal)
	return masked, length, nil
}

func (s *Store) lockPath() string {
	return s.path + lockSuffix
}
