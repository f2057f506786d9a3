// Package storage provides the durable key-value store for client state.
//
// It plays the role a browser's local storage plays for a web front-end:
// the bearer token, the serialized user profile and the remembered login
// e-mail survive restarts until logout clears them.
//
// This package implements a two-tier storage system:
//  1. CSV file for persistence (one "key","value" row per entry)
//  2. In-memory map for lookups
//
// Thread-safety:
//   - All operations are protected by mutex
//   - Safe for concurrent access from UI commands running in goroutines
package storage

import (
	"bufio"
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const (
	// bufferSize for buffered I/O (64KB)
	bufferSize = 64 * 1024

	// fileMode keeps the credential readable by the owner only.
	fileMode = 0600
)

// Well-known keys.
const (
	KeyToken      = "token"
	KeyUser       = "user"
	KeySavedEmail = "savedEmail"
	KeyRememberMe = "rememberMe"
)

// Storage provides thread-safe durable key-value storage.
//
// Data flow:
//
//	Read:   CSV → Load into map → Serve from map
//	Write:  Update map → Rewrite CSV
//	Delete: Remove from map → Rewrite CSV
//
// Every write rewrites the whole file. The store holds a handful of keys,
// so this stays cheap and keeps the file free of stale rows.
type Storage struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// New creates a Storage backed by path and loads existing data from it.
//
// A missing file is normal on first run.
func New(path string) *Storage {
	s := &Storage{
		path:   path,
		values: make(map[string]string),
	}

	s.loadFromFile()

	return s
}

// loadFromFile loads key-value rows from the CSV file into memory.
//
// Error handling:
//   - File not found: normal on first run
//   - Parse errors: logged, store starts empty
//   - Rows with fewer than two columns: skipped
func (s *Storage) loadFromFile() {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Println("📋 No existing state file found. Starting fresh...")
		} else {
			log.Println("⚠️  Failed to open state file:", err)
		}
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		log.Println("⚠️  Failed to read state file:", err)
		return
	}

	count := 0
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		s.values[record[0]] = record[1]
		count++
	}

	log.Println("📚 Loaded", count, "stored keys from", s.path)
}

// Get returns the value for key and whether it was present.
func (s *Storage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

// Set stores value under key and persists the store.
//
// The in-memory map is only updated after the file write succeeds, so
// memory and disk never disagree.
func (s *Storage) Set(key, value string) error {
	return s.SetMultiple(map[string]string{key: value})
}

// SetMultiple atomically stores several keys with a single file write.
func (s *Storage) SetMultiple(entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+len(entries))
	for k, v := range s.values {
		next[k] = v
	}
	for k, v := range entries {
		next[k] = v
	}

	if err := s.writeFile(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Delete removes keys and persists the store. Missing keys are ignored.
func (s *Storage) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values))
	for k, v := range s.values {
		next[k] = v
	}
	for _, k := range keys {
		delete(next, k)
	}

	if err := s.writeFile(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Clear removes every key.
func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(map[string]string{}); err != nil {
		return err
	}
	s.values = make(map[string]string)
	return nil
}

// Keys returns all stored keys in sorted order.
func (s *Storage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeFile rewrites the CSV file with values.
//
// Writes go to a temporary file in the same directory which is then
// renamed over the old one, so a crash never leaves a half-written store.
//
// Note: Caller must hold the mutex lock
func (s *Storage) writeFile(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".roadfix-state-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	bufferedWriter := bufio.NewWriterSize(tmp, bufferSize)
	writer := csv.NewWriter(bufferedWriter)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := writer.Write([]string{k, values[k]}); err != nil {
			tmp.Close()
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := bufferedWriter.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, s.path)
}
