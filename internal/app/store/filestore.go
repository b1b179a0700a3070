package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/aseptimu/codepool-shortener/internal/app/service"
)

const (
	opInsert  = "insert"
	opDelete  = "delete"
	opSetting = "setting"
)

// fileRecord - одна строка журнала FileStore.
type fileRecord struct {
	Op     string `json:"op"`
	Code   string `json:"code,omitempty"`
	Target string `json:"target,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  int64  `json:"value,omitempty"`
}

// FileStore - основное хранилище в файле JSON-строк. Используется, когда DATABASE_DSN не задан.
// При открытии журнал проигрывается и переписывается в сжатом виде.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	urls     map[string]string
	settings map[string]int64
}

func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		urls:     make(map[string]string),
		settings: make(map[string]int64),
	}
	if err := fs.loadFromFile(); err != nil {
		return nil, err
	}
	if err := fs.rewriteFile(); err != nil {
		return nil, fmt.Errorf("failed to compact %s: %w", filePath, err)
	}
	return fs, nil
}

func (fs *FileStore) loadFromFile() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		var record fileRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return fmt.Errorf("%s:%d: %w", fs.filePath, line, err)
		}
		fs.apply(record)
	}
	return scanner.Err()
}

func (fs *FileStore) apply(record fileRecord) {
	switch record.Op {
	case opInsert:
		if _, ok := fs.urls[record.Code]; !ok {
			fs.urls[record.Code] = record.Target
		}
	case opDelete:
		delete(fs.urls, record.Code)
	case opSetting:
		fs.settings[record.Name] = record.Value
	}
}

func (fs *FileStore) appendRecord(record fileRecord) error {
	file, err := os.OpenFile(fs.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	jsonData, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = file.Write(append(jsonData, '\n'))
	return err
}

func (fs *FileStore) rewriteFile() error {
	file, err := os.OpenFile(fs.filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for code, target := range fs.urls {
		if err := encoder.Encode(fileRecord{Op: opInsert, Code: code, Target: target}); err != nil {
			return err
		}
	}
	for name, value := range fs.settings {
		if err := encoder.Encode(fileRecord{Op: opSetting, Name: name, Value: value}); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func (fs *FileStore) InsertMapping(_ context.Context, code, target string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.urls[code]; ok {
		return nil
	}
	record := fileRecord{Op: opInsert, Code: code, Target: target}
	if err := fs.appendRecord(record); err != nil {
		return err
	}
	fs.apply(record)
	return nil
}

func (fs *FileStore) DeleteMapping(_ context.Context, code string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.urls[code]; !ok {
		return nil
	}
	record := fileRecord{Op: opDelete, Code: code}
	if err := fs.appendRecord(record); err != nil {
		return err
	}
	fs.apply(record)
	return nil
}

func (fs *FileStore) UpsertSetting(_ context.Context, name string, value int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	record := fileRecord{Op: opSetting, Name: name, Value: value}
	if err := fs.appendRecord(record); err != nil {
		return err
	}
	fs.apply(record)
	return nil
}

func (fs *FileStore) Mappings(_ context.Context) ([]service.Mapping, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return sortedMappings(fs.urls), nil
}

func (fs *FileStore) Settings(_ context.Context) ([]service.Setting, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return sortedSettings(fs.settings), nil
}

func (fs *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(fs.filePath)
	return err
}

func (fs *FileStore) Close() error {
	return nil
}

func sortedMappings(urls map[string]string) []service.Mapping {
	result := make([]service.Mapping, 0, len(urls))
	for code, target := range urls {
		result = append(result, service.Mapping{Code: code, Target: target})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

func sortedSettings(settings map[string]int64) []service.Setting {
	result := make([]service.Setting, 0, len(settings))
	for name, value := range settings {
		result = append(result, service.Setting{Name: name, Value: value})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
