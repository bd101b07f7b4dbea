package storage

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/saviobatista/launch-dashboard/internal/types"
)

const dayLayout = "2006-01-02"

// ErrStopped is returned by writes that arrive after Stop
var ErrStopped = errors.New("storage stopped")

// Storage appends selection events to one JSON-lines file per UTC day.
// Finished days are gzip compressed.
type Storage struct {
	outputDir string
	now       func() time.Time

	mu       sync.Mutex
	file     *os.File
	day      string
	stopped  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new Storage instance
func New(outputDir string) *Storage {
	return &Storage{
		outputDir: outputDir,
		now:       func() time.Time { return time.Now().UTC() },
		stopChan:  make(chan struct{}),
	}
}

// FileName returns the log file name for a day
func FileName(day time.Time) string {
	return fmt.Sprintf("selections_%s.log", day.UTC().Format(dayLayout))
}

// Start opens today's file and starts the rotation timer
func (s *Storage) Start() error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	s.mu.Lock()
	err := s.openFile(s.now())
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go s.rotationTimer()
	return nil
}

// Stop stops the rotation timer and closes the current file. Later writes
// fail with ErrStopped.
func (s *Storage) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

// WriteEvent appends one event as a JSON line
func (s *Storage) WriteEvent(event *types.SelectionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.WriteMessage(data)
}

// WriteMessage appends a raw line to the current file, rotating first
// when the day has changed since the file was opened.
func (s *Storage) WriteMessage(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}

	now := s.now()
	if s.file == nil || now.Format(dayLayout) != s.day {
		if err := s.rotate(now); err != nil {
			return err
		}
	}

	if len(message) == 0 || message[len(message)-1] != '\n' {
		message = append(message, '\n')
	}
	_, err := s.file.Write(message)
	return err
}

// rotationTimer handles daily rotation at midnight UTC
func (s *Storage) rotationTimer() {
	defer s.wg.Done()

	for {
		now := s.now()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

		select {
		case <-time.After(nextMidnight.Sub(now)):
			s.mu.Lock()
			err := s.rotate(s.now())
			s.mu.Unlock()
			if err != nil {
				log.Printf("Error during rotation: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// rotate closes the open file, compresses it when it belongs to an
// earlier day and opens the file for now. Callers hold mu.
func (s *Storage) rotate(now time.Time) error {
	today := now.Format(dayLayout)
	if s.file != nil {
		if s.day == today {
			return nil
		}
		previous := s.file.Name()
		if err := s.file.Close(); err != nil {
			log.Printf("Warning: failed to close %s: %v", previous, err)
		}
		s.file = nil
		if err := compressFile(previous); err != nil {
			return fmt.Errorf("failed to compress file: %w", err)
		}
	}
	return s.openFile(now)
}

func (s *Storage) openFile(now time.Time) error {
	filename := filepath.Join(s.outputDir, FileName(now))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	s.file = file
	s.day = now.Format(dayLayout)
	return nil
}

// compressFile gzips path into path.gz and removes the original
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer target.Close()

	gz := gzip.NewWriter(target)
	gz.Name = filepath.Base(path)
	if _, err := io.Copy(gz, source); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	if err := target.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}
