package render

import (
	"fmt"
	"log"
	"os"

	"pursuit/shared"
)

const DefaultOutputFile = "grid_output.txt"

// FileRenderer keeps a file holding only the latest board
type FileRenderer struct {
	file *os.File
}

// NewFileRenderer creates or truncates the file at path
func NewFileRenderer(path string) (*FileRenderer, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open output file %s: %w", path, err)
	}
	log.Printf("Grid output will be written to %s", path)
	return &FileRenderer{file: file}, nil
}

func (r *FileRenderer) Name() string { return r.file.Name() }

// Render overwrites the file with the event's board
func (r *FileRenderer) Render(ev shared.CycleEvent) error {
	if _, err := r.file.Seek(0, 0); err != nil {
		return fmt.Errorf("seek output file: %w", err)
	}
	if err := r.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate output file: %w", err)
	}

	header(r.file, ev)
	if err := Text(r.file, ev.Board); err != nil {
		return err
	}
	footer(r.file, ev)
	return r.file.Sync()
}

func (r *FileRenderer) Close() error {
	log.Printf("Closing output file: %s", r.file.Name())
	return r.file.Close()
}
