package timeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klokku/timeline/pkg/lane"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported event file format")

type FileFormat string

const (
	FormatYAML FileFormat = "yaml"
	FormatCSV  FileFormat = "csv"
)

// FormatFromPath picks the file format from the file extension.
func FormatFromPath(path string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// FormatFromContentType maps an HTTP Content-Type to a file format.
func FormatFromContentType(contentType string) (FileFormat, error) {
	switch {
	case strings.Contains(contentType, "csv"):
		return FormatCSV, nil
	case strings.Contains(contentType, "yaml"), strings.Contains(contentType, "yml"):
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
}

// ParseEventFile decodes events from r. The file id of an event is kept as its
// external id so importing the same file twice updates instead of duplicating.
func ParseEventFile(r io.Reader, format FileFormat) ([]Event, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(r)
	case FormatCSV:
		return ParseCSV(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

type yamlEventFile struct {
	Events []yamlEvent `yaml:"events"`
}

type yamlEvent struct {
	Id    string `yaml:"id"`
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Notes string `yaml:"notes"`
}

// ParseYAML reads a document of the form
//
//	events:
//	  - id: kickoff
//	    name: Kickoff
//	    start: 2024-06-20
//	    end: 2024-06-21
func ParseYAML(r io.Reader) ([]Event, error) {
	var file yamlEventFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("could not decode yaml events: %w", err)
	}

	events := make([]Event, 0, len(file.Events))
	for i, e := range file.Events {
		event, err := newFileEvent(e.Id, e.Name, e.Start, e.End, e.Notes)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// ParseCSV reads events from CSV with a header row naming the columns id,
// name, start, end and optionally notes, in any order and case.
func ParseCSV(r io.Reader) ([]Event, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("could not read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "name", "start", "end"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", required)
		}
	}
	reader.FieldsPerRecord = len(header)

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	events := make([]Event, 0)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		event, err := newFileEvent(field(record, "id"), field(record, "name"), field(record, "start"),
			field(record, "end"), field(record, "notes"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func newFileEvent(id, name, start, end, notes string) (Event, error) {
	startDate, err := lane.ParseDate(start)
	if err != nil {
		return Event{}, fmt.Errorf("start: %w", err)
	}
	endDate, err := lane.ParseDate(end)
	if err != nil {
		return Event{}, fmt.Errorf("end: %w", err)
	}
	return Event{
		Name:       name,
		Start:      startDate,
		End:        endDate,
		Notes:      notes,
		Source:     SourceManual,
		ExternalId: id,
	}, nil
}
