// Command lanes assigns the events of a YAML or CSV event file to timeline
// lanes without a server or database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/timeline"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func fileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "event file (.yaml, .yml or .csv)",
		Required: true,
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "lanes",
		Usage: "arrange events in the fewest lanes without overlaps",
		Commands: []*cli.Command{
			{
				Name:  "assign",
				Usage: "print the lanes of an event file",
				Flags: []cli.Flag{
					fileFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "output format: text, json or csv",
						Value: "text",
					},
				},
				Action: assignAction,
			},
			{
				Name:   "depth",
				Usage:  "print the largest number of events sharing a day",
				Flags:  []cli.Flag{fileFlag()},
				Action: depthAction,
			},
		},
	}
}

func assignAction(ctx context.Context, cmd *cli.Command) error {
	events, err := readEvents(cmd.String("file"))
	if err != nil {
		return err
	}
	out := cmd.Root().Writer

	switch format := strings.ToLower(cmd.String("format")); format {
	case "text":
		return writeText(out, lane.Assign(events))
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(lane.Assign(events))
	case "csv":
		return writeCsv(out, events)
	default:
		return fmt.Errorf("unknown format %q, use text, json or csv", format)
	}
}

func depthAction(ctx context.Context, cmd *cli.Command) error {
	events, err := readEvents(cmd.String("file"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, lane.MaxDepth(events))
	return err
}

// readEvents parses the event file and rejects events that could not be
// placed on a timeline.
func readEvents(path string) ([]lane.Event, error) {
	format, err := timeline.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parsed, err := timeline.ParseEventFile(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	events := make([]lane.Event, 0, len(parsed))
	for i, e := range parsed {
		event := lane.Event{Id: e.ExternalId, Name: e.Name, Start: e.Start, End: e.End}
		if err := lane.Validate(event); err != nil {
			return nil, fmt.Errorf("%s: event %d (%s): %w", path, i+1, e.Name, err)
		}
		events = append(events, event)
	}
	log.Debugf("Read %d events from %s", len(events), path)
	return events, nil
}

func writeText(out io.Writer, lanes [][]lane.Event) error {
	for i, l := range lanes {
		items := make([]string, 0, len(l))
		for _, e := range l {
			items = append(items, fmt.Sprintf("%s [%s..%s]", label(e), e.Start, e.End))
		}
		if _, err := fmt.Fprintf(out, "lane %d: %s\n", i, strings.Join(items, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeCsv(out io.Writer, events []lane.Event) error {
	timelineEvents := make([]timeline.Event, 0, len(events))
	for _, e := range events {
		timelineEvents = append(timelineEvents, timeline.Event{Name: label(e), Start: e.Start, End: e.End})
	}
	first, last, _ := lane.Bounds(events)
	rendered, err := timeline.NewCsvTimelineRenderer().RenderTimeline(
		timeline.Layout(first, last, timelineEvents, timeline.PatternFormatter{}))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}

func label(e lane.Event) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Id
}
