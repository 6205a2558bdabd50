package timeline

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

var csvTimelineHeader = []string{"lane", "name", "start", "end", "offset", "duration"}

type CsvTimelineRendererImpl struct {
}

func NewCsvTimelineRenderer() *CsvTimelineRendererImpl {
	return &CsvTimelineRendererImpl{}
}

// RenderTimeline writes one row per placement, lane by lane.
func (r *CsvTimelineRendererImpl) RenderTimeline(t Timeline) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.Write(csvTimelineHeader); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	for _, l := range t.Lanes {
		for _, item := range l.Items {
			row := []string{
				strconv.Itoa(l.Index),
				item.Event.Name,
				item.Event.Start.String(),
				item.Event.End.String(),
				strconv.Itoa(item.Offset),
				strconv.Itoa(item.Duration),
			}
			if err := writer.Write(row); err != nil {
				log.Errorf("Error writing to csv: %v", err)
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}
