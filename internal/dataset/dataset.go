package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"pilotnet/internal/model"
)

// Recording line format: five sensor readings followed by two raw
// control values, comma separated. A line whose control values are both
// zero carries no maneuver and is excluded from the training set.
const (
	SensorCount  = 5
	ControlCount = 2
)

// Stats describes a loaded recording, including the lines the
// no-maneuver filter dropped.
type Stats struct {
	Lines    int
	Eligible int
	Filtered int
}

// Load parses a recording into training samples, filtering no-maneuver
// lines and normalizing control values into the [0, 1] target space.
func Load(r io.Reader) ([]model.TrainingSample, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = SensorCount + ControlCount
	reader.TrimLeadingSpace = true

	var samples []model.TrainingSample
	var stats Stats
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Stats{}, fmt.Errorf("read recording: %w", err)
		}
		stats.Lines++

		values := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, Stats{}, fmt.Errorf("line %d field %d: %q is not a number", stats.Lines, i+1, field)
			}
			values[i] = v
		}

		controls := values[SensorCount:]
		if controls[0] == 0 && controls[1] == 0 {
			stats.Filtered++
			continue
		}

		targets := make([]float64, ControlCount)
		for i, c := range controls {
			targets[i] = NormalizeControl(c)
		}
		samples = append(samples, model.TrainingSample{
			Inputs:  append([]float64(nil), values[:SensorCount]...),
			Targets: targets,
		})
		stats.Eligible++
	}
	return samples, stats, nil
}

// LoadFile reads a recording from disk. A missing file surfaces as
// fs.ErrNotExist so callers can treat it as "no recording yet" rather
// than a fatal condition.
func LoadFile(path string) ([]model.TrainingSample, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()

	samples, stats, err := Load(f)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%s: %w", path, err)
	}
	return samples, stats, nil
}
