package pong

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
)

// SampleHeader is the column row of a sample file.
var SampleHeader = []string{"ball_x", "ball_y", "ball_vx", "ball_vy", "paddle_y", "action", "reward"}

// Sample is one labelled observation: the action taken in a state and the
// reward it earned.
type Sample struct {
	BallX, BallY   float64
	BallVX, BallVY float64
	PaddleY        float64
	Action         int
	Reward         float64
}

// LoadSamples reads a sample file.
//
// A file that cannot be opened is logged and yields no samples; rows that
// fail to parse are logged and skipped. A nil logger discards the messages.
func LoadSamples(path string, logger *log.Logger) []Sample {
	logger = orDiscard(logger)

	f, err := os.Open(path)
	if err != nil {
		logger.Printf("load samples: %v", err)
		return nil
	}
	defer f.Close()

	return ReadSamples(f, logger)
}

// ReadSamples parses CSV sample rows from r. The first row is a header and
// is discarded.
func ReadSamples(r io.Reader, logger *log.Logger) []Sample {
	logger = orDiscard(logger)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var samples []Sample
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if line == 1 {
			continue
		}
		if err != nil {
			logger.Printf("skipping line %d: %v", line, err)
			continue
		}

		s, err := parseSample(record)
		if err != nil {
			logger.Printf("skipping line %d: %v", line, err)
			continue
		}
		samples = append(samples, s)
	}
	return samples
}

func parseSample(record []string) (Sample, error) {
	if len(record) != len(SampleHeader) {
		return Sample{}, fmt.Errorf("expected %d fields, got %d", len(SampleHeader), len(record))
	}

	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%s: %w", SampleHeader[i], err)
		}
		vals[i] = v
	}
	action, err := strconv.Atoi(record[5])
	if err != nil {
		return Sample{}, fmt.Errorf("action: %w", err)
	}
	reward, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("reward: %w", err)
	}

	return Sample{
		BallX:   vals[0],
		BallY:   vals[1],
		BallVX:  vals[2],
		BallVY:  vals[3],
		PaddleY: vals[4],
		Action:  action,
		Reward:  reward,
	}, nil
}

// WriteSamples writes the header and one row per sample.
func WriteSamples(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SampleHeader); err != nil {
		return err
	}

	row := make([]string, len(SampleHeader))
	for _, s := range samples {
		row[0] = formatFloat(s.BallX)
		row[1] = formatFloat(s.BallY)
		row[2] = formatFloat(s.BallVX)
		row[3] = formatFloat(s.BallVY)
		row[4] = formatFloat(s.PaddleY)
		row[5] = strconv.Itoa(s.Action)
		row[6] = formatFloat(s.Reward)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSamplesFile writes samples to path, replacing any existing file.
func WriteSamplesFile(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sample file: %w", err)
	}
	if err := WriteSamples(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GenerateSamples labels a grid of states with the action that tracks the
// ball (reward 1) and one wrong action (reward -1).
//
// Ball and paddle positions step through 0, 0.1, ..., 1; velocities take
// ±0.02 horizontally and ±0.01 vertically.
func GenerateSamples() []Sample {
	const steps = 10
	var samples []Sample

	for i := 0; i <= steps; i++ {
		bx := float64(i) / steps
		for j := 0; j <= steps; j++ {
			by := float64(j) / steps
			for _, vx := range []float64{-0.02, 0.02} {
				for _, vy := range []float64{-0.01, 0.01} {
					for k := 0; k <= steps; k++ {
						py := float64(k) / steps

						action := ActionStay
						switch {
						case by > py+CenterZone:
							action = ActionUp
						case by < py-CenterZone:
							action = ActionDown
						}

						wrong := ActionUp
						if action == ActionUp {
							wrong = ActionDown
						}

						base := Sample{BallX: bx, BallY: by, BallVX: vx, BallVY: vy, PaddleY: py}
						good, bad := base, base
						good.Action, good.Reward = action, 1
						bad.Action, bad.Reward = wrong, -1
						samples = append(samples, good, bad)
					}
				}
			}
		}
	}
	return samples
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return logger
}
