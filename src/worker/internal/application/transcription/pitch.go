package transcription

import (
	"math"
)

// TrackerConfig tunes the monophonic pitch tracker.
type TrackerConfig struct {
	MinFrequency  float64
	MaxFrequency  float64
	MinNoteLength float64
	FrameSize     int
	HopSize       int
	// YIN's absolute threshold on the cumulative mean normalized difference
	Threshold float64
	// frames quieter than this RMS are silence
	SilenceRMS float64
	// input is decimated down to at most this rate before analysis
	AnalysisRate int
}

var DefaultTrackerConfig = TrackerConfig{
	MinFrequency:  MinimumFrequency,
	MaxFrequency:  MaximumFrequency,
	MinNoteLength: MinimumNoteLength,
	FrameSize:     2048,
	HopSize:       256,
	Threshold:     0.15,
	SilenceRMS:    0.01,
	AnalysisRate:  22050,
}

type Note struct {
	Key      uint8
	Velocity uint8
	Start    float64
	End      float64
}

func (n Note) Duration() float64 {
	return n.End - n.Start
}

// FrequencyToMIDINote maps a frequency onto the nearest equal tempered key,
// A4 = 440Hz = 69, clamped to the MIDI range.
func FrequencyToMIDINote(frequency float64) uint8 {
	if frequency <= 0 {
		return 0
	}

	note := math.Round(12*math.Log2(frequency/440) + 69)
	switch {
	case note < 0:
		return 0
	case note > 127:
		return 127
	}

	return uint8(note)
}

type frameEstimate struct {
	key int
	rms float64
}

// TrackNotes segments a mono signal into notes, one pitch at a time.
func TrackNotes(samples []float32, sampleRate int, config TrackerConfig) []Note {
	signal, rate := decimate(samples, sampleRate, config.AnalysisRate)
	if len(signal) < config.FrameSize || rate <= 0 {
		return nil
	}

	estimates := []frameEstimate{}
	for start := 0; start+config.FrameSize <= len(signal); start += config.HopSize {
		frame := signal[start : start+config.FrameSize]
		estimate := frameEstimate{key: -1, rms: rms(frame)}

		if estimate.rms >= config.SilenceRMS {
			frequency := yin(frame, rate, config)
			if frequency >= config.MinFrequency && frequency <= config.MaxFrequency {
				estimate.key = int(FrequencyToMIDINote(frequency))
			}
		}

		estimates = append(estimates, estimate)
	}

	hop := float64(config.HopSize) / rate
	lastFrameEnd := (float64((len(estimates)-1)*config.HopSize) + float64(config.FrameSize)) / rate

	notes := []Note{}
	for i := 0; i < len(estimates); {
		if estimates[i].key < 0 {
			i++
			continue
		}

		j := i
		peak := estimates[i].rms
		for j+1 < len(estimates) && estimates[j+1].key == estimates[i].key {
			j++
			peak = math.Max(peak, estimates[j].rms)
		}

		end := float64(j+1) * hop
		if j == len(estimates)-1 {
			end = lastFrameEnd
		}

		note := Note{
			Key:      uint8(estimates[i].key),
			Velocity: velocity(peak),
			Start:    float64(i) * hop,
			End:      end,
		}

		if note.Duration() >= config.MinNoteLength {
			notes = append(notes, note)
		}

		i = j + 1
	}

	return notes
}

func decimate(samples []float32, sampleRate int, maxRate int) ([]float64, float64) {
	factor := 1
	if maxRate > 0 && sampleRate > maxRate {
		factor = sampleRate / maxRate
	}

	out := make([]float64, 0, len(samples)/factor)
	for i := 0; i+factor <= len(samples); i += factor {
		sum := 0.0
		for _, sample := range samples[i : i+factor] {
			sum += float64(sample)
		}
		out = append(out, sum/float64(factor))
	}

	return out, float64(sampleRate) / float64(factor)
}

func rms(frame []float64) float64 {
	sum := 0.0
	for _, sample := range frame {
		sum += sample * sample
	}

	return math.Sqrt(sum / float64(len(frame)))
}

// velocity scales the frame's peak amplitude onto 1..127.
func velocity(frameRMS float64) uint8 {
	v := math.Round(127 * math.Min(1, frameRMS*math.Sqrt2))
	if v < 1 {
		return 1
	}

	return uint8(v)
}

// yin returns the fundamental frequency of the frame, 0 when unvoiced.
func yin(frame []float64, rate float64, config TrackerConfig) float64 {
	half := len(frame) / 2

	minLag := int(rate / config.MaxFrequency)
	if minLag < 2 {
		minLag = 2
	}
	maxLag := int(rate / config.MinFrequency)
	if maxLag > half-2 {
		maxLag = half - 2
	}
	if minLag >= maxLag {
		return 0
	}

	diff := make([]float64, maxLag+2)
	for tau := 1; tau < len(diff); tau++ {
		sum := 0.0
		for j := 0; j < half; j++ {
			d := frame[j] - frame[j+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	cmnd := make([]float64, len(diff))
	cmnd[0] = 1
	running := 0.0
	for tau := 1; tau < len(diff); tau++ {
		running += diff[tau]
		if running == 0 {
			cmnd[tau] = 1
			continue
		}
		cmnd[tau] = diff[tau] * float64(tau) / running
	}

	for tau := minLag; tau <= maxLag; tau++ {
		if cmnd[tau] >= config.Threshold {
			continue
		}

		for tau+1 <= maxLag && cmnd[tau+1] < cmnd[tau] {
			tau++
		}

		return rate / refineLag(cmnd, tau)
	}

	return 0
}

// refineLag fits a parabola through the lag and its neighbours.
func refineLag(values []float64, tau int) float64 {
	if tau <= 0 || tau+1 >= len(values) {
		return float64(tau)
	}

	s0, s1, s2 := values[tau-1], values[tau], values[tau+1]
	denominator := s0 - 2*s1 + s2
	if denominator == 0 {
		return float64(tau)
	}

	return float64(tau) + (s0-s2)/(2*denominator)
}
