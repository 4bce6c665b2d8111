package transcription

import (
	"math"
	"sort"

	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarter = 960
	tempoBPM        = 120.0
	pianoProgram    = 0
	trackName       = "Transcription"
)

// WriteNotes stores the notes as a single track, single channel SMF at a
// fixed 120 BPM.
func WriteNotes(path string, notes []Note) error {
	type event struct {
		tick uint32
		on   bool
		note Note
	}

	events := make([]event, 0, len(notes)*2)
	for _, note := range notes {
		events = append(events,
			event{tick: secondsToTicks(note.Start), on: true, note: note},
			event{tick: secondsToTicks(note.End), on: false, note: note},
		)
	}

	// note offs go first on a shared tick so repeated keys retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(trackName))
	track.Add(0, smf.MetaTempo(tempoBPM))
	track.Add(0, midi.ProgramChange(0, pianoProgram))

	var previous uint32
	for _, e := range events {
		delta := e.tick - previous
		previous = e.tick

		if e.on {
			track.Add(delta, midi.NoteOn(0, e.note.Key, e.note.Velocity))
		} else {
			track.Add(delta, midi.NoteOff(0, e.note.Key))
		}
	}
	track.Close(0)

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := file.Add(track); err != nil {
		return cerr.Wrap(err).Error("Failed to add track to MIDI file")
	}

	if err := file.WriteFile(path); err != nil {
		return cerr.Field("midi_path", path).Wrap(err).Error("Failed to write MIDI file")
	}

	return nil
}

func secondsToTicks(seconds float64) uint32 {
	ticksPerSecond := ticksPerQuarter * tempoBPM / 60
	return uint32(math.Round(seconds * ticksPerSecond))
}

type Details struct {
	NumNotes    int     `json:"num_notes"`
	Duration    float64 `json:"duration"`
	Instruments int     `json:"instruments"`
	Backend     string  `json:"backend"`
}

type Summary struct {
	MIDIPath string  `json:"midi_path"`
	Details  Details `json:"details"`
}

type tempoChange struct {
	tick uint64
	bpm  float64
}

// Summarize reads a MIDI file back and reports what it contains. Duration
// is the end of the last note, rounded to two decimals.
func Summarize(path string) (Details, error) {
	errctx := cerr.Field("midi_path", path)

	file, err := smf.ReadFile(path)
	if err != nil {
		return Details{}, errctx.Wrap(err).Error("Failed to read MIDI file")
	}

	resolution, ok := file.TimeFormat.(smf.MetricTicks)
	if !ok || resolution == 0 {
		return Details{}, errctx.Error("MIDI file does not use metric ticks")
	}

	tempos := []tempoChange{{tick: 0, bpm: tempoBPM}}
	for _, track := range file.Tracks {
		var tick uint64
		for _, ev := range track {
			tick += uint64(ev.Delta)
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				tempos = append(tempos, tempoChange{tick: tick, bpm: bpm})
			}
		}
	}
	sort.SliceStable(tempos, func(i, j int) bool {
		return tempos[i].tick < tempos[j].tick
	})

	// an instrument is a track, channel and program that plays at least one note
	type instrument struct {
		track   int
		channel uint8
		program uint8
	}

	details := Details{}
	instruments := map[instrument]bool{}
	lastTick := uint64(0)
	for trackIndex, track := range file.Tracks {
		programs := map[uint8]uint8{}

		var tick uint64
		for _, ev := range track {
			tick += uint64(ev.Delta)
			msg := midi.Message(ev.Message)

			var channel, key, velocity, program uint8
			switch {
			case msg.GetProgramChange(&channel, &program):
				programs[channel] = program

			case msg.GetNoteStart(&channel, &key, &velocity):
				details.NumNotes++
				instruments[instrument{track: trackIndex, channel: channel, program: programs[channel]}] = true

			case msg.GetNoteEnd(&channel, &key):
				if tick > lastTick {
					lastTick = tick
				}
			}
		}
	}

	details.Instruments = len(instruments)
	seconds := ticksToSeconds(lastTick, uint64(resolution), tempos)
	details.Duration = math.Round(seconds*100) / 100

	return details, nil
}

func ticksToSeconds(tick uint64, resolution uint64, tempos []tempoChange) float64 {
	seconds := 0.0
	for i, tempo := range tempos {
		if tempo.tick >= tick {
			break
		}

		end := tick
		if i+1 < len(tempos) && tempos[i+1].tick < tick {
			end = tempos[i+1].tick
		}

		beats := float64(end-tempo.tick) / float64(resolution)
		seconds += beats * 60 / tempo.bpm
	}

	return seconds
}
