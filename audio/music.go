package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	numInstruments = 15
	maxOrder       = 0x80
	patternSize    = 1024
	rowSize        = 4 * Channels

	orderCountOffset = 0x3E
	orderTableOffset = 0x40
	patternOffset    = 0xC0

	noteMark = 0xFFFD
	noteStop = 0xFFFE

	effectVolumeUp   = 5
	effectVolumeDown = 6
)

var ErrNotModule = errors.New("not a music module")

type instrument struct {
	sound  *Sound
	volume int
}

type module struct {
	data        []uint8
	pos         int
	order       int
	numOrder    int
	orders      [maxOrder]uint8
	instruments [numInstruments]instrument
}

// Sequencer - Plays a module by stepping rows of four channel notes. It has
// no clock of its own, the owner calls Advance with the time that passed.
type Sequencer struct {
	mixer   Mixer
	cache   *Cache
	onMark  func(int16)
	mod     module
	period  time.Duration
	pending time.Duration
	playing bool
	log     *logrus.Entry
}

func NewSequencer(mixer Mixer, cache *Cache, log *logrus.Entry) *Sequencer {
	if log == nil {
		log = logrus.WithField("component", "music")
	}
	return &Sequencer{mixer: mixer, cache: cache, log: log}
}

// OnMark - Called with the payload of a sync note, scripts poll it through a
// variable to time cutscenes to the music.
func (s *Sequencer) OnMark(f func(int16)) { s.onMark = f }

func (s *Sequencer) Playing() bool         { return s.playing }
func (s *Sequencer) Period() time.Duration { return s.period }
func (s *Sequencer) Order() int            { return s.mod.order }

func rowPeriod(delay uint16) time.Duration {
	ms := int(delay) * 60 / 7050
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

// Load - Prepares data to play from order pos. A zero delay uses the tempo
// stored in the module.
func (s *Sequencer) Load(data []uint8, delay uint16, pos uint8) error {
	if len(data) < patternOffset {
		return fmt.Errorf("%w: %d bytes", ErrNotModule, len(data))
	}

	s.mod = module{data: data[patternOffset:], order: int(pos)}
	s.mod.numOrder = int(binary.BigEndian.Uint16(data[orderCountOffset:]))
	copy(s.mod.orders[:], data[orderTableOffset:patternOffset])

	if delay == 0 {
		delay = binary.BigEndian.Uint16(data)
	}
	s.period = rowPeriod(delay)

	p := 2
	for i := range s.mod.instruments {
		id := int(binary.BigEndian.Uint16(data[p:]))
		if id != 0 {
			inst := &s.mod.instruments[i]
			inst.volume = int(binary.BigEndian.Uint16(data[p+2:]))
			inst.sound = s.cache.Lookup(id)
			if inst.sound == nil {
				s.log.WithField("id", fmt.Sprintf("0x%04x", id)).Warn("instrument is not a cached sound")
			}
		}
		p += 4
	}

	s.log.WithFields(logrus.Fields{"order": pos, "orders": s.mod.numOrder, "period": s.period}).Debug("loaded module")
	return nil
}

func (s *Sequencer) Start() {
	s.mod.pos = 0
	s.pending = 0
	s.playing = true
}

func (s *Sequencer) SetDelay(delay uint16) {
	s.period = rowPeriod(delay)
	s.pending = 0
}

func (s *Sequencer) Stop() {
	s.playing = false
}

// Advance - Plays every row due in elapsed.
func (s *Sequencer) Advance(elapsed time.Duration) {
	if !s.playing {
		return
	}
	s.pending += elapsed
	for s.playing && s.pending >= s.period {
		s.pending -= s.period
		s.row()
	}
}

func (s *Sequencer) row() {
	if s.mod.order >= maxOrder {
		s.Stop()
		return
	}
	base := int(s.mod.orders[s.mod.order])*patternSize + s.mod.pos
	if base+rowSize > len(s.mod.data) {
		s.log.WithFields(logrus.Fields{"order": s.mod.order, "pos": s.mod.pos}).Warn("pattern past end of module")
		s.Stop()
		return
	}

	for ch := 0; ch < Channels; ch++ {
		s.note(ch, s.mod.data[base+ch*4:base+ch*4+4])
	}

	s.mod.pos += rowSize
	if s.mod.pos >= patternSize {
		s.mod.pos = 0
		next := s.mod.order + 1
		if next >= s.mod.numOrder {
			s.Stop()
		} else {
			s.mod.order = next
		}
	}
}

func (s *Sequencer) note(ch int, data []uint8) {
	note1 := binary.BigEndian.Uint16(data[0:2])
	note2 := binary.BigEndian.Uint16(data[2:4])

	if note1 == noteMark {
		if s.onMark != nil {
			s.onMark(int16(note2))
		}
		return
	}

	var snd *Sound
	volume := 0
	if inst := int(note2 >> 12); inst != 0 {
		snd = s.mod.instruments[inst-1].sound
		if snd != nil {
			volume = s.mod.instruments[inst-1].volume
			switch (note2 >> 8) & 0x0F {
			case effectVolumeDown:
				volume = max(volume-int(note2&0xFF), 0)
			case effectVolumeUp:
				volume = min(volume+int(note2&0xFF), MaxVolume)
			}
			s.mixer.SetVolume(ch, volume)
		}
	}

	if note1 == noteStop {
		s.mixer.Stop(ch)
	} else if note1 != 0 && snd != nil {
		s.mixer.Play(ch, snd, NoteFrequency(note1), volume)
	}
}
