package audio

type Format int

const (
	RawPCM        Format = iota // signed 8 bit mono
	PCMWithHeader Format = iota // 8 byte header with loop points in words
	Hardware      Format = iota // already in the back-end's format, passed through
)

const (
	Channels  = 4
	MaxVolume = 63

	headerSize = 8
)

// Sound - A sample registered with the cache. Data never includes the
// header, loop points are in bytes from the start of Data.
type Sound struct {
	ID        int
	Format    Format
	Data      []uint8
	LoopStart int
	LoopLen   int
}

func (s *Sound) Loops() bool { return s.LoopLen > 0 }

// Mixer - Audio back-end. Channel is 0..3, volume 0..63, frequency in Hz.
type Mixer interface {
	Play(channel int, s *Sound, frequency int, volume int)
	Stop(channel int)
	StopAll()
	SetVolume(channel int, volume int)
}

// NullMixer - Discards everything.
type NullMixer struct{}

func (NullMixer) Play(int, *Sound, int, int) {}
func (NullMixer) Stop(int)                   {}
func (NullMixer) StopAll()                   {}
func (NullMixer) SetVolume(int, int)         {}
