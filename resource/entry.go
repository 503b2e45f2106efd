package resource

import "fmt"

type Status uint8

const (
	Unloaded    Status = 0
	Loaded      Status = 1
	PendingLoad Status = 2
)

func (s Status) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case PendingLoad:
		return "pending"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

type Type uint8

const (
	Sound    Type = 0
	Music    Type = 1
	Bitmap   Type = 2 // 320x200 4 bitplane image, staged then discarded
	Palette  Type = 3 // 32 palettes of 16 0x0RGB words
	Bytecode Type = 4
	Shape    Type = 5
	Bank     Type = 6 // shapes shared between parts
)

func (t Type) String() string {
	switch t {
	case Sound:
		return "sound"
	case Music:
		return "music"
	case Bitmap:
		return "bitmap"
	case Palette:
		return "palette"
	case Bytecode:
		return "bytecode"
	case Shape:
		return "shape"
	case Bank:
		return "bank"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// backward - Shape data is allocated from the top of the arena down.
func (t Type) backward() bool {
	return t == Shape || t == Bank
}

// Entry - One asset in the directory. Entries are never removed, only moved
// between statuses, and a loaded entry owns Region inside the arena.
type Entry struct {
	Status       Status
	Type         Type
	Rank         uint8
	Bank         uint8
	BankOffset   uint32
	PackedSize   uint32
	UnpackedSize uint32
	Region       Region
}

func (e Entry) Packed() bool { return e.PackedSize != e.UnpackedSize }
