package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"

	"github.com/davetcode/goaw/audio"
	"github.com/davetcode/goaw/unpack"
	"github.com/sirupsen/logrus"
)

var ErrMissingBank = errors.New("bank unavailable")

// demoBank - Bank absent from the DOS demo data, entries in it are skipped.
const demoBank = 0x0C

type UnpackFunc func(dst []uint8, src []uint8) (int, error)

// Screen - Receives bitmaps as they are loaded and is told when palette data
// has gone away.
type Screen interface {
	BlitBitmap(data []uint8)
	InvalidatePalette()
}

type SoundCache interface {
	Cache(id int, data []uint8, format audio.Format) *audio.Sound
	Clear()
}

type Options struct {
	ArenaSize int
	Unpack    UnpackFunc
	Screen    Screen
	Sounds    SoundCache
	Log       *logrus.Entry

	// OnLoad - Called after every load attempt, err is nil on success.
	OnLoad func(id int, e Entry, err error)
}

// LoadError - Failure to load one entry. Required is set when the entry is
// one the part being set up cannot run without.
type LoadError struct {
	ID       int
	Bank     uint8
	Required bool
	Err      error
}

func (e *LoadError) Error() string {
	kind := "optional"
	if e.Required {
		kind = "required"
	}
	return fmt.Sprintf("loading %s resource 0x%02x from bank 0x%02x: %v", kind, e.ID, e.Bank, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Segments - Buffers of the current part.
type Segments struct {
	Palette []uint8
	Code    []uint8
	Video   [2][]uint8
}

type Manager struct {
	storage     fs.FS
	entries     []Entry
	arena       *Arena
	unpack      UnpackFunc
	screen      Screen
	sounds      SoundCache
	onLoad      func(int, Entry, error)
	log         *logrus.Entry
	current     PartID
	next        PartID
	hasPassword bool
	segments    Segments
}

func NewManager(storage fs.FS, opts Options) (*Manager, error) {
	m := &Manager{
		storage: storage,
		unpack:  opts.Unpack,
		screen:  opts.Screen,
		sounds:  opts.Sounds,
		onLoad:  opts.OnLoad,
		log:     opts.Log,
	}
	if m.unpack == nil {
		m.unpack = unpack.Unpack
	}
	if m.log == nil {
		m.log = logrus.WithField("component", "resource")
	}
	size := opts.ArenaSize
	if size == 0 {
		size = DefaultArenaSize
	}
	m.arena = NewArena(size)

	f, err := storage.Open(MemlistFile)
	if err != nil {
		return nil, fmt.Errorf("opening resource directory: %w", err)
	}
	defer f.Close() // nolint:errcheck

	m.entries, err = ParseMemlist(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", MemlistFile, err)
	}

	pw := parts[PartPassword-PartBase].Code
	if pw < len(m.entries) {
		_, err := fs.Stat(storage, BankFile(m.entries[pw].Bank))
		m.hasPassword = err == nil
	}

	m.log.WithFields(logrus.Fields{"entries": len(m.entries), "password": m.hasPassword}).Info("resource directory loaded")
	return m, nil
}

func (m *Manager) Arena() *Arena       { return m.arena }
func (m *Manager) Segments() Segments  { return m.segments }
func (m *Manager) CurrentPart() PartID { return m.current }
func (m *Manager) HasPassword() bool   { return m.hasPassword }
func (m *Manager) Len() int            { return len(m.entries) }
func (m *Manager) Entries() []Entry    { return slices.Clone(m.entries) }
func (m *Manager) StagePart(id PartID) { m.next = id }

// TakeStagedPart - Returns and clears a part switch requested by scripts.
func (m *Manager) TakeStagedPart() (PartID, bool) {
	id := m.next
	m.next = 0
	return id, id != 0
}

func (m *Manager) Entry(id int) (Entry, bool) {
	if id < 0 || id >= len(m.entries) {
		return Entry{}, false
	}
	return m.entries[id], true
}

// Data - Bytes of a loaded entry.
func (m *Manager) Data(id int) ([]uint8, bool) {
	if id < 0 || id >= len(m.entries) || m.entries[id].Status != Loaded {
		return nil, false
	}
	return m.arena.Bytes(m.entries[id].Region), true
}

// InvalidateResources - Drops sounds, music and bitmaps and everything
// allocated forward since the current part was set up.
func (m *Manager) InvalidateResources() {
	for i := range m.entries {
		if t := m.entries[i].Type; t <= Bitmap || t > Bank {
			m.entries[i].Status = Unloaded
		}
	}
	m.arena.RewindToMark()
	m.dropCaches()
}

func (m *Manager) InvalidateAll() {
	for i := range m.entries {
		m.entries[i].Status = Unloaded
	}
	m.arena.Reset()
	m.segments = Segments{}
	m.dropCaches()
}

func (m *Manager) dropCaches() {
	if m.screen != nil {
		m.screen.InvalidatePalette()
	}
	if m.sounds != nil {
		m.sounds.Clear()
	}
}

// SetupPart - Makes id the current part, loading its four assets. Nothing
// is reloaded when id is already current. The returned error is always
// fatal for the caller.
func (m *Manager) SetupPart(id PartID) error {
	part, err := LookupPart(id)
	if err != nil {
		return err
	}

	if id != m.current {
		m.InvalidateAll()

		required := part.assets()
		for _, a := range required {
			if a >= len(m.entries) {
				return &LoadError{ID: a, Required: true, Err: fmt.Errorf("entry 0x%02x not in directory", a)}
			}
			m.entries[a].Status = PendingLoad
		}
		if err := m.load(required); err != nil {
			return err
		}

		m.segments = Segments{
			Palette: m.mustData(part.Palette),
			Code:    m.mustData(part.Code),
		}
		m.segments.Video[0] = m.mustData(part.Video1)
		if part.Video2 != 0 {
			m.segments.Video[1] = m.mustData(part.Video2)
		}
		m.current = id
		m.log.WithField("part", fmt.Sprintf("%05d", uint16(id))).Info("part loaded")
	}

	m.arena.Mark()
	return nil
}

func (m *Manager) mustData(id int) []uint8 {
	data, ok := m.Data(id)
	if !ok {
		panic(fmt.Sprintf("part asset 0x%02x not loaded after setup", id))
	}
	return data
}

// Load - Loads a single entry now, or stages a part switch when id is a
// part id. Only failures of required entries are returned.
func (m *Manager) Load(id int) error {
	if id >= int(PartBase) {
		m.next = PartID(id)
		return nil
	}
	if id < 0 || id >= len(m.entries) {
		m.log.WithField("id", id).Warn("load request for unknown resource")
		return nil
	}
	if m.entries[id].Status == Unloaded {
		m.entries[id].Status = PendingLoad
		return m.load(nil)
	}
	return nil
}

// nextPending - Highest ranked pending entry, the first one declared wins a
// tie.
func (m *Manager) nextPending() int {
	best := -1
	for i := range m.entries {
		if m.entries[i].Status != PendingLoad {
			continue
		}
		if best < 0 || m.entries[i].Rank > m.entries[best].Rank {
			best = i
		}
	}
	return best
}

func (m *Manager) load(required []int) error {
	for {
		id := m.nextPending()
		if id < 0 {
			return nil
		}

		err := m.loadEntry(id)
		e := &m.entries[id]
		if err != nil {
			e.Status = Unloaded
		}
		if m.onLoad != nil {
			m.onLoad(id, *e, err)
		}
		if err == nil {
			continue
		}

		lerr := &LoadError{ID: id, Bank: e.Bank, Required: slices.Contains(required, id), Err: err}
		if lerr.Required {
			return lerr
		}
		if e.Bank == demoBank && e.Type == Bank && errors.Is(err, fs.ErrNotExist) {
			continue
		}
		m.log.WithError(lerr).Warn("skipping resource")
	}
}

func (m *Manager) loadEntry(id int) error {
	e := &m.entries[id]
	if e.Bank == 0 {
		return fmt.Errorf("%w: no bank assigned", ErrMissingBank)
	}
	if e.PackedSize > e.UnpackedSize {
		return fmt.Errorf("packed size 0x%x exceeds unpacked size 0x%x", e.PackedSize, e.UnpackedSize)
	}

	fromTop := e.Type.backward() || e.Type == Bitmap
	region, err := m.arena.Peek(int(e.UnpackedSize), fromTop)
	if err != nil {
		return err
	}
	buf := m.arena.Bytes(region)
	if err := m.readBank(e, buf); err != nil {
		return err
	}

	m.log.WithFields(logrus.Fields{"id": id, "type": e.Type, "bank": e.Bank, "size": e.UnpackedSize}).Debug("read resource")

	if e.Type == Bitmap {
		if m.screen != nil {
			m.screen.BlitBitmap(buf)
		}
		e.Status = Unloaded
		return nil
	}

	if e.Type.backward() {
		_, err = m.arena.AllocBackward(region.Length)
	} else {
		_, err = m.arena.AllocForward(region.Length)
	}
	if err != nil {
		return err
	}
	e.Region = region
	e.Status = Loaded

	if e.Type == Sound && m.sounds != nil {
		m.sounds.Cache(id, buf, audio.PCMWithHeader)
	}
	return nil
}

// readBank - Reads the packed bytes of e to the start of dst and unpacks them
// in place.
func (m *Manager) readBank(e *Entry, dst []uint8) error {
	name := BankFile(e.Bank)
	f, err := m.storage.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingBank, err)
	}
	defer f.Close() // nolint:errcheck

	packed := dst[:e.PackedSize]
	if err := readAt(f, packed, int64(e.BankOffset)); err != nil {
		return fmt.Errorf("reading %s at 0x%x: %w", name, e.BankOffset, err)
	}

	if !e.Packed() {
		return nil
	}
	n, err := m.unpack(dst, packed)
	if err != nil {
		return err
	}
	if n != len(dst) {
		return fmt.Errorf("%w: unpacked 0x%x bytes, expected 0x%x", unpack.ErrSize, n, len(dst))
	}
	return nil
}

func readAt(f fs.File, buf []uint8, offset int64) error {
	if ra, ok := f.(io.ReaderAt); ok {
		n, err := ra.ReadAt(buf, offset)
		if n == len(buf) {
			return nil
		}
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}

	if s, ok := f.(io.Seeker); ok {
		if _, err := s.Seek(offset, io.SeekStart); err != nil {
			return err
		}
	} else if _, err := io.CopyN(io.Discard, f, offset); err != nil {
		return err
	}
	_, err := io.ReadFull(f, buf)
	return err
}
