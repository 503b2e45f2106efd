package resource

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/davetcode/goaw/awcore"
)

const (
	MemlistFile = "MEMLIST.BIN"
	MaxEntries  = 146

	recordSize = 20
	terminator = 0xFF
)

func BankFile(bank uint8) string {
	return fmt.Sprintf("BANK%02X", bank)
}

// ParseMemlist - Reads fixed size directory records until the terminating
// status byte. The status and buffer pointer fields from disk are ignored,
// every entry starts unloaded. Rank is kept for load ordering.
func ParseMemlist(r io.Reader) ([]Entry, error) {
	var entries []Entry
	record := make([]uint8, recordSize)

	for {
		n, err := io.ReadFull(r, record)
		if err == io.EOF {
			break
		}
		if n > 0 && record[0] == terminator {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("memlist entry %d truncated at %d bytes", len(entries), n)
		}
		if err != nil {
			return nil, err
		}
		if len(entries) == MaxEntries {
			return nil, fmt.Errorf("memlist has more than %d entries", MaxEntries)
		}

		rd := awcore.NewReader(record, 0)
		rd.Skip(1)
		e := Entry{Status: Unloaded}
		e.Type = Type(rd.U8())
		rd.Skip(4)
		e.Rank = rd.U8()
		e.Bank = rd.U8()
		e.BankOffset = rd.U32()
		e.PackedSize = rd.U32()
		e.UnpackedSize = rd.U32()
		entries = append(entries, e)
	}

	return entries, nil
}

// EncodeMemlist - Inverse of ParseMemlist, used to build data sets for tools
// and tests.
func EncodeMemlist(entries []Entry) []uint8 {
	out := make([]uint8, 0, (len(entries)+1)*recordSize)
	for _, e := range entries {
		out = append(out, uint8(e.Status), uint8(e.Type), 0, 0, 0, 0, e.Rank, e.Bank)
		out = binary.BigEndian.AppendUint32(out, e.BankOffset)
		out = binary.BigEndian.AppendUint32(out, e.PackedSize)
		out = binary.BigEndian.AppendUint32(out, e.UnpackedSize)
	}
	out = append(out, terminator)
	return append(out, make([]uint8, recordSize-1)...)
}
