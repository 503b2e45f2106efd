// Package restest builds in-memory data directories for tests and tools.
package restest

import (
	"testing/fstest"

	"github.com/davetcode/goaw/resource"
	"github.com/davetcode/goaw/unpack"
)

type Asset struct {
	Type resource.Type
	Rank uint8
	Bank uint8
	Data []uint8
	Pack bool
}

// DataSet - Directory entries plus the bank files holding them.
type DataSet struct {
	assets  []Asset
	omitted map[uint8]bool
}

// New - Data set of n entries which all point at bank zero.
func New(n int) *DataSet {
	return &DataSet{assets: make([]Asset, n), omitted: map[uint8]bool{}}
}

func (d *DataSet) Set(id int, a Asset) *DataSet {
	for id >= len(d.assets) {
		d.assets = append(d.assets, Asset{})
	}
	d.assets[id] = a
	return d
}

// Omit - Leaves the bank file out of the file system, entries keep
// referring to it.
func (d *DataSet) Omit(bank uint8) *DataSet {
	d.omitted[bank] = true
	return d
}

func (d *DataSet) Entries() []resource.Entry {
	entries, _ := d.build()
	return entries
}

func (d *DataSet) FS() fstest.MapFS {
	entries, banks := d.build()
	files := fstest.MapFS{
		resource.MemlistFile: {Data: resource.EncodeMemlist(entries)},
	}
	for bank, data := range banks {
		if !d.omitted[bank] {
			files[resource.BankFile(bank)] = &fstest.MapFile{Data: data}
		}
	}
	return files
}

func (d *DataSet) build() ([]resource.Entry, map[uint8][]uint8) {
	entries := make([]resource.Entry, len(d.assets))
	banks := map[uint8][]uint8{}

	for i, a := range d.assets {
		stored := a.Data
		if a.Pack {
			// incompressible data is stored as is
			if packed := unpack.Pack(a.Data); len(packed) < len(a.Data) {
				stored = packed
			}
		}
		entries[i] = resource.Entry{
			Type:         a.Type,
			Rank:         a.Rank,
			Bank:         a.Bank,
			BankOffset:   uint32(len(banks[a.Bank])),
			PackedSize:   uint32(len(stored)),
			UnpackedSize: uint32(len(a.Data)),
		}
		if a.Bank != 0 {
			banks[a.Bank] = append(banks[a.Bank], stored...)
		}
	}
	return entries, banks
}
