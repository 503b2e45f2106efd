package resource

import (
	"errors"
	"fmt"
)

type PartID uint16

const (
	PartCopyProtection PartID = 16000
	PartIntro          PartID = 16001
	PartWater          PartID = 16002
	PartPrison         PartID = 16003
	PartCite           PartID = 16004
	PartArene          PartID = 16005
	PartLuxe           PartID = 16006
	PartFinal          PartID = 16007
	PartPassword       PartID = 16008
	PartLast           PartID = 16009

	PartBase = PartCopyProtection
)

var ErrInvalidPart = errors.New("invalid part")

// Part - Directory indices of the four assets a part needs. Video2 of zero
// means the part has no secondary shape bank.
type Part struct {
	Palette int
	Code    int
	Video1  int
	Video2  int
}

var parts = [...]Part{
	{0x14, 0x15, 0x16, 0x00}, // protection screens
	{0x17, 0x18, 0x19, 0x00}, // introduction
	{0x1A, 0x1B, 0x1C, 0x11}, // water
	{0x1D, 0x1E, 0x1F, 0x11}, // jail
	{0x20, 0x21, 0x22, 0x11}, // city
	{0x23, 0x24, 0x25, 0x00}, // arena
	{0x26, 0x27, 0x28, 0x11}, // luxe
	{0x29, 0x2A, 0x2B, 0x11}, // final
	{0x7D, 0x7E, 0x7F, 0x00}, // password screen
	{0x7D, 0x7E, 0x7F, 0x00}, // password screen
}

var partNames = [...]string{
	"Copy protection",
	"Introduction",
	"Water",
	"Jail",
	"City",
	"Arena",
	"Luxe",
	"Final",
	"Password",
	"Password (alternate)",
}

func (p PartID) Valid() bool {
	return p >= PartBase && p <= PartLast
}

func (p PartID) Name() string {
	if !p.Valid() {
		return fmt.Sprintf("part %d", uint16(p))
	}
	return partNames[p-PartBase]
}

func LookupPart(id PartID) (Part, error) {
	if !id.Valid() {
		return Part{}, fmt.Errorf("%w: %05d", ErrInvalidPart, uint16(id))
	}
	return parts[id-PartBase], nil
}

func (p Part) assets() []int {
	ids := []int{p.Palette, p.Code, p.Video1}
	if p.Video2 != 0 {
		ids = append(ids, p.Video2)
	}
	return ids
}

func AllParts() []PartID {
	ids := make([]PartID, 0, len(parts))
	for i := range parts {
		ids = append(ids, PartBase+PartID(i))
	}
	return ids
}
