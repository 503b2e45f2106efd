package audio

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"
)

// Cache - Sounds registered by resource id. Cleared whenever the resources
// they point into are invalidated.
type Cache struct {
	sounds map[int]*Sound
	log    *logrus.Entry
}

func NewCache(log *logrus.Entry) *Cache {
	if log == nil {
		log = logrus.WithField("component", "audio")
	}
	return &Cache{sounds: map[int]*Sound{}, log: log}
}

// Cache - Registers data under id. Registering an id twice returns the
// existing sound.
func (c *Cache) Cache(id int, data []uint8, format Format) *Sound {
	if s, ok := c.sounds[id]; ok {
		c.log.WithField("id", id).Debug("sound already cached")
		return s
	}

	s := &Sound{ID: id, Format: format}
	switch {
	case format != PCMWithHeader:
		s.Data = data
	case len(data) < headerSize:
		// empty sound, plays as silence
	default:
		loopStart := int(binary.BigEndian.Uint16(data[0:2])) << 1
		loopLen := int(binary.BigEndian.Uint16(data[2:4])) << 1
		size := loopStart + loopLen
		body := data[headerSize:]
		if size > len(body) {
			c.log.WithFields(logrus.Fields{"id": id, "size": size, "available": len(body)}).Warn("sound header longer than data")
			size = len(body)
		}
		s.Data = body[:size]
		if loopLen > 0 && loopStart < size {
			s.LoopStart = loopStart
			s.LoopLen = size - loopStart
		}
	}

	c.sounds[id] = s
	return s
}

func (c *Cache) Lookup(id int) *Sound {
	return c.sounds[id]
}

func (c *Cache) Len() int { return len(c.sounds) }

func (c *Cache) Clear() {
	clear(c.sounds)
}
