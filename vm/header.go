package vm

import (
	"bytes"
)

const (
	HEADER_MAGIC   = "FLNT" // Image magic marker.
	HEADER_VERSION = 0      // Current image version.
	HEADER_SIZE    = 14     // magic(4) version(1) code(4) data(4) size(1)
)

// Header is the optional prefix of a program image.
type Header struct {
	Magic     [4]byte
	Version   uint8
	CodeStart uint32 // Offset of the first instruction.
	DataStart uint32 // Offset one past the last instruction.
	Size      uint8  // Declared header size.
}

// NewHeader returns the header for an image whose code directly follows it.
func NewHeader(codeLen int) (header Header) {
	copy(header.Magic[:], HEADER_MAGIC)
	header.Version = HEADER_VERSION
	header.Size = HEADER_SIZE
	header.CodeStart = HEADER_SIZE
	header.DataStart = HEADER_SIZE + uint32(codeLen)
	return
}

// Bytes encodes the header.
func (header Header) Bytes() (data []byte) {
	data = make([]byte, 0, HEADER_SIZE)
	data = append(data, header.Magic[:]...)
	data = AppendUint8(data, header.Version)
	data = AppendUint32(data, header.CodeStart)
	data = AppendUint32(data, header.DataStart)
	data = AppendUint8(data, header.Size)
	return
}

// HasHeader returns true if the image starts with the magic marker.
func HasHeader(image []byte) bool {
	return bytes.HasPrefix(image, []byte(HEADER_MAGIC))
}

// ParseHeader decodes and validates the header of an image.
func ParseHeader(image []byte) (header Header, err error) {
	if len(image) < HEADER_SIZE {
		err = ErrHeaderShort
		return
	}

	if !HasHeader(image) {
		err = ErrHeaderMagic
		return
	}

	copy(header.Magic[:], image[0:4])
	header.Version, _ = DecodeUint8(image, 4)
	header.CodeStart, _ = DecodeUint32(image, 5)
	header.DataStart, _ = DecodeUint32(image, 9)
	header.Size, _ = DecodeUint8(image, 13)

	switch {
	case header.Size < HEADER_SIZE:
		err = ErrHeaderRange
	case header.CodeStart < uint32(header.Size):
		err = ErrHeaderRange
	case header.DataStart < header.CodeStart:
		err = ErrHeaderRange
	case uint64(header.DataStart) > uint64(len(image)):
		err = ErrHeaderRange
	}

	return
}
