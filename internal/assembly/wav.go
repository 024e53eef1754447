package assembly

import "encoding/binary"

// wavHeaderSize is the length of a canonical PCM WAV header.
const wavHeaderSize = 44

// wavHeader synthesizes a minimal RIFF/WAVE header for raw PCM data so
// headerless fragments become valid container files the encoder accepts.
func wavHeader(format sampleFormat, dataLen int) []byte {
	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM format tag
	binary.LittleEndian.PutUint16(header[22:24], uint16(format.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(format.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(format.ByteRate()))
	binary.LittleEndian.PutUint16(header[32:34], uint16(format.BlockAlign()))
	binary.LittleEndian.PutUint16(header[34:36], uint16(format.BitDepth))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	return header
}
