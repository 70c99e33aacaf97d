package processor

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// sniffLen is how many leading bytes are inspected when checking a
// staged file looks like a media container.
const sniffLen = 512

// checkMediaHeader rejects staged files that are empty or whose leading
// bytes match no known container. This catches downloads that returned
// an HTML error page before ffmpeg wastes a run on them.
func checkMediaHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("read header: %w", err)
	}
	head = head[:n]

	if n == 0 {
		return fmt.Errorf("file is empty")
	}
	if !looksLikeMedia(head) {
		return fmt.Errorf("unrecognized container (first bytes % x)", head[:min(n, 12)])
	}
	return nil
}

// looksLikeMedia matches the magic bytes of the containers ffmpeg will
// be fed: MP4-family, Matroska/WebM, AVI, FLV and MPEG streams.
func looksLikeMedia(head []byte) bool {
	// ISO BMFF (mp4, mov, m4a): "ftyp" at offset 4.
	if len(head) >= 8 && bytes.Equal(head[4:8], []byte("ftyp")) {
		return true
	}
	// Matroska / WebM: EBML header.
	if bytes.HasPrefix(head, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		return true
	}
	// AVI: RIFF....AVI.
	if len(head) >= 12 && bytes.HasPrefix(head, []byte("RIFF")) && bytes.Equal(head[8:11], []byte("AVI")) {
		return true
	}
	// FLV.
	if bytes.HasPrefix(head, []byte("FLV")) {
		return true
	}
	// MPEG-TS: 0x47 sync byte repeating every 188-byte packet. A lone
	// leading 0x47 ('G') also matches GIFs and plain text, so demand
	// three aligned packets.
	if len(head) > 376 && head[0] == 0x47 && head[188] == 0x47 && head[376] == 0x47 {
		return true
	}
	// MPEG-PS pack header.
	if bytes.HasPrefix(head, []byte{0x00, 0x00, 0x01, 0xBA}) {
		return true
	}
	return false
}

// audioExtension classifies narration payloads by their magic bytes
// and returns the matching file extension, so the staged file carries
// a truthful name. Accepted containers: MP3 (with or without ID3),
// WAV, Ogg, and the MP4 family.
func audioExtension(head []byte) (string, error) {
	n := len(head)
	if n == 0 {
		return "", fmt.Errorf("file is empty")
	}
	switch {
	case bytes.HasPrefix(head, []byte("ID3")):
		return ".mp3", nil
	case n >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0: // bare MPEG audio frame
		return ".mp3", nil
	case n >= 12 && bytes.HasPrefix(head, []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return ".wav", nil
	case bytes.HasPrefix(head, []byte("OggS")):
		return ".ogg", nil
	case n >= 8 && bytes.Equal(head[4:8], []byte("ftyp")):
		return ".m4a", nil
	}
	return "", fmt.Errorf("unrecognized audio container (first bytes % x)", head[:min(n, 12)])
}

// sniffAudioExt reads the leading bytes of path and classifies them.
func sniffAudioExt(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 12)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("read header: %w", err)
	}
	return audioExtension(head[:n])
}
