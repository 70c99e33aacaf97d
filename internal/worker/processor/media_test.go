package processor

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeMP4 returns bytes that pass the MP4 header check.
func fakeMP4() []byte {
	head := append([]byte{0x00, 0x00, 0x00, 0x20}, []byte("ftypisom")...)
	return append(head, make([]byte, 256)...)
}

// fakeMP3 returns bytes that pass the audio header check.
func fakeMP3() []byte {
	return append([]byte("ID3"), make([]byte, 64)...)
}

// fakeTS returns three aligned MPEG-TS packets.
func fakeTS() []byte {
	data := make([]byte, 3*188)
	for i := 0; i < len(data); i += 188 {
		data[i] = 0x47
	}
	return data
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckMediaHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ok   bool
	}{
		{"mp4", fakeMP4(), true},
		{"matroska", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00, 0x00}, true},
		{"avi", append([]byte("RIFF\x00\x00\x00\x00AVI "), make([]byte, 32)...), true},
		{"flv", []byte("FLV\x01\x05"), true},
		{"mpeg ts", fakeTS(), true},
		{"lone ts sync byte", []byte{0x47, 0x40, 0x00, 0x10}, false},
		{"gif", append([]byte("GIF89a"), make([]byte, 512)...), false},
		{"empty", nil, false},
		{"html error page", []byte("<html><body>404</body></html>"), false},
		{"plain text", []byte("not a video"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "probe.bin", tt.data)
			err := checkMediaHeader(path)
			if tt.ok && err != nil {
				t.Errorf("expected valid media, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected rejection")
			}
		})
	}
}

func TestSniffAudioExt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ext  string
	}{
		{"id3", fakeMP3(), ".mp3"},
		{"bare mpeg frame", []byte{0xFF, 0xFB, 0x90, 0x00}, ".mp3"},
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVE"), ".wav"},
		{"ogg", []byte("OggS\x00\x02"), ".ogg"},
		{"m4a", append([]byte{0x00, 0x00, 0x00, 0x20}, []byte("ftypM4A ")...), ".m4a"},
		{"empty", nil, ""},
		{"text", []byte("hello world!"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "probe.bin", tt.data)
			ext, err := sniffAudioExt(path)
			if tt.ext == "" {
				if err == nil {
					t.Error("expected rejection")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid audio, got %v", err)
			}
			if ext != tt.ext {
				t.Errorf("expected %s, got %s", tt.ext, ext)
			}
		})
	}
}
