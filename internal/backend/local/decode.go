package local

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// decode picks a decoder by magic bytes. Blob ids carry no extension, so
// the container has to be sniffed from the content itself.
func decode(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	var magic [12]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, beep.Format{}, fmt.Errorf("read header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, beep.Format{}, err
	}

	switch {
	case bytes.HasPrefix(magic[:], []byte("fLaC")):
		return flac.Decode(f)
	case bytes.HasPrefix(magic[:], []byte("OggS")):
		return vorbis.Decode(f)
	case bytes.HasPrefix(magic[:], []byte("RIFF")) && bytes.Equal(magic[8:12], []byte("WAVE")):
		return wav.Decode(f)
	default:
		// MP3 frames start with an 0xFFEx sync word, or an ID3 tag block.
		if bytes.HasPrefix(magic[:], []byte("ID3")) ||
			(magic[0] == 0xFF && magic[1]&0xE0 == 0xE0) {
			return mp3.Decode(f)
		}
		return nil, beep.Format{}, fmt.Errorf("unrecognized container")
	}
}
