package store

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	"github.com/veldtlabs/websnap/internal/core/domain"
)

// containerMagic identifies snapshot container files.
var containerMagic = []byte("WSNAPCTR")

const (
	fileExtension = ".wsnap"
	checksumSize  = 32
	headerVersion = 1

	// maxHeaderSize bounds the declared header length before allocation.
	maxHeaderSize = 1 << 20
)

// header is the JSON metadata block at the front of every container.
type header struct {
	Version   int      `json:"version"`
	ID        string   `json:"id"`
	CreatedAt int64    `json:"created_at"`
	Exports   []string `json:"exports,omitempty"`
	Encrypted bool     `json:"encrypted"`
	Algorithm string   `json:"algorithm,omitempty"`
	Salt      string   `json:"salt,omitempty"`
}

// writeContainer streams one container to w and returns its checksum.
func writeContainer(w io.Writer, hdr header, payload []byte) ([]byte, error) {
	hash := sha256.New()
	out := io.MultiWriter(w, hash)

	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return nil, domain.ErrStoreInvalidContainer.WithCause(err)
	}

	if _, err := out.Write(containerMagic); err != nil {
		return nil, err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(hdrJSON)))
	if _, err := out.Write(lenBuf[:]); err != nil {
		return nil, err
	}
	if _, err := out.Write(hdrJSON); err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := out.Write(lenBuf[:]); err != nil {
		return nil, err
	}
	if _, err := out.Write(payload); err != nil {
		return nil, err
	}

	// The checksum trailer covers everything before it and is not hashed
	// itself.
	sum := hash.Sum(nil)
	if _, err := w.Write(sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// readContainer verifies path's checksum and returns its header and
// payload. The payload is still ciphertext when the header says so.
func readContainer(path string) (header, []byte, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return header{}, nil, nil, domain.ErrStoreNotFound.WithDetails(path)
		}
		return header{}, nil, nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return header{}, nil, nil, err
	}
	if stat.Size() < int64(len(containerMagic))+checksumSize {
		return header{}, nil, nil, domain.ErrStoreInvalidContainer.WithDetails(path)
	}

	bodyLen := stat.Size() - checksumSize
	expected := make([]byte, checksumSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, bodyLen, checksumSize), expected); err != nil {
		return header{}, nil, nil, err
	}
	hash := sha256.New()
	if _, err := io.CopyN(hash, io.NewSectionReader(f, 0, bodyLen), bodyLen); err != nil {
		return header{}, nil, nil, err
	}
	if !bytes.Equal(hash.Sum(nil), expected) {
		return header{}, nil, nil, domain.ErrStoreChecksum.WithDetails(path)
	}

	br := bufio.NewReader(io.NewSectionReader(f, 0, bodyLen))
	hdr, err := readContainerHeader(br, path)
	if err != nil {
		return header{}, nil, nil, err
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
		return header{}, nil, nil, domain.ErrStoreInvalidContainer.WithDetails(path).WithCause(err)
	}
	payload := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(br, payload); err != nil {
		return header{}, nil, nil, domain.ErrStoreInvalidContainer.WithDetails(path).WithCause(err)
	}

	return hdr, payload, expected, nil
}

// readHeader parses only the header block; used for cheap listings.
func readHeader(path string) (header, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return header{}, 0, domain.ErrStoreNotFound.WithDetails(path)
		}
		return header{}, 0, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return header{}, 0, err
	}

	hdr, err := readContainerHeader(bufio.NewReader(f), path)
	if err != nil {
		return header{}, 0, err
	}
	return hdr, stat.Size(), nil
}

func readContainerHeader(r io.Reader, path string) (header, error) {
	magic := make([]byte, len(containerMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return header{}, domain.ErrStoreInvalidContainer.WithDetails(path).WithCause(err)
	}
	if !bytes.Equal(magic, containerMagic) {
		return header{}, domain.ErrStoreInvalidContainer.WithDetails(path)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return header{}, domain.ErrStoreInvalidContainer.WithDetails(path).WithCause(err)
	}
	hdrLen := binary.BigEndian.Uint32(lenBuf[:])
	if hdrLen == 0 || hdrLen > maxHeaderSize {
		return header{}, domain.ErrStoreInvalidContainer.WithDetails(path)
	}
	hdrJSON := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrJSON); err != nil {
		return header{}, domain.ErrStoreInvalidContainer.WithDetails(path).WithCause(err)
	}

	var hdr header
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return header{}, domain.ErrStoreInvalidContainer.WithDetails(path).WithCause(err)
	}
	return hdr, nil
}

func checksumString(sum []byte) string {
	return hex.EncodeToString(sum)
}
