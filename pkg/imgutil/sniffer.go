package imgutil

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Kind identifies a supported image container.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindWebP
	KindAVIF
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindWebP:
		return "webp"
	case KindAVIF:
		return "avif"
	default:
		return "unknown"
	}
}

// HeaderSize is the number of leading bytes DetectHeader needs.
const HeaderSize = 12

var (
	pngSig  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig = []byte{0xff, 0xd8, 0xff}
	riffSig = []byte("RIFF")
	webpSig = []byte("WEBP")
	ftypSig = []byte("ftyp")
)

var avifBrands = [][]byte{[]byte("avif"), []byte("avis")}

// DetectHeader inspects the first 12 bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < HeaderSize {
		return KindUnknown, errors.New("header too short")
	}

	if bytes.HasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if bytes.HasPrefix(header, pngSig) {
		return KindPNG, nil
	}
	if bytes.HasPrefix(header, riffSig) && bytes.Equal(header[8:12], webpSig) {
		return KindWebP, nil
	}
	if bytes.Equal(header[4:8], ftypSig) {
		for _, brand := range avifBrands {
			if bytes.Equal(header[8:12], brand) {
				return KindAVIF, nil
			}
		}
	}

	return KindUnknown, nil
}

// SniffFile reads the first bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads HeaderSize bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return KindUnknown, err
	}

	return DetectHeader(header)
}

// maxMetaSize bounds the "meta" box read into memory.
const maxMetaSize = 1 << 20

var errNoISPE = errors.New("no ispe property found")

// AVIFDimensions returns the largest image spatial extent ("ispe") declared in
// the item properties of an AVIF container (meta/iprp/ipco). Grid images
// declare one extent per tile plus one for the assembled canvas, so the
// largest width wins. Top-level boxes other than meta are skipped unread.
func AVIFDimensions(r io.Reader) (width, height int, err error) {
	br := bufio.NewReader(r)
	for {
		boxType, payloadLen, err := readBoxHeader(br)
		if err != nil {
			if err == io.EOF {
				return 0, 0, errNoISPE
			}
			return 0, 0, err
		}

		if boxType != "meta" {
			if payloadLen < 0 {
				return 0, 0, errNoISPE
			}
			if _, err := io.CopyN(io.Discard, br, payloadLen); err != nil {
				return 0, 0, err
			}
			continue
		}

		if payloadLen < 0 || payloadLen > maxMetaSize {
			return 0, 0, fmt.Errorf("meta box of %d bytes not supported", payloadLen)
		}
		meta := make([]byte, payloadLen)
		if _, err := io.ReadFull(br, meta); err != nil {
			return 0, 0, err
		}
		return metaDimensions(meta)
	}
}

// readBoxHeader returns the box type and payload length; -1 means the box
// runs to the end of the file.
func readBoxHeader(r io.Reader) (string, int64, error) {
	head := make([]byte, 8)
	if _, err := io.ReadFull(r, head); err != nil {
		return "", 0, err
	}
	size := int64(binary.BigEndian.Uint32(head[:4]))
	boxType := string(head[4:8])

	switch size {
	case 0:
		return boxType, -1, nil
	case 1:
		large := make([]byte, 8)
		if _, err := io.ReadFull(r, large); err != nil {
			return "", 0, err
		}
		size = int64(binary.BigEndian.Uint64(large))
		if size < 16 {
			return "", 0, fmt.Errorf("invalid %s box size %d", boxType, size)
		}
		return boxType, size - 16, nil
	}
	if size < 8 {
		return "", 0, fmt.Errorf("invalid %s box size %d", boxType, size)
	}
	return boxType, size - 8, nil
}

// children splits an in-memory box payload into its child boxes.
func children(data []byte) (map[string][][]byte, error) {
	boxes := make(map[string][][]byte)
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, errors.New("truncated box header")
		}
		size := int(binary.BigEndian.Uint32(data[:4]))
		boxType := string(data[4:8])
		if size == 0 {
			size = len(data)
		}
		if size < 8 || size > len(data) {
			return nil, fmt.Errorf("invalid %s box size %d", boxType, size)
		}
		boxes[boxType] = append(boxes[boxType], data[8:size])
		data = data[size:]
	}
	return boxes, nil
}

func metaDimensions(meta []byte) (int, int, error) {
	// meta is a full box: version and flags precede the children
	if len(meta) < 4 {
		return 0, 0, errNoISPE
	}
	metaBoxes, err := children(meta[4:])
	if err != nil {
		return 0, 0, err
	}

	var width, height int
	for _, iprp := range metaBoxes["iprp"] {
		iprpBoxes, err := children(iprp)
		if err != nil {
			return 0, 0, err
		}
		for _, ipco := range iprpBoxes["ipco"] {
			props, err := children(ipco)
			if err != nil {
				return 0, 0, err
			}
			for _, ispe := range props["ispe"] {
				if len(ispe) < 12 {
					continue
				}
				w := int(binary.BigEndian.Uint32(ispe[4:8]))
				h := int(binary.BigEndian.Uint32(ispe[8:12]))
				if w > width {
					width, height = w, h
				}
			}
		}
	}

	if width == 0 {
		return 0, 0, errNoISPE
	}
	return width, height, nil
}
