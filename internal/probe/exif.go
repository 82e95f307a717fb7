package probe

import (
	"errors"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

var errNoExifDimensions = errors.New("no exif dimension tags")

func exifDimensions(rs io.ReadSeeker) (int, int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return 0, 0, errNoExifDimensions
		}
		return 0, 0, err
	}

	var width, height int
	for _, tag := range tags {
		switch tag.TagName {
		case "PixelXDimension", "ImageWidth":
			if v := firstUint(tag.Value); v > width {
				width = v
			}
		case "PixelYDimension", "ImageLength":
			if v := firstUint(tag.Value); v > height {
				height = v
			}
		}
	}

	if width == 0 {
		return 0, 0, errNoExifDimensions
	}
	return width, height, nil
}

func firstUint(value interface{}) int {
	switch v := value.(type) {
	case []uint16:
		if len(v) > 0 {
			return int(v[0])
		}
	case []uint32:
		if len(v) > 0 {
			return int(v[0])
		}
	}
	return 0
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
