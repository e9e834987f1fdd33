package filestorage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// AvatarSize is the edge length of stored avatars
const AvatarSize = 256

const avatarQuality = 85

// ErrUnsupportedImage is returned for payloads that are not jpeg, png or webp
var ErrUnsupportedImage = errors.New("unsupported image format")

// ProcessAvatar decodes a jpeg/png/webp upload, crops it to a centred square and encodes it as WebP
func ProcessAvatar(data []byte) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	img = imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: avatarQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrUnsupportedImage
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	ct := http.DetectContentType(head)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"):
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	case strings.Contains(ct, "webp"):
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	default:
		return nil, ErrUnsupportedImage
	}
}
